package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"collection-service/internal/service"
)

type Handler struct {
	authService       *service.AuthService
	userService       *service.UserService
	binService        *service.BinService
	routeService      *service.RouteService
	collectionService *service.CollectionService
	log               zerolog.Logger
}

func NewHandler(
	authService *service.AuthService,
	userService *service.UserService,
	binService *service.BinService,
	routeService *service.RouteService,
	collectionService *service.CollectionService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		authService:       authService,
		userService:       userService,
		binService:        binService,
		routeService:      routeService,
		collectionService: collectionService,
		log:               log,
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrDuplicate),
		errors.Is(err, service.ErrStateConflict):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	if raw := strings.TrimSpace(c.Query(name)); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return 0
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

type responseEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Success: true, Data: data}
}

func successMessage(data interface{}, msg string) responseEnvelope {
	return responseEnvelope{Success: true, Data: data, Message: msg}
}

func errorResponse(msg string) responseEnvelope {
	return responseEnvelope{Success: false, Message: msg}
}
