package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"collection-service/internal/http/middleware"
	"collection-service/internal/model"
	"collection-service/internal/service"
)

type checklistItemPayload struct {
	ItemID  string `json:"item_id" binding:"required"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

type startRouteRequest struct {
	Checklist   []checklistItemPayload `json:"checklist"`
	CompletedAt *time.Time             `json:"completed_at"`
}

func (h *Handler) startRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	routeID, ok := pathUUID(c, "routeId")
	if !ok {
		return
	}

	// Body is optional; the checklist is an audit payload, not a gate.
	var req startRouteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
	}

	var checklist *service.ChecklistInput
	if len(req.Checklist) > 0 {
		items := make([]model.ChecklistItem, 0, len(req.Checklist))
		for _, item := range req.Checklist {
			items = append(items, model.ChecklistItem{
				ItemID:  item.ItemID,
				Label:   item.Label,
				Checked: item.Checked,
			})
		}
		checklist = &service.ChecklistInput{Items: items}
		if req.CompletedAt != nil {
			checklist.CompletedAt = *req.CompletedAt
		}
	}

	record, err := h.collectionService.Start(c.Request.Context(), principal, routeID, checklist)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"route": record}))
}

func (h *Handler) completeRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	routeID, ok := pathUUID(c, "routeId")
	if !ok {
		return
	}

	record, err := h.collectionService.Complete(c.Request.Context(), principal, routeID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"route": record}))
}

type collectBinRequest struct {
	RouteID  string `json:"route_id" binding:"required"`
	Notes    string `json:"notes"`
	PhotoURL string `json:"photo_url"`
}

func (h *Handler) collectBin(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	binID, ok := pathUUID(c, "binId")
	if !ok {
		return
	}

	var req collectBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	routeID, err := uuid.Parse(strings.TrimSpace(req.RouteID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid route_id"))
		return
	}

	result, err := h.collectionService.CollectBin(c.Request.Context(), principal, routeID, binID, req.Notes, req.PhotoURL)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

type skipBinRequest struct {
	RouteID string  `json:"route_id" binding:"required"`
	Reason  *string `json:"reason"`
}

func (h *Handler) skipBin(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	binID, ok := pathUUID(c, "binId")
	if !ok {
		return
	}

	var req skipBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	routeID, err := uuid.Parse(strings.TrimSpace(req.RouteID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid route_id"))
		return
	}

	// A null reason is as invalid as an empty one.
	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}

	result, err := h.collectionService.SkipBin(c.Request.Context(), principal, routeID, binID, reason)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) routeProgress(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	routeID, ok := pathUUID(c, "routeId")
	if !ok {
		return
	}

	progress, err := h.collectionService.Progress(c.Request.Context(), principal, routeID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(progress))
}
