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

const scheduledDateLayout = "2006-01-02"

type routeBinPayload struct {
	BinID string `json:"bin_id" binding:"required"`
	Order int    `json:"order"`
}

type createRouteRequest struct {
	Name          string            `json:"name"`
	ScheduledDate string            `json:"scheduled_date" binding:"required"`
	ScheduledTime string            `json:"scheduled_time"`
	Bins          []routeBinPayload `json:"bins"`
	AssignedTo    string            `json:"assigned_to"`
}

func (h *Handler) createRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req createRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	date, err := time.Parse(scheduledDateLayout, strings.TrimSpace(req.ScheduledDate))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid scheduled_date, expected YYYY-MM-DD"))
		return
	}

	bins, err := convertRouteBinPayloads(req.Bins)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.CreateRouteInput{
		Name:          req.Name,
		ScheduledDate: date,
		ScheduledTime: strings.TrimSpace(req.ScheduledTime),
		Bins:          bins,
	}
	if assigned := strings.TrimSpace(req.AssignedTo); assigned != "" {
		id, err := uuid.Parse(assigned)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid assigned_to"))
			return
		}
		input.AssignedTo = &id
	}

	record, err := h.routeService.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) listRoutes(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	opts, err := parseRouteQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	records, err := h.routeService.List(c.Request.Context(), principal, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	record, err := h.routeService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

type updateRouteRequest struct {
	Name          *string           `json:"name"`
	ScheduledDate *string           `json:"scheduled_date"`
	ScheduledTime *string           `json:"scheduled_time"`
	Status        *string           `json:"status"`
	Bins          []routeBinPayload `json:"bins"`
}

func (h *Handler) updateRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req updateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.UpdateRouteInput{
		Name:          req.Name,
		ScheduledTime: req.ScheduledTime,
	}
	if req.ScheduledDate != nil {
		date, err := time.Parse(scheduledDateLayout, strings.TrimSpace(*req.ScheduledDate))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid scheduled_date, expected YYYY-MM-DD"))
			return
		}
		input.ScheduledDate = &date
	}
	if req.Status != nil {
		status := model.RouteStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		input.Status = &status
	}
	if req.Bins != nil {
		bins, err := convertRouteBinPayloads(req.Bins)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		input.Bins = bins
	}

	record, err := h.routeService.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) deleteRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.routeService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successMessage(nil, "route deleted"))
}

func (h *Handler) assignRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		CollectorID string `json:"collector_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	collectorID, err := uuid.Parse(strings.TrimSpace(req.CollectorID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid collector_id"))
		return
	}

	record, err := h.routeService.Assign(c.Request.Context(), principal, id, collectorID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) routeStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	stats, err := h.routeService.Stats(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(stats))
}

func (h *Handler) routesByCollector(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	collectorID, ok := pathUUID(c, "collectorId")
	if !ok {
		return
	}

	records, err := h.routeService.ListByCollector(c.Request.Context(), principal, collectorID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func parseRouteQuery(c *gin.Context) (service.ListRoutesOptions, error) {
	var opts service.ListRoutesOptions

	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			opts.Statuses = append(opts.Statuses, model.RouteStatus(strings.ToUpper(val)))
		}
	}
	if assigned := strings.TrimSpace(c.Query("assigned_to")); assigned != "" {
		id, err := uuid.Parse(assigned)
		if err != nil {
			return opts, err
		}
		opts.AssignedTo = &id
	}
	if unassigned := strings.TrimSpace(c.Query("unassigned")); unassigned == "true" {
		opts.Unassigned = true
	}
	if dateFrom := strings.TrimSpace(c.Query("date_from")); dateFrom != "" {
		ts, err := time.Parse(scheduledDateLayout, dateFrom)
		if err != nil {
			return opts, err
		}
		opts.DateFrom = &ts
	}
	if dateTo := strings.TrimSpace(c.Query("date_to")); dateTo != "" {
		ts, err := time.Parse(scheduledDateLayout, dateTo)
		if err != nil {
			return opts, err
		}
		opts.DateTo = &ts
	}
	opts.Search = strings.TrimSpace(c.Query("search"))
	opts.Limit = queryInt(c, "limit")
	opts.Offset = queryInt(c, "offset")

	return opts, nil
}

func convertRouteBinPayloads(payloads []routeBinPayload) ([]service.RouteBinInput, error) {
	result := make([]service.RouteBinInput, 0, len(payloads))
	for i, p := range payloads {
		id, err := uuid.Parse(strings.TrimSpace(p.BinID))
		if err != nil {
			return nil, err
		}
		order := p.Order
		if order == 0 {
			order = i + 1
		}
		result = append(result, service.RouteBinInput{BinID: id, Sequence: order})
	}
	return result, nil
}
