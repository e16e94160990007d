package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"collection-service/internal/http/middleware"
	"collection-service/internal/model"
	"collection-service/internal/service"
)

type createBinRequest struct {
	Address    string  `json:"address" binding:"required"`
	Type       string  `json:"type" binding:"required"`
	CapacityKg float64 `json:"capacity_kg"`
	Notes      string  `json:"notes"`
}

func (h *Handler) createBin(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req createBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	bin, err := h.binService.Create(c.Request.Context(), principal, service.CreateBinInput{
		Address:    req.Address,
		Type:       model.BinType(strings.ToUpper(strings.TrimSpace(req.Type))),
		CapacityKg: req.CapacityKg,
		Notes:      req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(bin))
}

func (h *Handler) listBins(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var opts service.ListBinsOptions
	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			opts.Statuses = append(opts.Statuses, model.BinStatus(strings.ToUpper(val)))
		}
	}
	if typeParam := c.Query("type"); typeParam != "" {
		for _, val := range splitCSV(typeParam) {
			opts.Types = append(opts.Types, model.BinType(strings.ToUpper(val)))
		}
	}
	if minFill := queryInt(c, "min_fill_level"); minFill > 0 {
		opts.MinFillLevel = &minFill
	}
	opts.Search = strings.TrimSpace(c.Query("search"))
	opts.Limit = queryInt(c, "limit")
	opts.Offset = queryInt(c, "offset")

	records, err := h.binService.List(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getBin(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	record, err := h.binService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

type updateBinRequest struct {
	Address    *string  `json:"address"`
	Type       *string  `json:"type"`
	CapacityKg *float64 `json:"capacity_kg"`
	Status     *string  `json:"status"`
	Notes      *string  `json:"notes"`
}

func (h *Handler) updateBin(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req updateBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.UpdateBinInput{
		Address:    req.Address,
		CapacityKg: req.CapacityKg,
		Notes:      req.Notes,
	}
	if req.Type != nil {
		binType := model.BinType(strings.ToUpper(strings.TrimSpace(*req.Type)))
		input.Type = &binType
	}
	if req.Status != nil {
		status := model.BinStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		input.Status = &status
	}

	bin, err := h.binService.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(bin))
}

type binFillLevelRequest struct {
	Outcome   *string  `json:"outcome"`
	FillLevel *int     `json:"fill_level"`
	WeightKg  *float64 `json:"weight_kg"`
	Notes     *string  `json:"notes"`
}

func (h *Handler) updateBinFillLevel(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req binFillLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.OutcomeInput{
		FillLevel: req.FillLevel,
		WeightKg:  req.WeightKg,
		Notes:     req.Notes,
	}
	if req.Outcome != nil {
		outcome := model.CollectionUrgency(strings.ToUpper(strings.TrimSpace(*req.Outcome)))
		input.Outcome = &outcome
	}

	bin, err := h.binService.ReportOutcome(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(bin))
}

func (h *Handler) deleteBin(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.binService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successMessage(nil, "bin deleted"))
}

func (h *Handler) binStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	stats, err := h.binService.Stats(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(stats))
}
