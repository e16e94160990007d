package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"collection-service/internal/http/middleware"
	"collection-service/internal/model"
	"collection-service/internal/service"
)

func (h *Handler) listUsers(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var opts service.ListUsersOptions
	if roleParam := c.Query("role"); roleParam != "" {
		for _, val := range splitCSV(roleParam) {
			opts.Roles = append(opts.Roles, model.UserRole(strings.ToUpper(val)))
		}
	}
	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			opts.Statuses = append(opts.Statuses, model.UserStatus(strings.ToUpper(val)))
		}
	}
	opts.Search = strings.TrimSpace(c.Query("search"))
	opts.Limit = queryInt(c, "limit")
	opts.Offset = queryInt(c, "offset")

	users, err := h.userService.List(c.Request.Context(), principal, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": users}))
}

func (h *Handler) getUser(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(user))
}

func (h *Handler) updateUser(c *gin.Context) {
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
		FullName string `json:"full_name" binding:"required"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), principal, id, req.FullName, req.Phone)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(user))
}

func (h *Handler) updateUserRole(c *gin.Context) {
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
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	role := model.UserRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if err := h.userService.UpdateRole(c.Request.Context(), principal, id, role); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successMessage(nil, "role updated"))
}

func (h *Handler) updateUserStatus(c *gin.Context) {
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
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	status := model.UserStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if err := h.userService.UpdateStatus(c.Request.Context(), principal, id, status); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successMessage(nil, "status updated"))
}

func (h *Handler) adjustUserCredits(c *gin.Context) {
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
		Delta int `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	user, err := h.userService.AdjustCreditPoints(c.Request.Context(), principal, id, req.Delta)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successMessage(nil, "user deleted"))
}

func (h *Handler) userStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	stats, err := h.userService.Stats(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(stats))
}
