package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReorderHandler struct {
	reorderService service.ReorderService
}

func NewReorderHandler(reorderService service.ReorderService) *ReorderHandler {
	return &ReorderHandler{reorderService: reorderService}
}

func (h *ReorderHandler) RegisterRoutes(router *gin.RouterGroup) {
	reorders := router.Group("/reorders")
	{
		reorders.POST("", middleware.RequireRole("admin"), h.Create)
		reorders.GET("", middleware.RequireRole("admin", "warehouse"), h.List)
		reorders.GET("/history", middleware.RequireRole("warehouse"), h.History)
		reorders.GET("/:id", middleware.RequireRole("admin", "warehouse"), h.Get)
		reorders.POST("/:id/cancel", middleware.RequireRole("admin"), h.Cancel)
		reorders.POST("/:id/approve", middleware.RequireRole("admin", "warehouse"), h.Approve)
		reorders.POST("/:id/reject", middleware.RequireRole("warehouse"), h.Reject)
		reorders.POST("/:id/complete", middleware.RequireRole("admin", "warehouse"), h.Complete)
	}
}

// Create godoc
// @Summary Create a reorder request for a product
// @Description Only one open reorder per product is allowed
// @Tags reorders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateReorderRequest true "Reorder payload"
// @Success 201 {object} response.Response{data=service.ReorderResponse}
// @Failure 400 {object} response.Response
// @Router /reorders [post]
func (h *ReorderHandler) Create(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req service.CreateReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.reorderService.Create(c.Request.Context(), adminID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// List godoc
// @Summary List reorder requests
// @Tags reorders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (pending, approved, completed, cancelled)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /reorders [get]
func (h *ReorderHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	reorders, total, err := h.reorderService.List(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": reorders,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// History godoc
// @Summary List reorders decided by the current warehouse user
// @Tags reorders
// @Produce json
// @Security BearerAuth
// @Param since query string false "Only decisions after this time (RFC3339)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /reorders/history [get]
func (h *ReorderHandler) History(c *gin.Context) {
	staffID, ok := mustUserID(c)
	if !ok {
		return
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			since = &t
		}
	}

	p := pagination.Parse(c)
	reorders, total, err := h.reorderService.History(c.Request.Context(), staffID, since, p.Page, p.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": reorders,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// Get godoc
// @Summary Get a reorder request
// @Tags reorders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reorder ID"
// @Success 200 {object} response.Response{data=service.ReorderResponse}
// @Failure 404 {object} response.Response
// @Router /reorders/{id} [get]
func (h *ReorderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.reorderService.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Cancel godoc
// @Summary Cancel a pending reorder
// @Tags reorders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reorder ID"
// @Success 200 {object} response.Response{data=service.ReorderResponse}
// @Failure 400 {object} response.Response
// @Router /reorders/{id}/cancel [post]
func (h *ReorderHandler) Cancel(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.reorderService.Cancel(c.Request.Context(), adminID, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Approve godoc
// @Summary Approve a pending reorder
// @Description Warehouse approval fixes a quantity, which may differ from the requested one. Admin approval carries no quantity; completion falls back to the requested quantity.
// @Tags reorders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reorder ID"
// @Param request body service.WarehouseApproveReorderRequest false "Approval payload (warehouse only)"
// @Success 200 {object} response.Response{data=service.ReorderResponse}
// @Failure 400 {object} response.Response
// @Router /reorders/{id}/approve [post]
func (h *ReorderHandler) Approve(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if c.GetString("userRole") == model.RoleAdmin {
		result, err := h.reorderService.AdminApprove(c.Request.Context(), userID, id)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
		return
	}

	var req service.WarehouseApproveReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.reorderService.WarehouseApprove(c.Request.Context(), userID, id, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Reject godoc
// @Summary Reject a pending reorder
// @Tags reorders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reorder ID"
// @Param request body service.RequestDecisionRequest false "Optional notes"
// @Success 200 {object} response.Response{data=service.ReorderResponse}
// @Failure 400 {object} response.Response
// @Router /reorders/{id}/reject [post]
func (h *ReorderHandler) Reject(c *gin.Context) {
	staffID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.RequestDecisionRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.reorderService.WarehouseReject(c.Request.Context(), staffID, id, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Complete godoc
// @Summary Complete an approved reorder
// @Description Adds the approved quantity to the product's stock and resolves its open inventory alerts
// @Tags reorders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reorder ID"
// @Success 200 {object} response.Response{data=service.ReorderResponse}
// @Failure 400 {object} response.Response
// @Router /reorders/{id}/complete [post]
func (h *ReorderHandler) Complete(c *gin.Context) {
	staffID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.reorderService.Complete(c.Request.Context(), staffID, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
