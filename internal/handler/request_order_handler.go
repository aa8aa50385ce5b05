package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestOrderHandler struct {
	requestService service.RequestOrderService
}

func NewRequestOrderHandler(requestService service.RequestOrderService) *RequestOrderHandler {
	return &RequestOrderHandler{requestService: requestService}
}

func (h *RequestOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/request-orders")
	{
		requests.POST("", middleware.RequireRole("staff", "admin"), h.Create)
		requests.GET("", middleware.RequireRole("staff", "admin", "warehouse"), h.List)
		requests.GET("/awaiting-warehouse", middleware.RequireRole("warehouse", "admin"), h.ListAwaitingWarehouse)
		requests.GET("/:id", middleware.RequireRole("staff", "admin", "warehouse"), h.Get)
		requests.POST("/:id/admin-approve", middleware.RequireRole("admin"), h.AdminApprove)
		requests.POST("/:id/admin-reject", middleware.RequireRole("admin"), h.AdminReject)
		requests.POST("/:id/warehouse-approve", middleware.RequireRole("warehouse"), h.WarehouseApprove)
		requests.POST("/:id/warehouse-reject", middleware.RequireRole("warehouse"), h.WarehouseReject)
	}
}

// Create godoc
// @Summary Create a restock request
// @Description Opens a request that needs admin approval followed by warehouse approval before stock is added
// @Tags request-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateRequestOrderRequest true "Request payload"
// @Success 201 {object} response.Response{data=service.RequestOrderResponse}
// @Failure 400 {object} response.Response
// @Router /request-orders [post]
func (h *RequestOrderHandler) Create(c *gin.Context) {
	requesterID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req service.CreateRequestOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.requestService.Create(c.Request.Context(), requesterID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// List godoc
// @Summary List restock requests
// @Tags request-orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by request status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /request-orders [get]
func (h *RequestOrderHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	requests, total, err := h.requestService.List(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": requests,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// ListAwaitingWarehouse godoc
// @Summary List requests approved by admin and awaiting the warehouse decision
// @Tags request-orders
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /request-orders/awaiting-warehouse [get]
func (h *RequestOrderHandler) ListAwaitingWarehouse(c *gin.Context) {
	p := pagination.Parse(c)
	requests, total, err := h.requestService.ListAwaitingWarehouse(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": requests,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// Get godoc
// @Summary Get a restock request
// @Tags request-orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response{data=service.RequestOrderResponse}
// @Failure 404 {object} response.Response
// @Router /request-orders/{id} [get]
func (h *RequestOrderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.requestService.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// AdminApprove godoc
// @Summary Admin-approve a restock request
// @Tags request-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body service.RequestDecisionRequest false "Optional notes"
// @Success 200 {object} response.Response{data=service.RequestOrderResponse}
// @Failure 400 {object} response.Response
// @Router /request-orders/{id}/admin-approve [post]
func (h *RequestOrderHandler) AdminApprove(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.RequestDecisionRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.requestService.AdminApprove(c.Request.Context(), adminID, id, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// AdminReject godoc
// @Summary Admin-reject a restock request
// @Tags request-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body service.RequestDecisionRequest false "Optional notes"
// @Success 200 {object} response.Response{data=service.RequestOrderResponse}
// @Failure 400 {object} response.Response
// @Router /request-orders/{id}/admin-reject [post]
func (h *RequestOrderHandler) AdminReject(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.RequestDecisionRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.requestService.AdminReject(c.Request.Context(), adminID, id, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// WarehouseApprove godoc
// @Summary Warehouse-approve a restock request and add the stock
// @Description Requires prior admin approval. Approving increments the product's stock once.
// @Tags request-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body service.RequestDecisionRequest false "Optional notes"
// @Success 200 {object} response.Response{data=service.RequestOrderResponse}
// @Failure 400 {object} response.Response
// @Router /request-orders/{id}/warehouse-approve [post]
func (h *RequestOrderHandler) WarehouseApprove(c *gin.Context) {
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

	result, err := h.requestService.WarehouseApprove(c.Request.Context(), staffID, id, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// WarehouseReject godoc
// @Summary Warehouse-reject a restock request
// @Description Requires prior admin approval. No stock changes.
// @Tags request-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body service.RequestDecisionRequest false "Optional notes"
// @Success 200 {object} response.Response{data=service.RequestOrderResponse}
// @Failure 400 {object} response.Response
// @Router /request-orders/{id}/warehouse-reject [post]
func (h *RequestOrderHandler) WarehouseReject(c *gin.Context) {
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

	result, err := h.requestService.WarehouseReject(c.Request.Context(), staffID, id, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
