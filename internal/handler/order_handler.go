package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders", middleware.RequireRole("customer"))
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.ListMyOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
		orders.POST("/:id/return", h.RequestReturn)
		orders.GET("/:id/track", h.TrackOrder)
	}

	staff := router.Group("/staff/orders", middleware.RequireRole("staff", "admin"))
	{
		staff.GET("", h.ListOrders)
		staff.GET("/pending", h.ListPendingApproval)
		staff.GET("/:id", h.GetOrderPrivileged)
		staff.POST("/:id/approve", h.ApproveOrder)
		staff.POST("/:id/reject", h.RejectOrder)
		staff.PUT("/:id/status", h.UpdateOrderStatus)
		staff.PUT("/:id/payment-status", h.UpdatePaymentStatus)
	}
}

// PlaceOrder godoc
// @Summary Place an order from the current cart
// @Description Validates stock for every line, creates the order with a pending payment transaction, decrements stock and clears the cart
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.PlaceOrderRequest true "Order payload"
// @Success 201 {object} response.Response{data=service.OrderResponse}
// @Failure 400 {object} response.Response
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// ListMyOrders godoc
// @Summary List the customer's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /orders [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	p := pagination.Parse(c)
	orders, total, err := h.orderService.ListMyOrders(c.Request.Context(), userID, p.Page, p.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": orders,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// GetOrder godoc
// @Summary Get one of the customer's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.Response{data=service.OrderResponse}
// @Failure 404 {object} response.Response
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID, false)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// CancelOrder godoc
// @Summary Cancel an order
// @Description Restores stock for every line. Shipped, delivered and already cancelled orders cannot be cancelled.
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.Response{data=service.OrderResponse}
// @Failure 400 {object} response.Response
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// RequestReturn godoc
// @Summary Request a return for a delivered order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body service.ReturnOrderRequest true "Return reason"
// @Success 200 {object} response.Response{data=service.OrderResponse}
// @Failure 400 {object} response.Response
// @Router /orders/{id}/return [post]
func (h *OrderHandler) RequestReturn(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.ReturnOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	order, err := h.orderService.RequestReturn(c.Request.Context(), userID, orderID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// ListOrders godoc
// @Summary List orders with filters
// @Tags staff-orders
// @Produce json
// @Security BearerAuth
// @Param approval_status query string false "Filter by approval status"
// @Param order_status query string false "Filter by order status"
// @Param payment_method query string false "Filter by payment method"
// @Param search query string false "Search by order number or customer"
// @Param start_date query string false "Start of created range (RFC3339)"
// @Param end_date query string false "End of created range (RFC3339)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /staff/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.OrderFilter{
		ApprovalStatus: c.Query("approval_status"),
		OrderStatus:    c.Query("order_status"),
		PaymentMethod:  c.Query("payment_method"),
		Search:         c.Query("search"),
		Page:           p.Page,
		Limit:          p.Limit,
	}
	if raw := c.Query("start_date"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.StartDate = &t
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.EndDate = &t
		}
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": orders,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// ListPendingApproval godoc
// @Summary List orders awaiting approval, oldest first
// @Tags staff-orders
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /staff/orders/pending [get]
func (h *OrderHandler) ListPendingApproval(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.OrderFilter{Page: p.Page, Limit: p.Limit}

	orders, total, err := h.orderService.ListPendingApproval(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": orders,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// GetOrderPrivileged godoc
// @Summary Get any order by ID
// @Tags staff-orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.Response{data=service.OrderResponse}
// @Failure 404 {object} response.Response
// @Router /staff/orders/{id} [get]
func (h *OrderHandler) GetOrderPrivileged(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID, true)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// ApproveOrder godoc
// @Summary Approve a pending order
// @Description Moves the order to Processing. Only pending orders can be decided.
// @Tags staff-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body service.StaffDecisionRequest false "Optional notes"
// @Success 200 {object} response.Response{data=service.OrderResponse}
// @Failure 400 {object} response.Response
// @Router /staff/orders/{id}/approve [post]
func (h *OrderHandler) ApproveOrder(c *gin.Context) {
	staffID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.StaffDecisionRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.orderService.ApproveOrder(c.Request.Context(), staffID, orderID, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// RejectOrder godoc
// @Summary Reject a pending order
// @Description Cancels the order and restores stock for every line
// @Tags staff-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body service.StaffDecisionRequest false "Optional notes"
// @Success 200 {object} response.Response{data=service.OrderResponse}
// @Failure 400 {object} response.Response
// @Router /staff/orders/{id}/reject [post]
func (h *OrderHandler) RejectOrder(c *gin.Context) {
	staffID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.StaffDecisionRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.orderService.RejectOrder(c.Request.Context(), staffID, orderID, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateOrderStatus godoc
// @Summary Advance an approved order's fulfilment status
// @Tags staff-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body service.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} response.Response{data=service.OrderResponse}
// @Failure 400 {object} response.Response
// @Router /staff/orders/{id}/status [put]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	staffID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), staffID, orderID, req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdatePaymentStatus godoc
// @Summary Override an order's payment status
// @Description For payments settled outside the gateway, such as bank transfers and refunds
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body service.UpdatePaymentStatusRequest true "New payment status"
// @Success 200 {object} response.Response{data=service.OrderResponse}
// @Failure 400 {object} response.Response
// @Router /staff/orders/{id}/payment-status [put]
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	staffID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	order, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), staffID, orderID, req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// TrackOrder godoc
// @Summary Track an order's progress
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.Response{data=service.OrderTrackingResponse}
// @Failure 404 {object} response.Response
// @Router /orders/{id}/track [get]
func (h *OrderHandler) TrackOrder(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tracking, err := h.orderService.TrackOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tracking))
}
