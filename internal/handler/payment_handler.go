package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/payments")
	{
		// Gateway callback carries its own transaction reference, no session
		payments.POST("/callback", h.Callback)
		payments.GET("/methods", h.Methods)

		customer := payments.Group("", middleware.RequireRole("customer"))
		{
			customer.POST("/orders/:orderId/initiate", h.Initiate)
			customer.POST("/orders/:orderId/retry", h.Retry)
			customer.POST("/orders/:orderId/mock-complete", h.MockComplete)
			customer.GET("/orders/:orderId/status", h.Status)
			customer.GET("/my-transactions", h.ListMyTransactions)
		}

		payments.GET("/transactions", middleware.RequireRole("staff", "admin"), h.ListTransactions)
		payments.POST("/transactions", middleware.RequireRole("admin"), h.CreateTransaction)
		payments.GET("/transactions/summary", middleware.RequireRole("admin"), h.TransactionSummary)
		payments.GET("/transactions/:id", middleware.RequireRole("staff", "admin"), h.GetTransaction)
		payments.PUT("/transactions/:id/status", middleware.RequireRole("admin"), h.UpdateTransactionStatus)
	}
}

// Initiate godoc
// @Summary Start a payment session for an order
// @Description Returns the simulated gateway checkout URL for the order's pending transaction
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "Order ID"
// @Success 200 {object} response.Response{data=service.PaymentSessionResponse}
// @Failure 400 {object} response.Response
// @Router /payments/orders/{orderId}/initiate [post]
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	session, err := h.paymentService.InitiatePayment(c.Request.Context(), userID, orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, session))
}

// Callback godoc
// @Summary Gateway payment callback
// @Description Marks the transaction and order according to the gateway result. Success moves a pending order to Paid.
// @Tags payments
// @Accept json
// @Produce json
// @Param request body service.PaymentCallbackRequest true "Callback payload"
// @Success 200 {object} response.Response{data=service.TransactionResponse}
// @Failure 400 {object} response.Response
// @Router /payments/callback [post]
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req service.PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	tx, err := h.paymentService.HandleCallback(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tx))
}

// Retry godoc
// @Summary Retry a failed payment
// @Description Creates a fresh payment session. Only failed or still-pending payments can be retried.
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "Order ID"
// @Success 200 {object} response.Response{data=service.PaymentSessionResponse}
// @Failure 400 {object} response.Response
// @Router /payments/orders/{orderId}/retry [post]
func (h *PaymentHandler) Retry(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	session, err := h.paymentService.RetryPayment(c.Request.Context(), userID, orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, session))
}

// MockComplete godoc
// @Summary Simulate a successful gateway payment in one call
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "Order ID"
// @Success 200 {object} response.Response{data=service.TransactionResponse}
// @Failure 400 {object} response.Response
// @Router /payments/orders/{orderId}/mock-complete [post]
func (h *PaymentHandler) MockComplete(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	tx, err := h.paymentService.MockComplete(c.Request.Context(), userID, orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tx))
}

// Status godoc
// @Summary Get the latest payment transaction for an order
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "Order ID"
// @Success 200 {object} response.Response{data=service.TransactionResponse}
// @Failure 404 {object} response.Response
// @Router /payments/orders/{orderId}/status [get]
func (h *PaymentHandler) Status(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	tx, err := h.paymentService.GetPaymentStatus(c.Request.Context(), userID, orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tx))
}

// ListTransactions godoc
// @Summary List payment transactions
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by transaction status"
// @Param order_id query string false "Filter by order"
// @Param ticket_number query string false "Look up by support ticket number"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /payments/transactions [get]
func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.TransactionFilter{
		Status:       c.Query("status"),
		TicketNumber: c.Query("ticket_number"),
		Page:         p.Page,
		Limit:        p.Limit,
	}
	if raw := c.Query("order_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.OrderID = &id
		}
	}

	txs, total, err := h.paymentService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": txs,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// Methods godoc
// @Summary List the supported payment methods
// @Tags payments
// @Produce json
// @Success 200 {object} response.Response
// @Router /payments/methods [get]
func (h *PaymentHandler) Methods(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.paymentService.PaymentMethods()))
}

// ListMyTransactions godoc
// @Summary List the customer's own payment transactions
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by transaction status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /payments/my-transactions [get]
func (h *PaymentHandler) ListMyTransactions(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	p := pagination.Parse(c)
	filter := repository.TransactionFilter{
		UserID: &userID,
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	}

	txs, total, err := h.paymentService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": txs,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// GetTransaction godoc
// @Summary Get a single payment transaction
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} response.Response{data=service.TransactionResponse}
// @Failure 404 {object} response.Response
// @Router /payments/transactions/{id} [get]
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tx, err := h.paymentService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tx))
}

// CreateTransaction godoc
// @Summary Record a manual payment or refund transaction
// @Description For money settled outside the gateway. Amount defaults to the order total.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateTransactionRequest true "Transaction payload"
// @Success 201 {object} response.Response{data=service.TransactionResponse}
// @Failure 400 {object} response.Response
// @Router /payments/transactions [post]
func (h *PaymentHandler) CreateTransaction(c *gin.Context) {
	var req service.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	tx, err := h.paymentService.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tx))
}

// UpdateTransactionStatus godoc
// @Summary Update a transaction's status
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param request body service.UpdateTransactionStatusRequest true "New status"
// @Success 200 {object} response.Response{data=service.TransactionResponse}
// @Failure 400 {object} response.Response
// @Router /payments/transactions/{id}/status [put]
func (h *PaymentHandler) UpdateTransactionStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateTransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	tx, err := h.paymentService.UpdateTransactionStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tx))
}

// TransactionSummary godoc
// @Summary Aggregate transaction counts and completed revenue
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=repository.TransactionSummary}
// @Router /payments/transactions/summary [get]
func (h *PaymentHandler) TransactionSummary(c *gin.Context) {
	summary, err := h.paymentService.TransactionSummary(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
