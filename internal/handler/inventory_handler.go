package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inventory := router.Group("/inventory", middleware.RequireRole("admin", "warehouse"))
	{
		inventory.GET("/dashboard", h.Dashboard)
		inventory.GET("/alerts", h.ListAlerts)
		inventory.POST("/alerts/:id/resolve", h.ResolveAlert)
		inventory.GET("/low-stock", h.ListLowStock)
		inventory.POST("/low-stock/notify", middleware.RequireRole("admin"), h.NotifyLowStock)
		inventory.POST("/products/:id/adjust", middleware.RequireRole("admin"), h.AdjustStock)
		inventory.PUT("/products/:id/settings", middleware.RequireRole("admin"), h.UpdateStockSettings)
	}
}

// Dashboard godoc
// @Summary Inventory overview
// @Description Stock counters, low-stock products, recent alerts and reorder statistics
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.InventoryDashboard}
// @Router /inventory/dashboard [get]
func (h *InventoryHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.inventoryService.Dashboard(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// ListAlerts godoc
// @Summary List inventory alerts
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param resolved query bool false "Filter by resolution state"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /inventory/alerts [get]
func (h *InventoryHandler) ListAlerts(c *gin.Context) {
	p := pagination.Parse(c)
	resolved := readBoolQuery(c, "resolved")

	alerts, total, err := h.inventoryService.ListAlerts(c.Request.Context(), resolved, p.Page, p.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": alerts,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// ResolveAlert godoc
// @Summary Resolve an inventory alert
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /inventory/alerts/{id}/resolve [post]
func (h *InventoryHandler) ResolveAlert(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	alertID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.inventoryService.ResolveAlert(c.Request.Context(), userID, alertID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Alert resolved"}))
}

// ListLowStock godoc
// @Summary List products at or below their low-stock threshold
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	products, err := h.inventoryService.ListLowStock(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// NotifyLowStock godoc
// @Summary Notify admins about every low-stock product
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /inventory/low-stock/notify [post]
func (h *InventoryHandler) NotifyLowStock(c *gin.Context) {
	count, err := h.inventoryService.SendLowStockNotifications(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"notified_products": count}))
}

// AdjustStock godoc
// @Summary Apply a manual stock adjustment
// @Description Increase, decrease or set the quantity. Decreasing never takes stock below zero.
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body service.AdjustStockRequest true "Adjustment payload"
// @Success 200 {object} response.Response{data=service.ProductResponse}
// @Failure 400 {object} response.Response
// @Router /inventory/products/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	product, err := h.inventoryService.AdjustStock(c.Request.Context(), adminID, productID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// UpdateStockSettings godoc
// @Summary Update a product's stock thresholds
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body service.UpdateStockSettingsRequest true "Settings payload"
// @Success 200 {object} response.Response{data=service.ProductResponse}
// @Failure 404 {object} response.Response
// @Router /inventory/products/{id}/settings [put]
func (h *InventoryHandler) UpdateStockSettings(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateStockSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	product, err := h.inventoryService.UpdateStockSettings(c.Request.Context(), adminID, productID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}
