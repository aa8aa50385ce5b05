package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("/admin", middleware.RequireRole("admin"), h.AdminDashboard)
		dashboard.GET("/staff", middleware.RequireRole("staff"), h.StaffDashboard)
		dashboard.GET("/warehouse", middleware.RequireRole("warehouse"), h.WarehouseDashboard)
	}
}

// parseDateRange reads start_date/end_date (YYYY-MM-DD) query params,
// defaulting to the last 30 days. The end date is inclusive.
func parseDateRange(c *gin.Context) (time.Time, time.Time) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if raw := c.Query("start_date"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			start = t
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return start, end
}

// AdminDashboard godoc
// @Summary Storewide metrics for the date range
// @Description Total income from paid orders, order status breakdown, top selling products, staff approval performance and user counts
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Range start (YYYY-MM-DD, default 30 days ago)"
// @Param end_date query string false "Range end (YYYY-MM-DD, default today)"
// @Success 200 {object} response.Response{data=service.AdminDashboardResponse}
// @Router /dashboard/admin [get]
func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	start, end := parseDateRange(c)
	result, err := h.dashboardService.AdminDashboard(c.Request.Context(), start, end)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// StaffDashboard godoc
// @Summary Approval workload metrics for the current staff member
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Range start (YYYY-MM-DD, default 30 days ago)"
// @Param end_date query string false "Range end (YYYY-MM-DD, default today)"
// @Success 200 {object} response.Response{data=service.StaffDashboardResponse}
// @Router /dashboard/staff [get]
func (h *DashboardHandler) StaffDashboard(c *gin.Context) {
	staffID, ok := mustUserID(c)
	if !ok {
		return
	}

	start, end := parseDateRange(c)
	result, err := h.dashboardService.StaffDashboard(c.Request.Context(), staffID, start, end)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// WarehouseDashboard godoc
// @Summary Warehouse workload overview
// @Description Reorder status counts, requests awaiting the warehouse, unresolved alerts and recent decisions
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.WarehouseDashboardResponse}
// @Router /dashboard/warehouse [get]
func (h *DashboardHandler) WarehouseDashboard(c *gin.Context) {
	staffID, ok := mustUserID(c)
	if !ok {
		return
	}

	result, err := h.dashboardService.WarehouseDashboard(c.Request.Context(), staffID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
