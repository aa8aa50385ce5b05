package service

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Aggregate rows scanned straight from SQL
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type ProductRanking struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	ProductSKU    string  `json:"product_sku"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
}

type StaffPerformance struct {
	StaffID       string `json:"staff_id"`
	StaffName     string `json:"staff_name"`
	ApprovedCount int64  `json:"approved_count"`
	RejectedCount int64  `json:"rejected_count"`
}

type DailyIncome struct {
	Day    string  `json:"day"`
	Income float64 `json:"income"`
	Orders int64   `json:"orders"`
}

type AdminDashboardResponse struct {
	TimeRangeStartDate time.Time          `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time          `json:"time_range_end_date"`
	TotalIncome        float64            `json:"total_income"`
	TotalOrders        int64              `json:"total_orders"`
	OrdersByStatus     []StatusCount      `json:"orders_by_status"`
	TopSellingProducts []ProductRanking   `json:"top_selling_products"`
	StaffPerformance   []StaffPerformance `json:"staff_performance"`
	TotalCustomers     int64              `json:"total_customers"`
	TotalStaff         int64              `json:"total_staff"`
	NewCustomers       int64              `json:"new_customers"`
}

type StaffDashboardResponse struct {
	PendingApprovals int64         `json:"pending_approvals"`
	ApprovedByMe     int64         `json:"approved_by_me"`
	RejectedByMe     int64         `json:"rejected_by_me"`
	IncomeByDay      []DailyIncome `json:"income_by_day"`
}

type WarehouseDashboardResponse struct {
	PendingReorders   int64 `json:"pending_reorders"`
	ApprovedReorders  int64 `json:"approved_reorders"`
	CompletedReorders int64 `json:"completed_reorders"`
	AwaitingRequests  int64 `json:"awaiting_request_orders"`
	UnresolvedAlerts  int64 `json:"unresolved_alerts"`
	RecentDecisions   int64 `json:"recent_decisions"`
}

type DashboardService interface {
	AdminDashboard(ctx context.Context, startDate, endDate time.Time) (*AdminDashboardResponse, error)
	StaffDashboard(ctx context.Context, staffID uuid.UUID, startDate, endDate time.Time) (*StaffDashboardResponse, error)
	WarehouseDashboard(ctx context.Context, staffID uuid.UUID) (*WarehouseDashboardResponse, error)
}

type dashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) DashboardService {
	return &dashboardService{db: db}
}

// AdminDashboard aggregates storewide metrics bounded by the time range.
// Income counts only paid orders.
func (s *dashboardService) AdminDashboard(ctx context.Context, startDate, endDate time.Time) (*AdminDashboardResponse, error) {
	res := &AdminDashboardResponse{
		TimeRangeStartDate: startDate,
		TimeRangeEndDate:   endDate,
	}

	var income struct {
		Value float64
	}
	s.db.WithContext(ctx).Table("orders").
		Select("COALESCE(SUM(total_amount), 0) as value").
		Where("payment_status = ? AND created_at >= ? AND created_at <= ?", model.PaymentStatusPaid, startDate, endDate).
		Scan(&income)
	res.TotalIncome = income.Value

	s.db.WithContext(ctx).Table("orders").
		Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Count(&res.TotalOrders)

	s.db.WithContext(ctx).Table("orders").
		Select("order_status as status, count(*) as count").
		Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Group("order_status").
		Scan(&res.OrdersByStatus)

	s.db.WithContext(ctx).Table("order_items").
		Select("products.id as product_id, products.name as product_name, products.sku as product_sku, SUM(order_items.quantity) as total_quantity, SUM(order_items.quantity * order_items.unit_price) as total_value").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.order_status NOT IN ? AND orders.created_at >= ? AND orders.created_at <= ?",
			[]string{model.OrderStatusCancelled, model.OrderStatusRejected}, startDate, endDate).
		Group("products.id, products.name, products.sku").
		Order("total_quantity DESC").
		Limit(5).
		Scan(&res.TopSellingProducts)

	s.db.WithContext(ctx).Table("orders").
		Select("users.id as staff_id, users.name as staff_name, "+
			"COUNT(*) FILTER (WHERE orders.approval_status = 'approved') as approved_count, "+
			"COUNT(*) FILTER (WHERE orders.approval_status = 'rejected') as rejected_count").
		Joins("JOIN users ON users.id = orders.staff_id").
		Where("orders.staff_id IS NOT NULL AND orders.created_at >= ? AND orders.created_at <= ?", startDate, endDate).
		Group("users.id, users.name").
		Order("approved_count DESC").
		Scan(&res.StaffPerformance)

	s.db.WithContext(ctx).Table("users").
		Where("role = ? AND deleted_at IS NULL", model.RoleCustomer).
		Count(&res.TotalCustomers)

	s.db.WithContext(ctx).Table("users").
		Where("role IN ? AND deleted_at IS NULL", []string{model.RoleStaff, model.RoleWarehouse}).
		Count(&res.TotalStaff)

	s.db.WithContext(ctx).Table("users").
		Where("role = ? AND created_at >= ? AND created_at <= ? AND deleted_at IS NULL", model.RoleCustomer, startDate, endDate).
		Count(&res.NewCustomers)

	return res, nil
}

func (s *dashboardService) StaffDashboard(ctx context.Context, staffID uuid.UUID, startDate, endDate time.Time) (*StaffDashboardResponse, error) {
	res := &StaffDashboardResponse{}

	s.db.WithContext(ctx).Table("orders").
		Where("approval_status = ?", model.ApprovalPending).
		Count(&res.PendingApprovals)

	s.db.WithContext(ctx).Table("orders").
		Where("staff_id = ? AND approval_status = ?", staffID, model.ApprovalApproved).
		Count(&res.ApprovedByMe)

	s.db.WithContext(ctx).Table("orders").
		Where("staff_id = ? AND approval_status = ?", staffID, model.ApprovalRejected).
		Count(&res.RejectedByMe)

	s.db.WithContext(ctx).Table("orders").
		Select("to_char(created_at, 'YYYY-MM-DD') as day, COALESCE(SUM(total_amount), 0) as income, COUNT(*) as orders").
		Where("payment_status = ? AND created_at >= ? AND created_at <= ?", model.PaymentStatusPaid, startDate, endDate).
		Group("day").
		Order("day").
		Scan(&res.IncomeByDay)

	return res, nil
}

func (s *dashboardService) WarehouseDashboard(ctx context.Context, staffID uuid.UUID) (*WarehouseDashboardResponse, error) {
	res := &WarehouseDashboardResponse{}

	s.db.WithContext(ctx).Table("reorder_requests").
		Where("status = ?", model.ReorderStatusPending).
		Count(&res.PendingReorders)

	s.db.WithContext(ctx).Table("reorder_requests").
		Where("status = ?", model.ReorderStatusApproved).
		Count(&res.ApprovedReorders)

	s.db.WithContext(ctx).Table("reorder_requests").
		Where("status = ?", model.ReorderStatusCompleted).
		Count(&res.CompletedReorders)

	s.db.WithContext(ctx).Table("request_orders").
		Where("admin_approval_status = ? AND warehouse_approval_status = ?", model.RequestApproved, model.RequestPending).
		Count(&res.AwaitingRequests)

	s.db.WithContext(ctx).Table("inventory_alerts").
		Where("is_resolved = ?", false).
		Count(&res.UnresolvedAlerts)

	weekAgo := time.Now().AddDate(0, 0, -7)
	s.db.WithContext(ctx).Table("reorder_requests").
		Where("warehouse_staff_id = ? AND updated_at >= ?", staffID, weekAgo).
		Count(&res.RecentDecisions)

	return res, nil
}
