package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings. Zero values mean "no filter".
type OrderFilter struct {
	UserID         *uuid.UUID
	StaffID        *uuid.UUID
	OrderNumber    string // substring match
	ApprovalStatus string
	OrderStatus    string
	PaymentMethod  string
	Search         string // order number or customer name/email
	StartDate      *time.Time
	EndDate        *time.Time
	Page           int
	Limit          int
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	CreateItem(ctx context.Context, item *model.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	ListPendingApproval(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) CreateItem(ctx context.Context, item *model.OrderItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.Product").
		Preload("User").
		Preload("Staff").
		Preload("Transactions").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Save(order).Error
}

func (r *orderRepository) applyFilter(db *gorm.DB, filter OrderFilter) *gorm.DB {
	if filter.UserID != nil {
		db = db.Where("orders.user_id = ?", *filter.UserID)
	}
	if filter.StaffID != nil {
		db = db.Where("orders.staff_id = ?", *filter.StaffID)
	}
	if filter.OrderNumber != "" {
		db = db.Where("orders.order_number ILIKE ?", "%"+filter.OrderNumber+"%")
	}
	if filter.ApprovalStatus != "" {
		db = db.Where("orders.approval_status = ?", filter.ApprovalStatus)
	}
	if filter.OrderStatus != "" {
		db = db.Where("orders.order_status = ?", filter.OrderStatus)
	}
	if filter.PaymentMethod != "" {
		db = db.Where("orders.payment_method = ?", filter.PaymentMethod)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		db = db.Joins("LEFT JOIN users ON users.id = orders.user_id").
			Where("orders.order_number ILIKE ? OR users.name ILIKE ? OR users.email ILIKE ?", pattern, pattern, pattern)
	}
	if filter.StartDate != nil {
		db = db.Where("orders.created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("orders.created_at <= ?", *filter.EndDate)
	}
	return db
}

func (r *orderRepository) list(ctx context.Context, filter OrderFilter, order string) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.applyFilter(GetDB(ctx, r.db).Model(&model.Order{}), filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 15
	}
	offset := (filter.Page - 1) * filter.Limit

	if err := db.
		Preload("Items").
		Preload("Items.Product").
		Preload("User").
		Preload("Staff").
		Order(order).
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	return r.list(ctx, filter, "orders.created_at DESC")
}

// ListPendingApproval returns the staff review queue, oldest first.
func (r *orderRepository) ListPendingApproval(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	filter.ApprovalStatus = model.ApprovalPending
	return r.list(ctx, filter, "orders.created_at ASC")
}
