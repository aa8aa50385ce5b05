package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestOrderRepository interface {
	Create(ctx context.Context, req *model.RequestOrder) error
	Update(ctx context.Context, req *model.RequestOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RequestOrder, error)
	List(ctx context.Context, status string, page, limit int) ([]model.RequestOrder, int64, error)
	ListAwaitingWarehouse(ctx context.Context, page, limit int) ([]model.RequestOrder, int64, error)
}

type requestOrderRepository struct {
	db *gorm.DB
}

func NewRequestOrderRepository(db *gorm.DB) RequestOrderRepository {
	return &requestOrderRepository{db: db}
}

func (r *requestOrderRepository) Create(ctx context.Context, req *model.RequestOrder) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestOrderRepository) Update(ctx context.Context, req *model.RequestOrder) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *requestOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RequestOrder, error) {
	var req model.RequestOrder
	if err := GetDB(ctx, r.db).
		Preload("Product").
		Preload("Requester").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestOrderRepository) list(ctx context.Context, db *gorm.DB, page, limit int) ([]model.RequestOrder, int64, error) {
	var reqs []model.RequestOrder
	var total int64

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 15
	}
	offset := (page - 1) * limit

	if err := db.
		Preload("Product").
		Preload("Requester").
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

func (r *requestOrderRepository) List(ctx context.Context, status string, page, limit int) ([]model.RequestOrder, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.RequestOrder{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	return r.list(ctx, db, page, limit)
}

// ListAwaitingWarehouse returns requests the admin has cleared but the
// warehouse has not decided yet.
func (r *requestOrderRepository) ListAwaitingWarehouse(ctx context.Context, page, limit int) ([]model.RequestOrder, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.RequestOrder{}).
		Where("admin_approval_status = ? AND warehouse_approval_status = ?",
			model.RequestApproved, model.RequestPending)
	return r.list(ctx, db, page, limit)
}
