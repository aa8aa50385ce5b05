package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReorderStats aggregates reorder workflow counters for dashboards.
type ReorderStats struct {
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

type ReorderRepository interface {
	Create(ctx context.Context, req *model.ReorderRequest) error
	Update(ctx context.Context, req *model.ReorderRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ReorderRequest, error)
	List(ctx context.Context, status string, page, limit int) ([]model.ReorderRequest, int64, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ReorderRequest, error)
	HasOpenForProduct(ctx context.Context, productID uuid.UUID) (bool, error)
	Stats(ctx context.Context) (*ReorderStats, error)
	ListDecidedBy(ctx context.Context, staffID uuid.UUID, since *time.Time, page, limit int) ([]model.ReorderRequest, int64, error)
}

type reorderRepository struct {
	db *gorm.DB
}

func NewReorderRepository(db *gorm.DB) ReorderRepository {
	return &reorderRepository{db: db}
}

func (r *reorderRepository) Create(ctx context.Context, req *model.ReorderRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *reorderRepository) Update(ctx context.Context, req *model.ReorderRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *reorderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ReorderRequest, error) {
	var req model.ReorderRequest
	if err := GetDB(ctx, r.db).
		Preload("Product").
		Preload("Admin").
		Preload("WarehouseStaff").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *reorderRepository) list(db *gorm.DB, page, limit int) ([]model.ReorderRequest, int64, error) {
	var reqs []model.ReorderRequest
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
		Preload("Admin").
		Preload("WarehouseStaff").
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

func (r *reorderRepository) List(ctx context.Context, status string, page, limit int) ([]model.ReorderRequest, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.ReorderRequest{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	return r.list(db, page, limit)
}

func (r *reorderRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ReorderRequest, error) {
	var reqs []model.ReorderRequest
	if err := GetDB(ctx, r.db).
		Where("product_id = ?", productID).
		Order("created_at desc").
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// HasOpenForProduct reports whether a pending or approved reorder already
// exists, used to avoid stacking duplicate restocks.
func (r *reorderRepository) HasOpenForProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ReorderRequest{}).
		Where("product_id = ? AND status IN ?", productID,
			[]string{model.ReorderStatusPending, model.ReorderStatusApproved}).
		Count(&count).Error
	return count > 0, err
}

func (r *reorderRepository) Stats(ctx context.Context) (*ReorderStats, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := GetDB(ctx, r.db).Model(&model.ReorderRequest{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &ReorderStats{}
	for _, r := range rows {
		switch r.Status {
		case model.ReorderStatusPending:
			stats.Pending = r.Count
		case model.ReorderStatusApproved:
			stats.Approved = r.Count
		case model.ReorderStatusCompleted:
			stats.Completed = r.Count
		case model.ReorderStatusCancelled:
			stats.Cancelled = r.Count
		}
	}
	return stats, nil
}

func (r *reorderRepository) ListDecidedBy(ctx context.Context, staffID uuid.UUID, since *time.Time, page, limit int) ([]model.ReorderRequest, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.ReorderRequest{}).
		Where("warehouse_staff_id = ?", staffID)
	if since != nil {
		db = db.Where("updated_at >= ?", *since)
	}
	return r.list(db, page, limit)
}
