package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *model.InventoryAlert) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryAlert, error)
	HasUnresolved(ctx context.Context, productID uuid.UUID) (bool, error)
	ListUnresolved(ctx context.Context, productID *uuid.UUID) ([]model.InventoryAlert, error)
	List(ctx context.Context, resolved *bool, page, limit int) ([]model.InventoryAlert, int64, error)
	Update(ctx context.Context, alert *model.InventoryAlert) error
	ResolveAllForProduct(ctx context.Context, productID uuid.UUID) error
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.InventoryAlert) error {
	return GetDB(ctx, r.db).Create(alert).Error
}

func (r *alertRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryAlert, error) {
	var alert model.InventoryAlert
	if err := GetDB(ctx, r.db).Preload("Product").First(&alert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) HasUnresolved(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.InventoryAlert{}).
		Where("product_id = ? AND is_resolved = ?", productID, false).
		Count(&count).Error
	return count > 0, err
}

func (r *alertRepository) ListUnresolved(ctx context.Context, productID *uuid.UUID) ([]model.InventoryAlert, error) {
	var alerts []model.InventoryAlert
	db := GetDB(ctx, r.db).Where("is_resolved = ?", false)
	if productID != nil {
		db = db.Where("product_id = ?", *productID)
	}
	if err := db.Preload("Product").Order("created_at desc").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) List(ctx context.Context, resolved *bool, page, limit int) ([]model.InventoryAlert, int64, error) {
	var alerts []model.InventoryAlert
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryAlert{})
	if resolved != nil {
		db = db.Where("is_resolved = ?", *resolved)
	}
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

	if err := db.Preload("Product").Order("created_at desc").
		Offset(offset).Limit(limit).Find(&alerts).Error; err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

func (r *alertRepository) Update(ctx context.Context, alert *model.InventoryAlert) error {
	return GetDB(ctx, r.db).Save(alert).Error
}

func (r *alertRepository) ResolveAllForProduct(ctx context.Context, productID uuid.UUID) error {
	now := time.Now()
	return GetDB(ctx, r.db).Model(&model.InventoryAlert{}).
		Where("product_id = ? AND is_resolved = ?", productID, false).
		Updates(map[string]interface{}{"is_resolved": true, "resolved_at": now}).Error
}
