package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog item with its stock configuration
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU         string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int       `gorm:"type:int;default:0;not null" json:"quantity"`

	// Reorder configuration
	LowStockThreshold int              `gorm:"type:int;default:10;not null" json:"low_stock_threshold"`
	ReorderQuantity   int              `gorm:"type:int;default:0" json:"reorder_quantity"`
	AutoReorder       bool             `gorm:"default:false" json:"auto_reorder"`
	ReorderCost       *decimal.Decimal `gorm:"type:decimal(10,2)" json:"reorder_cost,omitempty"`

	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	BrandID    *uuid.UUID `gorm:"type:uuid;index" json:"brand_id"`
	Brand      *Brand     `gorm:"foreignKey:BrandID" json:"brand,omitempty"`

	Image    string `gorm:"type:varchar(500)" json:"image,omitempty"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Reviews []Review `gorm:"foreignKey:ProductID" json:"reviews,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsLowStock reports whether quantity has fallen to or below the threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// IsOutOfStock reports whether the product has no sellable stock.
func (p *Product) IsOutOfStock() bool {
	return p.Quantity <= 0
}

// NeedsReordering reports whether the product is low on stock and
// configured for automatic replenishment.
func (p *Product) NeedsReordering() bool {
	return p.IsLowStock() && p.AutoReorder
}

// Alert type constants
const (
	AlertTypeLowStock      = "low_stock"
	AlertTypeOutOfStock    = "out_of_stock"
	AlertTypeReorderNeeded = "reorder_needed"
)

// InventoryAlert is an advisory record created when a product crosses a
// stock threshold. At most one unresolved alert per product is allowed,
// regardless of type; the existence check lives in the inventory service.
type InventoryAlert struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	AlertType  string     `gorm:"type:varchar(30);not null" json:"alert_type"` // low_stock, out_of_stock, reorder_needed
	Message    string     `gorm:"type:text" json:"message"`
	IsResolved bool       `gorm:"default:false;index" json:"is_resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Resolve marks the alert as handled.
func (a *InventoryAlert) Resolve() {
	now := time.Now()
	a.IsResolved = true
	a.ResolvedAt = &now
}

// NewLowStockAlert builds an unresolved low-stock alert for the product.
func NewLowStockAlert(p *Product) *InventoryAlert {
	return &InventoryAlert{
		ProductID: p.ID,
		AlertType: AlertTypeLowStock,
		Message:   fmt.Sprintf("Product '%s' is running low on stock. Current quantity: %d", p.Name, p.Quantity),
	}
}

// NewOutOfStockAlert builds an unresolved out-of-stock alert for the product.
func NewOutOfStockAlert(p *Product) *InventoryAlert {
	return &InventoryAlert{
		ProductID: p.ID,
		AlertType: AlertTypeOutOfStock,
		Message:   fmt.Sprintf("Product '%s' is out of stock!", p.Name),
	}
}

// NewReorderNeededAlert builds an unresolved reorder-needed alert for the product.
func NewReorderNeededAlert(p *Product) *InventoryAlert {
	return &InventoryAlert{
		ProductID: p.ID,
		AlertType: AlertTypeReorderNeeded,
		Message:   fmt.Sprintf("Product '%s' needs to be reordered. Current quantity: %d", p.Name, p.Quantity),
	}
}
