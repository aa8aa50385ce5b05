package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReorderRequest status constants (lowercase in the reorder workflow)
const (
	ReorderStatusPending   = "pending"
	ReorderStatusApproved  = "approved"
	ReorderStatusCompleted = "completed"
	ReorderStatusCancelled = "cancelled"
)

// ReorderRequest is a procurement request raised by an admin to
// replenish a product: pending -> approved (warehouse) -> completed,
// or pending -> cancelled.
type ReorderRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	AdminID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"admin_id"`
	Admin            *User      `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	WarehouseStaffID *uuid.UUID `gorm:"type:uuid" json:"warehouse_staff_id"`
	WarehouseStaff   *User      `gorm:"foreignKey:WarehouseStaffID" json:"warehouse_staff,omitempty"`

	QuantityRequested int             `gorm:"type:int;not null" json:"quantity_requested"`
	QuantityApproved  *int            `gorm:"type:int" json:"quantity_approved"` // set at warehouse approval, may differ from requested
	EstimatedCost     decimal.Decimal `gorm:"type:decimal(10,2)" json:"estimated_cost"`

	Status         string `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Notes          string `gorm:"type:text" json:"notes,omitempty"`
	WarehouseNotes string `gorm:"type:text" json:"warehouse_notes,omitempty"`

	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	WarehouseApprovedAt *time.Time `json:"warehouse_approved_at,omitempty"`
	WarehouseRejectedAt *time.Time `json:"warehouse_rejected_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPending reports whether the request awaits warehouse review.
func (r *ReorderRequest) IsPending() bool { return r.Status == ReorderStatusPending }

// IsApproved reports whether warehouse approved the request.
func (r *ReorderRequest) IsApproved() bool { return r.Status == ReorderStatusApproved }

// IsCompleted reports whether the stock has been credited.
func (r *ReorderRequest) IsCompleted() bool { return r.Status == ReorderStatusCompleted }

// QuantityToAdd is the stock credit applied at completion: the approved
// quantity when the warehouse set one, otherwise the requested quantity.
func (r *ReorderRequest) QuantityToAdd() int {
	if r.QuantityApproved != nil {
		return *r.QuantityApproved
	}
	return r.QuantityRequested
}

// AdminApprove moves a pending request to approved without fixing a
// quantity; completion then falls back to the requested quantity.
func (r *ReorderRequest) AdminApprove() {
	now := time.Now()
	r.ApprovedAt = &now
	r.Status = ReorderStatusApproved
}

// WarehouseApprove records the warehouse decision and moves the request
// to approved. It does not touch stock; completion does.
func (r *ReorderRequest) WarehouseApprove(staffID uuid.UUID, quantityApproved int, notes string) {
	now := time.Now()
	r.WarehouseStaffID = &staffID
	r.QuantityApproved = &quantityApproved
	r.WarehouseNotes = notes
	r.WarehouseApprovedAt = &now
	r.Status = ReorderStatusApproved
}

// WarehouseReject records the warehouse rejection; the request ends up
// cancelled.
func (r *ReorderRequest) WarehouseReject(staffID uuid.UUID, notes string) {
	now := time.Now()
	r.WarehouseStaffID = &staffID
	r.WarehouseNotes = notes
	r.WarehouseRejectedAt = &now
	r.Status = ReorderStatusCancelled
}

// MarkCompleted stamps the terminal state. It does not verify the
// request was approved; callers check IsApproved first.
func (r *ReorderRequest) MarkCompleted() {
	now := time.Now()
	r.Status = ReorderStatusCompleted
	r.CompletedAt = &now
}
