package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status constants. order_status and approval_status are
// independently settable fields with no enforced correspondence;
// callers must not assume they stay in lock-step.
const (
	OrderStatusPending         = "Pending"
	OrderStatusApproved        = "Approved"
	OrderStatusRejected        = "Rejected"
	OrderStatusProcessing      = "Processing"
	OrderStatusShipped         = "Shipped"
	OrderStatusDelivered       = "Delivered"
	OrderStatusCancelled       = "Cancelled"
	OrderStatusReturnRequested = "Return Requested"
)

// Payment status constants
const (
	PaymentStatusPending  = "Pending"
	PaymentStatusPaid     = "Paid"
	PaymentStatusFailed   = "Failed"
	PaymentStatusRefunded = "Refunded"
)

// Staff approval status constants (lowercase, distinct from order_status)
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Order is a customer purchase created from a cart
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_number"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	PaymentMethod string `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentStatus string `gorm:"type:varchar(20);default:'Pending'" json:"payment_status"`
	OrderStatus   string `gorm:"type:varchar(30);default:'Pending';index" json:"order_status"`
	Notes         string `gorm:"type:text" json:"notes"`
	ReturnReason  string `gorm:"type:text" json:"return_reason,omitempty"`

	// Staff approval track
	ApprovalStatus string     `gorm:"type:varchar(20);default:'pending';index" json:"approval_status"`
	StaffID        *uuid.UUID `gorm:"type:uuid;index" json:"staff_id"`
	Staff          *User      `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	StaffNotes     string     `gorm:"type:text" json:"staff_notes,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`

	Items        []OrderItem   `gorm:"foreignKey:OrderID" json:"items"`
	Transactions []Transaction `gorm:"foreignKey:OrderID" json:"transactions,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPending reports whether the order still awaits staff review.
func (o *Order) IsPending() bool { return o.ApprovalStatus == ApprovalPending }

// IsApproved reports whether staff approved the order.
func (o *Order) IsApproved() bool { return o.ApprovalStatus == ApprovalApproved }

// CanCancel reports whether the order may still be cancelled.
func (o *Order) CanCancel() bool {
	switch o.OrderStatus {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return false
	}
	return true
}

// Approve records a staff approval and moves the order to processing.
func (o *Order) Approve(staffID uuid.UUID, notes string) {
	now := time.Now()
	o.ApprovalStatus = ApprovalApproved
	o.StaffID = &staffID
	o.StaffNotes = notes
	o.ApprovedAt = &now
	o.OrderStatus = OrderStatusProcessing
}

// Reject records a staff rejection and cancels the order.
func (o *Order) Reject(staffID uuid.UUID, notes string) {
	now := time.Now()
	o.ApprovalStatus = ApprovalRejected
	o.StaffID = &staffID
	o.StaffNotes = notes
	o.RejectedAt = &now
	o.OrderStatus = OrderStatusCancelled
}

// OrderItem is one product line within an order, snapshotting the unit
// price at placement time
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int       `gorm:"type:int;not null" json:"quantity"`
	UnitPrice float64   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}
