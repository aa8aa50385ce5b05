package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification type constants
const (
	NotifLowStock           = "low_stock"
	NotifOrderApproved      = "order_approved"
	NotifOrderRejected      = "order_rejected"
	NotifOrderStatusChanged = "order_status_changed"
	NotifNewRequestOrder    = "new_request_order"
	NotifRequestOrderAdmin  = "request_order_admin_approved"
	NotifWarehouseDecision  = "request_order_warehouse_decision"
	NotifReorderApproved    = "reorder_approved"
	NotifReorderRejected    = "reorder_rejected"
	NotifReorderCompleted   = "reorder_completed"
)

// Notification is a database-backed message for a single recipient.
// Writers treat the sink as fire-and-forget: transition methods create
// rows after committing state and never depend on the write succeeding.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string     `gorm:"type:varchar(50);not null;index" json:"type"`
	Payload   string     `gorm:"type:jsonb" json:"payload"` // serialized event data
	ReadAt    *time.Time `gorm:"index" json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

// IsRead reports whether the recipient has seen the notification.
func (n *Notification) IsRead() bool { return n.ReadAt != nil }
