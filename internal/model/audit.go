package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateProduct   = "CREATE_PRODUCT"
	ActionUpdateProduct   = "UPDATE_PRODUCT"
	ActionDeleteProduct   = "DELETE_PRODUCT"
	ActionAdjustStock     = "ADJUST_STOCK"
	ActionUpdateInventory = "UPDATE_INVENTORY_SETTINGS"

	ActionPlaceOrder          = "PLACE_ORDER"
	ActionCancelOrder         = "CANCEL_ORDER"
	ActionApproveOrder        = "APPROVE_ORDER"
	ActionRejectOrder         = "REJECT_ORDER"
	ActionUpdatePaymentStatus = "UPDATE_PAYMENT_STATUS"

	ActionCreateRequestOrder     = "CREATE_REQUEST_ORDER"
	ActionAdminApproveRequest    = "ADMIN_APPROVE_REQUEST_ORDER"
	ActionWarehouseDecideRequest = "WAREHOUSE_DECIDE_REQUEST_ORDER"

	ActionCreateReorder   = "CREATE_REORDER_REQUEST"
	ActionApproveReorder  = "APPROVE_REORDER_REQUEST"
	ActionCompleteReorder = "COMPLETE_REORDER_REQUEST"
	ActionCancelReorder   = "CANCEL_REORDER_REQUEST"

	ActionSuspendUser    = "SUSPEND_USER"
	ActionReactivateUser = "REACTIVATE_USER"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
