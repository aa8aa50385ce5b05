package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestOrder approval status constants, shared by the overall status
// and both per-stage fields
const (
	RequestPending  = "Pending"
	RequestApproved = "Approved"
	RequestRejected = "Rejected"
)

// RequestOrder is an internal restock request raised by an admin. It
// needs two sequential approvals: admin first, then warehouse. The
// terminal warehouse approval credits the product's stock once.
type RequestOrder struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int       `gorm:"type:int;not null" json:"quantity"`

	RequestedBy uuid.UUID `gorm:"type:uuid;not null;index" json:"requested_by"`
	Requester   *User     `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`

	Status                  string `gorm:"type:varchar(20);default:'Pending';index" json:"status"`
	AdminApprovalStatus     string `gorm:"type:varchar(20);default:'Pending'" json:"admin_approval_status"`
	WarehouseApprovalStatus string `gorm:"type:varchar(20);default:'Pending'" json:"warehouse_approval_status"`

	AdminNotes     string `gorm:"type:text" json:"admin_notes,omitempty"`
	WarehouseNotes string `gorm:"type:text" json:"warehouse_notes,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminApproved reports whether the first approval stage has passed,
// unlocking warehouse review.
func (r *RequestOrder) AdminApproved() bool {
	return r.AdminApprovalStatus == RequestApproved
}
