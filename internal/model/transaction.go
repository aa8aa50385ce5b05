package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction type constants
const (
	TxTypePayment = "Payment"
	TxTypeRefund  = "Refund"
)

// Transaction status constants
const (
	TxStatusPending   = "Pending"
	TxStatusCompleted = "Completed"
	TxStatusFailed    = "Failed"
)

// Transaction records a payment attempt against an order. The ticket
// number is a short human-readable identifier, globally unique.
type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Order         *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Type          string          `gorm:"column:transaction_type;type:varchar(20);not null" json:"transaction_type"` // Payment, Refund
	TransactionID string          `gorm:"type:varchar(50);index" json:"transaction_id,omitempty"`                    // external gateway id
	TicketNumber  string          `gorm:"type:varchar(10);uniqueIndex;not null" json:"ticket_number"`
	Status        string          `gorm:"type:varchar(20);default:'Pending';index" json:"status"`
	GatewayRef    string          `gorm:"type:varchar(50)" json:"gateway_reference,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
