package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role constants. There is no role table; every handler gate compares
// against this closed set.
const (
	RoleCustomer  = "customer"
	RoleStaff     = "staff"
	RoleAdmin     = "admin"
	RoleWarehouse = "warehouse"
)

// User represents the central user entity for logic and database structure
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Email    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone    string    `gorm:"type:varchar(20)" json:"phone"`
	Password string    `gorm:"type:varchar(255);not null" json:"-"`   // Omit password from JSON requests/responses
	Role     string    `gorm:"type:varchar(50);not null" json:"role"` // customer, staff, admin, warehouse

	// Staff profile fields
	Department string     `gorm:"type:varchar(100)" json:"department,omitempty"`
	EmployeeID string     `gorm:"type:varchar(50);index" json:"employee_id,omitempty"`
	HireDate   *time.Time `json:"hire_date,omitempty"`

	// Account status
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	SuspendedAt      *time.Time `json:"suspended_at,omitempty"`
	SuspensionReason string     `gorm:"type:text" json:"suspension_reason,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// IsCustomer reports whether the user holds the customer role.
func (u *User) IsCustomer() bool { return u.Role == RoleCustomer }

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsSuspended reports whether the account is currently suspended.
func (u *User) IsSuspended() bool { return u.SuspendedAt != nil && !u.IsActive }

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserSuspension records one suspension episode for audit/history purposes.
type UserSuspension struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SuspendedBy   *uuid.UUID `gorm:"type:uuid" json:"suspended_by"`
	Reason        string     `gorm:"type:text" json:"reason"`
	SuspendedAt   time.Time  `json:"suspended_at"`
	ReactivatedAt *time.Time `json:"reactivated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
