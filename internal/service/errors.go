package service

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP
// status codes; everything else surfaces as a 500.
var (
	ErrNotFound              = errors.New("resource not found")
	ErrForbidden             = errors.New("access denied")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrNotPending            = errors.New("request is no longer pending")
	ErrAdminApprovalRequired = errors.New("admin approval required first")
	ErrAlreadyPaid           = errors.New("order is already paid")
	ErrCannotCancel          = errors.New("order can no longer be cancelled")
	ErrAccountSuspended      = errors.New("account is suspended")
	ErrDuplicateReview       = errors.New("product already reviewed")
	ErrInvalidCredentials    = errors.New("invalid email or password")
)
