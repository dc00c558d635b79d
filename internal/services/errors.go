package services

import "errors"

// Common service errors
var (
	ErrNotFound                = errors.New("record not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("operation not allowed for this role")
	ErrInvalidState            = errors.New("invalid state transition")
	ErrDuplicate               = errors.New("duplicate record")
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrAccountInactive         = errors.New("account inactive or suspended")
	ErrInvalidAmount           = errors.New("amount must be a positive decimal")
	ErrInvalidCurrency         = errors.New("unsupported currency")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
)
