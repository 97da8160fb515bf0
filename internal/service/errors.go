package service

import "errors"

// Terminal failures surfaced by the lifecycle services. Handlers map these to
// HTTP statuses at the boundary; anything not listed here is a 500.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotFound           = errors.New("account not found")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrNotVerified        = errors.New("account not verified")
	ErrInvalidOTP         = errors.New("invalid or expired otp")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDeliveryFailed     = errors.New("verification mail delivery failed")
	ErrResendThrottled    = errors.New("otp recently sent")
	ErrForbidden          = errors.New("forbidden")
)
