package services

import "errors"

// Domain errors. These are expected outcomes, returned synchronously and
// mapped to user-facing rejections; only persistence failures are logged as
// errors.
var (
	ErrInvalidAmount       = errors.New("amount must be a positive integer")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAccountSuspended    = errors.New("account is suspended")
	ErrNotFound            = errors.New("record not found")
	ErrAlreadyProcessed    = errors.New("withdrawal already processed")
	ErrInvalidRate         = errors.New("commission rate must be a decimal in [0,1]")
)
