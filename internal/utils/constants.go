package utils

// Application Constants
const (
	AppName    = "Colivery"
	AppVersion = "1.0.0"

	// BaseCurrency is the platform's single operating currency. Balances
	// and amounts are integer minor units (XOF has no decimal subunit).
	BaseCurrency = "XOF"
)

// Response statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Pagination
const (
	DefaultPageSize = 20
	MinPageSize     = 1
	MaxPageSize     = 100
)

// Error messages
const (
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "An internal error occurred"
	ErrUnauthorized     = "Authentication required"
	ErrForbidden        = "Insufficient permissions"
)

// Error codes returned in the API error envelope
const (
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeAccountSuspended    = "ACCOUNT_SUSPENDED"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyProcessed    = "ALREADY_PROCESSED"
)
