// Package errors provides custom error types for the Bondfall API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Bond errors.
var (
	ErrBondNotFound    = &AppError{Code: "BOND_NOT_FOUND", Message: "Bond not found", StatusCode: http.StatusNotFound}
	ErrTrancheNotFound = &AppError{Code: "TRANCHE_NOT_FOUND", Message: "Tranche not found", StatusCode: http.StatusNotFound}
	ErrDuplicateBond   = &AppError{Code: "DUPLICATE_BOND", Message: "A bond with this ID already exists", StatusCode: http.StatusConflict}
)

// Lifecycle errors.
var (
	ErrBondNotActive  = &AppError{Code: "BOND_NOT_ACTIVE", Message: "Bond is not active", StatusCode: http.StatusConflict}
	ErrBondMatured    = &AppError{Code: "BOND_MATURED", Message: "Bond has reached maturity", StatusCode: http.StatusConflict}
	ErrBondNotMatured = &AppError{Code: "BOND_NOT_MATURED", Message: "Bond has not reached maturity", StatusCode: http.StatusConflict}
)

// Investment errors.
var (
	ErrAllocationExceeded = &AppError{Code: "ALLOCATION_EXCEEDED", Message: "Investment would exceed the tranche allocation cap", StatusCode: http.StatusConflict}
	ErrNoInvestment       = &AppError{Code: "NO_INVESTMENT", Message: "No investment balance to redeem", StatusCode: http.StatusBadRequest}
)

// Payment errors.
var (
	ErrTransferFailed = &AppError{Code: "TRANSFER_FAILED", Message: "Payout transfer could not be completed", StatusCode: http.StatusBadGateway}
)
