// Package errors provides custom error types for the budgeting API and engine.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	stderrors "errors"
	"net/http"
)

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

// Is reports whether err is an AppError carrying the sentinel's code.
func Is(err error, sentinel *AppError) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == sentinel.Code
	}
	return false
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse     = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions", StatusCode: http.StatusConflict}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound     = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrTransactionTypeMismatch = &AppError{Code: "TRANSACTION_TYPE_MISMATCH", Message: "Transaction type must match the category type", StatusCode: http.StatusBadRequest}
)

// Income errors.
var (
	ErrIncomeNotFound = &AppError{Code: "INCOME_NOT_FOUND", Message: "Income not found", StatusCode: http.StatusNotFound}
)

// Methodology errors.
var (
	ErrInvalidConfiguration = &AppError{Code: "INVALID_CONFIGURATION", Message: "Methodology configuration is invalid", StatusCode: http.StatusBadRequest}
	ErrNoActiveMethodology  = &AppError{Code: "NO_ACTIVE_METHODOLOGY", Message: "No budget methodology is active", StatusCode: http.StatusConflict}
	ErrMethodologyNotFound  = &AppError{Code: "METHODOLOGY_NOT_FOUND", Message: "Budget methodology not found", StatusCode: http.StatusNotFound}
	ErrMethodologyActive    = &AppError{Code: "METHODOLOGY_ACTIVE", Message: "The active methodology cannot be deleted", StatusCode: http.StatusBadRequest}
	ErrDuplicateMethodology = &AppError{Code: "DUPLICATE_METHODOLOGY", Message: "A methodology with this name already exists", StatusCode: http.StatusConflict}
)

// Alert errors.
var (
	ErrAlertNotFound          = &AppError{Code: "ALERT_NOT_FOUND", Message: "Alert not found", StatusCode: http.StatusNotFound}
	ErrInvalidAlertTransition = &AppError{Code: "INVALID_ALERT_TRANSITION", Message: "Alert cannot change to the requested status", StatusCode: http.StatusConflict}
)
