// Package errors provides application-level error types and utilities.
// Every caller-visible failure carries a machine-readable reason string
// (for example "no_plan" or "monthly_limit_exceeded") alongside the
// HTTP status it maps to.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation_error"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeInternal     ErrorType = "internal_error"
	ErrorTypeBadRequest   ErrorType = "bad_request"
)

// AppError represents an application error with additional context.
// Reason is a stable machine-readable string clients can switch on;
// Message is the human-readable explanation.
type AppError struct {
	Type    ErrorType `json:"type"`
	Reason  string    `json:"reason"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return e.Reason
}

// NewValidationError creates a new validation error
func NewValidationError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Reason:  reason,
		Message: message,
		Code:    http.StatusBadRequest,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Reason:  reason,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Reason:  reason,
		Message: message,
		Code:    http.StatusConflict,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Reason:  reason,
		Message: message,
		Code:    http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Reason:  reason,
		Message: message,
		Code:    http.StatusForbidden,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Reason:  reason,
		Message: message,
		Code:    http.StatusInternalServerError,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Reason:  reason,
		Message: message,
		Code:    http.StatusBadRequest,
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasReason checks whether the error is an AppError with the given reason
func HasReason(err error, reason string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Reason == reason
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeConflict
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeValidation
}

// IsForbiddenError checks if the error is a forbidden error
func IsForbiddenError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeForbidden
}

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// MySQL duplicate entry error
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	// PostgreSQL / SQLite unique violation
	if strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "UNIQUE constraint") {
		return true
	}
	return false
}
