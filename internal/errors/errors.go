// Package errors provides structured error types for the OAP planner.
// All errors include a category, code, message, and optional cause for
// consistent handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by planner component.
type ErrorCategory string

const (
	ErrCategoryPlanning ErrorCategory = "PLANNING"
	ErrCategoryConfig   ErrorCategory = "CONFIG"
	ErrCategoryCatalog  ErrorCategory = "CATALOG"
	ErrCategoryIndex    ErrorCategory = "INDEX"
	ErrCategoryStorage  ErrorCategory = "STORAGE"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Planning codes
	CodeUnresolvedColumn = "UNRESOLVED_COLUMN"
	CodeInvalidRequest   = "INVALID_REQUEST"

	// Config codes
	CodeInvalidOption = "INVALID_OPTION"
	CodeInvalidConfig = "INVALID_CONFIG"

	// Catalog codes
	CodeTableNotFound = "TABLE_NOT_FOUND"
	CodeListFailed    = "LIST_FAILED"

	// Index codes
	CodeMetaCorrupt = "META_CORRUPT"
	CodeMetaIO      = "META_IO"

	// Storage codes
	CodeObjectNotFound = "OBJECT_NOT_FOUND"
	CodeDownloadFailed = "DOWNLOAD_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// PlanError is the structured error type used throughout the planner.
type PlanError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
}

// Error returns a formatted error string.
func (e *PlanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *PlanError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *PlanError) Is(target error) bool {
	var t *PlanError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new PlanError.
func New(category ErrorCategory, code, message string) *PlanError {
	return &PlanError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new PlanError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *PlanError {
	return &PlanError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a PlanError.
func GetCategory(err error) ErrorCategory {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a PlanError.
func GetCode(err error) string {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Convenience constructors for common errors.

func NewPlanningError(code, message string) *PlanError {
	return New(ErrCategoryPlanning, code, message)
}

func NewConfigError(code, message string) *PlanError {
	return New(ErrCategoryConfig, code, message)
}

func NewCatalogError(code, message string, cause error) *PlanError {
	return Wrap(ErrCategoryCatalog, code, message, cause)
}

func NewIndexError(code, message string, cause error) *PlanError {
	return Wrap(ErrCategoryIndex, code, message, cause)
}

func NewStorageError(code, message string, cause error) *PlanError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewInternalError(message string, cause error) *PlanError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
