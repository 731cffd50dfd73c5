// Package errors provides the standardized error taxonomy for the query
// façade and its collaborators.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Search index errors
	ErrCodeIndexUnavailable  ErrorCode = "INDEX_UNAVAILABLE"
	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"

	// Primary store errors
	ErrCodeStoreQueryFailed ErrorCode = "STORE_QUERY_FAILED"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"

	// Cache errors: never surfaced to callers, always degrade to live compute
	ErrCodeCacheError ErrorCode = "CACHE_ERROR"

	// Request errors
	ErrCodeInvalidQuery ErrorCode = "INVALID_QUERY"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"

	// Surfaced when index retries are exhausted and no results can be served
	ErrCodeServiceDegraded ErrorCode = "SERVICE_DEGRADED"

	// A recipe with zero countable ingredients reached the engine; the recipe
	// is skipped and the request proceeds
	ErrCodeDataIntegrityWarning ErrorCode = "DATA_INTEGRITY_WARNING"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause so errors.Is can see through the
// taxonomy, e.g. a context.DeadlineExceeded inside a store read error.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// KindOf extracts the error code from an error chain. Unknown errors map to
// an empty code so callers can fall back to a generic 500.
func KindOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsRetryable reports whether the error is safe to retry. Application errors
// (invalid input, not found) never are; only idempotent infrastructure
// failures qualify.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewIndexUnavailableError creates a retryable index transport error.
func NewIndexUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexUnavailable,
		Message:   "Search index backend unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search query execution failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Search query timeout",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Search index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreQueryFailedError creates a retryable store read error.
func NewStoreQueryFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreQueryFailed,
		Message:   "Primary store query failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotFoundError creates a non-retryable not-found error.
func NewNotFoundError(entity, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", entity),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheError creates a cache error. Cache errors are never surfaced to
// callers; the façade logs them and falls through to live computation.
func NewCacheError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheError,
		Message:   "Result cache operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidQueryError creates a non-retryable malformed request error.
func NewInvalidQueryError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQuery,
		Message:   "Invalid search request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError creates a non-retryable request deadline error.
func NewTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   "Request deadline exceeded",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceDegradedError creates the error surfaced after index retries are
// exhausted. Search results are omitted but the status is explicit.
func NewServiceDegradedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceDegraded,
		Message:   "Search temporarily unavailable, try again",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDataIntegrityWarning records a recipe that should have been rejected at
// write time (zero countable ingredients). Logged and skipped, never fatal.
func NewDataIntegrityWarning(recipeID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataIntegrityWarning,
		Message:   "Recipe has no countable ingredients",
		Details:   fmt.Sprintf("recipeId: %s", recipeID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
