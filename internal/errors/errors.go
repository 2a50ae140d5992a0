// Package errors provides domain-specific error types and sentinel errors
// for the assistant service. User-visible failures are always one of the
// sentinels below; everything else is absorbed and logged.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProvidersUnavailable indicates every configured generation provider failed.
	ErrProvidersUnavailable = errors.New("all providers unavailable")

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller lacks the required capability.
	ErrForbidden = errors.New("forbidden")

	// ErrCategoryUnavailable indicates a knowledge category could not be loaded.
	ErrCategoryUnavailable = errors.New("knowledge category unavailable")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Is makes ValidationError match ErrInvalidInput in errors.Is chains.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// KnowledgeError represents a knowledge file read or parse failure.
// These are absorbed by the relevance pipeline and never surface to callers.
type KnowledgeError struct {
	Category string
	Path     string
	Err      error
}

func (e *KnowledgeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("knowledge error (category=%s, path=%s): %v", e.Category, e.Path, e.Err)
	}
	return fmt.Sprintf("knowledge error (category=%s): %v", e.Category, e.Err)
}

func (e *KnowledgeError) Unwrap() error {
	return e.Err
}

// NewKnowledgeError creates a new knowledge error.
func NewKnowledgeError(category, path string, err error) *KnowledgeError {
	return &KnowledgeError{
		Category: category,
		Path:     path,
		Err:      err,
	}
}
