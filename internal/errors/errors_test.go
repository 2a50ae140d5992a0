package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	err := NewValidationError("message", "must not be empty")
	want := "validation failed on message: must not be empty"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidationError_MatchesInvalidInput(t *testing.T) {
	t.Parallel()

	var err error = NewValidationError("message", "too long")
	if !stderrors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}

	wrapped := fmt.Errorf("handle chat: %w", err)
	if !stderrors.Is(wrapped, ErrInvalidInput) {
		t.Error("wrapped ValidationError should match ErrInvalidInput")
	}
}

func TestKnowledgeError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("yaml: line 3: mapping values are not allowed")
	err := NewKnowledgeError("fees", "data/knowledge/fees.yaml", cause)

	if !stderrors.Is(err, cause) {
		t.Error("KnowledgeError should unwrap to its cause")
	}
	if got := err.Error(); got == "" || got == cause.Error() {
		t.Errorf("Error() should add category context, got %q", got)
	}
}

func TestKnowledgeError_NoPath(t *testing.T) {
	t.Parallel()

	err := NewKnowledgeError("fees", "", stderrors.New("missing"))
	want := "knowledge error (category=fees): missing"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound,
		ErrRateLimitExceeded,
		ErrInvalidInput,
		ErrProvidersUnavailable,
		ErrUnauthorized,
		ErrForbidden,
		ErrCategoryUnavailable,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && stderrors.Is(a, b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}
