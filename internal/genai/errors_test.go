package genai

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorAction
	}{
		{"nil", nil, ActionFail},
		{"context canceled", context.Canceled, ActionFail},
		{"deadline exceeded", context.DeadlineExceeded, ActionRetry},
		{"quota exhausted", errors.New("daily quota exceeded for project"), ActionFallback},
		{"billing", errors.New("billing hard limit reached"), ActionFallback},
		{"rate limit", errors.New("rate limit exceeded, too many requests"), ActionRetry},
		{"resource exhausted", errors.New("RESOURCE_EXHAUSTED"), ActionRetry},
		{"service unavailable", errors.New("503 service unavailable"), ActionRetry},
		{"overloaded", errors.New("model is overloaded"), ActionRetry},
		{"connection reset", errors.New("connection reset by peer"), ActionRetry},
		{"bad request", errors.New("400 bad request"), ActionFail},
		{"unauthorized", errors.New("401 unauthorized: invalid api key"), ActionFail},
		{"forbidden", errors.New("403 forbidden"), ActionFail},
		{"not found", errors.New("404 model not found"), ActionFail},
		{"unknown defaults to retry", errors.New("something odd happened"), ActionRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyErrorStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   ErrorAction
	}{
		{429, ActionRetry},
		{408, ActionRetry},
		{409, ActionRetry},
		{500, ActionRetry},
		{503, ActionRetry},
		{400, ActionFail},
		{401, ActionFail},
		{403, ActionFail},
		{404, ActionFail},
		{422, ActionFail},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			t.Parallel()
			err := WrapError(errors.New("provider error"), ProviderGemini, tt.status)
			if got := ClassifyError(err); got != tt.want {
				t.Errorf("ClassifyError(status %d) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestLLMErrorWrapping(t *testing.T) {
	t.Parallel()

	base := errors.New("upstream failed")
	wrapped := WrapError(base, ProviderOpenAI, 500)

	var llmErr *LLMError
	if !errors.As(wrapped, &llmErr) {
		t.Fatal("WrapError did not produce an *LLMError")
	}
	if llmErr.Provider != ProviderOpenAI {
		t.Errorf("Provider = %v, want openai", llmErr.Provider)
	}
	if !llmErr.Retryable {
		t.Error("500 error should be retryable")
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error lost the base error")
	}
	if WrapError(nil, ProviderGemini, 0) != nil {
		t.Error("WrapError(nil) should return nil")
	}
}

func TestErrorActionString(t *testing.T) {
	t.Parallel()

	if ActionRetry.String() != "retry" || ActionFallback.String() != "fallback" || ActionFail.String() != "fail" {
		t.Error("unexpected ErrorAction strings")
	}
}
