// Package genai provides the generation-provider gateway: a Gemini primary
// and an OpenAI secondary behind a shared Generator interface, with retry,
// error classification, and explicit fallback between them.
package genai

import (
	"context"
	"time"
)

// Provider identifies a generation provider.
type Provider string

const (
	// ProviderGemini is Google's Gemini API (official SDK).
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI chat completions API.
	ProviderOpenAI Provider = "openai"
)

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// GenerationParams carries the tier-specific generation settings.
type GenerationParams struct {
	MaxTokens   int
	Temperature float64
}

// Generator is one generation provider.
type Generator interface {
	// Generate produces an answer for the user message under the given
	// system prompt and parameters.
	Generate(ctx context.Context, systemPrompt, userMessage string, params GenerationParams) (string, error)
	// Provider returns the provider type for metrics and source tags.
	Provider() Provider
	// Close releases any resources held by the generator.
	Close() error
}

// RetryConfig defines retry behavior for provider calls.
// Uses AWS-recommended Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialDelay is the base delay before first retry.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration
}

// Retry configuration defaults
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// DefaultRetryConfig returns the standard retry settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}

// Default model names.
const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)
