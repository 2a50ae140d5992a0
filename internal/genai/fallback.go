package genai

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/haawall/haawall-go/internal/errors"
	"github.com/haawall/haawall-go/internal/logger"
	"github.com/haawall/haawall-go/internal/metrics"
)

// FallbackGenerator calls the primary provider with retry; on exhaustion it
// tries the secondary provider. When both fail the caller gets a single
// unified ErrProvidersUnavailable, never raw provider internals.
type FallbackGenerator struct {
	primary   Generator
	secondary Generator
	retry     RetryConfig
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewFallbackGenerator builds the provider chain. Either generator may be
// nil (untyped nil, not a typed nil interface) when not configured; at
// least one must be present.
func NewFallbackGenerator(primary, secondary Generator, retry RetryConfig, log *logger.Logger, m *metrics.Metrics) (*FallbackGenerator, error) {
	if primary == nil && secondary == nil {
		return nil, fmt.Errorf("no generation providers configured")
	}
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}
	return &FallbackGenerator{
		primary:   primary,
		secondary: secondary,
		retry:     retry,
		log:       log.WithModule("genai"),
		metrics:   m,
	}, nil
}

// Generate answers the user message, returning the answer and the provider
// that produced it.
func (f *FallbackGenerator) Generate(ctx context.Context, systemPrompt, userMessage string, params GenerationParams) (string, Provider, error) {
	var primaryErr error

	if f.primary != nil {
		answer, err := f.generateWith(ctx, f.primary, systemPrompt, userMessage, params)
		if err == nil {
			return answer, f.primary.Provider(), nil
		}
		primaryErr = err

		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
	}

	if f.secondary != nil {
		if f.primary != nil {
			f.metrics.RecordLLMFallback(f.primary.Provider().String(), f.secondary.Provider().String())
			f.log.WithError(primaryErr).Warn("primary provider failed, trying secondary",
				"primary", f.primary.Provider().String(),
				"secondary", f.secondary.Provider().String())
		}

		answer, err := f.generateWith(ctx, f.secondary, systemPrompt, userMessage, params)
		if err == nil {
			return answer, f.secondary.Provider(), nil
		}

		f.log.WithError(err).Error("all generation providers failed")
		return "", "", apperrors.ErrProvidersUnavailable
	}

	f.log.WithError(primaryErr).Error("all generation providers failed")
	return "", "", apperrors.ErrProvidersUnavailable
}

// generateWith runs one provider with retry and records its metrics.
func (f *FallbackGenerator) generateWith(ctx context.Context, gen Generator, systemPrompt, userMessage string, params GenerationParams) (string, error) {
	provider := gen.Provider().String()

	var answer string
	start := time.Now()
	err := WithRetry(ctx, f.retry, func(attempt int, retryErr error) {
		f.log.WithError(retryErr).Warn("retrying provider call",
			"provider", provider,
			"attempt", attempt)
	}, func() error {
		var genErr error
		answer, genErr = gen.Generate(ctx, systemPrompt, userMessage, params)
		return genErr
	})
	duration := time.Since(start)

	if err != nil {
		f.metrics.RecordLLM(provider, "error", duration)
		return "", err
	}

	f.metrics.RecordLLM(provider, "success", duration)
	return answer, nil
}

// Close releases both providers.
func (f *FallbackGenerator) Close() error {
	if f.primary != nil {
		_ = f.primary.Close()
	}
	if f.secondary != nil {
		_ = f.secondary.Close()
	}
	return nil
}
