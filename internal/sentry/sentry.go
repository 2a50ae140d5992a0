// Package sentry wires the Sentry Go SDK for error tracking. Events are
// shipped to a Better Stack ingesting host; an empty token leaves the SDK
// uninitialized and every helper becomes a no-op.
package sentry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init configures the SDK. Returns false when no token is configured,
// leaving error tracking disabled.
//
// The DSN is assembled as https://$TOKEN@$HOST/1; the trailing project ID
// is mandated by the SDK but ignored by the ingest host.
func Init(token, host, environment string) (bool, error) {
	if token == "" {
		return false, nil
	}
	if host == "" {
		return false, fmt.Errorf("sentry host is required when a token is set")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              fmt.Sprintf("https://%s@%s/1", token, host),
		Environment:      environment,
		SampleRate:       1.0,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return true, nil
}

// Enabled reports whether the SDK holds an active client.
func Enabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// Flush drains buffered events, returning true when everything was sent
// within the timeout. Called on shutdown.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// CaptureException reports err through the hub bound to ctx, falling back
// to the global hub.
func CaptureException(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
