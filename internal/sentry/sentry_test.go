package sentry

import (
	"testing"
	"time"
)

func TestInitEmptyTokenDisables(t *testing.T) {
	enabled, err := Init("", "errors.betterstack.com", "test")
	if err != nil {
		t.Errorf("Init with empty token returned error: %v", err)
	}
	if enabled {
		t.Error("Init with empty token should report disabled")
	}
}

func TestInitMissingHost(t *testing.T) {
	if _, err := Init("some-token", "", "test"); err == nil {
		t.Error("expected error when host is missing")
	}
}

func TestInitValid(t *testing.T) {
	// Sentry holds global state; no t.Parallel.
	enabled, err := Init("some-token", "errors.betterstack.com", "test")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !enabled {
		t.Error("Init should report enabled")
	}
	if !Enabled() {
		t.Error("Enabled() should be true after Init")
	}
	Flush(time.Second)
}

func TestFlushWithoutEvents(t *testing.T) {
	if !Flush(100 * time.Millisecond) {
		t.Error("Flush should return true with no pending events")
	}
}
