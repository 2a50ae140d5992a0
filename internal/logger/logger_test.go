package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewWithWriter_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level    string
		logDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			log := NewWithWriter(tt.level, &buf)
			log.Debug("debug message")
			got := strings.Contains(buf.String(), "debug message")
			if got != tt.logDebug {
				t.Errorf("level %q: debug logged = %v, want %v", tt.level, got, tt.logDebug)
			}
		})
	}
}

func TestJSONOutput_FieldRenames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)
	log.Warn("something odd")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["message"] != "something odd" {
		t.Errorf("message = %v, want %q", entry["message"], "something odd")
	}
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want %q", entry["level"], "warning")
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp field missing")
	}
}

func TestChainedFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("chat").
		WithRequestID("req-1").
		WithError(errors.New("boom")).
		WithField("provider", "gemini").
		Info("request failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["module"] != "chat" {
		t.Errorf("module = %v, want chat", entry["module"])
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry["request_id"])
	}
	if entry["provider"] != "gemini" {
		t.Errorf("provider = %v, want gemini", entry["provider"])
	}
}

func TestWithFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)
	log.WithFields(map[string]any{"tier": "detailed", "lang": "ckb"}).Info("classified")

	out := buf.String()
	if !strings.Contains(out, `"tier":"detailed"`) || !strings.Contains(out, `"lang":"ckb"`) {
		t.Errorf("fields missing from output: %s", out)
	}
}
