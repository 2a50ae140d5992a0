// Package ratelimit provides per-client request rate limiting.
// Each client key holds a request count and a window-start timestamp;
// the count resets when the window elapses. Distinct flows (chat,
// feedback) construct their own limiter with their own limit/window pair.
package ratelimit

import (
	"sync"
	"time"

	"github.com/haawall/haawall-go/internal/metrics"
)

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name identifies this limiter for metrics (e.g., "chat", "feedback").
	Name string

	// Limit is the maximum number of admitted requests per window.
	Limit int

	// Window is the duration of the counting window.
	Window time.Duration

	// CleanupPeriod is how often stale windows are purged. Zero disables
	// the cleanup goroutine (useful in tests).
	CleanupPeriod time.Duration

	// Metrics is an optional metrics reporter.
	Metrics *metrics.Metrics
}

// window holds per-key state.
type window struct {
	count int
	start time.Time
}

// KeyedLimiter tracks request windows per client key.
type KeyedLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	config  KeyedConfig
	now     func() time.Time // injectable clock for tests
	stopCh  chan struct{}
	once    sync.Once
}

// NewKeyed creates a new per-key window limiter.
func NewKeyed(cfg KeyedConfig) *KeyedLimiter {
	kl := &KeyedLimiter{
		windows: make(map[string]*window),
		config:  cfg,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	if cfg.CleanupPeriod > 0 {
		go kl.cleanupLoop()
	}
	return kl
}

// Allow reports whether a request for the given key is admitted.
//
// The first request for an unseen key starts a window and is admitted.
// Once the window elapses the state resets (count=1, admitted). While a
// window is open, requests are admitted until the count reaches the limit;
// a rejection leaves the window intact so it still resets naturally.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.now()

	w, exists := kl.windows[key]
	if !exists || now.Sub(w.start) > kl.config.Window {
		kl.windows[key] = &window{count: 1, start: now}
		return true
	}

	if w.count >= kl.config.Limit {
		if kl.config.Metrics != nil {
			kl.config.Metrics.RecordRateLimiterDrop(kl.config.Name)
		}
		return false
	}

	w.count++
	return true
}

// Remaining returns how many requests the key may still make in the current
// window. Unseen or expired keys get the full limit.
func (kl *KeyedLimiter) Remaining(key string) int {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	w, exists := kl.windows[key]
	if !exists || kl.now().Sub(w.start) > kl.config.Window {
		return kl.config.Limit
	}
	remaining := kl.config.Limit - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ActiveCount returns the number of tracked client keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.windows)
}

// cleanupLoop periodically removes windows that have expired.
func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.mu.Lock()
			now := kl.now()
			for key, w := range kl.windows {
				if now.Sub(w.start) > kl.config.Window {
					delete(kl.windows, key)
				}
			}
			active := len(kl.windows)
			kl.mu.Unlock()

			if kl.config.Metrics != nil {
				kl.config.Metrics.SetRateLimiterClients(kl.config.Name, active)
			}
		}
	}
}

// Stop terminates the cleanup goroutine. Safe to call multiple times.
func (kl *KeyedLimiter) Stop() {
	kl.once.Do(func() { close(kl.stopCh) })
}
