// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Chat pipeline metrics
	ChatRequestsTotal   *prometheus.CounterVec
	ChatDurationSeconds *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheEntries     *prometheus.GaugeVec

	// LLM provider metrics
	LLMTotal           *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec
	LLMFallbackTotal   *prometheus.CounterVec

	// Embedding metrics
	EmbeddingRequestsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterClients *prometheus.GaugeVec

	// Knowledge store metrics
	KnowledgeReloadsTotal *prometheus.CounterVec

	// Token budget metrics
	TokenBudgetReducedTotal prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		ChatRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "haawall_chat_requests_total",
				Help: "Total chat requests by tier, language, and outcome",
			},
			[]string{"tier", "language", "status"}, // status: success, cached, rate_limited, invalid, unavailable
		),

		ChatDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "haawall_chat_duration_seconds",
				Help:    "End-to-end chat handling duration in seconds by tier",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"tier"},
		),

		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "haawall_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"}, // cache: response, embedding, knowledge
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "haawall_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),

		CacheEntries: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "haawall_cache_entries",
				Help: "Current number of entries by cache name",
			},
			[]string{"cache"},
		),

		LLMTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "haawall_llm_requests_total",
				Help: "Total LLM generation requests by provider and status",
			},
			[]string{"provider", "status"}, // status: success, rate_limit, server_error, error
		),

		LLMDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "haawall_llm_duration_seconds",
				Help:    "LLM generation duration in seconds by provider",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),

		LLMFallbackTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "haawall_llm_fallback_total",
				Help: "Total provider fallbacks by source and destination provider",
			},
			[]string{"from", "to"},
		),

		EmbeddingRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "haawall_embedding_requests_total",
				Help: "Total embedding requests by status",
			},
			[]string{"status"}, // status: success, error, cached
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "haawall_rate_limiter_dropped_total",
				Help: "Total requests dropped by rate limiter",
			},
			[]string{"limiter"}, // limiter: chat, feedback
		),

		RateLimiterClients: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "haawall_rate_limiter_clients",
				Help: "Current number of tracked client keys by limiter",
			},
			[]string{"limiter"},
		),

		KnowledgeReloadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "haawall_knowledge_reloads_total",
				Help: "Total knowledge store reloads by trigger and status",
			},
			[]string{"trigger", "status"}, // trigger: mtime, admin; status: success, error
		),

		TokenBudgetReducedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "haawall_token_budget_reduced_total",
				Help: "Times the output token budget was reduced because the prompt neared the total budget",
			},
		),
	}
}

// RecordChat records a completed chat request.
func (m *Metrics) RecordChat(tier, language, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ChatRequestsTotal.WithLabelValues(tier, language, status).Inc()
	m.ChatDurationSeconds.WithLabelValues(tier).Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit for the named cache.
func (m *Metrics) RecordCacheHit(cache string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss for the named cache.
func (m *Metrics) RecordCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// SetCacheEntries sets the current entry count for the named cache.
func (m *Metrics) SetCacheEntries(cache string, n int) {
	if m == nil {
		return
	}
	m.CacheEntries.WithLabelValues(cache).Set(float64(n))
}

// RecordLLM records an LLM call outcome.
func (m *Metrics) RecordLLM(provider, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.LLMTotal.WithLabelValues(provider, status).Inc()
	if status == "success" {
		m.LLMDurationSeconds.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

// RecordLLMFallback records a provider fallback.
func (m *Metrics) RecordLLMFallback(from, to string) {
	if m == nil {
		return
	}
	m.LLMFallbackTotal.WithLabelValues(from, to).Inc()
}

// RecordEmbedding records an embedding call outcome.
func (m *Metrics) RecordEmbedding(status string) {
	if m == nil {
		return
	}
	m.EmbeddingRequestsTotal.WithLabelValues(status).Inc()
}

// RecordRateLimiterDrop records a request dropped by the named limiter.
func (m *Metrics) RecordRateLimiterDrop(limiter string) {
	if m == nil {
		return
	}
	m.RateLimiterDropped.WithLabelValues(limiter).Inc()
}

// SetRateLimiterClients sets the tracked-client gauge for the named limiter.
func (m *Metrics) SetRateLimiterClients(limiter string, n int) {
	if m == nil {
		return
	}
	m.RateLimiterClients.WithLabelValues(limiter).Set(float64(n))
}

// RecordKnowledgeReload records a knowledge store reload.
func (m *Metrics) RecordKnowledgeReload(trigger, status string) {
	if m == nil {
		return
	}
	m.KnowledgeReloadsTotal.WithLabelValues(trigger, status).Inc()
}

// RecordTokenBudgetReduction records an output-budget reduction event.
func (m *Metrics) RecordTokenBudgetReduction() {
	if m == nil {
		return
	}
	m.TokenBudgetReducedTotal.Inc()
}
