package main

import (
	"context"
	"time"

	"github.com/haawall/haawall-go/internal/backup"
	"github.com/haawall/haawall-go/internal/cache"
	"github.com/haawall/haawall-go/internal/logger"
	"github.com/haawall/haawall-go/internal/metrics"
	"github.com/haawall/haawall-go/internal/ratelimit"
	"github.com/haawall/haawall-go/internal/storage"
)

const (
	sessionCleanupInterval = time.Hour
	sessionTTL             = 30 * 24 * time.Hour
	cacheMetricsInterval   = 5 * time.Minute
	backupInterval         = 24 * time.Hour
)

// cleanupExpiredSessions periodically deletes chat sessions older than the
// retention window, cascading to their messages.
func cleanupExpiredSessions(ctx context.Context, db *storage.DB, log *logger.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := db.DeleteExpiredSessions(ctx, sessionTTL)
			if err != nil {
				log.WithError(err).Error("Session cleanup failed")
				continue
			}
			if deleted > 0 {
				log.WithField("deleted", deleted).Info("Expired chat sessions removed")
			}
		}
	}
}

// updateCacheMetrics keeps the cache and limiter gauges current.
func updateCacheMetrics(ctx context.Context, responseCache *cache.ResponseCache, chatLimiter *ratelimit.KeyedLimiter, m *metrics.Metrics) {
	ticker := time.NewTicker(cacheMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SetCacheEntries("response", responseCache.Len())
			m.SetRateLimiterClients("chat", chatLimiter.ActiveCount())
		}
	}
}

// dailyBackup uploads a knowledge snapshot once a day.
func dailyBackup(ctx context.Context, snapshotter *backup.Snapshotter, log *logger.Logger) {
	ticker := time.NewTicker(backupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			key, err := snapshotter.Backup(ctx)
			if err != nil {
				log.WithError(err).Error("Scheduled knowledge backup failed")
				continue
			}
			log.WithField("key", key).Info("Knowledge snapshot uploaded")
		}
	}
}
