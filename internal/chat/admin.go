package chat

import (
	"context"
	"strings"

	apperrors "github.com/haawall/haawall-go/internal/errors"
	"github.com/haawall/haawall-go/internal/knowledge"
	"github.com/haawall/haawall-go/internal/storage"
)

// InfoRepository is the administered knowledge table. Implemented by storage.DB.
type InfoRepository interface {
	UpsertInfo(ctx context.Context, category, key, value string) error
	GetInfoByCategory(ctx context.Context, category string) ([]storage.InfoEntry, error)
	GetAllInfo(ctx context.Context) ([]storage.InfoEntry, error)
	DeleteInfo(ctx context.Context, category, key string) error
}

// Archiver snapshots the knowledge base to object storage. Implemented by
// backup.Snapshotter.
type Archiver interface {
	Enabled() bool
	Backup(ctx context.Context) (string, error)
	Restore(ctx context.Context) error
}

// Admin groups the administrative operations that mutate knowledge and
// invalidate caches. Every knowledge mutation clears the response cache so
// stale answers can never outlive the data they were derived from.
type Admin struct {
	svc      *Service
	rules    *knowledge.Rules
	info     InfoRepository
	archiver Archiver
}

// NewAdmin creates the admin facade over the chat service.
func NewAdmin(svc *Service, info InfoRepository, archiver Archiver) *Admin {
	return &Admin{
		svc:      svc,
		rules:    svc.cfg.Rules,
		info:     info,
		archiver: archiver,
	}
}

// ClearCache drops all cached answers. Registered hooks (embedding cache)
// fire as part of Clear.
func (a *Admin) ClearCache() {
	a.svc.cfg.Cache.Clear()
	a.svc.log.Info("response cache cleared")
}

// TrimCache shrinks the response cache to at most maxEntries, keeping the
// newest half. maxEntries <= 0 uses the configured ceiling.
func (a *Admin) TrimCache(maxEntries int) int {
	dropped := a.svc.cfg.Cache.Trim(maxEntries)
	a.svc.log.Info("response cache trimmed", "dropped", dropped)
	return dropped
}

// ReloadKnowledge rebuilds the knowledge snapshot from disk and the info
// table, then clears the response cache.
func (a *Admin) ReloadKnowledge(ctx context.Context) error {
	if err := a.svc.cfg.Store.Reload(ctx, "admin"); err != nil {
		return err
	}
	a.svc.cfg.Cache.Clear()
	return nil
}

// Stats reports the knowledge store view.
func (a *Admin) Stats() knowledge.Stats {
	return knowledge.CollectStats(a.svc.cfg.Store, a.rules)
}

// UpsertRule adds or replaces the trigger rule for a category.
func (a *Admin) UpsertRule(category string, triggers []string) error {
	if a.rules == nil {
		return apperrors.ErrNotFound
	}
	if err := a.rules.Upsert(category, triggers); err != nil {
		return err
	}
	a.svc.cfg.Cache.Clear()
	return nil
}

// DeleteRule removes the trigger rule for a category.
func (a *Admin) DeleteRule(category string) error {
	if a.rules == nil {
		return apperrors.ErrNotFound
	}
	if err := a.rules.Delete(category); err != nil {
		return err
	}
	a.svc.cfg.Cache.Clear()
	return nil
}

// UpsertInfo writes one info entry and reloads the knowledge snapshot so the
// entry is immediately queryable.
func (a *Admin) UpsertInfo(ctx context.Context, category, key, value string) error {
	category = strings.TrimSpace(strings.ToLower(category))
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	switch {
	case category == "":
		return &apperrors.ValidationError{Field: "category", Message: "must not be empty"}
	case key == "":
		return &apperrors.ValidationError{Field: "key", Message: "must not be empty"}
	case value == "":
		return &apperrors.ValidationError{Field: "value", Message: "must not be empty"}
	}
	if err := a.info.UpsertInfo(ctx, category, key, value); err != nil {
		return err
	}
	return a.ReloadKnowledge(ctx)
}

// DeleteInfo removes one info entry and reloads the knowledge snapshot.
func (a *Admin) DeleteInfo(ctx context.Context, category, key string) error {
	if err := a.info.DeleteInfo(ctx, strings.TrimSpace(strings.ToLower(category)), strings.TrimSpace(key)); err != nil {
		return err
	}
	return a.ReloadKnowledge(ctx)
}

// ListInfo returns the info entries, optionally filtered by category.
func (a *Admin) ListInfo(ctx context.Context, category string) ([]storage.InfoEntry, error) {
	if category = strings.TrimSpace(strings.ToLower(category)); category != "" {
		return a.info.GetInfoByCategory(ctx, category)
	}
	return a.info.GetAllInfo(ctx)
}

// Backup snapshots the knowledge files and rules to object storage.
func (a *Admin) Backup(ctx context.Context) (string, error) {
	if !a.BackupEnabled() {
		return "", apperrors.ErrNotFound
	}
	return a.archiver.Backup(ctx)
}

// Restore downloads the latest snapshot, unpacks it over the knowledge
// directory, and reloads.
func (a *Admin) Restore(ctx context.Context) error {
	if !a.BackupEnabled() {
		return apperrors.ErrNotFound
	}
	if err := a.archiver.Restore(ctx); err != nil {
		return err
	}
	if a.rules != nil {
		if err := a.rules.Reload(); err != nil {
			return err
		}
	}
	return a.ReloadKnowledge(ctx)
}

// BackupEnabled reports whether snapshot storage is configured.
func (a *Admin) BackupEnabled() bool {
	return a.archiver != nil && a.archiver.Enabled()
}
