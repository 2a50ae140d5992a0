package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haawall/haawall-go/internal/cache"
	"github.com/haawall/haawall-go/internal/classify"
	apperrors "github.com/haawall/haawall-go/internal/errors"
	"github.com/haawall/haawall-go/internal/knowledge"
	"github.com/haawall/haawall-go/internal/logger"
	"github.com/haawall/haawall-go/internal/prompt"
	"github.com/haawall/haawall-go/internal/relevance"
	"github.com/haawall/haawall-go/internal/storage"
)

type adminEnv struct {
	svc     *Service
	admin   *Admin
	gateway *fakeGateway
	cache   *cache.ResponseCache
	store   *knowledge.Store
	db      *storage.DB
}

func newAdminEnv(t *testing.T) *adminEnv {
	t.Helper()

	dir := t.TempDir()
	writeTestKnowledge(t, dir)

	rulesPath := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(rulesPath, []byte(testRulesYAML), 0o644); err != nil {
		t.Fatalf("failed to write rules: %v", err)
	}
	rules, err := knowledge.LoadRules(rulesPath)
	if err != nil {
		t.Fatalf("failed to load rules: %v", err)
	}

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.NewWithWriter("error", os.Stderr)
	store := knowledge.NewStore(dir, db, log, nil)
	if err := store.Reload(context.Background(), "startup"); err != nil {
		t.Fatalf("failed to load knowledge: %v", err)
	}

	gateway := &fakeGateway{answer: "an answer"}
	responseCache := cache.NewResponseCache(100, nil)

	svc, err := NewService(Config{
		Cache:      responseCache,
		Classifier: classify.New(),
		Selector:   relevance.NewKeywordSelector(rules),
		Store:      store,
		Composer:   prompt.NewComposer(),
		Gateway:    gateway,
		Rules:      rules,
		Logger:     log,
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	return &adminEnv{
		svc:     svc,
		admin:   NewAdmin(svc, db, nil),
		gateway: gateway,
		cache:   responseCache,
		store:   store,
		db:      db,
	}
}

func TestAdminClearCacheInvalidatesAnswers(t *testing.T) {
	env := newAdminEnv(t)
	ctx := context.Background()
	req := Request{Message: "Tell me about the tuition fees"}

	hookRan := false
	env.cache.OnClear(func() { hookRan = true })

	if _, err := env.svc.Handle(ctx, req); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	env.admin.ClearCache()
	if !hookRan {
		t.Error("clear hook did not run")
	}

	resp, err := env.svc.Handle(ctx, req)
	if err != nil {
		t.Fatalf("Handle after clear failed: %v", err)
	}
	if resp.Cached {
		t.Error("answer should be regenerated after clear")
	}
	if n := env.gateway.callCount(); n != 2 {
		t.Errorf("gateway called %d times, want 2", n)
	}
}

func TestAdminUpsertInfoReloadsKnowledge(t *testing.T) {
	env := newAdminEnv(t)
	ctx := context.Background()
	req := Request{Message: "Tell me about the tuition fees"}

	if _, err := env.svc.Handle(ctx, req); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if err := env.admin.UpsertInfo(ctx, "Fees", "scholarship", "Merit scholarships cover full tuition"); err != nil {
		t.Fatalf("UpsertInfo failed: %v", err)
	}

	fragments, err := env.store.Fragments("fees")
	if err != nil {
		t.Fatalf("Fragments failed: %v", err)
	}
	found := false
	for _, f := range fragments {
		if f.Key == "scholarship" {
			found = true
		}
	}
	if !found {
		t.Error("upserted entry missing from reloaded snapshot")
	}

	// The stale cached answer is gone: the next identical query regenerates
	// with the new fragment in the prompt.
	if _, err := env.svc.Handle(ctx, req); err != nil {
		t.Fatalf("Handle after upsert failed: %v", err)
	}
	if n := env.gateway.callCount(); n != 2 {
		t.Fatalf("gateway called %d times, want 2", n)
	}
	if !strings.Contains(env.gateway.lastCall(t).systemPrompt, "Merit scholarships") {
		t.Error("regenerated prompt should include the new entry")
	}
}

func TestAdminUpsertInfoValidation(t *testing.T) {
	env := newAdminEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		category string
		key      string
		value    string
	}{
		{"empty category", "", "k", "v"},
		{"empty key", "fees", "  ", "v"},
		{"empty value", "fees", "k", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.admin.UpsertInfo(ctx, tt.category, tt.key, tt.value)
			var verr *apperrors.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}
}

func TestAdminDeleteInfo(t *testing.T) {
	env := newAdminEnv(t)
	ctx := context.Background()

	if err := env.admin.UpsertInfo(ctx, "fees", "scholarship", "Merit scholarships available"); err != nil {
		t.Fatalf("UpsertInfo failed: %v", err)
	}
	if err := env.admin.DeleteInfo(ctx, "fees", "scholarship"); err != nil {
		t.Fatalf("DeleteInfo failed: %v", err)
	}
	if err := env.admin.DeleteInfo(ctx, "fees", "scholarship"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}

	fragments, err := env.store.Fragments("fees")
	if err != nil {
		t.Fatalf("Fragments failed: %v", err)
	}
	for _, f := range fragments {
		if f.Key == "scholarship" {
			t.Error("deleted entry still present in snapshot")
		}
	}
}

func TestAdminListInfo(t *testing.T) {
	env := newAdminEnv(t)
	ctx := context.Background()

	if err := env.admin.UpsertInfo(ctx, "fees", "scholarship", "Merit scholarships available"); err != nil {
		t.Fatalf("UpsertInfo failed: %v", err)
	}
	if err := env.admin.UpsertInfo(ctx, "housing", "dorms", "On-campus dorms for students"); err != nil {
		t.Fatalf("UpsertInfo failed: %v", err)
	}

	all, err := env.admin.ListInfo(ctx, "")
	if err != nil {
		t.Fatalf("ListInfo failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d entries, want 2", len(all))
	}

	fees, err := env.admin.ListInfo(ctx, "fees")
	if err != nil {
		t.Fatalf("ListInfo(fees) failed: %v", err)
	}
	if len(fees) != 1 || fees[0].Key != "scholarship" {
		t.Errorf("fees entries = %+v", fees)
	}
}

func TestAdminRuleMutationsChangeSelection(t *testing.T) {
	env := newAdminEnv(t)
	ctx := context.Background()

	if err := env.admin.UpsertRule("general", []string{"history", "founded"}); err != nil {
		t.Fatalf("UpsertRule failed: %v", err)
	}

	if _, err := env.svc.Handle(ctx, Request{Message: "Describe the founded date please now"}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(env.gateway.lastCall(t).systemPrompt, "founded in 1968") {
		t.Error("new trigger should select the general category")
	}

	if err := env.admin.DeleteRule("general"); err != nil {
		t.Fatalf("DeleteRule failed: %v", err)
	}
	if err := env.admin.DeleteRule("general"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestAdminTrimCache(t *testing.T) {
	env := newAdminEnv(t)
	ctx := context.Background()

	for _, msg := range []string{"first question here", "second question here", "third question here", "fourth question here"} {
		if _, err := env.svc.Handle(ctx, Request{Message: msg}); err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
	}

	dropped := env.admin.TrimCache(2)
	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
	if env.cache.Len() != 1 {
		t.Errorf("cache size = %d, want 1", env.cache.Len())
	}
}

func TestAdminStats(t *testing.T) {
	env := newAdminEnv(t)

	stats := env.admin.Stats()
	if stats.CachedCategories != 3 {
		t.Errorf("cached categories = %d, want 3", stats.CachedCategories)
	}
	if stats.TriggerRules != 2 {
		t.Errorf("trigger rules = %d, want 2", stats.TriggerRules)
	}
	if stats.LoadedAt.IsZero() {
		t.Error("loaded at should be set")
	}
}

func TestAdminBackupDisabled(t *testing.T) {
	env := newAdminEnv(t)

	if env.admin.BackupEnabled() {
		t.Error("backup should be disabled without an archiver")
	}
	if _, err := env.admin.Backup(context.Background()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Backup error = %v, want ErrNotFound", err)
	}
	if err := env.admin.Restore(context.Background()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Restore error = %v, want ErrNotFound", err)
	}
}
