package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/haawall/haawall-go/internal/errors"
	"github.com/haawall/haawall-go/internal/logger"
	"github.com/haawall/haawall-go/internal/storage"
)

type fakeInfoSource struct {
	entries []storage.InfoEntry
	err     error
}

func (f *fakeInfoSource) GetAllInfo(ctx context.Context) ([]storage.InfoEntry, error) {
	return f.entries, f.err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestStoreReloadAndFragments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "fees.yaml", "computer_science: 1,200,000 IQD per year\nlaw: 900,000 IQD per year\n")
	writeFile(t, dir, "campus.txt", "The main campus is in Sulaimani city center.\n")
	writeFile(t, dir, "notes.md", "ignored extension")

	store := NewStore(dir, nil, logger.New("error"), nil)
	if err := store.Reload(context.Background(), "startup"); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	fragments, err := store.Fragments("fees")
	if err != nil {
		t.Fatalf("Fragments(fees) error = %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("Fragments(fees) returned %d, want 2", len(fragments))
	}
	if fragments[0].Key != "computer_science" {
		t.Errorf("fragments[0].Key = %q, want computer_science", fragments[0].Key)
	}

	fragments, err = store.Fragments("campus")
	if err != nil {
		t.Fatalf("Fragments(campus) error = %v", err)
	}
	if len(fragments) != 1 || fragments[0].Key != "campus" {
		t.Errorf("Fragments(campus) = %+v", fragments)
	}

	if _, err := store.Fragments("missing"); !errors.Is(err, apperrors.ErrCategoryUnavailable) {
		t.Errorf("Fragments(missing) = %v, want ErrCategoryUnavailable", err)
	}

	categories := store.Categories()
	if len(categories) != 2 || categories[0] != "campus" || categories[1] != "fees" {
		t.Errorf("Categories() = %v", categories)
	}
}

func TestStoreSkipsMalformedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "fees.yaml", "computer_science: 1,200,000 IQD\n")
	writeFile(t, dir, "broken.yaml", "key: [unclosed\n")

	store := NewStore(dir, nil, logger.New("error"), nil)
	if err := store.Reload(context.Background(), "startup"); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if _, err := store.Fragments("fees"); err != nil {
		t.Errorf("healthy category unavailable: %v", err)
	}
	if _, err := store.Fragments("broken"); !errors.Is(err, apperrors.ErrCategoryUnavailable) {
		t.Errorf("broken category = %v, want ErrCategoryUnavailable", err)
	}
}

func TestStoreMergesInfoSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "fees.yaml", "computer_science: 1,200,000 IQD\n")

	source := &fakeInfoSource{entries: []storage.InfoEntry{
		{Category: "fees", Key: "medicine", Value: "2,500,000 IQD per year"},
		{Category: "admissions", Key: "deadline", Value: "September 15"},
	}}

	store := NewStore(dir, source, logger.New("error"), nil)
	if err := store.Reload(context.Background(), "startup"); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	fees, err := store.Fragments("fees")
	if err != nil {
		t.Fatalf("Fragments(fees) error = %v", err)
	}
	if len(fees) != 2 {
		t.Errorf("Fragments(fees) = %d entries, want 2 (file + db)", len(fees))
	}

	admissions, err := store.Fragments("admissions")
	if err != nil {
		t.Fatalf("Fragments(admissions) error = %v", err)
	}
	if admissions[0].Value != "September 15" {
		t.Errorf("admissions fragment = %+v", admissions[0])
	}
}

func TestStoreInfoSourceFailureDegrades(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "fees.yaml", "computer_science: 1,200,000 IQD\n")

	source := &fakeInfoSource{err: errors.New("db down")}
	store := NewStore(dir, source, logger.New("error"), nil)
	if err := store.Reload(context.Background(), "startup"); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if _, err := store.Fragments("fees"); err != nil {
		t.Errorf("file-backed category should survive db failure: %v", err)
	}
}

func TestRefreshIfStale(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "fees.yaml", "computer_science: old value\n")

	store := NewStore(dir, nil, logger.New("error"), nil)
	if err := store.Reload(context.Background(), "startup"); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	reloaded, err := store.RefreshIfStale(context.Background())
	if err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}
	if reloaded {
		t.Error("RefreshIfStale() reloaded with no changes")
	}

	// Rewrite with a changed mtime
	if err := os.WriteFile(path, []byte("computer_science: new value\n"), 0o644); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	reloaded, err = store.RefreshIfStale(context.Background())
	if err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}
	if !reloaded {
		t.Fatal("RefreshIfStale() did not reload after file change")
	}

	fragments, err := store.Fragments("fees")
	if err != nil {
		t.Fatalf("Fragments() error = %v", err)
	}
	if fragments[0].Value != "new value" {
		t.Errorf("fragment value = %q, want new value", fragments[0].Value)
	}
}

func TestMissingDirectoryIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"), nil, logger.New("error"), nil)
	if err := store.Reload(context.Background(), "startup"); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if len(store.Categories()) != 0 {
		t.Errorf("Categories() = %v, want empty", store.Categories())
	}
}
