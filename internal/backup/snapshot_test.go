package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/haawall/haawall-go/internal/logger"
)

// memStore keeps uploaded objects in memory.
type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestBackupAndRestore(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	srcRules := filepath.Join(srcDir, "trigger_rules.yaml")
	knowledgeDir := filepath.Join(srcDir, "knowledge")
	if err := os.MkdirAll(knowledgeDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(knowledgeDir, "fees.yaml"), []byte("cs: 1,200,000 IQD\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(srcRules, []byte("default_category: general\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := newMemStore()
	src := NewSnapshotter(store, knowledgeDir, srcRules, logger.New("error"))

	key, err := src.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if key == "" {
		t.Fatal("Backup() returned empty key")
	}
	if _, ok := store.objects[key]; !ok {
		t.Errorf("timestamped snapshot %q not uploaded", key)
	}
	if _, ok := store.objects[latestKey]; !ok {
		t.Error("latest snapshot not uploaded")
	}

	// Restore into a different location
	dstDir := t.TempDir()
	dstKnowledge := filepath.Join(dstDir, "knowledge")
	dstRules := filepath.Join(dstDir, "trigger_rules.yaml")
	dst := NewSnapshotter(store, dstKnowledge, dstRules, logger.New("error"))

	if err := dst.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	restored, err := os.ReadFile(filepath.Join(dstKnowledge, "fees.yaml"))
	if err != nil {
		t.Fatalf("restored knowledge file missing: %v", err)
	}
	if string(restored) != "cs: 1,200,000 IQD\n" {
		t.Errorf("restored content = %q", restored)
	}

	rules, err := os.ReadFile(dstRules)
	if err != nil {
		t.Fatalf("restored rules file missing: %v", err)
	}
	if string(rules) != "default_category: general\n" {
		t.Errorf("restored rules = %q", rules)
	}
}

func TestBackupNothingToArchive(t *testing.T) {
	t.Parallel()

	empty := t.TempDir()
	snap := NewSnapshotter(newMemStore(), filepath.Join(empty, "missing"), filepath.Join(empty, "no-rules.yaml"), logger.New("error"))
	if _, err := snap.Backup(context.Background()); err == nil {
		t.Error("Backup() with nothing to archive should fail")
	}
}

func TestRestoreMissingSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	snap := NewSnapshotter(newMemStore(), filepath.Join(dir, "k"), filepath.Join(dir, "r.yaml"), logger.New("error"))
	if err := snap.Restore(context.Background()); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Restore() = %v, want ErrObjectNotFound", err)
	}
}

func TestSnapshotterDisabled(t *testing.T) {
	t.Parallel()

	snap := NewSnapshotter(nil, "k", "r.yaml", logger.New("error"))
	if snap.Enabled() {
		t.Error("snapshotter without store should be disabled")
	}
	if _, err := snap.Backup(context.Background()); err == nil {
		t.Error("Backup() on disabled snapshotter should fail")
	}
}

func TestArchiveRejectsTraversal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	snap := NewSnapshotter(newMemStore(), filepath.Join(dir, "k"), filepath.Join(dir, "r.yaml"), logger.New("error"))

	arc := &archive{Files: []archiveFile{{Name: "../../etc/passwd", Content: []byte("x")}}}
	if err := snap.writeArchive(arc); err == nil {
		t.Error("writeArchive() accepted a path traversal name")
	}
}
