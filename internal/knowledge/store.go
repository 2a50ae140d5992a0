// Package knowledge loads categorized key/value facts from a directory of
// structured files and the info table, and serves them from an immutable
// in-memory snapshot that is swapped atomically on reload.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/haawall/haawall-go/internal/errors"
	"github.com/haawall/haawall-go/internal/logger"
	"github.com/haawall/haawall-go/internal/metrics"
	"github.com/haawall/haawall-go/internal/storage"
)

// Fragment is one fact unit inside a category.
type Fragment struct {
	Key   string
	Value string
}

// InfoSource supplies database-backed facts merged into the snapshot.
type InfoSource interface {
	GetAllInfo(ctx context.Context) ([]storage.InfoEntry, error)
}

type fileState struct {
	modTime time.Time
	size    int64
}

// snapshot is an immutable view of all loaded knowledge.
// Readers get it lock-free via atomic.Pointer; reloads build a fresh one
// and swap it in whole.
type snapshot struct {
	categories map[string][]Fragment
	files      map[string]fileState
	loadedAt   time.Time
}

// Store serves categorized knowledge fragments.
type Store struct {
	dir     string
	source  InfoSource
	log     *logger.Logger
	metrics *metrics.Metrics

	current atomic.Pointer[snapshot]
	mu      sync.Mutex // serializes reloads
}

// NewStore creates a store over dir. source may be nil when no database
// facts should be merged. The initial load happens on the first Reload or
// RefreshIfStale call.
func NewStore(dir string, source InfoSource, log *logger.Logger, m *metrics.Metrics) *Store {
	s := &Store{
		dir:     dir,
		source:  source,
		log:     log.WithModule("knowledge"),
		metrics: m,
	}
	s.current.Store(&snapshot{
		categories: map[string][]Fragment{},
		files:      map[string]fileState{},
	})
	return s
}

// Fragments returns the fragments of one category from the current snapshot.
// Unknown categories return ErrCategoryUnavailable.
func (s *Store) Fragments(category string) ([]Fragment, error) {
	snap := s.current.Load()
	fragments, ok := snap.categories[category]
	if !ok || len(fragments) == 0 {
		return nil, fmt.Errorf("category %q: %w", category, apperrors.ErrCategoryUnavailable)
	}
	return fragments, nil
}

// Categories returns the sorted category names in the current snapshot.
func (s *Store) Categories() []string {
	snap := s.current.Load()
	names := make([]string, 0, len(snap.categories))
	for name := range snap.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadedAt returns when the current snapshot was built.
func (s *Store) LoadedAt() time.Time {
	return s.current.Load().loadedAt
}

// Reload rebuilds the snapshot from the directory and the info source.
// trigger labels the reload cause for metrics ("startup", "admin", "stale").
func (s *Store) Reload(ctx context.Context, trigger string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.build(ctx)
	if err != nil {
		s.metrics.RecordKnowledgeReload(trigger, "error")
		return err
	}

	s.current.Store(snap)
	s.metrics.RecordKnowledgeReload(trigger, "success")
	s.log.Info("knowledge reloaded",
		"trigger", trigger,
		"categories", len(snap.categories),
		"files", len(snap.files))
	return nil
}

// RefreshIfStale compares the directory's file set and modification times
// against the current snapshot and reloads when anything changed.
// Returns true when a reload happened.
func (s *Store) RefreshIfStale(ctx context.Context) (bool, error) {
	states, err := s.scanFiles()
	if err != nil {
		return false, err
	}

	snap := s.current.Load()
	if len(states) == len(snap.files) {
		stale := false
		for path, state := range states {
			prev, ok := snap.files[path]
			if !ok || !prev.modTime.Equal(state.modTime) || prev.size != state.size {
				stale = true
				break
			}
		}
		if !stale {
			return false, nil
		}
	}

	if err := s.Reload(ctx, "stale"); err != nil {
		return false, err
	}
	return true, nil
}

// build reads every knowledge file plus the info source into a new snapshot.
// A single unreadable or malformed file is logged and skipped so one bad
// category cannot take down the rest.
func (s *Store) build(ctx context.Context) (*snapshot, error) {
	states, err := s.scanFiles()
	if err != nil {
		return nil, err
	}

	categories := make(map[string][]Fragment)
	for path := range states {
		category, fragments, err := parseFile(path)
		if err != nil {
			s.log.WithError(err).Warn("skipping knowledge file", "path", path)
			continue
		}
		categories[category] = append(categories[category], fragments...)
	}

	if s.source != nil {
		entries, err := s.source.GetAllInfo(ctx)
		if err != nil {
			s.log.WithError(err).Warn("skipping database knowledge")
		} else {
			for _, entry := range entries {
				categories[entry.Category] = append(categories[entry.Category], Fragment{
					Key:   entry.Key,
					Value: entry.Value,
				})
			}
		}
	}

	return &snapshot{
		categories: categories,
		files:      states,
		loadedAt:   time.Now(),
	}, nil
}

// scanFiles stats every parseable file in the knowledge directory.
// A missing directory yields an empty set, not an error.
func (s *Store) scanFiles() (map[string]fileState, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]fileState{}, nil
		}
		return nil, fmt.Errorf("failed to read knowledge directory: %w", err)
	}

	states := make(map[string]fileState)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" && ext != ".txt" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		states[filepath.Join(s.dir, entry.Name())] = fileState{
			modTime: info.ModTime(),
			size:    info.Size(),
		}
	}
	return states, nil
}
