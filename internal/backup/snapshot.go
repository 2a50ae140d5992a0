package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/haawall/haawall-go/internal/logger"
)

const (
	latestKey    = "snapshots/latest.json.zst"
	snapshotTime = "20060102T150405Z"
)

// archive is the serialized snapshot payload.
type archive struct {
	CreatedAt time.Time     `json:"created_at"`
	Files     []archiveFile `json:"files"`
}

// archiveFile is one file in the snapshot, path-relative to its root.
type archiveFile struct {
	Name    string `json:"name"`
	Rules   bool   `json:"rules,omitempty"`
	Content []byte `json:"content"`
}

// Uploader is the object-store surface the snapshotter needs.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// Snapshotter backs up and restores the knowledge directory plus the
// trigger-rule file.
type Snapshotter struct {
	store        Uploader
	knowledgeDir string
	rulesPath    string
	log          *logger.Logger
}

// NewSnapshotter creates a snapshotter. store may be nil (backups disabled).
func NewSnapshotter(store Uploader, knowledgeDir, rulesPath string, log *logger.Logger) *Snapshotter {
	return &Snapshotter{
		store:        store,
		knowledgeDir: knowledgeDir,
		rulesPath:    rulesPath,
		log:          log.WithModule("backup"),
	}
}

// Enabled reports whether object storage is configured.
func (s *Snapshotter) Enabled() bool {
	return s != nil && s.store != nil
}

// Backup archives the knowledge files and rule file, compresses the
// archive with zstd, and uploads it under a timestamped key plus the
// stable latest key. Returns the timestamped key.
func (s *Snapshotter) Backup(ctx context.Context) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("backup storage not configured")
	}

	arc, err := s.buildArchive()
	if err != nil {
		return "", err
	}

	compressed, err := compressArchive(arc)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("snapshots/knowledge-%s.json.zst", arc.CreatedAt.UTC().Format(snapshotTime))
	if err := s.store.Upload(ctx, key, bytes.NewReader(compressed), "application/zstd"); err != nil {
		return "", err
	}
	if err := s.store.Upload(ctx, latestKey, bytes.NewReader(compressed), "application/zstd"); err != nil {
		return "", err
	}

	s.log.Info("knowledge snapshot uploaded", "key", key, "files", len(arc.Files), "bytes", len(compressed))
	return key, nil
}

// Restore downloads the latest snapshot and writes its files back to the
// knowledge directory and rule path.
func (s *Snapshotter) Restore(ctx context.Context) error {
	if !s.Enabled() {
		return fmt.Errorf("backup storage not configured")
	}

	body, err := s.store.Download(ctx, latestKey)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	arc, err := decompressArchive(body)
	if err != nil {
		return err
	}

	if err := s.writeArchive(arc); err != nil {
		return err
	}

	s.log.Info("knowledge snapshot restored", "files", len(arc.Files), "created_at", arc.CreatedAt)
	return nil
}

// buildArchive reads the knowledge directory and rule file into memory.
func (s *Snapshotter) buildArchive() (*archive, error) {
	arc := &archive{CreatedAt: time.Now()}

	entries, err := os.ReadDir(s.knowledgeDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read knowledge directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(s.knowledgeDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		arc.Files = append(arc.Files, archiveFile{Name: entry.Name(), Content: content})
	}

	if rules, err := os.ReadFile(s.rulesPath); err == nil {
		arc.Files = append(arc.Files, archiveFile{
			Name:    filepath.Base(s.rulesPath),
			Rules:   true,
			Content: rules,
		})
	}

	if len(arc.Files) == 0 {
		return nil, fmt.Errorf("nothing to back up")
	}
	return arc, nil
}

// writeArchive restores files to disk. Names are sanitized against path
// traversal before writing.
func (s *Snapshotter) writeArchive(arc *archive) error {
	if err := os.MkdirAll(s.knowledgeDir, 0o755); err != nil {
		return fmt.Errorf("failed to create knowledge directory: %w", err)
	}

	for _, file := range arc.Files {
		name := filepath.Base(file.Name)
		if name == "." || name == string(filepath.Separator) || strings.Contains(file.Name, "..") {
			return fmt.Errorf("invalid archive file name %q", file.Name)
		}

		target := filepath.Join(s.knowledgeDir, name)
		if file.Rules {
			target = s.rulesPath
			if dir := filepath.Dir(target); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create rules directory: %w", err)
				}
			}
		}

		if err := os.WriteFile(target, file.Content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func compressArchive(arc *archive) ([]byte, error) {
	payload, err := json.Marshal(arc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	var buf bytes.Buffer
	encoder, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if _, err := encoder.Write(payload); err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish compression: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressArchive(r io.Reader) (*archive, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	payload, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	var arc archive
	if err := json.Unmarshal(payload, &arc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &arc, nil
}
