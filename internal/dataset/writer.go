package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"jamsync/internal/logging"
	"jamsync/internal/session"
)

const lockRetryDelay = 50 * time.Millisecond

// WriteResult describes one output file.
type WriteResult struct {
	Path     string `json:"path"`
	Format   Format `json:"format"`
	Sessions int    `json:"sessions"`
	Bytes    int    `json:"bytes"`
	// Changed is false when the file already held identical content.
	Changed bool `json:"changed"`
}

// Writer publishes session datasets.
type Writer struct {
	logger *slog.Logger
}

// NewWriter returns a Writer logging through logger.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logging.NewComponentLogger(logger, "dataset")}
}

// Write encodes sessions to path. It waits for the advisory lock on
// "<path>.lock" until ctx is done.
func (w *Writer) Write(ctx context.Context, path string, sessions []*session.Session, format Format) (WriteResult, error) {
	resolved, err := ResolveFormat(path, format)
	if err != nil {
		return WriteResult{}, err
	}
	content, err := Encode(sessions, resolved)
	if err != nil {
		return WriteResult{}, err
	}
	result := WriteResult{Path: path, Format: resolved, Sessions: len(sessions), Bytes: len(content)}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return result, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return result, fmt.Errorf("acquire output lock: %s is held by another process", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, content):
		w.logger.Info("dataset unchanged, skipping write",
			logging.String("path", path),
			logging.Int("sessions", len(sessions)),
		)
		return result, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return result, fmt.Errorf("read existing dataset: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o644); err != nil {
		return result, fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return result, fmt.Errorf("rename temp file: %w", err)
	}

	result.Changed = true
	w.logger.Info("dataset written",
		logging.String("path", path),
		logging.String("format", string(resolved)),
		logging.Int("sessions", len(sessions)),
		logging.Int("bytes", len(content)),
	)
	return result, nil
}
