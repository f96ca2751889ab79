package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/i474232898/coronaboard-data/internal/stats"
)

// FileSink writes each series as {dir}/{key}.json so the front end can load a
// single country's chart data on demand.
type FileSink struct {
	dir      string
	filePerm os.FileMode
	dirPerm  os.FileMode
}

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{
		dir:      dir,
		filePerm: 0o644,
		dirPerm:  0o755,
	}
}

// Write persists series atomically: temp file first, then rename.
func (f *FileSink) Write(ctx context.Context, key string, series *stats.CountrySeries) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return fmt.Errorf("invalid series key %q", key)
	}

	if err := os.MkdirAll(f.dir, f.dirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	// Each write gets its own temp file so overlapping refreshes never share one.
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tempPath, f.filePerm); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to chmod file: %w", err)
	}
	if err := os.Rename(tempPath, filepath.Join(f.dir, key+".json")); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
