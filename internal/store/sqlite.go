package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/i474232898/coronaboard-data/internal/logger"
	"github.com/i474232898/coronaboard-data/internal/stats"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteSink keeps the latest blob per series key in a SQLite table.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the database and runs migrations.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Concurrent series writes share one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteSink{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite sink opened: %s", path)
	return s, nil
}

func (s *SQLiteSink) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS series_blobs (
		key        TEXT PRIMARY KEY,
		body       BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	return err
}

// Write upserts the blob for key.
func (s *SQLiteSink) Write(ctx context.Context, key string, series *stats.CountrySeries) error {
	body, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO series_blobs (key, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key, body, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Read returns the stored series for key.
func (s *SQLiteSink) Read(ctx context.Context, key string) (*stats.CountrySeries, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM series_blobs WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}

	var series stats.CountrySeries
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &series, nil
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error {
	logger.Info("closing sqlite sink")
	return s.db.Close()
}
