// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

// Package dislikes persists per-user disliked songs in SQLite. The
// store implements recommend.DislikeProvider, so the engine can merge
// stored dislikes with those carried on each request.
package dislikes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Config holds dislike store settings.
type Config struct {
	// Path is the SQLite database file, or ":memory:" for tests.
	// Default: "data/dislikes.db".
	Path string `koanf:"path" json:"path"`
}

// DefaultConfig returns dislike store settings for a local deployment.
func DefaultConfig() Config {
	return Config{Path: "data/dislikes.db"}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("dislikes: path is required")
	}
	return nil
}

// Store is the SQLite-backed dislike store. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS dislikes (
	user_id    INTEGER NOT NULL,
	song_id    INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, song_id)
);
CREATE INDEX IF NOT EXISTS idx_dislikes_user ON dislikes(user_id)`

// NewStore opens (and creates if needed) the dislike database.
func NewStore(cfg Config, logger zerolog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// WAL keeps readers unblocked during dislike writes.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", cfg.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("dislikes: open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids
	// SQLITE_BUSY churn under concurrent request load.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("dislikes: create schema: %w", err)
	}

	logger.Info().Str("path", cfg.Path).Msg("Dislike store opened")
	return &Store{db: db, logger: logger}, nil
}

// Add records that the user disliked the song. Adding an existing
// dislike is a no-op.
func (s *Store) Add(ctx context.Context, userID, songID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO dislikes (user_id, song_id) VALUES (?, ?)`,
		userID, songID)
	if err != nil {
		return fmt.Errorf("dislikes: add (user %d, song %d): %w", userID, songID, err)
	}
	return nil
}

// Remove deletes a dislike. Removing a dislike that does not exist is
// a no-op.
func (s *Store) Remove(ctx context.Context, userID, songID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM dislikes WHERE user_id = ? AND song_id = ?`,
		userID, songID)
	if err != nil {
		return fmt.Errorf("dislikes: remove (user %d, song %d): %w", userID, songID, err)
	}
	return nil
}

// DislikedSongIDs returns every song the user has disliked, ordered by
// song ID. Implements recommend.DislikeProvider.
func (s *Store) DislikedSongIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT song_id FROM dislikes WHERE user_id = ? ORDER BY song_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("dislikes: lookup user %d: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("dislikes: scan song ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dislikes: iterate user %d: %w", userID, err)
	}
	return ids, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("dislikes: close: %w", err)
	}
	return nil
}
