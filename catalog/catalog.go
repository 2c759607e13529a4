// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

// Package catalog persists song feature rows in DuckDB and loads them
// into catalog snapshots for the in-process candidate source.
//
// DuckDB fits the access pattern: the catalog is written in batches
// during ingestion and read as full-table scans at snapshot build
// time, with no row-level OLTP traffic.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/hyunwoo-park/voicematch/recommend"
)

// Config holds catalog database settings.
type Config struct {
	// Path is the DuckDB database file, or ":memory:" for an
	// in-memory catalog. Default: "data/catalog.db".
	Path string `koanf:"path" json:"path"`

	// MaxMemory caps DuckDB memory usage. Default: "512MB".
	MaxMemory string `koanf:"max_memory" json:"max_memory"`
}

// DefaultConfig returns catalog settings for a local deployment.
func DefaultConfig() Config {
	return Config{
		Path:      "data/catalog.db",
		MaxMemory: "512MB",
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("catalog: path is required")
	}
	if c.MaxMemory == "" {
		return fmt.Errorf("catalog: max_memory is required")
	}
	return nil
}

// Store is the DuckDB-backed song catalog. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS song_features (
	song_id    BIGINT PRIMARY KEY,
	mfcc_0     DOUBLE NOT NULL,
	mfcc_1     DOUBLE NOT NULL,
	mfcc_2     DOUBLE NOT NULL,
	mfcc_3     DOUBLE NOT NULL,
	mfcc_4     DOUBLE NOT NULL,
	mfcc_5     DOUBLE NOT NULL,
	mfcc_6     DOUBLE NOT NULL,
	mfcc_7     DOUBLE NOT NULL,
	mfcc_8     DOUBLE NOT NULL,
	mfcc_9     DOUBLE NOT NULL,
	mfcc_10    DOUBLE NOT NULL,
	mfcc_11    DOUBLE NOT NULL,
	mfcc_12    DOUBLE NOT NULL,
	pitch_low  DOUBLE NOT NULL,
	pitch_high DOUBLE NOT NULL,
	pitch_avg  DOUBLE NOT NULL,
	popularity INTEGER NOT NULL DEFAULT 0,
	genre      VARCHAR NOT NULL DEFAULT ''
)`

// Open opens (and creates if needed) the catalog database and ensures
// the schema exists.
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Autoload is disabled to avoid extension fetches in restricted
	// network environments; the catalog needs no extensions.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, max(2, runtime.NumCPU()/2), cfg.MaxMemory)

	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("catalog: open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: create schema: %w", err)
	}

	logger.Info().Str("path", cfg.Path).Msg("Catalog database opened")
	return &Store{db: db, logger: logger}, nil
}

// UpsertSongs writes a batch of songs, replacing existing rows with
// the same song ID. The batch is atomic.
func (s *Store) UpsertSongs(ctx context.Context, songs []recommend.SongRecord) error {
	if len(songs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO song_features (
			song_id,
			mfcc_0, mfcc_1, mfcc_2, mfcc_3, mfcc_4, mfcc_5, mfcc_6,
			mfcc_7, mfcc_8, mfcc_9, mfcc_10, mfcc_11, mfcc_12,
			pitch_low, pitch_high, pitch_avg, popularity, genre
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("catalog: prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, song := range songs {
		if err := song.Feature.Validate(); err != nil {
			return fmt.Errorf("catalog: song %d: %w", song.SongID, err)
		}
		t := song.Feature.Timbre
		if _, err := stmt.ExecContext(ctx,
			song.SongID,
			t[0], t[1], t[2], t[3], t[4], t[5], t[6],
			t[7], t[8], t[9], t[10], t[11], t[12],
			song.Feature.PitchLow, song.Feature.PitchHigh, song.Feature.PitchAvg,
			song.Popularity, song.Genre,
		); err != nil {
			return fmt.Errorf("catalog: upsert song %d: %w", song.SongID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit upsert: %w", err)
	}

	s.logger.Debug().Int("songs", len(songs)).Msg("Catalog batch upserted")
	return nil
}

// LoadSongs reads the full catalog, ordered by song ID for stable
// snapshot builds.
func (s *Store) LoadSongs(ctx context.Context) ([]recommend.SongRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id,
			mfcc_0, mfcc_1, mfcc_2, mfcc_3, mfcc_4, mfcc_5, mfcc_6,
			mfcc_7, mfcc_8, mfcc_9, mfcc_10, mfcc_11, mfcc_12,
			pitch_low, pitch_high, pitch_avg, popularity, genre
		FROM song_features
		ORDER BY song_id`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load songs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var songs []recommend.SongRecord
	for rows.Next() {
		var song recommend.SongRecord
		t := &song.Feature.Timbre
		if err := rows.Scan(
			&song.SongID,
			&t[0], &t[1], &t[2], &t[3], &t[4], &t[5], &t[6],
			&t[7], &t[8], &t[9], &t[10], &t[11], &t[12],
			&song.Feature.PitchLow, &song.Feature.PitchHigh, &song.Feature.PitchAvg,
			&song.Popularity, &song.Genre,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate songs: %w", err)
	}
	return songs, nil
}

// CountSongs returns the number of catalog rows.
func (s *Store) CountSongs(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM song_features`).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count songs: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("catalog: close: %w", err)
	}
	return nil
}
