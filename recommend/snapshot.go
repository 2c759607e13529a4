// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import (
	"fmt"
	"sync/atomic"
)

// Snapshot is an immutable view of the scorable catalog. Songs and
// their normalized feature rows are built once and never mutated, so
// concurrent requests can read a snapshot without locking.
type Snapshot struct {
	songs      []SongRecord
	normalized [][]float64
	params     *Params
}

// NewSnapshot normalizes every song with the given parameters and
// returns an immutable snapshot. Duplicate song IDs and feature rows
// that fail normalization are rejected, so a snapshot that builds
// successfully is fully scorable.
func NewSnapshot(songs []SongRecord, params *Params) (*Snapshot, error) {
	if params == nil {
		return nil, fmt.Errorf("snapshot: nil normalization params")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	seen := make(map[int64]struct{}, len(songs))
	owned := make([]SongRecord, len(songs))
	normalized := make([][]float64, len(songs))
	for i, song := range songs {
		if _, dup := seen[song.SongID]; dup {
			return nil, fmt.Errorf("snapshot: duplicate song ID %d", song.SongID)
		}
		seen[song.SongID] = struct{}{}

		if err := song.Feature.Validate(); err != nil {
			return nil, fmt.Errorf("snapshot: song %d: %w", song.SongID, err)
		}
		row, err := params.TransformFeature(song.Feature)
		if err != nil {
			return nil, fmt.Errorf("snapshot: song %d: %w", song.SongID, err)
		}
		owned[i] = song
		normalized[i] = row
	}

	return &Snapshot{songs: owned, normalized: normalized, params: params}, nil
}

// FitSnapshot fits normalization parameters on the song set itself and
// builds a snapshot from them. This is the usual path when the catalog
// is the training population.
func FitSnapshot(songs []SongRecord) (*Snapshot, error) {
	params, err := Fit(songs)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return NewSnapshot(songs, params)
}

// Len returns the number of songs in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.songs)
}

// Params returns the normalization parameters the snapshot was built
// with. Callers must not mutate the returned value.
func (s *Snapshot) Params() *Params {
	return s.params
}

// SnapshotStore holds the current catalog snapshot and swaps it
// atomically. Readers always observe either the old snapshot or the
// new one in full, never a partially updated catalog.
type SnapshotStore struct {
	current atomic.Pointer[Snapshot]
}

// NewSnapshotStore creates an empty store. Load returns nil until the
// first Swap.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Load returns the current snapshot, or nil if none has been swapped
// in yet.
func (s *SnapshotStore) Load() *Snapshot {
	return s.current.Load()
}

// Swap replaces the current snapshot. In-flight requests holding the
// previous snapshot finish against it unaffected.
func (s *SnapshotStore) Swap(snap *Snapshot) {
	s.current.Store(snap)
}
