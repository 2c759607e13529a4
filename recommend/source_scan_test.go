// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import (
	"context"
	"errors"
	"testing"
)

func TestScanSourceNoSnapshot(t *testing.T) {
	t.Parallel()

	src := NewScanSource(NewSnapshotStore())
	_, err := src.Query(context.Background(), FeatureVector{}, Constraints{}, 10)
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("Query() error = %v, want ErrBackendUnavailable", err)
	}
}

func TestScanSourceFiltersBeforeScoring(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore()
	snap, err := FitSnapshot(snapshotSongs())
	if err != nil {
		t.Fatalf("FitSnapshot() error = %v", err)
	}
	store.Swap(snap)

	src := NewScanSource(store)
	user := FeatureVector{PitchLow: 100, PitchHigh: 320, PitchAvg: 180}
	c := Constraints{
		MinPopularity:     1000,
		PitchFilter:       true,
		UserPitchLow:      100,
		UserPitchHigh:     320,
		UserPitchAvg:      180,
		PitchAvgTolerance: 20,
		AllowedGenres:     []string{"ballad"},
	}

	got, err := src.Query(context.Background(), user, c, 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	// Song 2 fails the popularity floor, song 3 fails genre and avg
	// pitch; only song 1 survives.
	if len(got) != 1 || got[0].Song.SongID != 1 {
		t.Fatalf("Query() = %v, want only song 1", got)
	}
}

func TestScanSourceSimilarityOfIdenticalFeature(t *testing.T) {
	t.Parallel()

	songs := snapshotSongs()
	store := NewSnapshotStore()
	snap, err := FitSnapshot(songs)
	if err != nil {
		t.Fatalf("FitSnapshot() error = %v", err)
	}
	store.Swap(snap)

	src := NewScanSource(store)
	// A user vector identical to song 1 normalizes to the same row, so
	// its cosine similarity must be exactly 1.
	got, err := src.Query(context.Background(), songs[0].Feature, Constraints{}, 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	found := false
	for _, cand := range got {
		if cand.Song.SongID == 1 {
			found = true
			if !almostEqual(cand.Similarity, 1) {
				t.Errorf("similarity of identical feature = %f, want 1", cand.Similarity)
			}
		}
	}
	if !found {
		t.Fatal("song 1 missing from unconstrained scan")
	}
}

func TestScanSourceEmptyResultIsNotAnError(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore()
	snap, err := FitSnapshot(snapshotSongs())
	if err != nil {
		t.Fatalf("FitSnapshot() error = %v", err)
	}
	store.Swap(snap)

	src := NewScanSource(store)
	got, err := src.Query(context.Background(), FeatureVector{}, Constraints{MinPopularity: 1 << 30}, 10)
	if err != nil {
		t.Fatalf("Query() error = %v, want nil for an empty match set", err)
	}
	if len(got) != 0 {
		t.Fatalf("Query() returned %d candidates, want 0", len(got))
	}
}
