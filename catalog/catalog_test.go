// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package catalog

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hyunwoo-park/voicematch/recommend"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(Config{Path: ":memory:", MaxMemory: "128MB"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testSongs() []recommend.SongRecord {
	return []recommend.SongRecord{
		{
			SongID: 1,
			Feature: recommend.FeatureVector{
				Timbre:   [recommend.TimbreDim]float64{0.1, -0.2, 0.3},
				PitchLow: 100, PitchHigh: 300, PitchAvg: 180,
			},
			Popularity: 2000,
			Genre:      "ballad",
		},
		{
			SongID: 2,
			Feature: recommend.FeatureVector{
				Timbre:   [recommend.TimbreDim]float64{-0.4, 0.5, 0.6},
				PitchLow: 90, PitchHigh: 310, PitchAvg: 185,
			},
			Popularity: 500,
			Genre:      "ballad",
		},
	}
}

func TestUpsertAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	ctx := context.Background()
	songs := testSongs()

	if err := s.UpsertSongs(ctx, songs); err != nil {
		t.Fatalf("UpsertSongs() error = %v", err)
	}

	loaded, err := s.LoadSongs(ctx)
	if err != nil {
		t.Fatalf("LoadSongs() error = %v", err)
	}
	if len(loaded) != len(songs) {
		t.Fatalf("len = %d, want %d", len(loaded), len(songs))
	}
	for i, want := range songs {
		got := loaded[i]
		if got.SongID != want.SongID || got.Popularity != want.Popularity || got.Genre != want.Genre {
			t.Errorf("song %d = %+v, want %+v", i, got, want)
		}
		if got.Feature != want.Feature {
			t.Errorf("song %d feature = %+v, want %+v", i, got.Feature, want.Feature)
		}
	}
}

func TestUpsertReplacesExistingRow(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	ctx := context.Background()
	songs := testSongs()

	if err := s.UpsertSongs(ctx, songs); err != nil {
		t.Fatalf("UpsertSongs() error = %v", err)
	}

	songs[0].Popularity = 9999
	if err := s.UpsertSongs(ctx, songs[:1]); err != nil {
		t.Fatalf("UpsertSongs() error = %v", err)
	}

	n, err := s.CountSongs(ctx)
	if err != nil {
		t.Fatalf("CountSongs() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("CountSongs() = %d, want 2 after replace", n)
	}

	loaded, err := s.LoadSongs(ctx)
	if err != nil {
		t.Fatalf("LoadSongs() error = %v", err)
	}
	if loaded[0].Popularity != 9999 {
		t.Errorf("popularity = %d, want updated 9999", loaded[0].Popularity)
	}
}

func TestUpsertRejectsNonFiniteFeatures(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	bad := testSongs()[:1]
	bad[0].Feature.PitchAvg = math.NaN()

	if err := s.UpsertSongs(context.Background(), bad); err == nil {
		t.Fatal("UpsertSongs() with NaN expected error")
	}
}

func TestRefreshSnapshot(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	ctx := context.Background()

	if err := s.UpsertSongs(ctx, testSongs()); err != nil {
		t.Fatalf("UpsertSongs() error = %v", err)
	}

	store := recommend.NewSnapshotStore()
	snap, err := s.RefreshSnapshot(ctx, store)
	if err != nil {
		t.Fatalf("RefreshSnapshot() error = %v", err)
	}
	if snap.Len() != 2 {
		t.Errorf("snapshot Len() = %d, want 2", snap.Len())
	}
	if store.Load() != snap {
		t.Error("snapshot store should hold the refreshed snapshot")
	}
}

func TestRefreshSnapshotEmptyCatalog(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	if _, err := s.RefreshSnapshot(context.Background(), recommend.NewSnapshotStore()); err == nil {
		t.Fatal("RefreshSnapshot() on empty catalog expected error")
	}
}
