// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package catalog

import (
	"context"
	"fmt"

	"github.com/hyunwoo-park/voicematch/metrics"
	"github.com/hyunwoo-park/voicematch/recommend"
)

// RefreshSnapshot loads the full catalog, fits normalization
// parameters on it, and swaps the resulting snapshot into the store.
// In-flight requests keep scoring against the previous snapshot until
// the swap lands.
func (s *Store) RefreshSnapshot(ctx context.Context, store *recommend.SnapshotStore) (*recommend.Snapshot, error) {
	songs, err := s.LoadSongs(ctx)
	if err != nil {
		return nil, err
	}

	snap, err := recommend.FitSnapshot(songs)
	if err != nil {
		return nil, fmt.Errorf("catalog: build snapshot: %w", err)
	}

	store.Swap(snap)
	metrics.CatalogSnapshotSongs.Set(float64(snap.Len()))
	metrics.CatalogSnapshotSwaps.Inc()

	s.logger.Info().Int("songs", snap.Len()).Msg("Catalog snapshot refreshed")
	return snap, nil
}
