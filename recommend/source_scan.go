// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import (
	"context"
	"fmt"
)

// ScanSource scores candidates by scanning the full in-process catalog
// snapshot. Filtering happens before scoring, so similarity is only
// computed for songs that satisfy the constraints.
type ScanSource struct {
	store *SnapshotStore
}

// NewScanSource creates a candidate source over the given snapshot
// store.
func NewScanSource(store *SnapshotStore) *ScanSource {
	return &ScanSource{store: store}
}

// Name identifies the source in logs and result metadata.
func (s *ScanSource) Name() string {
	return "catalog-scan"
}

// Query scans the current snapshot and returns every eligible song
// with its cosine similarity to the user vector. topK is ignored: the
// scan scores all matches and leaves truncation to the engine, which
// must rank the complete eligible set anyway.
//
// The user vector is normalized with the snapshot's own parameters, so
// both sides of the similarity always share one scaling.
func (s *ScanSource) Query(ctx context.Context, user FeatureVector, c Constraints, topK int) ([]Candidate, error) {
	snap := s.store.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: no catalog snapshot loaded", ErrBackendUnavailable)
	}

	userVec, err := snap.params.TransformFeature(user)
	if err != nil {
		return nil, fmt.Errorf("catalog-scan: %w", err)
	}

	var out []Candidate
	for i, song := range snap.songs {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !c.Matches(song) {
			continue
		}
		out = append(out, Candidate{
			Song:       song,
			Similarity: CosineSimilarity(userVec, snap.normalized[i]),
		})
	}
	return out, nil
}
