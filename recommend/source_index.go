// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import (
	"context"
	"fmt"

	"github.com/hyunwoo-park/voicematch/vectorindex"
)

// IndexQuerier is the slice of the vector index client the index
// source needs. Satisfied by *vectorindex.Client.
type IndexQuerier interface {
	Query(ctx context.Context, vector []float64, filter vectorindex.Filter, topK int) ([]vectorindex.Match, error)
}

// IndexSource delegates candidate retrieval to an external vector
// index. Filtering runs inside the index as a metadata filter, and
// similarity scores come back precomputed, so only the requested
// top-k candidates cross the wire.
//
// The source normalizes the user vector with the same parameters the
// index vectors were built from, loaded from the params artifact that
// accompanied the index build.
type IndexSource struct {
	client IndexQuerier
	params *Params
}

// NewIndexSource creates an index-backed candidate source. params must
// be the normalization parameters used when the index was populated.
func NewIndexSource(client IndexQuerier, params *Params) (*IndexSource, error) {
	if client == nil {
		return nil, fmt.Errorf("index source: nil client")
	}
	if params == nil {
		return nil, fmt.Errorf("index source: nil normalization params")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("index source: %w", err)
	}
	return &IndexSource{client: client, params: params}, nil
}

// Name identifies the source in logs and result metadata.
func (s *IndexSource) Name() string {
	return "vector-index"
}

// Query asks the index for the topK best matches under the given
// constraints. The returned song records carry only the metadata the
// index stores; the full feature vector stays in the index.
func (s *IndexSource) Query(ctx context.Context, user FeatureVector, c Constraints, topK int) ([]Candidate, error) {
	userVec, err := s.params.TransformFeature(user)
	if err != nil {
		return nil, fmt.Errorf("vector-index: %w", err)
	}

	matches, err := s.client.Query(ctx, userVec, s.buildFilter(c), topK)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	out := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, Candidate{
			Song: SongRecord{
				SongID: m.SongID,
				Feature: FeatureVector{
					PitchLow:  m.Metadata.PitchLow,
					PitchHigh: m.Metadata.PitchHigh,
					PitchAvg:  m.Metadata.PitchAvg,
				},
				Popularity: m.Metadata.Popularity,
				Genre:      m.Metadata.Genre,
			},
			Similarity: m.Score,
		})
	}
	return out, nil
}

// buildFilter translates constraints into the index metadata filter.
// The pitch containment condition inverts between sides: the song's
// low bound must sit at or above the user's, and the song's high bound
// at or below the user's.
func (s *IndexSource) buildFilter(c Constraints) vectorindex.Filter {
	f := make(vectorindex.Filter)
	if c.MinPopularity > 0 {
		f.GTE("popularity", float64(c.MinPopularity))
	}
	if c.PitchFilter {
		f.GTE("pitch_low", c.UserPitchLow)
		f.LTE("pitch_high", c.UserPitchHigh)
		f.Between("pitch_avg", c.UserPitchAvg-c.PitchAvgTolerance, c.UserPitchAvg+c.PitchAvgTolerance)
	}
	f.In("genre", c.AllowedGenres)
	return f
}
