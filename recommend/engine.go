// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hyunwoo-park/voicematch/metrics"
	"github.com/hyunwoo-park/voicematch/validation"
)

// Engine orchestrates one recommendation request: validate, resolve
// dislikes, retrieve candidates from the configured source, fall back
// to the relaxed filter when the strict one yields nothing, blend the
// scores, and rank.
//
// The engine itself is stateless between requests; all catalog state
// lives behind the candidate source. Safe for concurrent use.
type Engine struct {
	cfg      Config
	logger   zerolog.Logger
	source   CandidateSource
	blender  *ScoreBlender
	dislikes DislikeProvider
}

// NewEngine creates an engine over the given candidate source.
func NewEngine(cfg Config, logger zerolog.Logger, source CandidateSource) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("engine: nil candidate source")
	}

	return &Engine{
		cfg:     cfg,
		logger:  logger,
		source:  source,
		blender: NewScoreBlender(cfg.Blend, cfg.Filter.PitchAvgTolerance),
	}, nil
}

// SetDislikeProvider attaches a persistent dislike store. Dislikes
// from the provider merge with those carried on the request. Must be
// called before the engine starts serving requests.
func (e *Engine) SetDislikeProvider(p DislikeProvider) {
	e.dislikes = p
}

// Recommend returns the top-N ranked songs for the user described by
// the request.
//
// An empty item list with a nil error means no song satisfied even the
// relaxed filter; it is a valid outcome, not a failure. A non-nil
// error wrapping ErrBackendUnavailable means candidate retrieval
// failed and the caller should retry or degrade, never interpret the
// result as "no matches".
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	sourceName := e.source.Name()

	e.prepare(&req)
	if err := e.validateRequest(req); err != nil {
		metrics.RecommendationsTotal.WithLabelValues(sourceName, "invalid").Inc()
		return nil, err
	}

	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Int64("user_id", req.UserID).
		Str("source", sourceName).
		Logger()

	disliked, err := e.resolveDislikes(ctx, req)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues(sourceName, "error").Inc()
		return nil, err
	}

	constraints := constraintsFor(req, e.cfg.Filter)
	topK := e.cfg.Limits.oversampleTopK(req.TopN, len(disliked))

	candidates, err := e.source.Query(ctx, req.UserFeature, constraints, topK)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues(sourceName, "error").Inc()
		logger.Error().Err(err).Msg("Candidate retrieval failed")
		return nil, fmt.Errorf("recommend: %w", err)
	}

	fallbackUsed := false
	if len(candidates) == 0 && constraints.relaxable() {
		fallbackUsed = true
		metrics.FallbacksTotal.WithLabelValues(sourceName).Inc()
		logger.Debug().Msg("Strict filter matched nothing, retrying with popularity-only filter")

		candidates, err = e.source.Query(ctx, req.UserFeature, constraints.Relaxed(), topK)
		if err != nil {
			metrics.RecommendationsTotal.WithLabelValues(sourceName, "error").Inc()
			logger.Error().Err(err).Msg("Fallback candidate retrieval failed")
			return nil, fmt.Errorf("recommend: fallback: %w", err)
		}
	}

	items, penalized := e.rank(req, candidates, disliked)

	metrics.CandidatesConsidered.WithLabelValues(sourceName).Observe(float64(len(candidates)))
	if penalized > 0 {
		metrics.PenalizedCandidates.Add(float64(penalized))
	}

	outcome := "ok"
	if len(items) == 0 {
		outcome = "empty"
	}
	metrics.RecommendationsTotal.WithLabelValues(sourceName, outcome).Inc()
	metrics.RecommendationDuration.WithLabelValues(sourceName).Observe(time.Since(start).Seconds())

	logger.Info().
		Int("candidates", len(candidates)).
		Int("returned", len(items)).
		Int("penalized", penalized).
		Bool("fallback", fallbackUsed).
		Dur("duration", time.Since(start)).
		Msg("Recommendation request completed")

	return &Result{
		Items:           items,
		TotalCandidates: len(candidates),
		Metadata: ResultMetadata{
			RequestID:    req.RequestID,
			Source:       sourceName,
			FallbackUsed: fallbackUsed,
			LatencyMS:    time.Since(start).Milliseconds(),
			Timestamp:    time.Now().UTC(),
		},
	}, nil
}

// prepare fills request defaults in place. Zero TopN and zero
// PenaltyFactor mean "unset" and take the configured defaults; TopN is
// capped at the configured maximum.
func (e *Engine) prepare(req *Request) {
	if req.TopN == 0 {
		req.TopN = e.cfg.Limits.DefaultTopN
	}
	if req.TopN > e.cfg.Limits.MaxTopN {
		req.TopN = e.cfg.Limits.MaxTopN
	}
	if req.PenaltyFactor == 0 {
		req.PenaltyFactor = e.cfg.Limits.DefaultPenaltyFactor
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
}

func (e *Engine) validateRequest(req Request) error {
	if verr := validation.ValidateStruct(&req); verr != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, verr.Error())
	}
	if err := req.UserFeature.Validate(); err != nil {
		return fmt.Errorf("%w: user feature: %s", ErrInvalidRequest, err.Error())
	}
	return nil
}

// resolveDislikes merges dislikes carried on the request with those
// from the persistent store, if one is attached. A store failure is a
// backend error: silently ignoring dislikes would surface songs the
// user explicitly rejected.
func (e *Engine) resolveDislikes(ctx context.Context, req Request) (map[int64]struct{}, error) {
	disliked := make(map[int64]struct{}, len(req.DislikedSongIDs))
	for _, id := range req.DislikedSongIDs {
		disliked[id] = struct{}{}
	}

	if e.dislikes != nil {
		stored, err := e.dislikes.DislikedSongIDs(ctx, req.UserID)
		if err != nil {
			metrics.DislikeLookupErrors.Inc()
			return nil, fmt.Errorf("recommend: %w: dislike lookup: %v", ErrBackendUnavailable, err)
		}
		for _, id := range stored {
			disliked[id] = struct{}{}
		}
	}

	return disliked, nil
}

// rank blends every candidate, sorts by final score descending, and
// truncates to the requested size. Returns the items and the number of
// penalized candidates. Order among equal final scores is unspecified.
func (e *Engine) rank(req Request, candidates []Candidate, disliked map[int64]struct{}) ([]Recommendation, int) {
	items := make([]Recommendation, 0, len(candidates))
	penalized := 0
	for _, c := range candidates {
		_, isDisliked := disliked[c.Song.SongID]
		if isDisliked {
			penalized++
		}
		items = append(items, e.blender.Blend(req.UserFeature, c, isDisliked, req.PenaltyFactor))
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].FinalScore > items[j].FinalScore
	})

	if len(items) > req.TopN {
		items = items[:req.TopN]
	}
	return items, penalized
}
