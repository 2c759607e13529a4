// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	// TimbreDim is the number of timbre (MFCC-derived) coefficients.
	TimbreDim = 13

	// PitchDim is the number of pitch statistics (low, high, average).
	PitchDim = 3

	// FeatureDim is the total feature dimensionality: timbre then pitch,
	// in fixed order timbre_0..timbre_12, pitch_low, pitch_high, pitch_avg.
	FeatureDim = TimbreDim + PitchDim
)

// FeatureVector is the fixed-shape numeric representation of a voice or
// song: 13 timbre coefficients plus pitch range statistics in Hz.
// It is immutable once produced by the feature-extraction collaborator.
type FeatureVector struct {
	// Timbre holds the MFCC-derived coefficients.
	Timbre [TimbreDim]float64 `json:"timbre"`

	// PitchLow is the lowest fundamental frequency in Hz.
	PitchLow float64 `json:"pitch_low"`

	// PitchHigh is the highest fundamental frequency in Hz.
	PitchHigh float64 `json:"pitch_high"`

	// PitchAvg is the average fundamental frequency in Hz.
	PitchAvg float64 `json:"pitch_avg"`
}

// Vector flattens the feature into its 16-dimensional fixed-order form.
func (f FeatureVector) Vector() []float64 {
	v := make([]float64, 0, FeatureDim)
	v = append(v, f.Timbre[:]...)
	v = append(v, f.PitchLow, f.PitchHigh, f.PitchAvg)
	return v
}

// Validate rejects vectors carrying non-finite values. A partially
// populated extraction result surfaces as NaN fields and must be caught
// here, before it can corrupt a similarity computation.
func (f FeatureVector) Validate() error {
	for i, x := range f.Vector() {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: non-finite value at dimension %d", ErrShapeMismatch, i)
		}
	}
	return nil
}

// SongRecord is one catalog entry: a song's precomputed features plus
// the metadata the filter and blender need. Catalog snapshots are
// read-only for the duration of a recommendation call.
type SongRecord struct {
	// SongID uniquely identifies the song within a catalog snapshot.
	SongID int64 `json:"song_id"`

	// Feature is the song's 16-dimensional feature vector.
	Feature FeatureVector `json:"feature"`

	// Popularity is a non-negative play-count-derived metric.
	Popularity int `json:"popularity"`

	// Genre is the song's genre label, possibly empty.
	Genre string `json:"genre,omitempty"`
}

// Request is a recommendation request for one user voice sample.
type Request struct {
	// UserID identifies the requesting user for per-request dislike
	// lookups. Zero disables the lookup.
	UserID int64 `json:"user_id,omitempty"`

	// UserFeature is the extracted feature vector of the voice sample.
	UserFeature FeatureVector `json:"user_feature"`

	// TopN is the maximum number of recommendations to return.
	// Defaults to Config.Limits.DefaultTopN if zero.
	TopN int `json:"top_n,omitempty" validate:"min=1"`

	// MinPopularity is the popularity floor. Zero means no floor.
	MinPopularity int `json:"min_popularity,omitempty" validate:"min=0"`

	// AllowedGenres restricts candidates to exact genre matches when
	// non-empty. No substring or fuzzy matching is performed.
	AllowedGenres []string `json:"allowed_genres,omitempty"`

	// DislikedSongIDs are songs to penalize. When a DislikeProvider is
	// configured, its stored dislikes are read fresh per request and
	// merged with this list.
	DislikedSongIDs []int64 `json:"disliked_song_ids,omitempty"`

	// PenaltyFactor multiplies the scores of disliked songs.
	// Defaults to Config.Limits.DefaultPenaltyFactor if zero.
	PenaltyFactor float64 `json:"penalty_factor,omitempty" validate:"gt=0,lte=1"`

	// DisablePitchFilter turns off pitch-range containment filtering.
	// The pitch filter is on by default.
	DisablePitchFilter bool `json:"disable_pitch_filter,omitempty"`

	// RequestID is a unique identifier for tracing. Generated if empty.
	RequestID string `json:"request_id,omitempty"`
}

// NewRequest returns a Request for the given user feature with the
// package defaults applied: top 10 results, 0.1 dislike penalty, pitch
// filter enabled, no popularity floor.
func NewRequest(user FeatureVector) Request {
	return Request{
		UserFeature:   user,
		TopN:          defaultTopN,
		PenaltyFactor: defaultPenaltyFactor,
	}
}

// Recommendation is one ranked result entry with its score breakdown.
type Recommendation struct {
	// SongID is the recommended song.
	SongID int64 `json:"song_id"`

	// Similarity is the cosine similarity in [-1, 1], after any
	// dislike penalty.
	Similarity float64 `json:"similarity"`

	// PitchScore is the pitch proximity score in [0, 1].
	PitchScore float64 `json:"pitch_score"`

	// FinalScore is the blended ranking score.
	FinalScore float64 `json:"final_score"`

	// Popularity is the song's popularity metric.
	Popularity int `json:"popularity"`

	// PitchLow, PitchHigh, and PitchAvg echo the song's pitch range in Hz.
	PitchLow  float64 `json:"pitch_low"`
	PitchHigh float64 `json:"pitch_high"`
	PitchAvg  float64 `json:"pitch_avg"`

	// Genre is the song's genre label.
	Genre string `json:"genre,omitempty"`

	// PitchConditionSatisfied reports whether the song's range fits
	// inside the user's range with a close average pitch.
	PitchConditionSatisfied bool `json:"pitch_condition_satisfied"`
}

// Result is an ordered recommendation response.
type Result struct {
	// Items is sorted by FinalScore descending, at most TopN entries.
	Items []Recommendation `json:"items"`

	// TotalCandidates is the number of candidates scored before truncation.
	TotalCandidates int `json:"total_candidates"`

	// Metadata carries timing and diagnostic information.
	Metadata ResultMetadata `json:"metadata"`
}

// ResultMetadata carries timing and diagnostic information.
type ResultMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// Source names the candidate source that served the request.
	Source string `json:"source"`

	// FallbackUsed reports whether the popularity-only fallback filter
	// produced the candidate set.
	FallbackUsed bool `json:"fallback_used"`

	// LatencyMS is the total recommendation latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Timestamp is when the result was generated.
	Timestamp time.Time `json:"timestamp"`
}

// Candidate is a similarity-scored song produced by a CandidateSource,
// before blending.
type Candidate struct {
	// Song is the catalog entry.
	Song SongRecord

	// Similarity is the cosine similarity between the normalized user
	// vector and the song's normalized vector.
	Similarity float64
}

// CandidateSource produces similarity-scored eligible candidates for a
// user vector under the given constraints. Both execution strategies
// (in-process scan and delegated index query) implement this interface
// so the blending formula cannot drift between them.
type CandidateSource interface {
	// Name returns the source identifier for logging and metrics.
	Name() string

	// Query returns candidates passing the constraints, scored by cosine
	// similarity against the user feature. topK bounds the result size
	// for delegated sources; in-process sources may return every eligible
	// candidate. An empty slice with a nil error means no candidates
	// matched; backend failures return an error wrapping
	// ErrBackendUnavailable.
	Query(ctx context.Context, user FeatureVector, c Constraints, topK int) ([]Candidate, error)
}

// DislikeProvider supplies the set of songs a user has disliked.
// The list is read fresh on every request, never cached inside the engine.
type DislikeProvider interface {
	DislikedSongIDs(ctx context.Context, userID int64) ([]int64, error)
}
