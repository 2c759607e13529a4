// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import "fmt"

// Package-wide request defaults, mirrored in LimitsConfig.
const (
	defaultTopN          = 10
	defaultPenaltyFactor = 0.1
)

// Config contains all tunable parameters of the recommendation engine.
// The numeric scoring constants are deliberately configuration values
// rather than compile-time truths: they encode product policy, not
// acoustic theory, and are expected to be revisited.
type Config struct {
	// Blend contains the score-blending parameters.
	Blend BlendConfig `json:"blend" koanf:"blend"`

	// Filter contains the candidate-filtering parameters.
	Filter FilterConfig `json:"filter" koanf:"filter"`

	// Limits contains operational limits and request defaults.
	Limits LimitsConfig `json:"limits" koanf:"limits"`
}

// BlendConfig contains the score-blending parameters.
type BlendConfig struct {
	// VectorWeight is the blend weight of the cosine similarity.
	// Default: 0.6.
	VectorWeight float64 `json:"vector_weight" koanf:"vector_weight"`

	// PitchWeight is the blend weight of the pitch proximity score.
	// Default: 0.4.
	PitchWeight float64 `json:"pitch_weight" koanf:"pitch_weight"`

	// PitchLowDivisor scales the low-pitch distance into a [0, 1] score.
	// Default: 100 (Hz).
	PitchLowDivisor float64 `json:"pitch_low_divisor" koanf:"pitch_low_divisor"`

	// PitchHighDivisor scales the high-pitch distance.
	// Default: 100 (Hz).
	PitchHighDivisor float64 `json:"pitch_high_divisor" koanf:"pitch_high_divisor"`

	// PitchAvgDivisor scales the average-pitch distance.
	// Default: 50 (Hz).
	PitchAvgDivisor float64 `json:"pitch_avg_divisor" koanf:"pitch_avg_divisor"`

	// PitchMissMultiplier softens the pitch score of candidates that
	// fail the pitch containment condition without excluding them.
	// Default: 0.5.
	PitchMissMultiplier float64 `json:"pitch_miss_multiplier" koanf:"pitch_miss_multiplier"`

	// PopularityBonusCap caps the popularity bonus so popularity cannot
	// dominate timbre and pitch fit.
	// Default: 0.1.
	PopularityBonusCap float64 `json:"popularity_bonus_cap" koanf:"popularity_bonus_cap"`

	// PopularityBonusDivisor converts raw popularity into the bonus.
	// Default: 100000.
	PopularityBonusDivisor float64 `json:"popularity_bonus_divisor" koanf:"popularity_bonus_divisor"`
}

// FilterConfig contains the candidate-filtering parameters.
type FilterConfig struct {
	// PitchAvgTolerance is the maximum allowed |song avg - user avg|
	// in Hz for the pitch containment condition. This is a product
	// policy value, not derived from acoustic theory.
	// Default: 20.
	PitchAvgTolerance float64 `json:"pitch_avg_tolerance" koanf:"pitch_avg_tolerance"`
}

// LimitsConfig contains operational limits and request defaults.
type LimitsConfig struct {
	// DefaultTopN is applied when a request leaves TopN zero.
	// Default: 10.
	DefaultTopN int `json:"default_top_n" koanf:"default_top_n"`

	// MaxTopN caps the TopN of any request.
	// Default: 100.
	MaxTopN int `json:"max_top_n" koanf:"max_top_n"`

	// DefaultPenaltyFactor is applied when a request leaves
	// PenaltyFactor zero.
	// Default: 0.1.
	DefaultPenaltyFactor float64 `json:"default_penalty_factor" koanf:"default_penalty_factor"`

	// OversampleBase is the base top-K multiplier for delegated index
	// queries.
	// Default: 3.
	OversampleBase int `json:"oversample_base" koanf:"oversample_base"`

	// OversamplePerDislike widens the multiplier per disliked song, so
	// enough non-suppressed candidates survive client-side re-ranking.
	// Default: 2.
	OversamplePerDislike int `json:"oversample_per_dislike" koanf:"oversample_per_dislike"`

	// OversampleCap caps the multiplier.
	// Default: 20.
	OversampleCap int `json:"oversample_cap" koanf:"oversample_cap"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Blend: BlendConfig{
			VectorWeight:           0.6,
			PitchWeight:            0.4,
			PitchLowDivisor:        100,
			PitchHighDivisor:       100,
			PitchAvgDivisor:        50,
			PitchMissMultiplier:    0.5,
			PopularityBonusCap:     0.1,
			PopularityBonusDivisor: 100000,
		},
		Filter: FilterConfig{
			PitchAvgTolerance: 20,
		},
		Limits: LimitsConfig{
			DefaultTopN:          defaultTopN,
			MaxTopN:              100,
			DefaultPenaltyFactor: defaultPenaltyFactor,
			OversampleBase:       3,
			OversamplePerDislike: 2,
			OversampleCap:        20,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Blend.VectorWeight < 0 {
		return fmt.Errorf("blend.vector_weight must be non-negative, got %f", c.Blend.VectorWeight)
	}
	if c.Blend.PitchWeight < 0 {
		return fmt.Errorf("blend.pitch_weight must be non-negative, got %f", c.Blend.PitchWeight)
	}
	if c.Blend.VectorWeight+c.Blend.PitchWeight == 0 {
		return fmt.Errorf("blend weights must not both be zero")
	}
	if c.Blend.PitchLowDivisor <= 0 || c.Blend.PitchHighDivisor <= 0 || c.Blend.PitchAvgDivisor <= 0 {
		return fmt.Errorf("blend pitch divisors must be positive")
	}
	if c.Blend.PitchMissMultiplier < 0 || c.Blend.PitchMissMultiplier > 1 {
		return fmt.Errorf("blend.pitch_miss_multiplier must be in [0, 1], got %f", c.Blend.PitchMissMultiplier)
	}
	if c.Blend.PopularityBonusCap < 0 {
		return fmt.Errorf("blend.popularity_bonus_cap must be non-negative, got %f", c.Blend.PopularityBonusCap)
	}
	if c.Blend.PopularityBonusDivisor <= 0 {
		return fmt.Errorf("blend.popularity_bonus_divisor must be positive, got %f", c.Blend.PopularityBonusDivisor)
	}

	if c.Filter.PitchAvgTolerance < 0 {
		return fmt.Errorf("filter.pitch_avg_tolerance must be non-negative, got %f", c.Filter.PitchAvgTolerance)
	}

	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("limits.default_top_n must be positive, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("limits.max_top_n must be >= limits.default_top_n, got %d < %d",
			c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}
	if c.Limits.DefaultPenaltyFactor <= 0 || c.Limits.DefaultPenaltyFactor > 1 {
		return fmt.Errorf("limits.default_penalty_factor must be in (0, 1], got %f", c.Limits.DefaultPenaltyFactor)
	}
	if c.Limits.OversampleBase < 1 {
		return fmt.Errorf("limits.oversample_base must be positive, got %d", c.Limits.OversampleBase)
	}
	if c.Limits.OversamplePerDislike < 0 {
		return fmt.Errorf("limits.oversample_per_dislike must be non-negative, got %d", c.Limits.OversamplePerDislike)
	}
	if c.Limits.OversampleCap < c.Limits.OversampleBase {
		return fmt.Errorf("limits.oversample_cap must be >= limits.oversample_base, got %d < %d",
			c.Limits.OversampleCap, c.Limits.OversampleBase)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	return &Config{
		Blend:  c.Blend,
		Filter: c.Filter,
		Limits: c.Limits,
	}
}

// oversampleTopK computes the widened top-K for delegated index queries:
// topN times a multiplier that grows with the dislike list, capped.
func (l LimitsConfig) oversampleTopK(topN, dislikes int) int {
	multiplier := l.OversampleBase + l.OversamplePerDislike*dislikes
	if multiplier > l.OversampleCap {
		multiplier = l.OversampleCap
	}
	return topN * multiplier
}
