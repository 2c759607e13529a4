// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import "math"

// ScoreBlender combines cosine similarity, pitch proximity, a capped
// popularity bonus, and the dislike penalty into one ranking score per
// candidate. Both candidate sources feed the same blender, so the
// formula cannot drift between the scan and index execution strategies.
type ScoreBlender struct {
	cfg               BlendConfig
	pitchAvgTolerance float64
}

// NewScoreBlender creates a blender from the blend parameters and the
// pitch tolerance shared with the candidate filter.
func NewScoreBlender(cfg BlendConfig, pitchAvgTolerance float64) *ScoreBlender {
	return &ScoreBlender{cfg: cfg, pitchAvgTolerance: pitchAvgTolerance}
}

// Blend produces the ranked entry for one candidate.
//
// The pitch proximity score averages three linear proximity terms, each
// clamped at zero:
//
//	low:  max(0, 1 - |songLow - userLow| / lowDivisor)
//	high: max(0, 1 - |songHigh - userHigh| / highDivisor)
//	avg:  max(0, 1 - |songAvg - userAvg| / avgDivisor)
//
// Candidates failing the pitch containment condition keep a softened
// pitch score (multiplied, not zeroed) so a strong timbre match can
// still rank. The popularity bonus is capped so popularity cannot
// dominate vocal fit. The dislike penalty multiplies both the blended
// score and the similarity after blending, so it compounds on the full
// score rather than only on the raw similarity.
func (b *ScoreBlender) Blend(user FeatureVector, c Candidate, disliked bool, penaltyFactor float64) Recommendation {
	song := c.Song.Feature

	low := clampZero(1 - math.Abs(song.PitchLow-user.PitchLow)/b.cfg.PitchLowDivisor)
	high := clampZero(1 - math.Abs(song.PitchHigh-user.PitchHigh)/b.cfg.PitchHighDivisor)
	avg := clampZero(1 - math.Abs(song.PitchAvg-user.PitchAvg)/b.cfg.PitchAvgDivisor)
	pitchScore := (low + high + avg) / 3

	condition := Constraints{
		UserPitchLow:      user.PitchLow,
		UserPitchHigh:     user.PitchHigh,
		UserPitchAvg:      user.PitchAvg,
		PitchAvgTolerance: b.pitchAvgTolerance,
	}.PitchContained(song)
	if !condition {
		pitchScore *= b.cfg.PitchMissMultiplier
	}

	popularityBonus := float64(c.Song.Popularity) / b.cfg.PopularityBonusDivisor
	if popularityBonus > b.cfg.PopularityBonusCap {
		popularityBonus = b.cfg.PopularityBonusCap
	}

	vectorScore := c.Similarity
	finalScore := b.cfg.VectorWeight*vectorScore + b.cfg.PitchWeight*pitchScore + popularityBonus

	if disliked {
		finalScore *= penaltyFactor
		vectorScore *= penaltyFactor
	}

	return Recommendation{
		SongID:                  c.Song.SongID,
		Similarity:              vectorScore,
		PitchScore:              pitchScore,
		FinalScore:              finalScore,
		Popularity:              c.Song.Popularity,
		PitchLow:                song.PitchLow,
		PitchHigh:               song.PitchHigh,
		PitchAvg:                song.PitchAvg,
		Genre:                   c.Song.Genre,
		PitchConditionSatisfied: condition,
	}
}

// clampZero clamps a proximity term at zero.
func clampZero(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
