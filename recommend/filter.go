// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import "math"

// Constraints is the stateless filter payload handed to a candidate
// source. All active constraints combine with logical AND. The same
// pitch containment predicate also drives the blender's soft penalty,
// so the two cannot drift apart.
type Constraints struct {
	// MinPopularity is the popularity floor. Zero means no floor.
	MinPopularity int

	// PitchFilter enables pitch-range containment filtering against the
	// user bounds below.
	PitchFilter bool

	// UserPitchLow, UserPitchHigh, and UserPitchAvg are the user's pitch
	// bounds in Hz.
	UserPitchLow  float64
	UserPitchHigh float64
	UserPitchAvg  float64

	// PitchAvgTolerance is the maximum |song avg - user avg| in Hz.
	PitchAvgTolerance float64

	// AllowedGenres restricts candidates to exact genre membership when
	// non-empty.
	AllowedGenres []string
}

// constraintsFor builds the filter payload for a prepared request.
func constraintsFor(req Request, cfg FilterConfig) Constraints {
	return Constraints{
		MinPopularity:     req.MinPopularity,
		PitchFilter:       !req.DisablePitchFilter,
		UserPitchLow:      req.UserFeature.PitchLow,
		UserPitchHigh:     req.UserFeature.PitchHigh,
		UserPitchAvg:      req.UserFeature.PitchAvg,
		PitchAvgTolerance: cfg.PitchAvgTolerance,
		AllowedGenres:     req.AllowedGenres,
	}
}

// Matches reports whether a song passes every active constraint.
func (c Constraints) Matches(s SongRecord) bool {
	if s.Popularity < c.MinPopularity {
		return false
	}
	if c.PitchFilter && !c.PitchContained(s.Feature) {
		return false
	}
	if len(c.AllowedGenres) > 0 && !c.genreAllowed(s.Genre) {
		return false
	}
	return true
}

// PitchContained reports whether the song's vocal range fits inside the
// user's range with a close average pitch:
//
//	song.low >= user.low AND song.high <= user.high AND
//	|song.avg - user.avg| <= tolerance
//
// This is a product policy for "singable by this voice", not an
// acoustically derived criterion.
func (c Constraints) PitchContained(song FeatureVector) bool {
	return song.PitchLow >= c.UserPitchLow &&
		song.PitchHigh <= c.UserPitchHigh &&
		math.Abs(song.PitchAvg-c.UserPitchAvg) <= c.PitchAvgTolerance
}

// genreAllowed reports exact membership in the allow-list.
func (c Constraints) genreAllowed(genre string) bool {
	for _, g := range c.AllowedGenres {
		if genre == g {
			return true
		}
	}
	return false
}

// Relaxed returns the popularity-only fallback constraints, dropping the
// pitch and genre conditions. The popularity floor is never dropped.
func (c Constraints) Relaxed() Constraints {
	relaxed := c
	relaxed.PitchFilter = false
	relaxed.AllowedGenres = nil
	return relaxed
}

// relaxable reports whether Relaxed would change anything, i.e. whether
// a fallback retry is worth attempting.
func (c Constraints) relaxable() bool {
	return c.PitchFilter || len(c.AllowedGenres) > 0
}
