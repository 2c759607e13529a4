// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import "gonum.org/v1/gonum/floats"

// CosineSimilarity computes the cosine similarity between two vectors,
// in [-1, 1]. A zero vector yields 0 by convention rather than an error:
// there is no acoustically meaningful signal to compare.
//
// Callers must pass vectors of equal length; the candidate sources
// guarantee this by construction (both sides pass through the same
// normalization parameters).
func CosineSimilarity(a, b []float64) float64 {
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
