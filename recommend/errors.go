// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch indicates a feature vector or normalization parameter
// set with the wrong dimensionality. It is fatal to the single request
// and never corrupts shared state.
var ErrShapeMismatch = errors.New("feature shape mismatch")

// ErrInvalidRequest indicates a malformed recommendation request,
// rejected before any computation.
var ErrInvalidRequest = errors.New("invalid recommendation request")

// ErrBackendUnavailable indicates an unreachable external collaborator
// (vector index, catalog, or dislike store). It is distinct from an
// empty candidate set, which is a legitimate empty result and no error.
var ErrBackendUnavailable = errors.New("recommendation backend unavailable")

// shapeErr wraps ErrShapeMismatch with the observed and expected sizes.
func shapeErr(what string, got, want int) error {
	return fmt.Errorf("%w: %s has %d dimensions, want %d", ErrShapeMismatch, what, got, want)
}
