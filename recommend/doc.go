// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

// Package recommend implements the voice-to-song recommendation engine.
//
// # Architecture
//
// The engine scores catalog songs against a user's vocal profile and
// returns a ranked, filtered, score-blended list of candidates:
//
//   - Normalizer: z-score standardization of 16-dim feature vectors
//     (13 timbre coefficients + 3 pitch statistics), fitted once over a
//     catalog snapshot and reused for every request.
//   - CandidateFilter: popularity floor, pitch-range containment, and
//     genre allow-list, combined with logical AND.
//   - SimilarityRanker: cosine similarity between the normalized user
//     vector and normalized candidate vectors.
//   - ScoreBlender: blends cosine similarity, pitch proximity, a capped
//     popularity bonus, and a dislike penalty into one ranking score.
//
// # Candidate Sources
//
// Two execution strategies share the single blending formula:
//
//   - ScanSource: in-process scan over an immutable catalog snapshot,
//     swapped atomically on reload.
//   - IndexSource: delegated query against an external nearest-neighbor
//     index that performs coarse filtering server-side and returns an
//     oversampled approximate top-K for client-side re-ranking.
//
// # Design Principles
//
//   - Deterministic: fixed catalog, parameters, and request produce
//     identical ordering and scores on every call.
//   - Immutable inputs: snapshots and normalization parameters are
//     shared read-only and replaced as a whole, never mutated in place.
//   - Distinguishable outcomes: an empty candidate set is a valid empty
//     result; an unreachable backend is an error. The two never blur.
//
// # Usage
//
//	snap, err := recommend.FitSnapshot(songs)
//	store := recommend.NewSnapshotStore()
//	store.Swap(snap)
//
//	engine, err := recommend.NewEngine(*recommend.DefaultConfig(), logger,
//	    recommend.NewScanSource(store))
//
//	result, err := engine.Recommend(ctx, recommend.NewRequest(userFeature))
//
// # Thread Safety
//
// The engine is safe for concurrent use. Each recommendation call is a
// pure computation over the request and the snapshot it observes; catalog
// reloads swap the active snapshot atomically so in-flight requests keep
// a consistent view.
package recommend
