// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

// Package vectorindex provides an HTTP client for an external
// approximate-nearest-neighbor vector index holding normalized song
// feature vectors with scalar metadata.
//
// The client speaks a Pinecone-style JSON protocol: a /query endpoint
// taking a query vector, a top-k limit, and a metadata filter built
// from comparison operators ($gte, $lte, $in), and a
// /describe_index_stats endpoint reporting vector count and dimension.
//
// Outbound calls are rate limited and wrapped in a circuit breaker, so
// a degraded index backend sheds load quickly instead of holding
// request goroutines on slow connections. All failures surface as
// ErrUnavailable so callers can distinguish backend trouble from an
// empty result.
package vectorindex
