// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the recommendation pipeline:
// - Request throughput and latency per candidate source
// - Fallback and dislike-penalty activity
// - Vector index query performance
// - Catalog snapshot size and reload activity

var (
	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"source", "outcome"}, // outcome: "ok", "empty", "invalid", "error"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End-to-end duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_fallbacks_total",
			Help: "Total number of requests served by the popularity-only fallback filter",
		},
		[]string{"source"},
	)

	PenalizedCandidates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_penalized_candidates_total",
			Help: "Total number of candidates down-weighted by the dislike penalty",
		},
	)

	CandidatesConsidered = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidates_considered",
			Help:    "Number of candidates scored per request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to 16384
		},
		[]string{"source"},
	)

	// Vector Index Metrics
	IndexQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vector_index_query_duration_seconds",
			Help:    "Duration of vector index queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	IndexQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_index_query_errors_total",
			Help: "Total number of vector index query errors",
		},
		[]string{"reason"}, // "backend", "circuit_open"
	)

	// Catalog Metrics
	CatalogSnapshotSongs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_snapshot_songs",
			Help: "Number of songs in the current catalog snapshot",
		},
	)

	CatalogSnapshotSwaps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_snapshot_swaps_total",
			Help: "Total number of catalog snapshot swaps",
		},
	)

	// Dislike Store Metrics
	DislikeLookupErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dislike_lookup_errors_total",
			Help: "Total number of failed dislike store lookups",
		},
	)
)
