// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package vectorindex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/hyunwoo-park/voicematch/metrics"
)

// ErrUnavailable indicates the index backend could not serve the
// request (network failure, non-2xx response, or open circuit).
// Callers must not treat it as an empty result.
var ErrUnavailable = errors.New("vector index unavailable")

// Metadata is the scalar payload stored alongside each vector.
type Metadata struct {
	Popularity int     `json:"popularity"`
	PitchLow   float64 `json:"pitch_low"`
	PitchHigh  float64 `json:"pitch_high"`
	PitchAvg   float64 `json:"pitch_avg"`
	Genre      string  `json:"genre"`
}

// Match is one vector returned by a query, with its similarity score
// and metadata.
type Match struct {
	SongID   int64
	Score    float64
	Metadata Metadata
}

// Stats summarizes the index contents.
type Stats struct {
	TotalVectorCount int `json:"totalVectorCount"`
	Dimension        int `json:"dimension"`
}

// queryRequest is the wire form of a /query call.
type queryRequest struct {
	Vector          []float64 `json:"vector"`
	TopK            int       `json:"topK"`
	Filter          Filter    `json:"filter,omitempty"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type wireMatch struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

type queryResponse struct {
	Matches []wireMatch `json:"matches"`
}

// Client queries the vector index over HTTP. It is safe for
// concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger
}

// NewClient creates a vector index client. The configuration must be
// validated by the caller; NewClient validates again defensively.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "vector-index",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Vector index circuit breaker state change")
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: breaker,
		logger:  logger,
	}, nil
}

// Query returns the topK nearest vectors to the query vector among
// those whose metadata satisfies the filter. Matches whose IDs do not
// parse as song IDs are dropped with a warning rather than failing the
// whole query.
func (c *Client) Query(ctx context.Context, vector []float64, filter Filter, topK int) ([]Match, error) {
	if topK < 1 {
		return nil, fmt.Errorf("vectorindex: topK must be at least 1, got %d", topK)
	}

	body, err := json.Marshal(queryRequest{
		Vector:          vector,
		TopK:            topK,
		Filter:          filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorindex: marshal query: %w", err)
	}

	raw, err := c.post(ctx, "/query", body)
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode query response: %v", ErrUnavailable, err)
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		id, err := strconv.ParseInt(m.ID, 10, 64)
		if err != nil {
			c.logger.Warn().Str("id", m.ID).Msg("Skipping match with non-numeric ID")
			continue
		}
		matches = append(matches, Match{SongID: id, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

// DescribeStats reports vector count and dimension for the index.
func (c *Client) DescribeStats(ctx context.Context) (Stats, error) {
	raw, err := c.post(ctx, "/describe_index_stats", []byte("{}"))
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return Stats{}, fmt.Errorf("%w: decode stats response: %v", ErrUnavailable, err)
	}
	return stats, nil
}

// post executes one rate-limited, breaker-protected POST and returns
// the response body.
func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("vectorindex: rate limiter: %w", err)
	}

	start := time.Now()
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doPost(ctx, path, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.IndexQueryErrors.WithLabelValues("circuit_open").Inc()
			return nil, fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		metrics.IndexQueryErrors.WithLabelValues("backend").Inc()
		return nil, err
	}

	metrics.IndexQueryDuration.Observe(time.Since(start).Seconds())
	c.logger.Debug().
		Str("path", path).
		Dur("duration", time.Since(start)).
		Msg("Vector index request completed")
	return raw, nil
}

func (c *Client) doPost(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vectorindex: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Api-Key", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	return raw, nil
}
