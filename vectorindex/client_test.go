// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package vectorindex

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.APIKey = "test-key"

	c, err := NewClient(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestClientQuery(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotKey string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("path = %s, want /query", r.URL.Path)
		}
		gotKey = r.Header.Get("Api-Key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		_, _ = w.Write([]byte(`{"matches":[
			{"id":"42","score":0.91,"metadata":{"popularity":5000,"pitch_low":110,"pitch_high":290,"pitch_avg":180,"genre":"ballad"}},
			{"id":"not-a-number","score":0.5,"metadata":{}}
		]}`))
	})

	filter := Filter{}.GTE("popularity", 1000)
	matches, err := c.Query(context.Background(), []float64{1, 2, 3}, filter, 30)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("Api-Key header = %q, want test-key", gotKey)
	}
	if gotBody["topK"] != float64(30) {
		t.Errorf("topK in body = %v, want 30", gotBody["topK"])
	}
	if gotBody["includeMetadata"] != true {
		t.Error("includeMetadata should be requested")
	}

	// The non-numeric ID is skipped, not fatal.
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	m := matches[0]
	if m.SongID != 42 || m.Score != 0.91 {
		t.Errorf("match = %+v, want song 42 score 0.91", m)
	}
	if m.Metadata.Genre != "ballad" || m.Metadata.Popularity != 5000 {
		t.Errorf("metadata = %+v", m.Metadata)
	}
}

func TestClientQueryServerError(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Query(context.Background(), []float64{1}, nil, 10)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Query() error = %v, want ErrUnavailable", err)
	}
}

func TestClientQueryInvalidTopK(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(http.ResponseWriter, *http.Request) {})
	if _, err := c.Query(context.Background(), []float64{1}, nil, 0); err == nil {
		t.Fatal("Query(topK=0) expected error")
	}
}

func TestClientCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	requests := 0
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 10; i++ {
		_, _ = c.Query(context.Background(), []float64{1}, nil, 10)
	}

	// After 5 consecutive failures the breaker opens and stops
	// reaching the backend.
	if requests >= 10 {
		t.Errorf("backend saw %d requests, want the breaker to shed load", requests)
	}
	_, err := c.Query(context.Background(), []float64{1}, nil, 10)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Query() with open circuit error = %v, want ErrUnavailable", err)
	}
}

func TestClientDescribeStats(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/describe_index_stats" {
			t.Errorf("path = %s, want /describe_index_stats", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"totalVectorCount":12345,"dimension":16}`))
	})

	stats, err := c.DescribeStats(context.Background())
	if err != nil {
		t.Fatalf("DescribeStats() error = %v", err)
	}
	if stats.TotalVectorCount != 12345 || stats.Dimension != 16 {
		t.Errorf("stats = %+v, want 12345 vectors of dimension 16", stats)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := DefaultConfig()
	valid.BaseURL = "http://localhost:9000"
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing base url", mutate: func(c *Config) { c.BaseURL = "" }},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }},
		{name: "zero rate", mutate: func(c *Config) { c.RequestsPerSecond = 0 }},
		{name: "zero burst", mutate: func(c *Config) { c.Burst = 0 }},
		{name: "zero breaker timeout", mutate: func(c *Config) { c.BreakerTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			cfg.BaseURL = "http://localhost:9000"
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}
