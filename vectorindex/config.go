// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package vectorindex

import (
	"fmt"
	"time"
)

// Config holds vector index client settings.
type Config struct {
	// BaseURL is the root URL of the vector index service.
	BaseURL string `koanf:"base_url" json:"base_url"`

	// APIKey authenticates requests via the Api-Key header.
	// Optional for unauthenticated deployments.
	APIKey string `koanf:"api_key" json:"api_key"`

	// Timeout bounds a single index request. Default: 10s.
	Timeout time.Duration `koanf:"timeout" json:"timeout"`

	// RequestsPerSecond caps the outbound query rate. Default: 20.
	RequestsPerSecond float64 `koanf:"requests_per_second" json:"requests_per_second"`

	// Burst is the rate limiter burst size. Default: 5.
	Burst int `koanf:"burst" json:"burst"`

	// BreakerTimeout is how long the circuit stays open before a
	// recovery probe. Default: 30s.
	BreakerTimeout time.Duration `koanf:"breaker_timeout" json:"breaker_timeout"`
}

// DefaultConfig returns client settings suitable for a local index.
func DefaultConfig() Config {
	return Config{
		Timeout:           10 * time.Second,
		RequestsPerSecond: 20,
		Burst:             5,
		BreakerTimeout:    30 * time.Second,
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("vectorindex: base_url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("vectorindex: timeout must be positive, got %s", c.Timeout)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("vectorindex: requests_per_second must be positive, got %g", c.RequestsPerSecond)
	}
	if c.Burst < 1 {
		return fmt.Errorf("vectorindex: burst must be at least 1, got %d", c.Burst)
	}
	if c.BreakerTimeout <= 0 {
		return fmt.Errorf("vectorindex: breaker_timeout must be positive, got %s", c.BreakerTimeout)
	}
	return nil
}
