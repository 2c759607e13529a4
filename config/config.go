// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

// Package config loads Voicematch configuration using Koanf v2 with
// layered sources: built-in defaults, an optional YAML config file,
// and environment variables, in rising precedence.
package config

import (
	"fmt"

	"github.com/hyunwoo-park/voicematch/catalog"
	"github.com/hyunwoo-park/voicematch/dislikes"
	"github.com/hyunwoo-park/voicematch/logging"
	"github.com/hyunwoo-park/voicematch/recommend"
	"github.com/hyunwoo-park/voicematch/vectorindex"
)

// Config is the root configuration.
type Config struct {
	// Logging configures the global zerolog logger.
	Logging logging.Config `koanf:"logging" json:"logging"`

	// Recommend configures the scoring pipeline.
	Recommend recommend.Config `koanf:"recommend" json:"recommend"`

	// Catalog configures the DuckDB song catalog.
	Catalog catalog.Config `koanf:"catalog" json:"catalog"`

	// Dislikes configures the SQLite dislike store.
	Dislikes dislikes.Config `koanf:"dislikes" json:"dislikes"`

	// Index configures the vector index client. Only consulted when
	// Source is "vector-index".
	Index vectorindex.Config `koanf:"index" json:"index"`

	// Source selects the candidate source: "catalog-scan" or
	// "vector-index". Default: "catalog-scan".
	Source string `koanf:"source" json:"source"`

	// ParamsPath is the normalization params artifact used by the
	// vector-index source. Default: "data/normalizer.json".
	ParamsPath string `koanf:"params_path" json:"params_path"`
}

// defaultConfig returns a Config with all defaults applied.
func defaultConfig() *Config {
	return &Config{
		Logging:    logging.DefaultConfig(),
		Recommend:  *recommend.DefaultConfig(),
		Catalog:    catalog.DefaultConfig(),
		Dislikes:   dislikes.DefaultConfig(),
		Index:      vectorindex.DefaultConfig(),
		Source:     "catalog-scan",
		ParamsPath: "data/normalizer.json",
	}
}

// Validate checks the full configuration tree.
func (c *Config) Validate() error {
	if err := c.Recommend.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Dislikes.Validate(); err != nil {
		return err
	}
	switch c.Source {
	case "catalog-scan":
	case "vector-index":
		if err := c.Index.Validate(); err != nil {
			return err
		}
		if c.ParamsPath == "" {
			return fmt.Errorf("config: params_path is required for the vector-index source")
		}
	default:
		return fmt.Errorf("config: source must be catalog-scan or vector-index, got %q", c.Source)
	}
	return nil
}
