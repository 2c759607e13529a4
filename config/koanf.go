// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/voicematch/config.yaml",
	"/etc/voicematch/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// Precedence is ENV > file > defaults. The result is validated before
// being returned.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

// LoadFile builds the configuration from a specific YAML file plus
// defaults and environment variables. The file must exist.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return loadFrom(path)
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names to koanf config paths.
// The table is explicit because several config keys contain
// underscores, which a plain separator transform cannot split
// unambiguously.
var envMappings = map[string]string{
	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Candidate source selection
	"recommend_source":      "source",
	"recommend_params_path": "params_path",

	// Blend parameters
	"blend_vector_weight":            "recommend.blend.vector_weight",
	"blend_pitch_weight":             "recommend.blend.pitch_weight",
	"blend_pitch_low_divisor":        "recommend.blend.pitch_low_divisor",
	"blend_pitch_high_divisor":       "recommend.blend.pitch_high_divisor",
	"blend_pitch_avg_divisor":        "recommend.blend.pitch_avg_divisor",
	"blend_pitch_miss_multiplier":    "recommend.blend.pitch_miss_multiplier",
	"blend_popularity_bonus_cap":     "recommend.blend.popularity_bonus_cap",
	"blend_popularity_bonus_divisor": "recommend.blend.popularity_bonus_divisor",

	// Filter parameters
	"filter_pitch_avg_tolerance": "recommend.filter.pitch_avg_tolerance",

	// Limits
	"limits_default_top_n":          "recommend.limits.default_top_n",
	"limits_max_top_n":              "recommend.limits.max_top_n",
	"limits_default_penalty_factor": "recommend.limits.default_penalty_factor",
	"limits_oversample_base":        "recommend.limits.oversample_base",
	"limits_oversample_per_dislike": "recommend.limits.oversample_per_dislike",
	"limits_oversample_cap":         "recommend.limits.oversample_cap",

	// Catalog
	"catalog_path":       "catalog.path",
	"catalog_max_memory": "catalog.max_memory",

	// Dislikes
	"dislikes_path": "dislikes.path",

	// Vector index
	"index_base_url":            "index.base_url",
	"index_api_key":             "index.api_key",
	"index_timeout":             "index.timeout",
	"index_requests_per_second": "index.requests_per_second",
	"index_burst":               "index.burst",
	"index_breaker_timeout":     "index.breaker_timeout",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables are skipped so unrelated environment variables
// cannot pollute the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
