// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import (
	"fmt"
	"math"
	"os"

	json "github.com/goccy/go-json"
	"gonum.org/v1/gonum/stat"
)

// Params holds the per-dimension mean and scale of the z-score
// standardization applied to every feature vector before similarity
// computation. Timbre coefficients and pitch statistics live on very
// different scales (unitless coefficients vs. Hz); standardization makes
// them contribute comparably to cosine similarity.
//
// Params are fitted once over a catalog snapshot and persisted as an
// artifact; they must be applied to both the user vector and the catalog
// vectors of a single recommendation call. The candidate sources own
// their Params and normalize both sides themselves, so a caller cannot
// mix parameter sets within one call.
type Params struct {
	// Mean is the per-dimension mean, in fixed feature order.
	Mean []float64 `json:"mean"`

	// Scale is the per-dimension standard deviation. Dimensions with
	// zero variance carry scale 1 so transformation never divides by zero.
	Scale []float64 `json:"scale"`
}

// Fit computes normalization parameters over a catalog snapshot using
// the population standard deviation. Fitting is a batch step outside the
// request hot path; requests reuse the fitted artifact.
func Fit(songs []SongRecord) (*Params, error) {
	if len(songs) == 0 {
		return nil, fmt.Errorf("fit: empty catalog")
	}

	column := make([]float64, len(songs))
	p := &Params{
		Mean:  make([]float64, FeatureDim),
		Scale: make([]float64, FeatureDim),
	}

	vectors := make([][]float64, len(songs))
	for i, s := range songs {
		if err := s.Feature.Validate(); err != nil {
			return nil, fmt.Errorf("fit: song %d: %w", s.SongID, err)
		}
		vectors[i] = s.Feature.Vector()
	}

	for d := 0; d < FeatureDim; d++ {
		for i := range vectors {
			column[i] = vectors[i][d]
		}
		p.Mean[d] = stat.Mean(column, nil)
		p.Scale[d] = stat.PopStdDev(column, nil)
		if p.Scale[d] == 0 {
			// Degenerate dimension: pass values through centered only.
			p.Scale[d] = 1
		}
	}

	return p, nil
}

// Validate checks the parameter shape and values.
func (p *Params) Validate() error {
	if len(p.Mean) != FeatureDim {
		return shapeErr("normalization mean", len(p.Mean), FeatureDim)
	}
	if len(p.Scale) != FeatureDim {
		return shapeErr("normalization scale", len(p.Scale), FeatureDim)
	}
	for d := 0; d < FeatureDim; d++ {
		if math.IsNaN(p.Mean[d]) || math.IsInf(p.Mean[d], 0) {
			return fmt.Errorf("%w: non-finite mean at dimension %d", ErrShapeMismatch, d)
		}
		if p.Scale[d] <= 0 || math.IsNaN(p.Scale[d]) || math.IsInf(p.Scale[d], 0) {
			return fmt.Errorf("%w: invalid scale %f at dimension %d", ErrShapeMismatch, p.Scale[d], d)
		}
	}
	return nil
}

// Transform standardizes a vector elementwise: (x - mean) / scale.
// It is a pure function; the input is not modified.
func (p *Params) Transform(vec []float64) ([]float64, error) {
	if len(vec) != FeatureDim {
		return nil, shapeErr("feature vector", len(vec), FeatureDim)
	}
	if len(p.Mean) != FeatureDim || len(p.Scale) != FeatureDim {
		return nil, shapeErr("normalization parameters", len(p.Mean), FeatureDim)
	}

	out := make([]float64, FeatureDim)
	for d := 0; d < FeatureDim; d++ {
		out[d] = (vec[d] - p.Mean[d]) / p.Scale[d]
	}
	return out, nil
}

// TransformFeature standardizes a FeatureVector.
func (p *Params) TransformFeature(f FeatureVector) ([]float64, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return p.Transform(f.Vector())
}

// Save persists the parameters as a JSON artifact.
func (p *Params) Save(path string) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("save params: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("save params: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("save params: %w", err)
	}
	return nil
}

// LoadParams reads a persisted parameter artifact.
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load params: %w", err)
	}
	p := &Params{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("load params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("load params: %w", err)
	}
	return p, nil
}
