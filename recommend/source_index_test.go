// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/hyunwoo-park/voicematch/vectorindex"
)

// fakeQuerier records the last query and returns canned matches.
type fakeQuerier struct {
	vector  []float64
	filter  vectorindex.Filter
	topK    int
	matches []vectorindex.Match
	err     error
}

func (f *fakeQuerier) Query(_ context.Context, vector []float64, filter vectorindex.Filter, topK int) ([]vectorindex.Match, error) {
	f.vector = vector
	f.filter = filter
	f.topK = topK
	return f.matches, f.err
}

func identityParams() *Params {
	p := &Params{
		Mean:  make([]float64, FeatureDim),
		Scale: make([]float64, FeatureDim),
	}
	for d := range p.Scale {
		p.Scale[d] = 1
	}
	return p
}

func TestNewIndexSourceValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewIndexSource(nil, identityParams()); err == nil {
		t.Error("NewIndexSource(nil client) expected error")
	}
	if _, err := NewIndexSource(&fakeQuerier{}, nil); err == nil {
		t.Error("NewIndexSource(nil params) expected error")
	}
	if _, err := NewIndexSource(&fakeQuerier{}, &Params{}); err == nil {
		t.Error("NewIndexSource(bad params) expected error")
	}
}

func TestIndexSourceBuildsMetadataFilter(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	src, err := NewIndexSource(q, identityParams())
	if err != nil {
		t.Fatalf("NewIndexSource() error = %v", err)
	}

	c := Constraints{
		MinPopularity:     1000,
		PitchFilter:       true,
		UserPitchLow:      100,
		UserPitchHigh:     320,
		UserPitchAvg:      180,
		PitchAvgTolerance: 20,
		AllowedGenres:     []string{"ballad"},
	}
	if _, err := src.Query(context.Background(), FeatureVector{}, c, 30); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if q.topK != 30 {
		t.Errorf("topK = %d, want 30", q.topK)
	}

	pop, ok := q.filter["popularity"].(map[string]any)
	if !ok || pop["$gte"] != float64(1000) {
		t.Errorf("popularity filter = %v, want $gte 1000", q.filter["popularity"])
	}
	low, ok := q.filter["pitch_low"].(map[string]any)
	if !ok || low["$gte"] != float64(100) {
		t.Errorf("pitch_low filter = %v, want $gte 100", q.filter["pitch_low"])
	}
	high, ok := q.filter["pitch_high"].(map[string]any)
	if !ok || high["$lte"] != float64(320) {
		t.Errorf("pitch_high filter = %v, want $lte 320", q.filter["pitch_high"])
	}
	avg, ok := q.filter["pitch_avg"].(map[string]any)
	if !ok || avg["$gte"] != float64(160) || avg["$lte"] != float64(200) {
		t.Errorf("pitch_avg filter = %v, want between 160 and 200", q.filter["pitch_avg"])
	}
	genre, ok := q.filter["genre"].(map[string]any)
	if !ok {
		t.Fatalf("genre filter = %v, want $in list", q.filter["genre"])
	}
	genres, ok := genre["$in"].([]string)
	if !ok || len(genres) != 1 || genres[0] != "ballad" {
		t.Errorf("genre $in = %v, want [ballad]", genre["$in"])
	}
}

func TestIndexSourceRelaxedFilterOmitsPitchAndGenre(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	src, err := NewIndexSource(q, identityParams())
	if err != nil {
		t.Fatalf("NewIndexSource() error = %v", err)
	}

	c := Constraints{MinPopularity: 1000}
	if _, err := src.Query(context.Background(), FeatureVector{}, c, 10); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	for _, key := range []string{"pitch_low", "pitch_high", "pitch_avg", "genre"} {
		if _, present := q.filter[key]; present {
			t.Errorf("filter key %q present, want omitted", key)
		}
	}
}

func TestIndexSourceMapsMatches(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{
		matches: []vectorindex.Match{
			{
				SongID: 7,
				Score:  0.83,
				Metadata: vectorindex.Metadata{
					Popularity: 4200,
					PitchLow:   110,
					PitchHigh:  290,
					PitchAvg:   175,
					Genre:      "ballad",
				},
			},
		},
	}
	src, err := NewIndexSource(q, identityParams())
	if err != nil {
		t.Fatalf("NewIndexSource() error = %v", err)
	}

	got, err := src.Query(context.Background(), FeatureVector{}, Constraints{}, 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}

	cand := got[0]
	if cand.Song.SongID != 7 || !almostEqual(cand.Similarity, 0.83) {
		t.Errorf("candidate = %+v, want song 7 with similarity 0.83", cand)
	}
	if cand.Song.Popularity != 4200 || cand.Song.Genre != "ballad" {
		t.Errorf("metadata not mapped: %+v", cand.Song)
	}
	if cand.Song.Feature.PitchLow != 110 || cand.Song.Feature.PitchHigh != 290 || cand.Song.Feature.PitchAvg != 175 {
		t.Errorf("pitch metadata not mapped: %+v", cand.Song.Feature)
	}
}

func TestIndexSourceNormalizesUserVector(t *testing.T) {
	t.Parallel()

	p := identityParams()
	p.Mean[TimbreDim] = 100 // pitch_low
	p.Scale[TimbreDim] = 50

	q := &fakeQuerier{}
	src, err := NewIndexSource(q, p)
	if err != nil {
		t.Fatalf("NewIndexSource() error = %v", err)
	}

	user := FeatureVector{PitchLow: 200}
	if _, err := src.Query(context.Background(), user, Constraints{}, 10); err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if !almostEqual(q.vector[TimbreDim], 2) {
		t.Errorf("normalized pitch_low = %f, want (200-100)/50 = 2", q.vector[TimbreDim])
	}
}

func TestIndexSourceWrapsBackendErrors(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{err: errors.New("connection refused")}
	src, err := NewIndexSource(q, identityParams())
	if err != nil {
		t.Fatalf("NewIndexSource() error = %v", err)
	}

	_, err = src.Query(context.Background(), FeatureVector{}, Constraints{}, 10)
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("Query() error = %v, want ErrBackendUnavailable", err)
	}
}
