// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package vectorindex

import "testing"

func TestFilterOperators(t *testing.T) {
	t.Parallel()

	f := Filter{}.
		GTE("popularity", 1000).
		Between("pitch_avg", 160, 200).
		In("genre", []string{"ballad", "rock"})

	pop := f["popularity"].(map[string]any)
	if pop["$gte"] != float64(1000) {
		t.Errorf("popularity = %v", pop)
	}

	avg := f["pitch_avg"].(map[string]any)
	if avg["$gte"] != float64(160) || avg["$lte"] != float64(200) {
		t.Errorf("pitch_avg = %v, want both bounds on one field", avg)
	}

	genres := f["genre"].(map[string]any)["$in"].([]string)
	if len(genres) != 2 {
		t.Errorf("genre $in = %v", genres)
	}
}

func TestFilterInSkipsEmptySet(t *testing.T) {
	t.Parallel()

	f := Filter{}.In("genre", nil)
	if _, present := f["genre"]; present {
		t.Error("empty In should add no condition")
	}
}
