// Voicematch - Voice-Based Music Recommendation Engine
// Copyright 2026 Hyunwoo Park (hyunwoo-park)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hyunwoo-park/voicematch

package vectorindex

// Filter is a metadata filter expressed with Pinecone-style comparison
// operators, keyed by metadata field name. The zero value matches all
// vectors.
type Filter map[string]any

// GTE constrains a field to values greater than or equal to v.
func (f Filter) GTE(field string, v float64) Filter {
	f.op(field, "$gte", v)
	return f
}

// LTE constrains a field to values less than or equal to v.
func (f Filter) LTE(field string, v float64) Filter {
	f.op(field, "$lte", v)
	return f
}

// Between constrains a field to the closed interval [lo, hi].
func (f Filter) Between(field string, lo, hi float64) Filter {
	f.op(field, "$gte", lo)
	f.op(field, "$lte", hi)
	return f
}

// In constrains a string field to an allowed value set.
func (f Filter) In(field string, values []string) Filter {
	if len(values) == 0 {
		return f
	}
	f.op(field, "$in", values)
	return f
}

func (f Filter) op(field, operator string, v any) {
	cond, ok := f[field].(map[string]any)
	if !ok {
		cond = make(map[string]any, 2)
		f[field] = cond
	}
	cond[operator] = v
}
