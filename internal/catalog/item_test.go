// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package catalog

import (
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"trims and drops empties", []string{" indoor ", "", "  "}, []string{"indoor"}},
		{"collapses duplicates keeping first", []string{"b", "a", "b", " a"}, []string{"b", "a"}},
		{"case sensitive", []string{"Indoor", "indoor"}, []string{"Indoor", "indoor"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeTags(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestItemHasTag(t *testing.T) {
	t.Parallel()

	it := Item{ID: "1", Tags: []string{"indoor", "trailing"}}
	if !it.HasTag("trailing") {
		t.Error("expected trailing")
	}
	if it.HasTag("outdoor") {
		t.Error("unexpected outdoor")
	}
}

func TestIDSet(t *testing.T) {
	t.Parallel()

	var empty IDSet
	if empty.Has("x") {
		t.Error("nil set should be empty")
	}
	s := NewIDSet("a", "b", "a")
	if len(s) != 2 || !s.Has("a") || !s.Has("b") {
		t.Errorf("NewIDSet = %v", s)
	}
}
