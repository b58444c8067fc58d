package ui

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1       string
		s2       string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"card.ts", "crad.ts", 2},
		{"héllo", "hello", 1},
		{"日本", "日本語", 1},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			result := LevenshteinDistance(tt.s1, tt.s2)
			if result != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d; want %d", tt.s1, tt.s2, result, tt.expected)
			}
		})
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"card.component.ts", "cart.component.ts", "app.module.ts", "Header.ts"}

	tests := []struct {
		name     string
		target   string
		opts     *FuzzyMatchOptions
		expected []string
	}{
		{
			name:     "exact match first",
			target:   "card.component.ts",
			expected: []string{"card.component.ts", "cart.component.ts"},
		},
		{
			name:     "transposed letters",
			target:   "crad.component.ts",
			expected: []string{"card.component.ts", "cart.component.ts"},
		},
		{
			name:     "case insensitive",
			target:   "header.ts",
			expected: []string{"Header.ts"},
		},
		{
			name:     "case sensitive",
			target:   "header.ts",
			opts:     &FuzzyMatchOptions{MaxDistance: 0, CaseSensitive: true},
			expected: []string{"Header.ts"},
		},
		{
			name:     "limited suggestions",
			target:   "car.component.ts",
			opts:     &FuzzyMatchOptions{MaxSuggestions: 1},
			expected: []string{"card.component.ts"},
		},
		{
			name:     "no match too far",
			target:   "profile.service.ts",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindSimilar(tt.target, candidates, tt.opts)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("FindSimilar(%q) = %v; want %v", tt.target, result, tt.expected)
			}
		})
	}
}

func TestSimilarFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"card.component.ts", "card.component.html", "app.module.ts"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "card.components.ts"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	got := SimilarFiles(filepath.Join(dir, "card.componet.ts"))
	if !reflect.DeepEqual(got, []string{"card.component.ts"}) {
		t.Errorf("SimilarFiles() = %v; want [card.component.ts]", got)
	}

	if got := SimilarFiles(filepath.Join(dir, "nope", "x.ts")); got != nil {
		t.Errorf("SimilarFiles() in a missing directory = %v; want nil", got)
	}
}
