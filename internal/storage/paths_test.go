package storage

import (
	"path/filepath"
	"testing"
)

func TestPathFor(t *testing.T) {
	tests := []struct {
		name       string
		documentID string
		version    int
		expected   string
	}{
		{
			name:       "standard id",
			documentID: "a1b2c3d4",
			version:    1,
			expected:   filepath.Join("/data", "a1", "a1b2c3d4", "v1"),
		},
		{
			name:       "higher version",
			documentID: "a1b2c3d4",
			version:    17,
			expected:   filepath.Join("/data", "a1", "a1b2c3d4", "v17"),
		},
		{
			name:       "single char id uses whole id as shard",
			documentID: "x",
			version:    1,
			expected:   filepath.Join("/data", "x", "x", "v1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PathFor("/data", tt.documentID, tt.version)
			if got != tt.expected {
				t.Errorf("PathFor() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPathFor_Deterministic(t *testing.T) {
	a := PathFor("/data", "deadbeef", 3)
	b := PathFor("/data", "deadbeef", 3)
	if a != b {
		t.Errorf("same inputs produced different paths: %q vs %q", a, b)
	}
}

func TestPathFor_DistinctVersions(t *testing.T) {
	// Versioned paths are never reused: each version gets its own file.
	seen := map[string]bool{}
	for v := 1; v <= 5; v++ {
		p := PathFor("/data", "deadbeef", v)
		if seen[p] {
			t.Fatalf("path %q reused for version %d", p, v)
		}
		seen[p] = true
	}
}

func TestShard(t *testing.T) {
	tests := []struct {
		id       string
		expected string
	}{
		{"a1b2", "a1"},
		{"ab", "ab"},
		{"a", "a"},
	}

	for _, tt := range tests {
		if got := Shard(tt.id); got != tt.expected {
			t.Errorf("Shard(%q) = %q, want %q", tt.id, got, tt.expected)
		}
	}
}
