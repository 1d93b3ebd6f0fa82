package textnorm

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAliasTable_Resolve(t *testing.T) {
	table := NewAliasTable()

	tests := []struct {
		name      string
		input     string
		expected  string
		wantMatch bool
	}{
		{
			name:      "known alias",
			input:     "mit",
			expected:  "Massachusetts Institute of Technology",
			wantMatch: true,
		},
		{
			name:      "case insensitive",
			input:     "MIT",
			expected:  "Massachusetts Institute of Technology",
			wantMatch: true,
		},
		{
			name:      "punctuation insensitive",
			input:     "N.I.H.",
			expected:  "National Institutes of Health",
			wantMatch: true,
		},
		{
			name:      "multi-token alias",
			input:     "UC Berkeley",
			expected:  "University of California, Berkeley",
			wantMatch: true,
		},
		{
			name:      "unknown input",
			input:     "Some Random University",
			wantMatch: false,
		},
		{
			name:      "empty input",
			input:     "",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Resolve(tt.input)
			if ok != tt.wantMatch {
				t.Fatalf("Resolve(%q) match = %v, want %v", tt.input, ok, tt.wantMatch)
			}
			if ok && got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAliasTable_Add(t *testing.T) {
	table := NewAliasTable()
	table.Add("CERN", "European Organization for Nuclear Research")

	got, ok := table.Resolve("cern")
	if !ok || got != "European Organization for Nuclear Research" {
		t.Errorf("Resolve(cern) = %q, %v", got, ok)
	}

	// empty keys are ignored
	before := table.Len()
	table.Add("  !!! ", "Nothing")
	if table.Len() != before {
		t.Error("Add with empty cleaned key should be ignored")
	}
}

func TestAliasTable_LoadAliasCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.csv")
	content := "alias,canonical\ncern,European Organization for Nuclear Research\nethz,ETH Zurich\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	table := NewAliasTable()
	if err := table.LoadAliasCSV(path); err != nil {
		t.Fatalf("LoadAliasCSV() error: %v", err)
	}

	got, ok := table.Resolve("ETHZ")
	if !ok || got != "ETH Zurich" {
		t.Errorf("Resolve(ETHZ) = %q, %v", got, ok)
	}

	// defaults survive the merge
	if _, ok := table.Resolve("pnas"); !ok {
		t.Error("default aliases should survive CSV load")
	}
}

func TestAliasTable_LoadAliasCSV_MissingFile(t *testing.T) {
	table := NewAliasTable()
	if err := table.LoadAliasCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
