package textnorm

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultAliases maps cleaned short forms to canonical display names.
// Consulted before candidate generation; a hit bypasses scoring
// entirely.
var DefaultAliases = map[string]string{
	"mit":         "Massachusetts Institute of Technology",
	"uc berkeley": "University of California, Berkeley",
	"pnas":        "Proceedings of the National Academy of Sciences of the United States of America",
	"nih":         "National Institutes of Health",
	"nsf":         "National Science Foundation",
	"uk":          "United Kingdom",
}

// AliasTable resolves hand-curated exact aliases to canonical names.
// Keys are stored cleaned with spaces removed, so lookup is insensitive
// to case, punctuation, diacritics, and spacing ("N.I.H." and "nih"
// share a key).
type AliasTable struct {
	entries map[string]string
}

// aliasKey collapses an alias to its lookup form. Dropping spaces after
// cleaning keeps dotted initialisms together: Clean turns "N.I.H." into
// "n i h".
func aliasKey(s string) string {
	return strings.ReplaceAll(Clean(s), " ", "")
}

// NewAliasTable builds a table from the default aliases.
func NewAliasTable() *AliasTable {
	t := &AliasTable{entries: make(map[string]string, len(DefaultAliases))}
	for alias, canonical := range DefaultAliases {
		t.Add(alias, canonical)
	}
	return t
}

// Add registers an alias. The key is cleaned before storage; a later
// Add for the same cleaned key overwrites the earlier one.
func (t *AliasTable) Add(alias, canonical string) {
	key := aliasKey(alias)
	if key == "" {
		return
	}
	t.entries[key] = canonical
}

// Resolve returns the canonical name for the input if its cleaned form
// exactly matches a registered alias.
func (t *AliasTable) Resolve(input string) (string, bool) {
	canonical, ok := t.entries[aliasKey(input)]
	return canonical, ok
}

// Len returns the number of registered aliases.
func (t *AliasTable) Len() int {
	return len(t.entries)
}

// LoadAliasCSV merges alias,canonical rows from a CSV file into the
// table. A header row starting with "alias" is skipped.
func (t *AliasTable) LoadAliasCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening alias file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading alias file %s: %w", path, err)
		}
		line++
		if line == 1 && record[0] == "alias" {
			continue
		}
		t.Add(record[0], record[1])
	}
	return nil
}
