// Package catalog holds the canonical entity tables that mentions
// resolve against. A catalog is built once from a tabular source and is
// immutable afterwards, so concurrent readers need no locking.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/scholarmap/canon/internal/textnorm"
)

// Errors returned by catalog construction.
var (
	ErrMissingColumn = errors.New("catalog source missing required column")
	ErrDuplicateID   = errors.New("duplicate id in catalog source")
)

// Record is one canonical entity row.
type Record struct {
	ID       string            // stable unique identifier within the catalog
	Name     string            // canonical display string, the source of truth
	NameNorm string            // cached textnorm output of Name
	Attrs    map[string]string // type-specific fields: issn, country, iso2, parent...
}

// Attr returns the named attribute, or "" if absent.
func (r Record) Attr(key string) string {
	return r.Attrs[key]
}

// Catalog is an immutable table of canonical entities of one type.
type Catalog struct {
	records    []Record
	byID       map[string]int
	byName     map[string][]int // display names may collide; file order preserved
	byNormName map[string][]int
	names      []string
	normNames  []string
}

// New builds a catalog from records, computing NameNorm with the given
// normalizer and validating id uniqueness. Record order is preserved;
// it defines tie-breaks for duplicate display names.
func New(records []Record, norm *textnorm.Normalizer) (*Catalog, error) {
	c := &Catalog{
		records:    make([]Record, len(records)),
		byID:       make(map[string]int, len(records)),
		byName:     make(map[string][]int, len(records)),
		byNormName: make(map[string][]int, len(records)),
		names:      make([]string, len(records)),
		normNames:  make([]string, len(records)),
	}
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: id (row %d)", ErrMissingColumn, i+1)
		}
		if rec.Name == "" {
			return nil, fmt.Errorf("%w: name (row %d)", ErrMissingColumn, i+1)
		}
		if _, exists := c.byID[rec.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, rec.ID)
		}
		rec.NameNorm = norm.Normalize(rec.Name)
		c.records[i] = rec
		c.byID[rec.ID] = i
		c.byName[rec.Name] = append(c.byName[rec.Name], i)
		c.byNormName[rec.NameNorm] = append(c.byNormName[rec.NameNorm], i)
		c.names[i] = rec.Name
		c.normNames[i] = rec.NameNorm
	}
	return c, nil
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Names returns the display names in record order. Callers must not
// mutate the returned slice; candidate retrieval indexes into it.
func (c *Catalog) Names() []string {
	return c.names
}

// NormNames returns the normalized names in record order. Lexical
// retrieval compares against these so catalog names get the same
// folding and synonym expansion as the query. Callers must not mutate
// the returned slice.
func (c *Catalog) NormNames() []string {
	return c.normNames
}

// At returns the record at the given position.
func (c *Catalog) At(i int) Record {
	return c.records[i]
}

// ByID looks up a record by id.
func (c *Catalog) ByID(id string) (Record, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// ByName looks up a record by exact display name. When several records
// share a name, the earliest row wins; use RowsByName to see all of
// them.
func (c *Catalog) ByName(name string) (Record, bool) {
	rows, ok := c.byName[name]
	if !ok {
		return Record{}, false
	}
	return c.records[rows[0]], true
}

// ByNormName looks up a record by its normalized name. The earliest
// row wins when several records normalize to the same string.
func (c *Catalog) ByNormName(normName string) (Record, bool) {
	rows, ok := c.byNormName[normName]
	if !ok {
		return Record{}, false
	}
	return c.records[rows[0]], true
}

// RowsByName returns every record with the given exact display name, in
// source order.
func (c *Catalog) RowsByName(name string) []Record {
	rows := c.byName[name]
	out := make([]Record, len(rows))
	for i, idx := range rows {
		out[i] = c.records[idx]
	}
	return out
}

// LoadCSV reads a catalog from a CSV file. The header must contain id
// and name columns; every other column becomes a record attribute keyed
// by its header. Malformed sources fail construction, never produce a
// partial catalog.
func LoadCSV(path string, norm *textnorm.Normalizer) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	records, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return New(records, norm)
}

// readCSV parses rows into Records using the header for column names.
func readCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty source", ErrMissingColumn)
	}
	if err != nil {
		return nil, err
	}

	idCol, nameCol := -1, -1
	for i, col := range header {
		switch col {
		case "id":
			idCol = i
		case "name":
			nameCol = i
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("%w: id", ErrMissingColumn)
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("%w: name", ErrMissingColumn)
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := Record{
			ID:    row[idCol],
			Name:  row[nameCol],
			Attrs: make(map[string]string),
		}
		for i, col := range header {
			if i == idCol || i == nameCol || row[i] == "" {
				continue
			}
			rec.Attrs[col] = row[i]
		}
		records = append(records, rec)
	}
	return records, nil
}
