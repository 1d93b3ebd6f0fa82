// Package vecindex provides the embedding nearest-neighbor index over
// catalog display names used by candidate generation.
package vecindex

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Errors returned by index operations.
var (
	ErrIndexNotFound      = errors.New("vector index not found")
	ErrUnsupportedVersion = errors.New("unsupported index version")
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
)

// CurrentIndexVersion is the on-disk format version. Increment on
// breaking changes to the gob layout.
const CurrentIndexVersion = 1

// Index holds unit-normalized embeddings for every name in one
// catalog, positionally aligned with the catalog's row order. Once
// built it is read-only and safe for concurrent searches.
type Index struct {
	Version         int
	ModelName       string
	Dimensions      int
	EntityType      string
	CreatedAt       time.Time
	BuildDurationMs int64

	Names   []string
	Vectors [][]float32 // unit L2 norm, so dot product == cosine
}

// Hit is one nearest-neighbor result.
type Hit struct {
	Row   int     // catalog row of the matched name
	Name  string  // the matched display name
	Score float64 // cosine similarity to the query
}

// New creates an empty index for the given model and entity type.
func New(entityType, modelName string, dimensions int) *Index {
	return &Index{
		Version:    CurrentIndexVersion,
		ModelName:  modelName,
		Dimensions: dimensions,
		EntityType: entityType,
		CreatedAt:  time.Now(),
	}
}

// Add appends a name and its unit-normalized vector. Rows must be
// added in catalog order.
func (idx *Index) Add(name string, vector []float32) error {
	if len(vector) != idx.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), idx.Dimensions)
	}
	idx.Names = append(idx.Names, name)
	idx.Vectors = append(idx.Vectors, vector)
	return nil
}

// Len returns the number of indexed names.
func (idx *Index) Len() int {
	return len(idx.Names)
}

// Search returns the k names nearest to the query vector by cosine
// similarity, highest first. The query is expected to be unit
// normalized, matching how the index was built. An empty index returns
// no hits.
func (idx *Index) Search(query []float32, k int) []Hit {
	if k <= 0 || len(idx.Vectors) == 0 || len(query) != idx.Dimensions {
		return nil
	}

	hits := make([]Hit, 0, len(idx.Vectors))
	for row, vec := range idx.Vectors {
		var dot float64
		for i := range vec {
			dot += float64(vec[i]) * float64(query[i])
		}
		hits = append(hits, Hit{Row: row, Name: idx.Names[row], Score: dot})
	}

	// Partial selection sort: only the top k positions matter and k is
	// small relative to catalog size.
	if k > len(hits) {
		k = len(hits)
	}
	for i := 0; i < k; i++ {
		best := i
		for j := i + 1; j < len(hits); j++ {
			if hits[j].Score > hits[best].Score {
				best = j
			}
		}
		hits[i], hits[best] = hits[best], hits[i]
	}
	return hits[:k]
}

// Save persists the index using gob encoding, writing to a temp file
// and renaming so readers never observe a partial index.
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(idx); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Load reads an index from disk. Returns ErrIndexNotFound if the file
// does not exist and ErrUnsupportedVersion on a format mismatch.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var idx Index
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&idx); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}

	if idx.Version != CurrentIndexVersion {
		return nil, fmt.Errorf("%w: got %d, want %d (rebuild with 'canon index build')",
			ErrUnsupportedVersion, idx.Version, CurrentIndexVersion)
	}
	return &idx, nil
}
