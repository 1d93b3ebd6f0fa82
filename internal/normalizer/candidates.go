package normalizer

import (
	"context"
	"fmt"
	"sort"

	"github.com/scholarmap/canon/internal/catalog"
	"github.com/scholarmap/canon/internal/embedding"
	"github.com/scholarmap/canon/internal/fuzzy"
	"github.com/scholarmap/canon/internal/vecindex"
)

// Retrieval defaults.
const (
	DefaultKFuzzy   = 20 // lexical top-k
	DefaultKEmbed   = 50 // embedding top-k
	DefaultPoolSize = 50 // candidate pool cap before reranking
)

// Candidate is a catalog row under consideration for a mention,
// carrying the per-path retrieval scores. The catalog row travels with
// the candidate end to end, so duplicate display names never need a
// name lookup to disambiguate.
type Candidate struct {
	Row    int            // catalog row
	Record catalog.Record // the row's record
	Fuzzy  float64        // lexical similarity in [0,1], 0 if not in fuzzy top-k
	Embed  float64        // embedding similarity in [0,1], 0 if not in embedding top-k
	Prelim float64        // merged preliminary score
}

// Generator produces the bounded candidate pool for a mention by
// merging lexical fuzzy top-k with embedding nearest-neighbor top-k.
type Generator struct {
	provider embedding.Provider
	kFuzzy   int
	kEmbed   int
	poolSize int
}

// NewGenerator creates a Generator with the default pool parameters.
func NewGenerator(provider embedding.Provider) *Generator {
	return &Generator{
		provider: provider,
		kFuzzy:   DefaultKFuzzy,
		kEmbed:   DefaultKEmbed,
		poolSize: DefaultPoolSize,
	}
}

// SetLimits overrides the retrieval and pool sizes. Non-positive
// values keep the current setting.
func (g *Generator) SetLimits(kFuzzy, kEmbed, poolSize int) {
	if kFuzzy > 0 {
		g.kFuzzy = kFuzzy
	}
	if kEmbed > 0 {
		g.kEmbed = kEmbed
	}
	if poolSize > 0 {
		g.poolSize = poolSize
	}
}

// Generate retrieves candidates for text against the catalog and its
// aligned vector index. The merge is additive: a row found by one path
// contributes half of that path's score, a row found by both
// contributes both halves, so dual evidence always scores at least as
// high as either half alone. The pool is sorted by preliminary score
// descending (row order breaking ties) and truncated to the pool cap.
//
// An empty catalog yields an empty pool and no embedding call. An
// upstream embedding failure fails the whole request; the lexical half
// is never returned on its own.
func (g *Generator) Generate(ctx context.Context, text string, cat *catalog.Catalog, idx *vecindex.Index) ([]Candidate, error) {
	if cat.Len() == 0 {
		return nil, nil
	}

	byRow := make(map[int]*Candidate)

	for _, m := range fuzzy.TopK(text, cat.NormNames(), g.kFuzzy) {
		byRow[m.Index] = &Candidate{
			Row:    m.Index,
			Record: cat.At(m.Index),
			Fuzzy:  m.Score / 100,
		}
	}

	query, err := g.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding mention: %w", err)
	}
	for _, hit := range idx.Search(query.Normalized().Vector, g.kEmbed) {
		score := hit.Score
		if score < 0 {
			score = 0 // cosine can go negative; the embedding signal floor is 0
		}
		c, ok := byRow[hit.Row]
		if !ok {
			c = &Candidate{Row: hit.Row, Record: cat.At(hit.Row)}
			byRow[hit.Row] = c
		}
		c.Embed = score
	}

	pool := make([]Candidate, 0, len(byRow))
	for _, c := range byRow {
		c.Prelim = 0.5*c.Fuzzy + 0.5*c.Embed
		pool = append(pool, *c)
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Prelim != pool[j].Prelim {
			return pool[i].Prelim > pool[j].Prelim
		}
		return pool[i].Row < pool[j].Row
	})

	if len(pool) > g.poolSize {
		pool = pool[:g.poolSize]
	}
	return pool, nil
}
