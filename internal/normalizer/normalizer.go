package normalizer

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/scholarmap/canon/internal/catalog"
	"github.com/scholarmap/canon/internal/textnorm"
	"github.com/scholarmap/canon/internal/vecindex"
)

// snapshot pairs a catalog with its aligned vector index so a reload
// swaps both in one atomic store and an in-flight request never mixes
// generations.
type snapshot struct {
	cat *catalog.Catalog
	idx *vecindex.Index
}

// EntityNormalizer resolves mentions of one entity type. All fields
// are fixed at construction except the catalog/index pair, which may be
// replaced wholesale via SwapCatalog. Safe for concurrent requests.
type EntityNormalizer struct {
	entityType EntityType
	weights    Weights
	gen        *Generator
	norm       *textnorm.Normalizer
	aliases    *textnorm.AliasTable
	snap       atomic.Pointer[snapshot]
}

// NewEntityNormalizer assembles a normalizer for one entity type. The
// index must align row-for-row with the catalog; a mismatch is a
// configuration error caught here, before any request runs.
func NewEntityNormalizer(t EntityType, cat *catalog.Catalog, idx *vecindex.Index, gen *Generator, norm *textnorm.Normalizer, aliases *textnorm.AliasTable, w Weights) (*EntityNormalizer, error) {
	if idx.Len() != cat.Len() {
		return nil, fmt.Errorf("%w: index has %d rows, catalog has %d (%s)", ErrIndexMismatch, idx.Len(), cat.Len(), t)
	}
	n := &EntityNormalizer{
		entityType: t,
		weights:    w,
		gen:        gen,
		norm:       norm,
		aliases:    aliases,
	}
	n.snap.Store(&snapshot{cat: cat, idx: idx})
	return n, nil
}

// EntityType returns the type this normalizer serves.
func (n *EntityNormalizer) EntityType() EntityType {
	return n.entityType
}

// Weights returns the configured weights and threshold.
func (n *EntityNormalizer) Weights() Weights {
	return n.weights
}

// Catalog returns the current catalog snapshot.
func (n *EntityNormalizer) Catalog() *catalog.Catalog {
	return n.snap.Load().cat
}

// SwapCatalog atomically replaces the catalog and its index. In-flight
// requests keep the snapshot they started with.
func (n *EntityNormalizer) SwapCatalog(cat *catalog.Catalog, idx *vecindex.Index) error {
	if idx.Len() != cat.Len() {
		return fmt.Errorf("%w: index has %d rows, catalog has %d (%s)", ErrIndexMismatch, idx.Len(), cat.Len(), n.entityType)
	}
	n.snap.Store(&snapshot{cat: cat, idx: idx})
	return nil
}

// Normalize resolves a mention to its best catalog match, or a null
// result if nothing clears the threshold.
func (n *EntityNormalizer) Normalize(ctx context.Context, text string, userCtx map[string]string) (Result, error) {
	result, _, err := n.NormalizeRanked(ctx, text, userCtx)
	return result, err
}

// NormalizeRanked resolves a mention and additionally returns the full
// reranked pool (best first), which the evaluation harness uses for
// rank metrics. The ranked slice is nil for alias fast-path hits, which
// bypass candidate generation entirely.
func (n *EntityNormalizer) NormalizeRanked(ctx context.Context, text string, userCtx map[string]string) (Result, []Scored, error) {
	if canonical, ok := n.aliases.Resolve(text); ok {
		return n.aliasResult(canonical), nil, nil
	}

	snap := n.snap.Load()

	query := n.norm.Normalize(text)
	if n.entityType == Organization {
		query = textnorm.StripOrgNoise(query)
	}

	pool, err := n.gen.Generate(ctx, query, snap.cat, snap.idx)
	if err != nil {
		return Result{}, nil, fmt.Errorf("%s: %w", n.entityType, err)
	}
	if len(pool) == 0 {
		return Result{}, nil, nil
	}

	scored := Rerank(query, pool, userCtx, n.entityType, n.weights)
	return SelectBest(scored, n.weights), scored, nil
}

// aliasResult builds the result for an alias fast-path hit. The alias
// target is authoritative for the name; the id is attached when the
// catalog holds that name, exactly or after normalization (earliest
// row on duplicates). The score is the maximum the configured weights
// can produce.
func (n *EntityNormalizer) aliasResult(canonical string) Result {
	result := Result{
		Name:  canonical,
		Score: n.weights.MaxScore(),
	}
	cat := n.snap.Load().cat
	if rec, ok := cat.ByName(canonical); ok {
		result.ID = rec.ID
	} else if rec, ok := cat.ByNormName(n.norm.Normalize(canonical)); ok {
		result.ID = rec.ID
	}
	return result
}
