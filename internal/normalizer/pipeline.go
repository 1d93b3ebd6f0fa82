package normalizer

import (
	"context"
	"fmt"
)

// Pipeline routes requests to the per-type normalizer instances. The
// set of types is fixed at construction; unknown request strings are
// rejected, never defaulted.
type Pipeline struct {
	normalizers map[EntityType]*EntityNormalizer
}

// NewPipeline assembles a pipeline from per-type normalizers. At least
// one normalizer is required.
func NewPipeline(normalizers []*EntityNormalizer) (*Pipeline, error) {
	if len(normalizers) == 0 {
		return nil, fmt.Errorf("pipeline requires at least one entity normalizer")
	}
	p := &Pipeline{normalizers: make(map[EntityType]*EntityNormalizer, len(normalizers))}
	for _, n := range normalizers {
		if _, dup := p.normalizers[n.EntityType()]; dup {
			return nil, fmt.Errorf("duplicate normalizer for %s", n.EntityType())
		}
		p.normalizers[n.EntityType()] = n
	}
	return p, nil
}

// For returns the normalizer handling the given type, if configured.
func (p *Pipeline) For(t EntityType) (*EntityNormalizer, bool) {
	n, ok := p.normalizers[t]
	return n, ok
}

// Normalize resolves the entity-type string and delegates to that
// type's normalizer. A request string that parses to a type with no
// configured normalizer is reported the same way as an unparseable
// one: ErrUnknownEntityType.
func (p *Pipeline) Normalize(ctx context.Context, entityType, text string, userCtx map[string]string) (Result, error) {
	result, _, err := p.NormalizeRanked(ctx, entityType, text, userCtx)
	return result, err
}

// NormalizeRanked is Normalize but also returns the reranked pool.
func (p *Pipeline) NormalizeRanked(ctx context.Context, entityType, text string, userCtx map[string]string) (Result, []Scored, error) {
	t, err := ParseEntityType(entityType)
	if err != nil {
		return Result{}, nil, err
	}
	n, ok := p.normalizers[t]
	if !ok {
		return Result{}, nil, fmt.Errorf("%w: %q has no configured normalizer", ErrUnknownEntityType, entityType)
	}
	return n.NormalizeRanked(ctx, text, userCtx)
}
