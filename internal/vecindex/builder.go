package vecindex

import (
	"context"
	"fmt"
	"time"

	"github.com/scholarmap/canon/internal/catalog"
	"github.com/scholarmap/canon/internal/embedding"
)

// ProgressReporter receives progress updates during index building.
type ProgressReporter interface {
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// BuildStats contains statistics from index building.
type BuildStats struct {
	NamesIndexed int           `json:"names_indexed"`
	Duration     time.Duration `json:"duration"`
}

// Builder constructs a vector index from a catalog's display names.
type Builder struct {
	provider embedding.Provider
	progress ProgressReporter
}

// NewBuilder creates an index builder over the given provider.
func NewBuilder(provider embedding.Provider) *Builder {
	return &Builder{provider: provider}
}

// SetProgressReporter sets the progress reporter for the builder.
func (b *Builder) SetProgressReporter(reporter ProgressReporter) {
	b.progress = reporter
}

// Build embeds every display name in the catalog and assembles the
// index, row order preserved. Vectors are unit normalized before
// insertion. Cancellation is checked between names.
func (b *Builder) Build(ctx context.Context, entityType string, cat *catalog.Catalog) (*Index, *BuildStats, error) {
	start := time.Now()
	idx := New(entityType, b.provider.ModelName(), b.provider.Dimensions())

	names := cat.Names()
	for i, name := range names {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		if b.progress != nil {
			b.progress.OnProgress(i+1, len(names))
		}

		emb, err := b.provider.Embed(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("embedding name %q: %w", name, err)
		}
		if err := idx.Add(name, emb.Normalized().Vector); err != nil {
			return nil, nil, fmt.Errorf("adding %q: %w", name, err)
		}
	}

	idx.BuildDurationMs = time.Since(start).Milliseconds()
	stats := &BuildStats{
		NamesIndexed: idx.Len(),
		Duration:     time.Since(start),
	}
	return idx, stats, nil
}
