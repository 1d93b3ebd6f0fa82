package normalizer

import (
	"context"
	"testing"

	"github.com/scholarmap/canon/internal/catalog"
	"github.com/scholarmap/canon/internal/embedding"
	"github.com/scholarmap/canon/internal/textnorm"
	"github.com/scholarmap/canon/internal/vecindex"
)

// fakeProvider returns canned unit vectors per text. Unknown texts get
// a default vector; a non-nil err fails every call.
type fakeProvider struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
	calls    int
}

func (f *fakeProvider) Embed(ctx context.Context, text string) (embedding.Embedding, error) {
	f.calls++
	if f.err != nil {
		return embedding.Embedding{}, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return embedding.Embedding{Vector: v}, nil
	}
	if f.fallback != nil {
		return embedding.Embedding{Vector: f.fallback}, nil
	}
	return embedding.Embedding{Vector: []float32{0, 0, 1}}, nil
}

func (f *fakeProvider) EmbedBatch(ctx context.Context, texts []string) ([]embedding.Embedding, error) {
	out := make([]embedding.Embedding, len(texts))
	for i, text := range texts {
		emb, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (f *fakeProvider) ModelName() string { return "fake-model" }
func (f *fakeProvider) Dimensions() int   { return 3 }

// buildCatalog creates a catalog from records, failing the test on
// error.
func buildCatalog(t *testing.T, records []catalog.Record) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(records, textnorm.New())
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

// buildIndex embeds every catalog name with the provider and returns
// the aligned index.
func buildIndex(t *testing.T, cat *catalog.Catalog, provider *fakeProvider) *vecindex.Index {
	t.Helper()
	idx, _, err := vecindex.NewBuilder(provider).Build(context.Background(), "test", cat)
	if err != nil {
		t.Fatal(err)
	}
	provider.calls = 0 // builds don't count against request assertions
	return idx
}

// buildNormalizer wires a full EntityNormalizer for tests.
func buildNormalizer(t *testing.T, et EntityType, cat *catalog.Catalog, provider *fakeProvider, w Weights) *EntityNormalizer {
	t.Helper()
	idx := buildIndex(t, cat, provider)
	n, err := NewEntityNormalizer(et, cat, idx, NewGenerator(provider), textnorm.New(), textnorm.NewAliasTable(), w)
	if err != nil {
		t.Fatal(err)
	}
	return n
}
