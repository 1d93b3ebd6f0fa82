package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewOllamaProvider_Defaults(t *testing.T) {
	provider := NewOllamaProvider()

	if provider.baseURL != DefaultOllamaURL {
		t.Errorf("baseURL = %s, want %s", provider.baseURL, DefaultOllamaURL)
	}
	if provider.model != DefaultModel {
		t.Errorf("model = %s, want %s", provider.model, DefaultModel)
	}
	if provider.dimensions != DefaultDimensions {
		t.Errorf("dimensions = %d, want %d", provider.dimensions, DefaultDimensions)
	}
	if provider.limiter == nil {
		t.Error("limiter should not be nil")
	}
}

func TestNewOllamaProvider_WithOptions(t *testing.T) {
	provider := NewOllamaProvider(
		WithBaseURL("http://custom:8080"),
		WithModel("custom-model"),
		WithDimensions(768),
		WithTimeout(60*time.Second),
		WithRateLimit(5),
	)

	if provider.baseURL != "http://custom:8080" {
		t.Errorf("baseURL = %s", provider.baseURL)
	}
	if provider.ModelName() != "custom-model" {
		t.Errorf("ModelName() = %s", provider.ModelName())
	}
	if provider.Dimensions() != 768 {
		t.Errorf("Dimensions() = %d", provider.Dimensions())
	}
	if provider.client.Timeout != 60*time.Second {
		t.Errorf("timeout = %v", provider.client.Timeout)
	}
}

func TestNewOllamaProvider_EmptyOptionsIgnored(t *testing.T) {
	provider := NewOllamaProvider(WithBaseURL(""), WithModel(""))

	if provider.baseURL != DefaultOllamaURL {
		t.Errorf("empty URL should keep default, got %s", provider.baseURL)
	}
	if provider.model != DefaultModel {
		t.Errorf("empty model should keep default, got %s", provider.model)
	}
}

// newEmbedServer returns a test server answering the embeddings
// endpoint with the given vector.
func newEmbedServer(t *testing.T, vector []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiPathEmbeddings {
			http.NotFound(w, r)
			return
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: vector})
	}))
}

func TestOllamaProvider_Embed(t *testing.T) {
	server := newEmbedServer(t, []float32{0.1, 0.2, 0.3})
	defer server.Close()

	provider := NewOllamaProvider(WithBaseURL(server.URL), WithDimensions(3))

	emb, err := provider.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if emb.Dimensions() != 3 {
		t.Errorf("Dimensions() = %d, want 3", emb.Dimensions())
	}
}

func TestOllamaProvider_Embed_DimensionMismatch(t *testing.T) {
	server := newEmbedServer(t, []float32{0.1, 0.2})
	defer server.Close()

	provider := NewOllamaProvider(WithBaseURL(server.URL), WithDimensions(3))

	if _, err := provider.Embed(context.Background(), "text"); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestOllamaProvider_Embed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewOllamaProvider(WithBaseURL(server.URL))

	_, err := provider.Embed(context.Background(), "text")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Embed() error = %v, want ErrUnavailable", err)
	}
}

func TestOllamaProvider_Embed_Unreachable(t *testing.T) {
	// port 0 is never listening, so the dial fails immediately
	provider := NewOllamaProvider(
		WithBaseURL("http://127.0.0.1:0"),
		WithTimeout(500*time.Millisecond),
	)

	_, err := provider.Embed(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !errors.Is(err, ErrUnavailable) && !errors.Is(err, ErrTimeout) {
		t.Errorf("Embed() error = %v, want a typed upstream error", err)
	}
}

func TestOllamaProvider_Embed_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: make([]float32, DefaultDimensions)})
	}))
	defer server.Close()

	provider := NewOllamaProvider(WithBaseURL(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := provider.Embed(ctx, "text")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Embed() error = %v, want ErrTimeout", err)
	}
}

func TestOllamaProvider_EmbedBatch(t *testing.T) {
	server := newEmbedServer(t, []float32{1, 0, 0})
	defer server.Close()

	provider := NewOllamaProvider(WithBaseURL(server.URL), WithDimensions(3))

	embs, err := provider.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch() error: %v", err)
	}
	if len(embs) != 3 {
		t.Errorf("len = %d, want 3", len(embs))
	}
}

func TestOllamaProvider_HasModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiPathTags {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(ollamaTagsResponse{Models: []ollamaModel{{Name: "present-model"}}})
	}))
	defer server.Close()

	t.Run("model present", func(t *testing.T) {
		provider := NewOllamaProvider(WithBaseURL(server.URL), WithModel("present-model"))
		ok, err := provider.HasModel(context.Background())
		if err != nil {
			t.Fatalf("HasModel() error: %v", err)
		}
		if !ok {
			t.Error("HasModel() = false, want true")
		}
	})

	t.Run("model absent", func(t *testing.T) {
		provider := NewOllamaProvider(WithBaseURL(server.URL), WithModel("absent-model"))
		ok, err := provider.HasModel(context.Background())
		if err != nil {
			t.Fatalf("HasModel() error: %v", err)
		}
		if ok {
			t.Error("HasModel() = true, want false")
		}
	})
}

func TestOllamaProvider_ImplementsProvider(t *testing.T) {
	var _ Provider = (*OllamaProvider)(nil)
}
