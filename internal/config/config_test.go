package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scholarmap/canon/internal/normalizer"
)

func validConfig() *Config {
	return &Config{
		Embeddings: EmbeddingsConfig{Model: "nomic-embed-text"},
		IndexDir:   "indexes",
		Types: map[string]TypeConfig{
			"journals": {
				Catalog: "journals.csv",
				Weights: normalizer.Weights{Alpha: 0.4, Beta: 0.4, Gamma: 0.2, Threshold: 0.7},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing model",
			mutate:  func(c *Config) { c.Embeddings.Model = "" },
			wantErr: true,
		},
		{
			name:    "missing index dir",
			mutate:  func(c *Config) { c.IndexDir = "" },
			wantErr: true,
		},
		{
			name:    "no types",
			mutate:  func(c *Config) { c.Types = nil },
			wantErr: true,
		},
		{
			name: "unknown type name",
			mutate: func(c *Config) {
				c.Types["proceedings"] = c.Types["journals"]
			},
			wantErr: true,
		},
		{
			name: "missing catalog",
			mutate: func(c *Config) {
				tc := c.Types["journals"]
				tc.Catalog = ""
				c.Types["journals"] = tc
			},
			wantErr: true,
		},
		{
			name: "negative weight",
			mutate: func(c *Config) {
				tc := c.Types["journals"]
				tc.Alpha = -0.1
				c.Types["journals"] = tc
			},
			wantErr: true,
		},
		{
			name: "all weights zero",
			mutate: func(c *Config) {
				tc := c.Types["journals"]
				tc.Weights = normalizer.Weights{Threshold: 0.5}
				c.Types["journals"] = tc
			},
			wantErr: true,
		},
		{
			name: "negative threshold",
			mutate: func(c *Config) {
				tc := c.Types["journals"]
				tc.Threshold = -1
				c.Types["journals"] = tc
			},
			wantErr: true,
		},
		{
			name: "zero threshold is allowed",
			mutate: func(c *Config) {
				tc := c.Types["journals"]
				tc.Threshold = 0
				c.Types["journals"] = tc
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	content := `embeddings:
  model: nomic-embed-text
  url: http://localhost:11434
  timeout_seconds: 30
  rate_limit: 10
index_dir: /var/lib/canon/indexes
db_path: canon.db
synonyms:
  hosp: hospital
types:
  journals:
    catalog: journals.csv
    alpha_fuzzy: 0.4
    beta_embed: 0.4
    gamma_ctx: 0.2
    threshold: 0.7
  countries:
    catalog: countries.csv
    alpha_fuzzy: 0.6
    beta_embed: 0.4
    threshold: 0.8
`
	path := filepath.Join(t.TempDir(), "canon.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Embeddings.Model != "nomic-embed-text" {
		t.Errorf("Model = %q", cfg.Embeddings.Model)
	}
	if got := cfg.Embeddings.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", got)
	}
	if cfg.Synonyms["hosp"] != "hospital" {
		t.Errorf("Synonyms = %v", cfg.Synonyms)
	}

	j := cfg.Types["journals"]
	if j.Catalog != "journals.csv" || j.Alpha != 0.4 || j.Beta != 0.4 || j.Gamma != 0.2 || j.Threshold != 0.7 {
		t.Errorf("journals config = %+v", j)
	}
	c := cfg.Types["countries"]
	if c.Gamma != 0 {
		t.Errorf("countries gamma = %v, want 0 (omitted)", c.Gamma)
	}

	if got := cfg.TypeNames(); len(got) != 2 || got[0] != "countries" || got[1] != "journals" {
		t.Errorf("TypeNames() = %v, want sorted [countries journals]", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canon.yml")
	content := "embeddings:\n  model: m\ntypes: {}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIndexPath(t *testing.T) {
	cfg := &Config{IndexDir: "/data/indexes"}
	if got := cfg.IndexPath(normalizer.Journal); got != filepath.Join("/data/indexes", "journals.gob") {
		t.Errorf("IndexPath() = %q", got)
	}
}

func TestEmbeddingsTimeoutUnset(t *testing.T) {
	if got := (EmbeddingsConfig{}).Timeout(); got != 0 {
		t.Errorf("Timeout() = %v, want 0", got)
	}
}
