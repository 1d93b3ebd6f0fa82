// Package config handles application configuration: the embedding
// backend, per-entity-type catalogs, weights, and thresholds. Loaded
// once at startup; validation failures refuse to start rather than
// degrade at request time.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scholarmap/canon/internal/normalizer"
)

// ErrInvalidConfig wraps every validation failure so callers can treat
// them uniformly as fatal startup errors.
var ErrInvalidConfig = errors.New("invalid configuration")

// EmbeddingsConfig selects and tunes the embedding backend.
type EmbeddingsConfig struct {
	Model          string  `yaml:"model"`
	URL            string  `yaml:"url,omitempty"`
	Dimensions     int     `yaml:"dimensions,omitempty"`
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"`
	RateLimit      float64 `yaml:"rate_limit,omitempty"` // requests per second
}

// Timeout returns the per-request embedding timeout.
func (e EmbeddingsConfig) Timeout() time.Duration {
	if e.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// TypeConfig configures one entity type.
type TypeConfig struct {
	Catalog            string `yaml:"catalog"` // catalog CSV path
	normalizer.Weights `yaml:",inline"`
}

// Config is the root application configuration.
type Config struct {
	Embeddings EmbeddingsConfig      `yaml:"embeddings"`
	IndexDir   string                `yaml:"index_dir"`
	DBPath     string                `yaml:"db_path,omitempty"`     // sqlite store for catalogs and eval runs
	AliasFile  string                `yaml:"alias_file,omitempty"`  // extra alias CSV
	Synonyms   map[string]string     `yaml:"synonyms,omitempty"`    // extra abbreviation expansions
	Stopwords  []string              `yaml:"stopwords,omitempty"`   // optional stopword set
	Types      map[string]TypeConfig `yaml:"types"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration is complete and internally
// consistent. Every entity type key must resolve to a known type, and
// every configured type needs a catalog path.
func (c *Config) Validate() error {
	if c.Embeddings.Model == "" {
		return fmt.Errorf("%w: embeddings.model is required", ErrInvalidConfig)
	}
	if c.IndexDir == "" {
		return fmt.Errorf("%w: index_dir is required", ErrInvalidConfig)
	}
	if len(c.Types) == 0 {
		return fmt.Errorf("%w: at least one entity type must be configured", ErrInvalidConfig)
	}

	for name, tc := range c.Types {
		if _, err := normalizer.ParseEntityType(name); err != nil {
			return fmt.Errorf("%w: types.%s: %v", ErrInvalidConfig, name, err)
		}
		if tc.Catalog == "" {
			return fmt.Errorf("%w: types.%s.catalog is required", ErrInvalidConfig, name)
		}
		if tc.Alpha < 0 || tc.Beta < 0 || tc.Gamma < 0 {
			return fmt.Errorf("%w: types.%s: weights must be non-negative", ErrInvalidConfig, name)
		}
		if tc.Alpha == 0 && tc.Beta == 0 && tc.Gamma == 0 {
			return fmt.Errorf("%w: types.%s: at least one weight must be positive", ErrInvalidConfig, name)
		}
		if tc.Threshold < 0 {
			return fmt.Errorf("%w: types.%s: threshold must be non-negative", ErrInvalidConfig, name)
		}
	}
	return nil
}

// TypeNames returns the configured entity type names, sorted for
// stable iteration.
func (c *Config) TypeNames() []string {
	names := make([]string, 0, len(c.Types))
	for name := range c.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IndexPath returns the on-disk vector index path for an entity type.
func (c *Config) IndexPath(t normalizer.EntityType) string {
	return filepath.Join(c.IndexDir, t.String()+".gob")
}
