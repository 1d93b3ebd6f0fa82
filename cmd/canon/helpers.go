package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/scholarmap/canon/internal/catalog"
	"github.com/scholarmap/canon/internal/config"
	"github.com/scholarmap/canon/internal/embedding"
	"github.com/scholarmap/canon/internal/normalizer"
	"github.com/scholarmap/canon/internal/textnorm"
	"github.com/scholarmap/canon/internal/vecindex"
)

// mustLoadConfig loads and validates the app config, exiting on
// failure.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config %s: %v", configPath, err)
	}
	return cfg
}

// newProvider builds the embedding provider from config, with
// OLLAMA_URL taking precedence over the configured URL.
func newProvider(cfg *config.Config) *embedding.OllamaProvider {
	url := cfg.Embeddings.URL
	if env := os.Getenv("OLLAMA_URL"); env != "" {
		url = env
	}

	opts := []embedding.OllamaOption{
		embedding.WithBaseURL(url),
		embedding.WithModel(cfg.Embeddings.Model),
	}
	if cfg.Embeddings.Dimensions > 0 {
		opts = append(opts, embedding.WithDimensions(cfg.Embeddings.Dimensions))
	}
	if t := cfg.Embeddings.Timeout(); t > 0 {
		opts = append(opts, embedding.WithTimeout(t))
	}
	if cfg.Embeddings.RateLimit > 0 {
		opts = append(opts, embedding.WithRateLimit(cfg.Embeddings.RateLimit))
	}
	return embedding.NewOllamaProvider(opts...)
}

// newTextNormalizer builds the shared text normalizer from config.
func newTextNormalizer(cfg *config.Config) *textnorm.Normalizer {
	var opts []textnorm.Option
	if len(cfg.Synonyms) > 0 {
		opts = append(opts, textnorm.WithSynonyms(cfg.Synonyms))
	}
	if len(cfg.Stopwords) > 0 {
		opts = append(opts, textnorm.WithStopwords(cfg.Stopwords))
	}
	return textnorm.New(opts...)
}

// newAliasTable builds the alias table: defaults plus the configured
// alias CSV, if any.
func newAliasTable(cfg *config.Config) (*textnorm.AliasTable, error) {
	aliases := textnorm.NewAliasTable()
	if cfg.AliasFile != "" {
		if err := aliases.LoadAliasCSV(cfg.AliasFile); err != nil {
			return nil, err
		}
	}
	return aliases, nil
}

// mustBuildPipeline assembles the full pipeline: per-type catalogs,
// on-disk vector indexes, and the shared generator. Any missing or
// inconsistent piece is a configuration error.
func mustBuildPipeline(cfg *config.Config, provider embedding.Provider) *normalizer.Pipeline {
	norm := newTextNormalizer(cfg)
	aliases, err := newAliasTable(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "loading aliases: %v", err)
	}
	gen := normalizer.NewGenerator(provider)

	var normalizers []*normalizer.EntityNormalizer
	for _, name := range cfg.TypeNames() {
		t, err := normalizer.ParseEntityType(name)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		tc := cfg.Types[name]

		cat, err := catalog.LoadCSV(tc.Catalog, norm)
		if err != nil {
			exitWithError(ExitConfigError, "loading %s catalog: %v", t, err)
		}

		idx, err := vecindex.Load(cfg.IndexPath(t))
		if err != nil {
			if errors.Is(err, vecindex.ErrIndexNotFound) {
				exitWithError(ExitConfigError, "no vector index for %s (run 'canon index build' first)", t)
			}
			exitWithError(ExitConfigError, "loading %s index: %v", t, err)
		}
		if idx.ModelName != cfg.Embeddings.Model {
			exitWithError(ExitConfigError,
				"%s index was built with model %s, config uses %s (rebuild with 'canon index build')",
				t, idx.ModelName, cfg.Embeddings.Model)
		}

		n, err := normalizer.NewEntityNormalizer(t, cat, idx, gen, norm, aliases, tc.Weights)
		if err != nil {
			exitWithError(ExitConfigError, "assembling %s normalizer: %v", t, err)
		}
		normalizers = append(normalizers, n)
	}

	p, err := normalizer.NewPipeline(normalizers)
	if err != nil {
		exitWithError(ExitConfigError, "assembling pipeline: %v", err)
	}
	return p
}

// parseContextFlags turns repeated key=value flags into a context map.
func parseContextFlags(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ctx := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid context %q (want key=value)", v)
		}
		ctx[key] = value
	}
	return ctx, nil
}
