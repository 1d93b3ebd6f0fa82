package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scholarmap/canon/internal/catalog"
	"github.com/scholarmap/canon/internal/config"
	"github.com/scholarmap/canon/internal/normalizer"
	"github.com/scholarmap/canon/internal/vecindex"
)

var indexBuildTimeout time.Duration

func init() {
	indexBuildCmd.Flags().DurationVar(&indexBuildTimeout, "timeout", 30*time.Minute, "Total time budget for the build")
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the vector indexes over catalog names",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build [entity-type...]",
	Short: "Embed catalog names and write the vector indexes",
	Long: `Embed every catalog display name and write one vector index per
entity type. With no arguments, builds all configured types.

The embedding model must be available in Ollama; partial indexes are
never written.`,
	RunE: runIndexBuild,
}

// indexBuildResult reports one built index.
type indexBuildResult struct {
	EntityType string `json:"entity_type"`
	Names      int    `json:"names"`
	Path       string `json:"path"`
	DurationMs int64  `json:"duration_ms"`
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	provider := newProvider(cfg)
	norm := newTextNormalizer(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), indexBuildTimeout)
	defer cancel()

	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitUpstream, "%v", err)
	}
	if ok, err := provider.HasModel(ctx); err != nil {
		exitWithError(ExitUpstream, "%v", err)
	} else if !ok {
		exitWithError(ExitConfigError, "model %s not available in ollama (pull it first)", provider.ModelName())
	}

	// config keys may use any accepted spelling of a type ("journal",
	// "journals"); resolve them up front so positional arguments match
	configured := make(map[normalizer.EntityType]config.TypeConfig, len(cfg.Types))
	for _, name := range cfg.TypeNames() {
		t, err := normalizer.ParseEntityType(name)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		configured[t] = cfg.Types[name]
	}

	typeNames := args
	if len(typeNames) == 0 {
		typeNames = cfg.TypeNames()
	}

	builder := vecindex.NewBuilder(provider)
	if humanOutput {
		builder.SetProgressReporter(vecindex.ProgressFunc(func(current, total int) {
			fmt.Fprintf(os.Stderr, "\r  embedding %d/%d", current, total)
		}))
	}

	var results []indexBuildResult
	for _, name := range typeNames {
		t, err := normalizer.ParseEntityType(name)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		tc, ok := configured[t]
		if !ok {
			exitWithError(ExitConfigError, "entity type %s is not configured", t)
		}

		cat, err := catalog.LoadCSV(tc.Catalog, norm)
		if err != nil {
			exitWithError(ExitConfigError, "loading %s catalog: %v", t, err)
		}

		if humanOutput {
			fmt.Fprintf(os.Stderr, "building %s index (%d names)\n", t, cat.Len())
		}
		idx, stats, err := builder.Build(ctx, t.String(), cat)
		if err != nil {
			exitIndexBuildError(t, err)
		}
		if humanOutput {
			fmt.Fprintln(os.Stderr)
		}

		path := cfg.IndexPath(t)
		if err := idx.Save(path); err != nil {
			exitWithError(ExitError, "saving %s index: %v", t, err)
		}
		results = append(results, indexBuildResult{
			EntityType: t.String(),
			Names:      stats.NamesIndexed,
			Path:       path,
			DurationMs: stats.Duration.Milliseconds(),
		})
	}

	if humanOutput {
		for _, r := range results {
			fmt.Printf("%s: %d names -> %s (%dms)\n", r.EntityType, r.Names, r.Path, r.DurationMs)
		}
		return nil
	}
	return outputJSON(results)
}

func exitIndexBuildError(t normalizer.EntityType, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		exitWithError(ExitUpstream, "building %s index: %v", t, err)
	}
	exitWithError(ExitError, "building %s index: %v", t, err)
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of each configured vector index",
	RunE:  runIndexStatus,
}

// indexStatus reports one configured index.
type indexStatus struct {
	EntityType string `json:"entity_type"`
	Exists     bool   `json:"exists"`
	Names      int    `json:"names,omitempty"`
	ModelName  string `json:"model_name,omitempty"`
	Dimensions int    `json:"dimensions,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	Error      string `json:"error,omitempty"`
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	var statuses []indexStatus
	for _, name := range cfg.TypeNames() {
		t, _ := normalizer.ParseEntityType(name)
		status := indexStatus{EntityType: t.String()}

		idx, err := vecindex.Load(cfg.IndexPath(t))
		switch {
		case errors.Is(err, vecindex.ErrIndexNotFound):
			// leave Exists false
		case err != nil:
			status.Error = err.Error()
		default:
			status.Exists = true
			status.Names = idx.Len()
			status.ModelName = idx.ModelName
			status.Dimensions = idx.Dimensions
			status.CreatedAt = idx.CreatedAt.Format(time.RFC3339)
		}
		statuses = append(statuses, status)
	}

	if humanOutput {
		for _, s := range statuses {
			if !s.Exists {
				fmt.Printf("%s: not built\n", s.EntityType)
				continue
			}
			fmt.Printf("%s: %d names, model %s, built %s\n", s.EntityType, s.Names, s.ModelName, s.CreatedAt)
		}
		return nil
	}
	return outputJSON(statuses)
}
