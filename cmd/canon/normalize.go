package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scholarmap/canon/internal/embedding"
	"github.com/scholarmap/canon/internal/normalizer"
)

var (
	normalizeContext []string
	normalizeTimeout time.Duration
	normalizeBatch   bool
)

func init() {
	normalizeCmd.Flags().StringArrayVar(&normalizeContext, "context", nil, "Context field as key=value (repeatable)")
	normalizeCmd.Flags().DurationVar(&normalizeTimeout, "timeout", 30*time.Second, "Total time budget per request")
	normalizeCmd.Flags().BoolVar(&normalizeBatch, "batch", false, "Read entity_type,input,context CSV rows from stdin")
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [entity-type] [text]",
	Short: "Resolve a mention to a canonical catalog record",
	Long: `Resolve a noisy entity mention to its canonical catalog record.

A null match (id and name empty, score carrying the best candidate's
score) means nothing cleared the configured threshold; it is a normal
result, not an error.

Examples:
  canon normalize journal "PNAS"
  canon normalize org "MIT Dept of Physics" --context country=US
  canon normalize --batch < mentions.csv > resolved.csv`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runNormalize,
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	pipeline := mustBuildPipeline(cfg, newProvider(cfg))

	if normalizeBatch {
		if len(args) != 0 {
			exitWithError(ExitError, "--batch takes no positional arguments")
		}
		return runNormalizeBatch(pipeline)
	}
	if len(args) != 2 {
		exitWithError(ExitError, "normalize requires <entity-type> and <text> (or --batch)")
	}

	userCtx, err := parseContextFlags(normalizeContext)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), normalizeTimeout)
	defer cancel()

	result, err := pipeline.Normalize(ctx, args[0], args[1], userCtx)
	if err != nil {
		exitNormalizeError(err)
	}

	if humanOutput {
		printResultHuman(args[1], result)
		return nil
	}
	return outputJSON(result)
}

// runNormalizeBatch reads entity_type,input,context rows from stdin
// and writes entity_type,input,id,name,score rows to stdout. Rows with
// an unknown entity type fail the batch; upstream failures do too.
func runNormalizeBatch(pipeline *normalizer.Pipeline) error {
	cr := csv.NewReader(os.Stdin)
	cw := csv.NewWriter(os.Stdout)
	defer cw.Flush()

	header, err := cr.Read()
	if err != nil {
		exitWithError(ExitDataError, "reading batch header: %v", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"entity_type", "input"} {
		if _, ok := cols[required]; !ok {
			exitWithError(ExitDataError, "batch input missing %s column", required)
		}
	}

	if err := cw.Write([]string{"entity_type", "input", "id", "name", "score"}); err != nil {
		return err
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			exitWithError(ExitDataError, "reading batch row: %v", err)
		}

		var userCtx map[string]string
		if i, ok := cols["context"]; ok && row[i] != "" {
			if err := json.Unmarshal([]byte(row[i]), &userCtx); err != nil {
				exitWithError(ExitDataError, "parsing context for %q: %v", row[cols["input"]], err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), normalizeTimeout)
		result, err := pipeline.Normalize(ctx, row[cols["entity_type"]], row[cols["input"]], userCtx)
		cancel()
		if err != nil {
			exitNormalizeError(err)
		}

		out := []string{
			row[cols["entity_type"]], row[cols["input"]],
			result.ID, result.Name,
			fmt.Sprintf("%.6f", result.Score),
		}
		if err := cw.Write(out); err != nil {
			return err
		}
	}
	return nil
}

// exitNormalizeError maps request errors onto exit codes.
func exitNormalizeError(err error) {
	switch {
	case errors.Is(err, normalizer.ErrUnknownEntityType):
		exitWithError(ExitDataError, "%v", err)
	case errors.Is(err, embedding.ErrTimeout), errors.Is(err, embedding.ErrUnavailable):
		exitWithError(ExitUpstream, "%v", err)
	default:
		exitWithError(ExitError, "%v", err)
	}
}

func printResultHuman(input string, r normalizer.Result) {
	if !r.Matched() {
		fmt.Printf("%s -> no match (best score %.3f)\n", input, r.Score)
		return
	}
	fmt.Printf("%s -> %s [%s] (score %.3f)\n", input, r.Name, r.ID, r.Score)
}
