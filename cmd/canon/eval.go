package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scholarmap/canon/internal/evaluate"
	"github.com/scholarmap/canon/internal/storage"
)

var (
	evalOutPath   string
	evalSave      bool
	evalTimeout   time.Duration
	evalRunsLimit int
)

func init() {
	evalCmd.Flags().StringVar(&evalOutPath, "out", "", "Write the predictions CSV to this path")
	evalCmd.Flags().BoolVar(&evalSave, "save", false, "Record the run in the configured database")
	evalCmd.Flags().DurationVar(&evalTimeout, "timeout", 30*time.Minute, "Total time budget for the run")
	evalRunsCmd.Flags().IntVar(&evalRunsLimit, "limit", 20, "Maximum number of runs to list")
	evalCmd.AddCommand(evalRunsCmd)
	rootCmd.AddCommand(evalCmd)
}

var evalCmd = &cobra.Command{
	Use:   "eval <labeled-pairs.csv>",
	Short: "Measure pipeline accuracy against labeled pairs",
	Long: `Run the pipeline over a labeled set and report Top-1 accuracy and
mean reciprocal rank.

The input CSV needs input_name, entity_type, and gold_id columns, plus
an optional context column holding a JSON object. Use this as a
regression gate before accepting pipeline changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

// evalResponse is the JSON output of an eval run.
type evalResponse struct {
	evaluate.Report
	RunID int64 `json:"run_id,omitempty"`
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	pipeline := mustBuildPipeline(cfg, newProvider(cfg))

	pairs, err := evaluate.ReadLabeledPairs(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	report, predictions, err := evaluate.NewRunner(pipeline).Run(ctx, pairs)
	if err != nil {
		exitNormalizeError(err)
	}

	if evalOutPath != "" {
		f, err := os.Create(evalOutPath)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", evalOutPath, err)
		}
		if err := evaluate.WritePredictions(f, predictions); err != nil {
			f.Close()
			exitWithError(ExitError, "writing predictions: %v", err)
		}
		if err := f.Close(); err != nil {
			exitWithError(ExitError, "closing %s: %v", evalOutPath, err)
		}
	}

	response := evalResponse{Report: report}
	if evalSave {
		if cfg.DBPath == "" {
			exitWithError(ExitConfigError, "--save requires db_path in %s", configPath)
		}
		db, err := storage.OpenDB(cfg.DBPath)
		if err != nil {
			exitWithError(ExitError, "opening database: %v", err)
		}
		defer db.Close()

		runID, err := db.SaveEvalRun(storage.EvalRun{
			CreatedAt:    time.Now(),
			RowCount:     report.Rows,
			Top1Accuracy: report.Top1Accuracy,
			MRR:          report.MRR,
		}, predictions)
		if err != nil {
			exitWithError(ExitError, "saving run: %v", err)
		}
		response.RunID = runID
	}

	if humanOutput {
		fmt.Printf("rows: %d\ncorrect: %d\ntop-1 accuracy: %.4f\nMRR: %.4f\n",
			report.Rows, report.Correct, report.Top1Accuracy, report.MRR)
		if response.RunID != 0 {
			fmt.Printf("saved as run %d\n", response.RunID)
		}
		return nil
	}
	return outputJSON(response)
}

var evalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded evaluation runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runEvalRuns,
}

func runEvalRuns(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if cfg.DBPath == "" {
		exitWithError(ExitConfigError, "db_path is not set in %s", configPath)
	}

	db, err := storage.OpenDB(cfg.DBPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	runs, err := db.ListEvalRuns(evalRunsLimit)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		for _, r := range runs {
			fmt.Printf("run %d (%s): %d rows, top-1 %.4f, MRR %.4f\n",
				r.RunID, r.CreatedAt.Format(time.RFC3339), r.RowCount, r.Top1Accuracy, r.MRR)
		}
		return nil
	}
	return outputJSON(runs)
}
