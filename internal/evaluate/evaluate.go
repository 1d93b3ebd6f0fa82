// Package evaluate runs the normalization pipeline over labeled pairs
// and reports Top-1 accuracy and mean reciprocal rank. Used as a
// regression gate: pipeline changes report these metrics on a held-out
// set before being accepted.
package evaluate

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/scholarmap/canon/internal/normalizer"
	"github.com/scholarmap/canon/internal/storage"
)

// ErrMissingColumn indicates the labeled-pairs file lacks a required
// column.
var ErrMissingColumn = errors.New("labeled pairs missing required column")

// LabeledPair is one gold-labeled evaluation row.
type LabeledPair struct {
	InputName  string
	EntityType string
	GoldID     string
	Context    map[string]string
}

// Report aggregates the metrics of one evaluation run.
type Report struct {
	Rows         int     `json:"rows"`
	Correct      int     `json:"correct"`
	Top1Accuracy float64 `json:"top1_accuracy"`
	MRR          float64 `json:"mrr"`
}

// Runner evaluates a pipeline against labeled pairs. The pipeline is
// never mutated.
type Runner struct {
	pipeline *normalizer.Pipeline
}

// NewRunner creates an evaluation runner over the given pipeline.
func NewRunner(p *normalizer.Pipeline) *Runner {
	return &Runner{pipeline: p}
}

// Run normalizes every labeled pair and computes the metrics. The
// reciprocal rank of a row is 1/position of the gold id in the reranked
// pool (0 when absent); alias fast-path hits count rank 1 when the
// resolved id equals the gold id. The first request error aborts the
// run.
func (r *Runner) Run(ctx context.Context, pairs []LabeledPair) (Report, []storage.EvalPrediction, error) {
	report := Report{Rows: len(pairs)}
	predictions := make([]storage.EvalPrediction, 0, len(pairs))

	var rrSum float64
	for _, pair := range pairs {
		result, ranked, err := r.pipeline.NormalizeRanked(ctx, pair.EntityType, pair.InputName, pair.Context)
		if err != nil {
			return Report{}, nil, fmt.Errorf("normalizing %q: %w", pair.InputName, err)
		}

		if result.ID == pair.GoldID && result.ID != "" {
			report.Correct++
		}
		rrSum += reciprocalRank(pair.GoldID, result, ranked)

		predictions = append(predictions, storage.EvalPrediction{
			InputName:  pair.InputName,
			EntityType: pair.EntityType,
			GoldID:     pair.GoldID,
			PredID:     result.ID,
			PredName:   result.Name,
			Score:      result.Score,
		})
	}

	if report.Rows > 0 {
		report.Top1Accuracy = float64(report.Correct) / float64(report.Rows)
		report.MRR = rrSum / float64(report.Rows)
	}
	return report, predictions, nil
}

// reciprocalRank finds 1/rank of the gold id in the reranked pool. A
// nil pool means the alias fast path answered; the hit is rank 1 if it
// carries the gold id.
func reciprocalRank(goldID string, result normalizer.Result, ranked []normalizer.Scored) float64 {
	if ranked == nil {
		if result.ID == goldID && goldID != "" {
			return 1
		}
		return 0
	}
	for i, s := range ranked {
		if s.Record.ID == goldID {
			return 1 / float64(i+1)
		}
	}
	return 0
}

// ReadLabeledPairs parses a labeled-pairs CSV. Required columns:
// input_name, entity_type, gold_id. The optional context column holds a
// JSON object of context fields.
func ReadLabeledPairs(path string) ([]LabeledPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening labeled pairs: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"input_name", "entity_type", "gold_id"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var pairs []LabeledPair
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading labeled pairs: %w", err)
		}

		pair := LabeledPair{
			InputName:  row[cols["input_name"]],
			EntityType: row[cols["entity_type"]],
			GoldID:     row[cols["gold_id"]],
		}
		if i, ok := cols["context"]; ok && row[i] != "" {
			if err := json.Unmarshal([]byte(row[i]), &pair.Context); err != nil {
				return nil, fmt.Errorf("parsing context for %q: %w", pair.InputName, err)
			}
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// WritePredictions writes the augmented table: the labeled columns
// plus pred_id, pred_name, and score.
func WritePredictions(w io.Writer, predictions []storage.EvalPrediction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"input_name", "entity_type", "gold_id", "pred_id", "pred_name", "score"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, p := range predictions {
		record := []string{
			p.InputName, p.EntityType, p.GoldID,
			p.PredID, p.PredName,
			strconv.FormatFloat(p.Score, 'f', 6, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing prediction: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
