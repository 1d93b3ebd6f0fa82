package normalizer

import (
	"sort"

	"github.com/scholarmap/canon/internal/fuzzy"
)

// Scored is a candidate with its context bonus and final blended
// score.
type Scored struct {
	Candidate
	Ctx   float64 // contextual bonus in [0,1]
	Final float64 // alpha*fuzzy + beta*embed + gamma*ctx
}

// FinalScore blends the signals for one candidate. The lexical
// component is recomputed fresh against the exact candidate name so the
// final comparison does not inherit the pool-merge approximation.
func FinalScore(input, candidateName string, embedComponent, ctxScore float64, w Weights) float64 {
	fuzzyComponent := fuzzy.TokenSortRatio(input, candidateName) / 100
	return w.Alpha*fuzzyComponent + w.Beta*embedComponent + w.Gamma*ctxScore
}

// Rerank scores every candidate in the pool with FinalScore and
// returns them ordered best-first. Ordering among equal scores follows
// pool order, so the first-seen candidate wins ties.
func Rerank(input string, pool []Candidate, userCtx map[string]string, t EntityType, w Weights) []Scored {
	scored := make([]Scored, len(pool))
	for i, c := range pool {
		ctxScore := ContextScore(t, userCtx, c.Record)
		scored[i] = Scored{
			Candidate: c,
			Ctx:       ctxScore,
			Final:     FinalScore(input, c.Record.Name, c.Embed, ctxScore, w),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Final > scored[j].Final
	})
	return scored
}

// SelectBest applies the acceptance threshold to a reranked pool. The
// best candidate is accepted iff its final score is greater than or
// equal to the threshold; otherwise the result is a null match carrying
// the best score achieved. An empty pool yields a null match with
// score 0.
func SelectBest(scored []Scored, w Weights) Result {
	if len(scored) == 0 {
		return Result{}
	}
	best := scored[0]
	if best.Final < w.Threshold {
		return Result{Score: best.Final}
	}
	return Result{
		ID:    best.Record.ID,
		Name:  best.Record.Name,
		Score: best.Final,
	}
}
