// Package normalizer resolves noisy free-text entity mentions to
// canonical catalog records. It combines lexical similarity, embedding
// similarity, and contextual signals into a single thresholded
// decision.
package normalizer

import (
	"fmt"
)

// EntityType is the closed set of categories a mention can belong to.
// Each type has its own catalog, index, weights, and threshold.
type EntityType int

const (
	Journal EntityType = iota
	Organization
	Country
	Funder
	Topic
)

// entityTypeNames maps each type to its canonical string form.
var entityTypeNames = map[EntityType]string{
	Journal:      "journals",
	Organization: "organizations",
	Country:      "countries",
	Funder:       "funders",
	Topic:        "topics",
}

// requestAliases maps accepted request strings onto entity types.
// Resolution is exact; unknown strings are rejected, never defaulted.
var requestAliases = map[string]EntityType{
	"journal":       Journal,
	"journals":      Journal,
	"org":           Organization,
	"organization":  Organization,
	"organizations": Organization,
	"country":       Country,
	"countries":     Country,
	"funder":        Funder,
	"funders":       Funder,
	"topic":         Topic,
	"topics":        Topic,
}

// String returns the canonical plural form, e.g. "journals".
func (t EntityType) String() string {
	if name, ok := entityTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EntityType(%d)", int(t))
}

// EntityTypes lists every defined type in declaration order.
func EntityTypes() []EntityType {
	return []EntityType{Journal, Organization, Country, Funder, Topic}
}

// ParseEntityType resolves a request string to an entity type. Unknown
// strings return ErrUnknownEntityType.
func ParseEntityType(s string) (EntityType, error) {
	if t, ok := requestAliases[s]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEntityType, s)
}

// Weights are the per-type linear-combination coefficients and the
// acceptance threshold. They need not sum to 1; the threshold is
// calibrated against whatever scale they produce.
type Weights struct {
	Alpha     float64 `yaml:"alpha_fuzzy"` // lexical component
	Beta      float64 `yaml:"beta_embed"`  // embedding component
	Gamma     float64 `yaml:"gamma_ctx"`   // context component
	Threshold float64 `yaml:"threshold"`   // minimum final score for a match
}

// MaxScore returns the largest final score the weights can produce,
// used as the implicit confidence of an alias fast-path hit.
func (w Weights) MaxScore() float64 {
	return w.Alpha + w.Beta + w.Gamma
}

// Result is the outcome of one normalization request. ID and Name are
// both empty iff no candidate met the threshold; Score then carries the
// best score achieved (0 for an empty pool) so callers can distinguish
// "nothing close" from "close but below confidence".
type Result struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Matched reports whether the result identifies a catalog record.
func (r Result) Matched() bool {
	return r.ID != "" || r.Name != ""
}
