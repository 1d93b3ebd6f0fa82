package normalizer

import (
	"strings"

	"github.com/scholarmap/canon/internal/catalog"
)

// ContextScore computes the contextual bonus in [0,1] for a candidate
// given caller-supplied context fields. Each type has a small fixed
// rule set; missing keys on either side contribute zero. The sum is
// clamped to 1 even though current rule sets apply one rule per type.
func ContextScore(t EntityType, userCtx map[string]string, rec catalog.Record) float64 {
	if len(userCtx) == 0 {
		return 0
	}

	var s float64
	switch t {
	case Journal:
		// ISSNs are codes: compared case-sensitively, exactly.
		if v := userCtx["issn"]; v != "" && v == rec.Attr("issn") {
			s += 1
		}
	case Organization, Funder:
		if v := userCtx["country"]; v != "" && v == rec.Attr("country") {
			s += 1
		}
	case Country:
		// ISO 3166-1 alpha-2 codes are case-insensitive.
		if v := userCtx["iso2"]; v != "" && rec.Attr("iso2") != "" &&
			strings.EqualFold(v, rec.Attr("iso2")) {
			s += 1
		}
	case Topic:
		// No contextual rule defined; extension point.
	}

	if s > 1 {
		s = 1
	}
	return s
}
