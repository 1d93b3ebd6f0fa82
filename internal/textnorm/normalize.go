// Package textnorm provides deterministic canonicalization of entity
// name strings: case folding, diacritic stripping, punctuation removal,
// abbreviation expansion, and optional stopword removal.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldAccents decomposes to NFD, drops combining marks, and recomposes.
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// DefaultSynonyms is the built-in abbreviation expansion table, applied
// token-wise after cleaning. Extendable via config without code change.
var DefaultSynonyms = map[string]string{
	"univ": "university",
	"inst": "institute",
	"dept": "department",
	"tech": "technology",
	"sci":  "science",
	"natl": "national",
	"intl": "international",
	"ctr":  "center",
	"lab":  "laboratory",
}

// orgNoise lists boilerplate substrings stripped by StripOrgNoise.
// Longer phrases come first so "laboratory" is removed before "lab"
// would match inside it.
var orgNoise = []string{
	"department of",
	"school of",
	"faculty of",
	"college of",
	"laboratory",
	"lab",
}

// Normalizer canonicalizes free-text entity names. The zero value
// performs basic cleaning only; synonym and stopword tables are set at
// construction. Normalizer is safe for concurrent use once built.
type Normalizer struct {
	synonyms  map[string]string
	stopwords map[string]bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithSynonyms merges extra token-level synonym substitutions over the
// default table.
func WithSynonyms(extra map[string]string) Option {
	return func(n *Normalizer) {
		for k, v := range extra {
			n.synonyms[k] = v
		}
	}
}

// WithStopwords enables stopword removal for the given set.
func WithStopwords(words []string) Option {
	return func(n *Normalizer) {
		for _, w := range words {
			n.stopwords[w] = true
		}
	}
}

// New creates a Normalizer with the default synonym table and no
// stopwords.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		synonyms:  make(map[string]string, len(DefaultSynonyms)),
		stopwords: make(map[string]bool),
	}
	for k, v := range DefaultSynonyms {
		n.synonyms[k] = v
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Clean lowercases, folds diacritics to ASCII, replaces every character
// outside [a-z0-9] and whitespace with a space, and collapses runs of
// whitespace. Characters that do not fold to ASCII are dropped.
// Clean("") == "".
func Clean(s string) string {
	folded, _, err := transform.String(foldAccents, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case r < 128:
			b.WriteByte(' ')
		default:
			// non-ASCII rune that survived folding: drop
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Normalize runs the full pipeline: Clean, tokenize, synonym
// substitution, optional stopword removal, re-join. Token order is
// preserved. Normalize is idempotent.
func (n *Normalizer) Normalize(s string) string {
	tokens := strings.Fields(Clean(s))

	out := tokens[:0]
	for _, t := range tokens {
		if rep, ok := n.synonyms[t]; ok {
			t = rep
		}
		if n.stopwords[t] {
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, " ")
}

// StripOrgNoise removes known organizational boilerplate ("department
// of", "school of", ...) from an already-cleaned string. Applied only
// for the organization entity type, after Clean.
func StripOrgNoise(s string) string {
	t := strings.ToLower(s)
	for _, phrase := range orgNoise {
		t = strings.ReplaceAll(t, phrase, " ")
	}
	return strings.Join(strings.Fields(t), " ")
}
