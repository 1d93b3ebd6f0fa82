// Package fuzzy provides token-order-insensitive string similarity for
// candidate retrieval and reranking. Scores are on a 0-100 scale.
package fuzzy

import (
	"sort"
	"strings"
)

// Match pairs a corpus entry with its similarity to a query.
type Match struct {
	Index int     // position in the corpus
	Name  string  // the corpus string
	Score float64 // similarity in [0, 100]
}

// TokenSortRatio computes a symmetric, length-normalized similarity in
// [0, 100] between a and b, insensitive to token order: both strings
// are lowercased, tokenized on whitespace, sorted, re-joined, and
// compared by Levenshtein ratio. Two strings with the same tokens in
// any order score 100.
func TokenSortRatio(a, b string) float64 {
	return ratio(tokenSort(a), tokenSort(b))
}

// TopK scores every corpus entry against the query with TokenSortRatio
// and returns the k best, sorted by score descending. Ties keep corpus
// order. An empty corpus yields an empty result, never an error.
func TopK(query string, corpus []string, k int) []Match {
	if k <= 0 || len(corpus) == 0 {
		return nil
	}

	matches := make([]Match, len(corpus))
	sorted := tokenSort(query)
	for i, name := range corpus {
		matches[i] = Match{Index: i, Name: name, Score: ratio(sorted, tokenSort(name))}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// tokenSort lowercases, splits on whitespace, sorts the tokens, and
// re-joins with single spaces.
func tokenSort(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// ratio converts Levenshtein distance to a similarity in [0, 100]:
// 100 * (1 - distance/maxLen). Two empty strings are identical.
func ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein(ra, rb)
	return 100 * (1 - float64(d)/float64(longest))
}

// levenshtein computes edit distance with a single rolling row.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(a); i++ {
		prev := i
		for j := 1; j <= len(b); j++ {
			var cur int
			if a[i-1] == b[j-1] {
				cur = row[j-1]
			} else {
				cur = min(row[j-1], prev, row[j]) + 1
			}
			row[j-1] = prev
			prev = cur
		}
		row[len(b)] = prev
	}
	return row[len(b)]
}
