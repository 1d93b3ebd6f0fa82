// Package embedding provides the text-to-vector boundary used by the
// semantic retrieval path.
package embedding

import "math"

// Embedding represents a vector embedding of text.
type Embedding struct {
	Vector []float32 // e.g., 384 dimensions for all-minilm
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}

// Normalized returns the vector scaled to unit L2 norm, so inner
// product equals cosine similarity. A zero vector is returned
// unchanged.
func (e Embedding) Normalized() Embedding {
	var sum float64
	for _, v := range e.Vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return e
	}
	inv := 1 / math.Sqrt(sum)
	out := make([]float32, len(e.Vector))
	for i, v := range e.Vector {
		out[i] = float32(float64(v) * inv)
	}
	return Embedding{Vector: out}
}
