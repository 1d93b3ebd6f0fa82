package embedding

import (
	"math"
	"testing"
)

func TestEmbedding_Dimensions(t *testing.T) {
	tests := []struct {
		name     string
		vector   []float32
		expected int
	}{
		{"384 dimensions", make([]float32, 384), 384},
		{"empty vector", []float32{}, 0},
		{"small vector", []float32{1.0, 2.0, 3.0}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb := Embedding{Vector: tt.vector}
			if got := emb.Dimensions(); got != tt.expected {
				t.Errorf("Dimensions() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestEmbedding_Normalized(t *testing.T) {
	t.Run("scales to unit norm", func(t *testing.T) {
		emb := Embedding{Vector: []float32{3, 4}}
		n := emb.Normalized()

		var sum float64
		for _, v := range n.Vector {
			sum += float64(v) * float64(v)
		}
		if math.Abs(sum-1) > 0.0001 {
			t.Errorf("norm^2 = %v, want 1", sum)
		}
		if math.Abs(float64(n.Vector[0])-0.6) > 0.0001 || math.Abs(float64(n.Vector[1])-0.8) > 0.0001 {
			t.Errorf("Normalized() = %v, want [0.6 0.8]", n.Vector)
		}
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		emb := Embedding{Vector: []float32{0, 0, 0}}
		n := emb.Normalized()
		for _, v := range n.Vector {
			if v != 0 {
				t.Errorf("Normalized() = %v, want zero vector", n.Vector)
			}
		}
	})

	t.Run("does not mutate the original", func(t *testing.T) {
		emb := Embedding{Vector: []float32{3, 4}}
		emb.Normalized()
		if emb.Vector[0] != 3 || emb.Vector[1] != 4 {
			t.Errorf("original mutated: %v", emb.Vector)
		}
	})
}
