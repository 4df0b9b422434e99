package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Dimension is the width of all-MiniLM-L6-v2 sentence vectors. The index is
// built with that model, so every provider must produce the same width.
const Dimension = 384

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

func checkDimension(vec []float32) error {
	if len(vec) != Dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), Dimension)
	}
	return nil
}

// normalizeVector normalizes a vector to unit length (magnitude = 1)
// Cosine distance in pgvector and the in-memory index assume unit vectors.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	// Avoid division by zero
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
