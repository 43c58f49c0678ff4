// Package vector provides cosine similarity and coherence over dense embeddings.
package vector

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/synergyphi/internal/domain"
)

// MinCoherenceInputs is the number of embeddings needed for one consecutive pair.
const MinCoherenceInputs = 2

// Magnitude returns the Euclidean norm of v. Components are scaled by the
// largest absolute value first, so the sum of squares neither overflows nor underflows.
func Magnitude(v []float64) float64 {
	scale := maxAbs(v)
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return scale
	}
	var sum float64
	for _, x := range v {
		x /= scale
		sum += x * x
	}
	return scale * math.Sqrt(sum)
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|).
// Both vectors must have the same dimensionality, finite components and a
// non-zero magnitude.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine similarity: %w", domain.NewLengthMismatch(len(a), len(b)))
	}

	scaleA, scaleB := maxAbs(a), maxAbs(b)
	if scaleA == 0 || scaleB == 0 {
		return 0, fmt.Errorf("cosine similarity undefined for zero-magnitude vector: %w", domain.ErrDomain)
	}
	if !isFinite(scaleA) || !isFinite(scaleB) {
		return 0, fmt.Errorf("cosine similarity undefined for non-finite component: %w", domain.ErrDomain)
	}

	// Scaled components lie in [-1, 1], so the sums stay within [0, len(a)].
	var dot, normA, normB float64
	for i := range a {
		x, y := a[i]/scaleA, b[i]/scaleB
		dot += x * y
		normA += x * x
		normB += y * y
	}

	sim := dot / math.Sqrt(normA*normB)
	return math.Max(-1, math.Min(1, sim)), nil
}

// maxAbs returns the largest absolute component of v, or NaN if v holds a NaN.
func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		if math.IsNaN(x) {
			return math.NaN()
		}
		m = math.Max(m, math.Abs(x))
	}
	return m
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Coherence returns the cosine similarity of every consecutive pair of embeddings,
// i.e. the time series C(t) with len(embeddings)-1 points.
func Coherence(embeddings [][]float64) ([]float64, error) {
	if len(embeddings) < MinCoherenceInputs {
		return nil, domain.TooFewInputs("coherence embeddings", MinCoherenceInputs, len(embeddings))
	}

	series := make([]float64, 0, len(embeddings)-1)
	for i := 1; i < len(embeddings); i++ {
		sim, err := CosineSimilarity(embeddings[i-1], embeddings[i])
		if err != nil {
			return nil, fmt.Errorf("coherence pair %d: %w", i-1, err)
		}
		series = append(series, sim)
	}
	return series, nil
}

// FromFloat32 widens a provider embedding to float64.
func FromFloat32(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
