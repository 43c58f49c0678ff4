// Package synergyphi computes alignment and resonance statistics for
// conversational AI sessions.
//
// The metric functions are pure and safe for concurrent use. Session adds the
// stateful pieces: a resonance logger with spike notification and an
// append-only ledger of HMAC-signed receipts.
package synergyphi

import (
	"github.com/kailas-cloud/synergyphi/internal/domain/entropy"
	"github.com/kailas-cloud/synergyphi/internal/domain/quotient"
	"github.com/kailas-cloud/synergyphi/internal/domain/resonance"
	"github.com/kailas-cloud/synergyphi/internal/domain/vector"
)

// Weights are the per-component weights of HarmonicBSQ: alignment, HRV coherence, synergy.
type Weights = quotient.Weights

// DefaultWeights weighs all HarmonicBSQ components equally.
var DefaultWeights = quotient.DefaultWeights

// MeaningfulShiftThreshold is the smallest BSQ improvement considered meaningful.
const MeaningfulShiftThreshold = quotient.MeaningfulShiftThreshold

// CosineSimilarity returns dot(a, b) / (|a| |b|).
func CosineSimilarity(a, b []float64) (float64, error) {
	return vector.CosineSimilarity(a, b)
}

// Coherence returns the cosine similarity of each consecutive pair of embeddings.
func Coherence(embeddings [][]float64) ([]float64, error) {
	return vector.Coherence(embeddings)
}

// Probabilities returns the empirical distribution of seq.
func Probabilities[K comparable](seq []K) map[K]float64 {
	return entropy.Distribution(seq)
}

// MutualInformation returns I(X;Z) in bits.
func MutualInformation[X, Z comparable](x []X, z []Z) (float64, error) {
	return entropy.MutualInformation(x, z)
}

// DyadicSynergyIndex returns I(X,Y;Z) - I(X;Z) - I(Y;Z) in bits.
func DyadicSynergyIndex[X, Y, Z comparable](x []X, y []Y, z []Z) (float64, error) {
	return entropy.DyadicSynergyIndex(x, y, z)
}

// ExpandedBSQ scales the mean affirmation (out of 7) by the mean cosine
// similarity of the turn embeddings to the baseline.
func ExpandedBSQ(affirmations []float64, embeddings [][]float64, baseline []float64) (float64, error) {
	return quotient.Expanded(affirmations, embeddings, baseline)
}

// HarmonicBSQ returns the weighted harmonic mean of the three components.
func HarmonicBSQ(alignment, hrvCoherence, synergy float64, w Weights) (float64, error) {
	return quotient.Harmonic(alignment, hrvCoherence, synergy, w)
}

// IsMeaningfulShift reports whether BSQ rose by at least MeaningfulShiftThreshold.
func IsMeaningfulShift(before, after float64) bool {
	return quotient.IsMeaningfulShift(before, after)
}

// IntrinsicResonance returns the mean of aligned[i] - baseline[i].
func IntrinsicResonance(aligned, baseline []float64) (float64, error) {
	return resonance.Intrinsic(aligned, baseline)
}
