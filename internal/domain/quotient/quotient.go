// Package quotient computes Being-Seen Quotients (BSQ).
package quotient

import (
	"fmt"

	"github.com/kailas-cloud/synergyphi/internal/domain"
	"github.com/kailas-cloud/synergyphi/internal/domain/vector"
)

// MaxAffirmation is the top of the 1..7 self-report scale.
const MaxAffirmation = 7.0

// MeaningfulShiftThreshold is the minimum BSQ increase treated as a meaningful
// gain in witnessed alignment.
const MeaningfulShiftThreshold = 0.15

// Weights are the per-component weights of the harmonic BSQ,
// in the order alignment, HRV coherence, synergy.
type Weights [3]float64

// DefaultWeights weighs all components equally.
var DefaultWeights = Weights{1, 1, 1}

// Expanded returns the Expanded Being-Seen Quotient:
//
//	mean(affirmations)/7 * mean(cos(embeddings[i], baseline))
//
// Affirmations are self-report scores on the 1..7 scale.
func Expanded(affirmations []float64, embeddings [][]float64, baseline []float64) (float64, error) {
	if len(affirmations) == 0 {
		return 0, domain.EmptyInput("affirmations")
	}
	if len(embeddings) == 0 {
		return 0, domain.EmptyInput("embeddings")
	}

	var affSum float64
	for _, a := range affirmations {
		affSum += a
	}
	meanAffirmation := affSum / (float64(len(affirmations)) * MaxAffirmation)

	var simSum float64
	for i, emb := range embeddings {
		sim, err := vector.CosineSimilarity(emb, baseline)
		if err != nil {
			return 0, fmt.Errorf("embedding %d vs baseline: %w", i, err)
		}
		simSum += sim
	}
	meanSimilarity := simSum / float64(len(embeddings))

	return meanAffirmation * meanSimilarity, nil
}

// Harmonic returns the weighted harmonic mean of the three BSQ components:
//
//	sum(w) / sum(w_i / v_i)
//
// A single collapsing component drags the whole score toward zero.
// Components and weights must be strictly positive.
func Harmonic(alignment, hrvCoherence, synergy float64, w Weights) (float64, error) {
	values := [3]float64{alignment, hrvCoherence, synergy}
	names := [3]string{"alignment", "hrv_coherence", "synergy"}

	var numerator, denominator float64
	for i, v := range values {
		if v <= 0 {
			return 0, fmt.Errorf("%s must be positive, got %g: %w", names[i], v, domain.ErrDomain)
		}
		if w[i] <= 0 {
			return 0, fmt.Errorf("%s weight must be positive, got %g: %w", names[i], w[i], domain.ErrDomain)
		}
		numerator += w[i]
		denominator += w[i] / v
	}
	return numerator / denominator, nil
}

// IsMeaningfulShift reports whether BSQ rose by at least MeaningfulShiftThreshold.
func IsMeaningfulShift(before, after float64) bool {
	return after-before >= MeaningfulShiftThreshold
}
