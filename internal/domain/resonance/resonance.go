// Package resonance computes intrinsic resonance from token log-probabilities.
package resonance

import (
	"fmt"

	"github.com/kailas-cloud/synergyphi/internal/domain"
)

// Intrinsic returns the mean per-position log-likelihood ratio
//
//	mean(aligned[i] - baseline[i])
//
// between an aligned and a baseline generation. The result is not clamped.
func Intrinsic(aligned, baseline []float64) (float64, error) {
	if len(aligned) != len(baseline) {
		return 0, fmt.Errorf("intrinsic resonance: %w", domain.NewLengthMismatch(len(aligned), len(baseline)))
	}
	if len(aligned) == 0 {
		return 0, domain.EmptyInput("log probabilities")
	}

	var sum float64
	for i := range aligned {
		sum += aligned[i] - baseline[i]
	}
	return sum / float64(len(aligned)), nil
}
