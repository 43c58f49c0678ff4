// Package entropy computes empirical information measures over discrete sequences.
//
// Symbols can be any comparable type. Joint observations are paired positionally,
// so every sequence analysed together must have the same length.
package entropy

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/synergyphi/internal/domain"
)

// pair is a joint observation of two symbols.
type pair[A, B comparable] struct {
	a A
	b B
}

// Distribution returns the empirical probability of each distinct symbol in seq.
// An empty sequence yields an empty distribution.
func Distribution[K comparable](seq []K) map[K]float64 {
	counts := make(map[K]int, len(seq))
	for _, s := range seq {
		counts[s]++
	}
	total := float64(len(seq))
	dist := make(map[K]float64, len(counts))
	for k, c := range counts {
		dist[k] = float64(c) / total
	}
	return dist
}

// MutualInformation returns I(X;Z) in bits:
//
//	sum over observed (x,z) of p(x,z) * log2(p(x,z) / (p(x)*p(z)))
//
// Only pairs that actually occur contribute, so log(0) is never evaluated.
func MutualInformation[X, Z comparable](x []X, z []Z) (float64, error) {
	if len(x) != len(z) {
		return 0, fmt.Errorf("mutual information: %w", domain.NewLengthMismatch(len(x), len(z)))
	}
	return mutualInformation(x, z), nil
}

// DyadicSynergyIndex returns the interaction information
//
//	DSI = I(X,Y;Z) - I(X;Z) - I(Y;Z)
//
// Positive values mean X and Y predict Z better jointly than apart (synergy),
// negative values mean they carry overlapping information (redundancy).
func DyadicSynergyIndex[X, Y, Z comparable](x []X, y []Y, z []Z) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("dyadic synergy index (x, y): %w", domain.NewLengthMismatch(len(x), len(y)))
	}
	if len(x) != len(z) {
		return 0, fmt.Errorf("dyadic synergy index (x, z): %w", domain.NewLengthMismatch(len(x), len(z)))
	}

	joint := zip(x, y)
	return mutualInformation(joint, z) - mutualInformation(x, z) - mutualInformation(y, z), nil
}

// mutualInformation assumes len(x) == len(z).
func mutualInformation[X, Z comparable](x []X, z []Z) float64 {
	px := Distribution(x)
	pz := Distribution(z)
	pxz := Distribution(zip(x, z))

	var mi float64
	for k, p := range pxz {
		mi += p * math.Log2(p/(px[k.a]*pz[k.b]))
	}
	return mi
}

func zip[A, B comparable](a []A, b []B) []pair[A, B] {
	out := make([]pair[A, B], len(a))
	for i := range a {
		out[i] = pair[A, B]{a: a[i], b: b[i]}
	}
	return out
}
