package chi

import (
	"net/http"

	"github.com/kailas-cloud/synergyphi/internal/domain/entropy"
	"github.com/kailas-cloud/synergyphi/internal/domain/quotient"
	"github.com/kailas-cloud/synergyphi/internal/domain/resonance"
	"github.com/kailas-cloud/synergyphi/internal/domain/vector"
)

// ExpandedBSQ handles POST /v1/metrics/bsq.
func (s *Server) ExpandedBSQ(w http.ResponseWriter, r *http.Request) {
	var req BSQRequest
	if !s.decode(w, r, &req) {
		return
	}

	v, err := quotient.Expanded(req.Affirmations, req.Embeddings, req.Baseline)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueResponse{Value: v})
}

// IntrinsicResonance handles POST /v1/metrics/resonance.
func (s *Server) IntrinsicResonance(w http.ResponseWriter, r *http.Request) {
	var req ResonanceRequest
	if !s.decode(w, r, &req) {
		return
	}

	v, err := resonance.Intrinsic(req.Aligned, req.Baseline)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueResponse{Value: v})
}

// Coherence handles POST /v1/metrics/coherence.
func (s *Server) Coherence(w http.ResponseWriter, r *http.Request) {
	var req CoherenceRequest
	if !s.decode(w, r, &req) {
		return
	}

	scores, err := vector.Coherence(req.Embeddings)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CoherenceResponse{Scores: scores})
}

// Synergy handles POST /v1/metrics/synergy.
func (s *Server) Synergy(w http.ResponseWriter, r *http.Request) {
	var req SynergyRequest
	if !s.decode(w, r, &req) {
		return
	}

	v, err := dyadicSynergy(req.X, req.Y, req.Z)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueResponse{Value: v})
}

func dyadicSynergy(xs, ys, zs []any) (float64, error) {
	x, err := entropy.Symbols(xs)
	if err != nil {
		return 0, err
	}
	y, err := entropy.Symbols(ys)
	if err != nil {
		return 0, err
	}
	z, err := entropy.Symbols(zs)
	if err != nil {
		return 0, err
	}
	return entropy.DyadicSynergyIndex(x, y, z)
}

// HarmonicBSQ handles POST /v1/metrics/quotient.
func (s *Server) HarmonicBSQ(w http.ResponseWriter, r *http.Request) {
	var req QuotientRequest
	if !s.decode(w, r, &req) {
		return
	}

	weights := quotient.DefaultWeights
	if req.Weights != nil {
		weights = quotient.Weights(*req.Weights)
	}

	v, err := quotient.Harmonic(req.Alignment, req.HRVCoherence, req.Synergy, weights)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueResponse{Value: v})
}

// Shift handles POST /v1/metrics/shift.
func (s *Server) Shift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, ShiftResponse{
		Delta:      req.After - req.Before,
		Meaningful: quotient.IsMeaningfulShift(req.Before, req.After),
	})
}
