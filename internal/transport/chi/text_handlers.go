package chi

import (
	"net/http"

	"github.com/kailas-cloud/synergyphi/internal/domain"
)

// TextCoherence handles POST /v1/text/coherence.
func (s *Server) TextCoherence(w http.ResponseWriter, r *http.Request) {
	if s.analysis == nil {
		s.handleDomainError(w, r, domain.ErrNotImplemented)
		return
	}

	var req TextCoherenceRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	scores, err := s.analysis.Coherence(ctx, req.Turns)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CoherenceResponse{Scores: scores})
}

// TextBSQ handles POST /v1/text/bsq.
func (s *Server) TextBSQ(w http.ResponseWriter, r *http.Request) {
	if s.analysis == nil {
		s.handleDomainError(w, r, domain.ErrNotImplemented)
		return
	}

	var req TextBSQRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	v, err := s.analysis.BeingSeen(ctx, req.Affirmations, req.Turns, req.Baseline)
	setEmbeddingHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueResponse{Value: v})
}
