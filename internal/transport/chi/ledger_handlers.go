package chi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/synergyphi/internal/domain"
	"github.com/kailas-cloud/synergyphi/internal/domain/receipt"
)

// LogTurn handles POST /v1/turns.
func (s *Server) LogTurn(w http.ResponseWriter, r *http.Request) {
	var req ResonanceRequest
	if !s.decode(w, r, &req) {
		return
	}

	t, err := s.turns.Record(req.Aligned, req.Baseline)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, TurnResponse{
		Turn:      t.Index,
		Resonance: t.Value,
		Spike:     t.Spike,
	})
}

// ListTurns handles GET /v1/turns.
func (s *Server) ListTurns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TurnHistoryResponse{
		Threshold: s.turns.Threshold(),
		Values:    s.turns.History(),
	})
}

// Witness handles POST /v1/receipts.
func (s *Server) Witness(w http.ResponseWriter, r *http.Request) {
	var req WitnessRequest
	if !s.decode(w, r, &req) {
		return
	}

	rc, err := s.ledger.Witness(r.Context(), []byte(req.Payload))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rc)
}

// ListReceipts handles GET /v1/receipts.
func (s *Server) ListReceipts(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter limit: "+err.Error())
		return
	}
	if limit != nil && *limit < 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "limit must be non-negative")
		return
	}

	n := 0
	if limit != nil {
		n = *limit
	}
	items := s.ledger.List(r.Context(), n)
	writeJSON(w, http.StatusOK, ReceiptListResponse{Items: items, Total: len(items)})
}

// GetReceipt handles GET /v1/receipts/{id}.
func (s *Server) GetReceipt(w http.ResponseWriter, r *http.Request) {
	rc, err := s.ledger.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

// VerifyReceipt handles POST /v1/receipts/verify. A signature mismatch is a
// normal outcome and is reported in the body, not as an error status.
func (s *Server) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	var rc receipt.Receipt
	if !s.decode(w, r, &rc) {
		return
	}

	err := s.ledger.Verify(r.Context(), rc)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, VerifyResponse{Valid: true})
	case errors.Is(err, domain.ErrInvalidSignature):
		writeJSON(w, http.StatusOK, VerifyResponse{Valid: false})
	default:
		s.handleDomainError(w, r, err)
	}
}
