// Package chi exposes the synergyphi metrics, resonance logger and receipt
// ledger over HTTP using the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/synergyphi/internal/domain"
	logpkg "github.com/kailas-cloud/synergyphi/internal/logger"
	analysisuc "github.com/kailas-cloud/synergyphi/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/synergyphi/internal/usecase/health"
	ledgeruc "github.com/kailas-cloud/synergyphi/internal/usecase/ledger"
	resonanceuc "github.com/kailas-cloud/synergyphi/internal/usecase/resonance"
)

const defaultMaxBodyBytes = 4 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Deps are the services behind the API. Analysis may be nil when no
// embedding provider is configured; the text endpoints then answer 501.
type Deps struct {
	Analysis *analysisuc.Service
	Turns    *resonanceuc.Logger
	Ledger   *ledgeruc.Service
	Health   *healthuc.Service
	Gatherer prometheus.Gatherer
	// MaxBodyBytes caps request bodies; zero selects 4 MiB.
	MaxBodyBytes int64
}

// Server implements the HTTP handlers.
type Server struct {
	analysis      *analysisuc.Service
	turns         *resonanceuc.Logger
	ledger        *ledgeruc.Service
	health        *healthuc.Service
	gatherer      prometheus.Gatherer
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(d Deps) *Server {
	s := &Server{
		analysis:     d.Analysis,
		turns:        d.Turns,
		ledger:       d.Ledger,
		health:       d.Health,
		gatherer:     d.Gatherer,
		maxBodyBytes: d.MaxBodyBytes,
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = defaultMaxBodyBytes
	}
	s.errorHandlers = []errorHandler{
		validationHandler(domain.ErrDomain),
		validationHandler(domain.ErrLengthMismatch),
		validationHandler(domain.ErrEmptyInput),
		validationHandler(domain.ErrTooFewInputs),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorCodeNotImplemented),
	}
	return s
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// decode reads a JSON body into v, writing a 400 response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

// writeJSON encodes v before committing the status; values JSON cannot
// represent (NaN, Inf) answer 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Code: ErrorCodeInternalError, Message: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidSignature,
		domain.ErrEmbeddingProviderError,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// validationHandler maps a metric precondition error to 422. The full message
// is returned since it only describes the caller's input.
func validationHandler(sentinel error) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, http.StatusUnprocessableEntity, ErrorCodeValidationFailed, err.Error())
		return true
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

// handleDomainError maps err to a response using the request-scoped logger
// placed in the context by the router.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context())
	logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
