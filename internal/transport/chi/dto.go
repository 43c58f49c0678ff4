package chi

import "github.com/kailas-cloud/synergyphi/internal/domain/receipt"

// ErrorCode is a machine-readable error code in ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeNotImplemented         ErrorCode = "not_implemented"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ValueResponse carries a single metric value.
type ValueResponse struct {
	Value float64 `json:"value"`
}

// BSQRequest is the body of POST /v1/metrics/bsq.
type BSQRequest struct {
	Affirmations []float64   `json:"affirmations"`
	Embeddings   [][]float64 `json:"embeddings"`
	Baseline     []float64   `json:"baseline"`
}

// ResonanceRequest is the body of POST /v1/metrics/resonance and POST /v1/turns.
type ResonanceRequest struct {
	Aligned  []float64 `json:"aligned"`
	Baseline []float64 `json:"baseline"`
}

// CoherenceRequest is the body of POST /v1/metrics/coherence.
type CoherenceRequest struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// CoherenceResponse lists consecutive-pair similarities.
type CoherenceResponse struct {
	Scores []float64 `json:"scores"`
}

// SynergyRequest is the body of POST /v1/metrics/synergy. Symbols are JSON scalars.
type SynergyRequest struct {
	X []any `json:"x"`
	Y []any `json:"y"`
	Z []any `json:"z"`
}

// QuotientRequest is the body of POST /v1/metrics/quotient.
// Weights default to equal weighting when omitted.
type QuotientRequest struct {
	Alignment    float64     `json:"alignment"`
	HRVCoherence float64     `json:"hrv_coherence"`
	Synergy      float64     `json:"synergy"`
	Weights      *[3]float64 `json:"weights,omitempty"`
}

// ShiftRequest is the body of POST /v1/metrics/shift.
type ShiftRequest struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// ShiftResponse reports a BSQ change and whether it is meaningful.
type ShiftResponse struct {
	Delta      float64 `json:"delta"`
	Meaningful bool    `json:"meaningful"`
}

// TextCoherenceRequest is the body of POST /v1/text/coherence.
type TextCoherenceRequest struct {
	Turns []string `json:"turns"`
}

// TextBSQRequest is the body of POST /v1/text/bsq.
type TextBSQRequest struct {
	Affirmations []float64 `json:"affirmations"`
	Turns        []string  `json:"turns"`
	Baseline     string    `json:"baseline"`
}

// TurnResponse reports a logged turn.
type TurnResponse struct {
	Turn      int     `json:"turn"`
	Resonance float64 `json:"resonance"`
	Spike     bool    `json:"spike"`
}

// TurnHistoryResponse lists logged resonance values.
type TurnHistoryResponse struct {
	Threshold float64   `json:"threshold"`
	Values    []float64 `json:"values"`
}

// WitnessRequest is the body of POST /v1/receipts.
type WitnessRequest struct {
	Payload string `json:"payload"`
}

// ReceiptListResponse lists receipts.
type ReceiptListResponse struct {
	Items []receipt.Receipt `json:"items"`
	Total int               `json:"total"`
}

// VerifyResponse reports a receipt verification outcome.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
