package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/synergyphi/internal/domain"
	"github.com/kailas-cloud/synergyphi/internal/domain/receipt"
	"github.com/kailas-cloud/synergyphi/internal/metrics"
	analysisuc "github.com/kailas-cloud/synergyphi/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/synergyphi/internal/usecase/health"
	ledgeruc "github.com/kailas-cloud/synergyphi/internal/usecase/ledger"
	resonanceuc "github.com/kailas-cloud/synergyphi/internal/usecase/resonance"
)

// --- Mocks ---

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: s.vectors[text], TotalTokens: 2}, nil
}

type testEnv struct {
	handler http.Handler
	ledger  *ledgeruc.Service
	reg     *prometheus.Registry
}

func newTestEnv(t *testing.T, embedder analysisuc.Embedder, apiKeys ...string) *testEnv {
	t.Helper()
	reg := prometheus.NewRegistry()
	httpMetrics, err := metrics.NewHTTP(reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	key, err := receipt.GenerateKeyPair()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	ledger := ledgeruc.New(key, receipt.NewLedger(), nil, zap.NewNop())

	var analysis *analysisuc.Service
	if embedder != nil {
		analysis = analysisuc.New(embedder, 2, zap.NewNop())
	}

	srv := NewServer(Deps{
		Analysis: analysis,
		Turns:    resonanceuc.New(0.25, zap.NewNop()),
		Ledger:   ledger,
		Health:   healthuc.New(nil, nil),
		Gatherer: reg,
	})
	h := NewRouter(srv, RouterConfig{APIKeys: apiKeys, HTTP: httpMetrics, Logger: zap.NewNop()})
	return &testEnv{handler: h, ledger: ledger, reg: reg}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

// --- Metrics endpoints ---

func TestExpandedBSQ(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/bsq", BSQRequest{
		Affirmations: []float64{7, 6, 7},
		Embeddings:   [][]float64{{1, 0}, {0.8, 0.2}, {0.9, 0.1}},
		Baseline:     []float64{1, 0},
	})
	assertStatus(t, rr, http.StatusOK)

	got := decodeBody[ValueResponse](t, rr)
	if math.Abs(got.Value-0.941)/0.941 > 1e-3 {
		t.Errorf("expected ~0.941, got %v", got.Value)
	}
}

func TestExpandedBSQ_ZeroBaseline_422(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/bsq", BSQRequest{
		Affirmations: []float64{5},
		Embeddings:   [][]float64{{1, 0}},
		Baseline:     []float64{0, 0},
	})
	assertStatus(t, rr, http.StatusUnprocessableEntity)

	got := decodeBody[ErrorResponse](t, rr)
	if got.Code != ErrorCodeValidationFailed {
		t.Errorf("unexpected code: %s", got.Code)
	}
}

func TestIntrinsicResonance(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/resonance", ResonanceRequest{
		Aligned:  []float64{-0.5, -0.2, -0.1},
		Baseline: []float64{-0.9, -0.6, -0.4},
	})
	assertStatus(t, rr, http.StatusOK)

	got := decodeBody[ValueResponse](t, rr)
	if math.Abs(got.Value-0.26666667) > 1e-6 {
		t.Errorf("expected ~0.2667, got %v", got.Value)
	}
}

func TestIntrinsicResonance_LengthMismatch_422(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/resonance", ResonanceRequest{
		Aligned:  []float64{1, 2},
		Baseline: []float64{1},
	})
	assertStatus(t, rr, http.StatusUnprocessableEntity)

	got := decodeBody[ErrorResponse](t, rr)
	if !strings.Contains(got.Message, "length mismatch") {
		t.Errorf("expected length mismatch message, got %q", got.Message)
	}
}

func TestCoherence(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/coherence", CoherenceRequest{
		Embeddings: [][]float64{{1, 0}, {0, 1}, {1, 1}},
	})
	assertStatus(t, rr, http.StatusOK)

	got := decodeBody[CoherenceResponse](t, rr)
	if len(got.Scores) != 2 || math.Abs(got.Scores[1]-0.70710678) > 1e-6 {
		t.Errorf("unexpected scores: %v", got.Scores)
	}
}

func TestCoherence_HugeVectors(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/coherence", CoherenceRequest{
		Embeddings: [][]float64{{1e200, 1e200}, {1e200, 1e200}, {1e-200, 0}},
	})
	assertStatus(t, rr, http.StatusOK)

	got := decodeBody[CoherenceResponse](t, rr)
	if len(got.Scores) != 2 || math.Abs(got.Scores[0]-1) > 1e-9 || math.Abs(got.Scores[1]-1/math.Sqrt2) > 1e-9 {
		t.Errorf("unexpected scores: %v", got.Scores)
	}
}

func TestIntrinsicResonance_Overflow_500(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/resonance", ResonanceRequest{
		Aligned:  []float64{math.MaxFloat64},
		Baseline: []float64{-math.MaxFloat64},
	})
	assertStatus(t, rr, http.StatusInternalServerError)
	if got := decodeBody[ErrorResponse](t, rr); got.Code != ErrorCodeInternalError {
		t.Errorf("unexpected code: %s", got.Code)
	}
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusOK, ValueResponse{Value: math.NaN()})

	assertStatus(t, rr, http.StatusInternalServerError)
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := decodeBody[ErrorResponse](t, rr); got.Code != ErrorCodeInternalError {
		t.Errorf("unexpected code: %s", got.Code)
	}
}

func TestCoherence_TooFew_422(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/coherence", CoherenceRequest{Embeddings: [][]float64{{1}}})
	assertStatus(t, rr, http.StatusUnprocessableEntity)
}

func TestSynergy_XOR(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/synergy",
		`{"x":[0,0,1,1],"y":[0,1,0,1],"z":[0,1,1,0]}`)
	assertStatus(t, rr, http.StatusOK)

	got := decodeBody[ValueResponse](t, rr)
	if math.Abs(got.Value-1) > 1e-9 {
		t.Errorf("expected 1 bit, got %v", got.Value)
	}
}

func TestSynergy_NonScalarSymbol_422(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/synergy", `{"x":[[0]],"y":[0],"z":[0]}`)
	assertStatus(t, rr, http.StatusUnprocessableEntity)
}

func TestHarmonicBSQ(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/quotient", QuotientRequest{
		Alignment: 0.8, HRVCoherence: 0.6, Synergy: 0.4,
	})
	assertStatus(t, rr, http.StatusOK)

	got := decodeBody[ValueResponse](t, rr)
	if math.Abs(got.Value-0.55384615) > 1e-6 {
		t.Errorf("expected ~0.5538, got %v", got.Value)
	}
}

func TestHarmonicBSQ_ZeroComponent_422(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/quotient", QuotientRequest{
		Alignment: 0.8, HRVCoherence: 0, Synergy: 0.4,
	})
	assertStatus(t, rr, http.StatusUnprocessableEntity)
}

func TestHarmonicBSQ_ZeroWeight_422(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/quotient", QuotientRequest{
		Alignment: 0.8, HRVCoherence: 0.6, Synergy: 0.4, Weights: &[3]float64{1, 0, 1},
	})
	assertStatus(t, rr, http.StatusUnprocessableEntity)
}

func TestShift(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/shift", ShiftRequest{Before: 0.5, After: 0.7})
	assertStatus(t, rr, http.StatusOK)

	got := decodeBody[ShiftResponse](t, rr)
	if !got.Meaningful || math.Abs(got.Delta-0.2) > 1e-9 {
		t.Errorf("unexpected shift: %+v", got)
	}
}

func TestInvalidJSON_400(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "POST", "/v1/metrics/bsq", "{not json")
	assertStatus(t, rr, http.StatusBadRequest)

	got := decodeBody[ErrorResponse](t, rr)
	if got.Code != ErrorCodeBadRequest {
		t.Errorf("unexpected code: %s", got.Code)
	}
}

// --- Text endpoints ---

func TestTextCoherence(t *testing.T) {
	env := newTestEnv(t, &stubEmbedder{vectors: map[string][]float32{
		"hi": {1, 0}, "hello": {1, 0},
	}})
	rr := env.do(t, "POST", "/v1/text/coherence", TextCoherenceRequest{Turns: []string{"hi", "hello"}})
	assertStatus(t, rr, http.StatusOK)

	if rr.Header().Get("X-Embedding-Tokens") != "4" {
		t.Errorf("expected X-Embedding-Tokens=4, got %q", rr.Header().Get("X-Embedding-Tokens"))
	}
	got := decodeBody[CoherenceResponse](t, rr)
	if len(got.Scores) != 1 || math.Abs(got.Scores[0]-1) > 1e-9 {
		t.Errorf("unexpected scores: %v", got.Scores)
	}
}

func TestTextBSQ(t *testing.T) {
	env := newTestEnv(t, &stubEmbedder{vectors: map[string][]float32{
		"turn": {1, 0}, "base": {1, 0},
	}})
	rr := env.do(t, "POST", "/v1/text/bsq", TextBSQRequest{
		Affirmations: []float64{7}, Turns: []string{"turn"}, Baseline: "base",
	})
	assertStatus(t, rr, http.StatusOK)

	got := decodeBody[ValueResponse](t, rr)
	if math.Abs(got.Value-1) > 1e-9 {
		t.Errorf("expected 1, got %v", got.Value)
	}
}

func TestText_NoEmbedder_501(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, path := range []string{"/v1/text/coherence", "/v1/text/bsq"} {
		rr := env.do(t, "POST", path, `{}`)
		assertStatus(t, rr, http.StatusNotImplemented)
	}
}

func TestText_ProviderError_502(t *testing.T) {
	env := newTestEnv(t, &stubEmbedder{err: fmt.Errorf("upstream: %w", domain.ErrEmbeddingProviderError)})
	rr := env.do(t, "POST", "/v1/text/coherence", TextCoherenceRequest{Turns: []string{"a", "b"}})
	assertStatus(t, rr, http.StatusBadGateway)

	got := decodeBody[ErrorResponse](t, rr)
	if got.Message != domain.ErrEmbeddingProviderError.Error() {
		t.Errorf("internal details leaked: %q", got.Message)
	}
}

// --- Turns ---

func TestTurns(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, "POST", "/v1/turns", ResonanceRequest{Aligned: []float64{0.1}, Baseline: []float64{0}})
	assertStatus(t, rr, http.StatusCreated)
	first := decodeBody[TurnResponse](t, rr)
	if first.Turn != 1 || first.Spike {
		t.Errorf("unexpected first turn: %+v", first)
	}

	rr = env.do(t, "POST", "/v1/turns", ResonanceRequest{Aligned: []float64{0.5}, Baseline: []float64{0}})
	assertStatus(t, rr, http.StatusCreated)
	second := decodeBody[TurnResponse](t, rr)
	if second.Turn != 2 || !second.Spike {
		t.Errorf("unexpected second turn: %+v", second)
	}

	rr = env.do(t, "POST", "/v1/turns", ResonanceRequest{Aligned: []float64{1}})
	assertStatus(t, rr, http.StatusUnprocessableEntity)

	rr = env.do(t, "GET", "/v1/turns", nil)
	assertStatus(t, rr, http.StatusOK)
	hist := decodeBody[TurnHistoryResponse](t, rr)
	if hist.Threshold != 0.25 || len(hist.Values) != 2 {
		t.Errorf("unexpected history: %+v", hist)
	}
}

// --- Receipts ---

func TestReceipts_WitnessGetVerify(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, "POST", "/v1/receipts", WitnessRequest{Payload: "hello"})
	assertStatus(t, rr, http.StatusCreated)
	rc := decodeBody[receipt.Receipt](t, rr)
	if rc.Digest != receipt.TurnDigest([]byte("hello")) {
		t.Errorf("unexpected digest: %s", rc.Digest)
	}

	rr = env.do(t, "GET", "/v1/receipts/"+rc.ID, nil)
	assertStatus(t, rr, http.StatusOK)

	rr = env.do(t, "POST", "/v1/receipts/verify", rc)
	assertStatus(t, rr, http.StatusOK)
	if !decodeBody[VerifyResponse](t, rr).Valid {
		t.Error("expected valid receipt")
	}

	rc.Digest = receipt.TurnDigest([]byte("forged"))
	rr = env.do(t, "POST", "/v1/receipts/verify", rc)
	assertStatus(t, rr, http.StatusOK)
	if decodeBody[VerifyResponse](t, rr).Valid {
		t.Error("expected tampered receipt to be invalid")
	}
}

func TestReceipts_GetMissing_404(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "GET", "/v1/receipts/does-not-exist", nil)
	assertStatus(t, rr, http.StatusNotFound)

	got := decodeBody[ErrorResponse](t, rr)
	if got.Code != ErrorCodeNotFound {
		t.Errorf("unexpected code: %s", got.Code)
	}
}

func TestReceipts_ListLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	for i := 0; i < 3; i++ {
		if _, err := env.ledger.Witness(context.Background(), []byte{byte(i)}); err != nil {
			t.Fatalf("witness: %v", err)
		}
	}

	rr := env.do(t, "GET", "/v1/receipts?limit=2", nil)
	assertStatus(t, rr, http.StatusOK)
	if got := decodeBody[ReceiptListResponse](t, rr); got.Total != 2 {
		t.Errorf("expected 2 receipts, got %d", got.Total)
	}

	rr = env.do(t, "GET", "/v1/receipts", nil)
	assertStatus(t, rr, http.StatusOK)
	if got := decodeBody[ReceiptListResponse](t, rr); got.Total != 3 {
		t.Errorf("expected 3 receipts, got %d", got.Total)
	}
}

func TestReceipts_ListBadLimit_400(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, q := range []string{"limit=abc", "limit=-1"} {
		rr := env.do(t, "GET", "/v1/receipts?"+q, nil)
		assertStatus(t, rr, http.StatusBadRequest)
	}
}

// --- Infra ---

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "GET", "/health", nil)
	assertStatus(t, rr, http.StatusOK)

	if got := decodeBody[HealthResponse](t, rr); got.Status != string(healthuc.Healthy) {
		t.Errorf("unexpected status: %s", got.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, "POST", "/v1/metrics/shift", ShiftRequest{})

	rr := env.do(t, "GET", "/metrics", nil)
	assertStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "synergyphi_http_requests_total") {
		t.Error("expected http request metrics in exposition")
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "GET", "/health", nil)
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRouter_AuthRequired(t *testing.T) {
	env := newTestEnv(t, nil, "secret")

	rr := env.do(t, "GET", "/v1/turns", nil)
	assertStatus(t, rr, http.StatusUnauthorized)

	req := httptest.NewRequest("GET", "/v1/turns", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assertStatus(t, rr, http.StatusOK)
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, "GET", "/v1/nope", nil)
	assertStatus(t, rr, http.StatusNotFound)
}

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	assertStatus(t, rr, http.StatusInternalServerError)
	if got := decodeBody[ErrorResponse](t, rr); got.Code != ErrorCodeInternalError {
		t.Errorf("unexpected code: %s", got.Code)
	}
}

func TestHandleDomainError_Unknown_500(t *testing.T) {
	s := NewServer(Deps{Health: healthuc.New(nil, nil)})
	rr := httptest.NewRecorder()
	s.handleDomainError(rr, httptest.NewRequest("GET", "/", http.NoBody), errors.New("disk on fire"))

	assertStatus(t, rr, http.StatusInternalServerError)
	if got := decodeBody[ErrorResponse](t, rr); got.Message != "internal error" {
		t.Errorf("internal details leaked: %q", got.Message)
	}
}
