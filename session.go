package synergyphi

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/synergyphi/internal/domain/receipt"
	"github.com/kailas-cloud/synergyphi/internal/metrics"
	ledgeruc "github.com/kailas-cloud/synergyphi/internal/usecase/ledger"
	resonanceuc "github.com/kailas-cloud/synergyphi/internal/usecase/resonance"
)

// Receipt is a signed digest of a witnessed turn.
type Receipt = receipt.Receipt

// Turn is one entry of the resonance history.
type Turn = resonanceuc.Turn

// Session tracks the resonance of a conversation and witnesses its turns.
// Safe for concurrent use.
type Session struct {
	turns  *resonanceuc.Logger
	ledger *ledgeruc.Service
	key    receipt.KeyPair
}

// NewSession creates a Session.
func NewSession(opts ...Option) (*Session, error) {
	cfg := &sessionConfig{threshold: DefaultThreshold}
	for _, o := range opts {
		o.apply(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	key, err := sessionKey(cfg.keyHex)
	if err != nil {
		return nil, err
	}

	var turnOpts []resonanceuc.Option
	if cfg.onSpike != nil {
		turnOpts = append(turnOpts, resonanceuc.WithSpikeFunc(cfg.onSpike))
	}

	var ledgerMetrics *metrics.Ledger
	if cfg.metricsReg != nil {
		rm, err := metrics.NewResonance(cfg.metricsReg)
		if err != nil {
			return nil, fmt.Errorf("resonance metrics: %w", err)
		}
		turnOpts = append(turnOpts, resonanceuc.WithMetrics(rm))

		ledgerMetrics, err = metrics.NewLedger(cfg.metricsReg)
		if err != nil {
			return nil, fmt.Errorf("ledger metrics: %w", err)
		}
	}

	return &Session{
		turns:  resonanceuc.New(cfg.threshold, logger, turnOpts...),
		ledger: ledgeruc.New(key, receipt.NewLedger(), ledgerMetrics, logger),
		key:    key,
	}, nil
}

func sessionKey(keyHex string) (receipt.KeyPair, error) {
	if keyHex == "" {
		key, err := receipt.GenerateKeyPair()
		if err != nil {
			return receipt.KeyPair{}, fmt.Errorf("signing key: %w", err)
		}
		return key, nil
	}
	key, err := receipt.ParsePrivateKey(keyHex)
	if err != nil {
		return receipt.KeyPair{}, fmt.Errorf("signing key: %w", err)
	}
	return key, nil
}

// Threshold returns the resonance spike threshold.
func (s *Session) Threshold() float64 { return s.turns.Threshold() }

// LogTurn computes the intrinsic resonance of a turn and appends it to the history.
// On error nothing is recorded.
func (s *Session) LogTurn(aligned, baseline []float64) (Turn, error) {
	return s.turns.Record(aligned, baseline)
}

// History returns a copy of the logged resonance values in order.
func (s *Session) History() []float64 { return s.turns.History() }

// PublicKeyHex returns the public identifier of the signing key.
func (s *Session) PublicKeyHex() string { return s.key.PublicKeyHex() }

// Witness signs payload and commits the receipt to the session ledger.
func (s *Session) Witness(ctx context.Context, payload []byte) (Receipt, error) {
	return s.ledger.Witness(ctx, payload)
}

// Verify checks a receipt against the session key. Returns ErrInvalidSignature on mismatch.
func (s *Session) Verify(ctx context.Context, r Receipt) error {
	return s.ledger.Verify(ctx, r)
}

// Receipts returns the most recent limit receipts, oldest first. limit <= 0 returns all.
func (s *Session) Receipts(ctx context.Context, limit int) []Receipt {
	return s.ledger.List(ctx, limit)
}

// Receipt returns a committed receipt by ID. Returns ErrNotFound if absent.
func (s *Session) Receipt(ctx context.Context, id string) (Receipt, error) {
	return s.ledger.Get(ctx, id)
}
