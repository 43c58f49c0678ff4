// Package ledger witnesses conversation turns with HMAC receipts.
package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/synergyphi/internal/domain"
	"github.com/kailas-cloud/synergyphi/internal/domain/receipt"
	"github.com/kailas-cloud/synergyphi/internal/metrics"
)

// Service signs turn payloads and commits the receipts to an in-memory ledger.
type Service struct {
	key     receipt.KeyPair
	ledger  *receipt.Ledger
	metrics *metrics.Ledger
	logger  *zap.Logger
}

// New creates a ledger service. m may be nil.
func New(key receipt.KeyPair, l *receipt.Ledger, m *metrics.Ledger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{key: key, ledger: l, metrics: m, logger: logger}
}

// PublicKey returns the service key's public identifier.
func (s *Service) PublicKey() []byte { return s.key.PublicKey }

// Witness digests payload, signs the digest and commits the receipt.
func (s *Service) Witness(ctx context.Context, payload []byte) (receipt.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return receipt.Receipt{}, fmt.Errorf("witness: %w", err)
	}

	r := receipt.New(payload, s.key)
	s.ledger.Commit(r)

	if s.metrics != nil {
		s.metrics.Receipts.Inc()
	}
	s.logger.Debug("Turn witnessed", zap.String("receipt_id", r.ID), zap.String("digest", r.Digest))
	return r, nil
}

// Verify checks the receipt signature against the service key.
// Returns domain.ErrInvalidSignature when the signature does not match.
func (s *Service) Verify(_ context.Context, r receipt.Receipt) error {
	if !r.Verify(s.key) {
		s.countVerification("invalid")
		return fmt.Errorf("receipt %q: %w", r.ID, domain.ErrInvalidSignature)
	}
	s.countVerification("valid")
	return nil
}

// List returns up to limit most recent receipts in commit order.
// A non-positive limit returns all receipts.
func (s *Service) List(_ context.Context, limit int) []receipt.Receipt {
	entries := s.ledger.Entries()
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries
}

// Get returns a receipt by ID.
func (s *Service) Get(_ context.Context, id string) (receipt.Receipt, error) {
	r, ok := s.ledger.Get(id)
	if !ok {
		return receipt.Receipt{}, fmt.Errorf("receipt %q: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (s *Service) countVerification(result string) {
	if s.metrics != nil {
		s.metrics.Verifications.WithLabelValues(result).Inc()
	}
}
