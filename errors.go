package synergyphi

import "github.com/kailas-cloud/synergyphi/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDomain           = domain.ErrDomain
	ErrLengthMismatch   = domain.ErrLengthMismatch
	ErrEmptyInput       = domain.ErrEmptyInput
	ErrTooFewInputs     = domain.ErrTooFewInputs
	ErrNotFound         = domain.ErrNotFound
	ErrInvalidSignature = domain.ErrInvalidSignature
)
