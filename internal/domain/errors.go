package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain signals a violated mathematical precondition
	// (zero-magnitude vector, non-positive harmonic component).
	ErrDomain = errors.New("domain error")
	// ErrLengthMismatch signals sequences that must have equal length but don't.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrEmptyInput signals an empty sequence where at least one element is required.
	ErrEmptyInput = errors.New("empty input")
	// ErrTooFewInputs signals fewer elements than a pairwise computation needs.
	ErrTooFewInputs = errors.New("too few inputs")

	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSignature signals a receipt whose signature does not match its digest.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrNotImplemented signals an unconfigured or unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// LengthMismatchError wraps ErrLengthMismatch with the offending lengths.
type LengthMismatchError struct {
	Want int
	Got  int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrLengthMismatch.Error(), e.Want, e.Got)
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

// NewLengthMismatch creates a length mismatch error.
func NewLengthMismatch(want, got int) error {
	return &LengthMismatchError{Want: want, Got: got}
}

// TooFewInputs wraps ErrTooFewInputs with the required minimum.
func TooFewInputs(what string, min, got int) error {
	return fmt.Errorf("%s: need at least %d, got %d: %w", what, min, got, ErrTooFewInputs)
}

// EmptyInput wraps ErrEmptyInput with the name of the empty argument.
func EmptyInput(what string) error {
	return fmt.Errorf("%s cannot be empty: %w", what, ErrEmptyInput)
}
