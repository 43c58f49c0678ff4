package synergyphi

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultThreshold is the resonance spike threshold of a new Session.
const DefaultThreshold = 0.0

// Option configures a Session.
type Option interface {
	apply(*sessionConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*sessionConfig)

func (f optionFunc) apply(c *sessionConfig) { f(c) }

type sessionConfig struct {
	threshold  float64
	onSpike    func(float64)
	keyHex     string
	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithThreshold sets the resonance spike threshold (inclusive).
func WithThreshold(threshold float64) Option {
	return optionFunc(func(c *sessionConfig) {
		c.threshold = threshold
	})
}

// WithSpikeFunc sets the callback invoked when a logged turn reaches the threshold.
// It runs synchronously on the LogTurn caller's goroutine.
func WithSpikeFunc(fn func(resonance float64)) Option {
	return optionFunc(func(c *sessionConfig) {
		c.onSpike = fn
	})
}

// WithSigningKey restores the receipt signing key from hex.
// Without it every Session signs with a fresh random key.
func WithSigningKey(privateKeyHex string) Option {
	return optionFunc(func(c *sessionConfig) {
		c.keyHex = privateKeyHex
	})
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *sessionConfig) {
		c.logger = l
	})
}

// WithPrometheus enables resonance and ledger metrics on the given registerer.
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *sessionConfig) {
		c.metricsReg = reg
	})
}
