// Package resonance tracks intrinsic resonance across conversation turns.
package resonance

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	domres "github.com/kailas-cloud/synergyphi/internal/domain/resonance"
	"github.com/kailas-cloud/synergyphi/internal/metrics"
)

// SpikeFunc is invoked with the resonance value of a turn that reached the threshold.
type SpikeFunc func(value float64)

// Logger records per-turn resonance and reports spikes. Safe for concurrent use.
type Logger struct {
	threshold float64
	onSpike   SpikeFunc
	metrics   *metrics.Resonance
	logger    *zap.Logger

	mu      sync.Mutex
	history []float64
}

// Option configures a Logger.
type Option func(*Logger)

// WithSpikeFunc sets the callback fired when a turn reaches the threshold.
func WithSpikeFunc(fn SpikeFunc) Option {
	return func(l *Logger) { l.onSpike = fn }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Resonance) Option {
	return func(l *Logger) { l.metrics = m }
}

// New creates a Logger. A nil logger is replaced with a no-op one.
func New(threshold float64, logger *zap.Logger, opts ...Option) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Logger{threshold: threshold, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Threshold returns the spike threshold.
func (l *Logger) Threshold() float64 { return l.threshold }

// Turn is one recorded resonance value.
type Turn struct {
	Index int // 1-based position in the history
	Value float64
	Spike bool
}

// LogTurn computes the turn's intrinsic resonance and appends it to the history.
// The spike callback runs synchronously, after the value is recorded, when the
// value is at or above the threshold. A failed computation records nothing.
func (l *Logger) LogTurn(aligned, baseline []float64) (float64, error) {
	t, err := l.Record(aligned, baseline)
	if err != nil {
		return 0, err
	}
	return t.Value, nil
}

// Record is LogTurn returning the turn's position and spike flag.
func (l *Logger) Record(aligned, baseline []float64) (Turn, error) {
	ra, err := domres.Intrinsic(aligned, baseline)
	if err != nil {
		l.countTurn("error")
		return Turn{}, fmt.Errorf("log turn: %w", err)
	}

	l.mu.Lock()
	l.history = append(l.history, ra)
	turn := len(l.history)
	l.mu.Unlock()

	l.countTurn("ok")
	if l.metrics != nil {
		l.metrics.Value.Observe(ra)
	}
	l.logger.Debug("Turn logged", zap.Int("turn", turn), zap.Float64("resonance", ra))

	spike := ra >= l.threshold
	if spike {
		if l.metrics != nil {
			l.metrics.Spikes.Inc()
		}
		l.logger.Info("Resonance spike",
			zap.Int("turn", turn),
			zap.Float64("resonance", ra),
			zap.Float64("threshold", l.threshold),
		)
		if l.onSpike != nil {
			l.onSpike(ra)
		}
	}

	return Turn{Index: turn, Value: ra, Spike: spike}, nil
}

// History returns a copy of the recorded values in logging order.
func (l *Logger) History() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]float64, len(l.history))
	copy(out, l.history)
	return out
}

func (l *Logger) countTurn(status string) {
	if l.metrics != nil {
		l.metrics.Turns.WithLabelValues(status).Inc()
	}
}
