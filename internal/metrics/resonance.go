package metrics

import "github.com/prometheus/client_golang/prometheus"

// Resonance holds the collectors fed by the resonance logger.
type Resonance struct {
	Value  prometheus.Histogram
	Spikes prometheus.Counter
	Turns  *prometheus.CounterVec
}

// NewResonance creates and registers resonance collectors on reg.
func NewResonance(reg prometheus.Registerer) (*Resonance, error) {
	m := &Resonance{
		Value: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resonance",
			Name:      "value",
			Help:      "Intrinsic resonance per logged turn.",
			Buckets:   []float64{-2, -1, -0.5, -0.25, 0, 0.1, 0.25, 0.5, 1, 2},
		}),
		Spikes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resonance",
			Name:      "spikes_total",
			Help:      "Turns whose resonance reached the spike threshold.",
		}),
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resonance",
			Name:      "turns_total",
			Help:      "Logged turns by status.",
		}, []string{"status"}),
	}
	if err := registerOrReuse(reg, &m.Value); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.Spikes); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.Turns); err != nil {
		return nil, err
	}
	return m, nil
}

// Ledger holds the collectors fed by the receipt ledger service.
type Ledger struct {
	Receipts      prometheus.Counter
	Verifications *prometheus.CounterVec
}

// NewLedger creates and registers ledger collectors on reg.
func NewLedger(reg prometheus.Registerer) (*Ledger, error) {
	m := &Ledger{
		Receipts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "receipts_total",
			Help:      "Receipts committed to the ledger.",
		}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "verifications_total",
			Help:      "Receipt verifications by result.",
		}, []string{"result"}),
	}
	if err := registerOrReuse(reg, &m.Receipts); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.Verifications); err != nil {
		return nil, err
	}
	return m, nil
}
