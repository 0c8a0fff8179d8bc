package checkpoint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts checkpoint activity. A nil *Metrics records nothing.
type Metrics struct {
	// nodes counts serializable node visits.
	// Labels: op (save, restore)
	nodes *prometheus.CounterVec

	// blobs counts blobs encoded or applied.
	// Labels: op (save, restore)
	blobs *prometheus.CounterVec

	// bytes counts framed blob bytes, headers included.
	// Labels: op (save, restore)
	bytes *prometheus.CounterVec

	// failures counts aborted walks.
	// Labels: op (save, restore)
	failures *prometheus.CounterVec
}

// NewMetrics creates the checkpoint counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		nodes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snapgrad",
			Subsystem: "checkpoint",
			Name:      "nodes_total",
			Help:      "Serializable nodes saved or restored",
		}, []string{"op"}),
		blobs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snapgrad",
			Subsystem: "checkpoint",
			Name:      "blobs_total",
			Help:      "Blobs encoded or applied",
		}, []string{"op"}),
		bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snapgrad",
			Subsystem: "checkpoint",
			Name:      "bytes_total",
			Help:      "Framed blob bytes encoded or applied",
		}, []string{"op"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snapgrad",
			Subsystem: "checkpoint",
			Name:      "failures_total",
			Help:      "Save or restore walks aborted by an error",
		}, []string{"op"}),
	}
}

func (m *Metrics) observe(op string, blobs, bytes int) {
	if m == nil {
		return
	}
	m.nodes.WithLabelValues(op).Inc()
	m.blobs.WithLabelValues(op).Add(float64(blobs))
	m.bytes.WithLabelValues(op).Add(float64(bytes))
}

func (m *Metrics) failure(op string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(op).Inc()
}
