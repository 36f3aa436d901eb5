// Package metrics exposes Prometheus instrumentation for store operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels.
const (
	OpSet    = "set"
	OpGet    = "get"
	OpDelete = "delete"
)

// Result labels.
const (
	ResultOK          = "ok"
	ResultMiss        = "miss"
	ResultUnsupported = "unsupported"
	ResultDecodeError = "decode_error"
	ResultError       = "error"
)

// Metrics records store activity. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	operations   *prometheus.CounterVec
	encodedBytes *prometheus.HistogramVec
}

// New creates the store collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kvconf",
				Name:      "operations_total",
				Help:      "Store operations by kind and outcome",
			},
			[]string{"op", "result"},
		),
		encodedBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "kvconf",
				Name:      "encoded_bytes",
				Help:      "Size of encoded values written, by type tag",
				Buckets:   prometheus.ExponentialBuckets(8, 4, 8),
			},
			[]string{"data_type"},
		),
	}
}

// Observe counts one operation with the given outcome.
func (m *Metrics) Observe(op, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, result).Inc()
}

// ObserveEncoded records the size of an encoded value about to be written.
func (m *Metrics) ObserveEncoded(dataType string, size int) {
	if m == nil {
		return
	}
	m.encodedBytes.WithLabelValues(dataType).Observe(float64(size))
}
