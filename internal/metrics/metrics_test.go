package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCountsByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Observe(OpSet, ResultOK)
	m.Observe(OpSet, ResultOK)
	m.Observe(OpGet, ResultMiss)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues(OpSet, ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpGet, ResultMiss)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.operations.WithLabelValues(OpDelete, ResultOK)))
}

func TestObserveEncoded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveEncoded("decimal", 5)
	m.ObserveEncoded("json", 300)

	count, err := testutil.GatherAndCount(reg, "kvconf_encoded_bytes")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per data type")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe(OpSet, ResultOK)
		m.ObserveEncoded("int", 1)
	})
}
