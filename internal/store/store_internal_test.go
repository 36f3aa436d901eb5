package store

import (
	"bytes"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/kvconf/internal/memory"
	"github.com/mesh-intelligence/kvconf/internal/metrics"
	"github.com/mesh-intelligence/kvconf/pkg/types"
)

// countingBackend wraps the memory backend and records lifecycle calls.
type countingBackend struct {
	*memory.Backend
	schemaErr error
	upsertErr error
	closes    int
}

func (c *countingBackend) EnsureSchema() error {
	if c.schemaErr != nil {
		return c.schemaErr
	}
	return c.Backend.EnsureSchema()
}

func (c *countingBackend) Upsert(key, value string, dataType types.Tag) error {
	if c.upsertErr != nil {
		return c.upsertErr
	}
	return c.Backend.Upsert(key, value, dataType)
}

func (c *countingBackend) Close() error {
	c.closes++
	return c.Backend.Close()
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *countingBackend) {
	t.Helper()
	b := &countingBackend{Backend: memory.New()}
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	s, err := New(b, opts...)
	require.NoError(t, err)
	return s, b
}

func TestCloseReleasesBackendOnce(t *testing.T) {
	s, b := newTestStore(t)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, b.closes)
}

func TestOperationsAfterClose(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Set("k", 1), types.ErrStoreClosed)
	_, err := s.Get("k", types.Value{})
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	assert.ErrorIs(t, s.Delete("k"), types.ErrStoreClosed)
}

func TestNewClosesBackendWhenSchemaFails(t *testing.T) {
	boom := errors.New("disk full")
	b := &countingBackend{Backend: memory.New(), schemaErr: boom}

	s, err := New(b, WithLogger(zerolog.Nop()))
	assert.Nil(t, s)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, b.closes)
}

func TestBackendErrorsPropagate(t *testing.T) {
	s, b := newTestStore(t)
	defer s.Close()

	boom := errors.New("io error")
	b.upsertErr = boom
	assert.ErrorIs(t, s.Set("k", 1), boom)
}

func TestMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s, b := newTestStore(t, WithMetrics(m))
	defer s.Close()

	require.NoError(t, s.Set("a", 1))
	_, err := s.Get("a", types.Value{})
	require.NoError(t, err)
	_, err = s.Get("missing", types.Value{})
	require.NoError(t, err)
	assert.Error(t, s.Set("b", []byte("x")))
	require.NoError(t, b.Backend.Upsert("bad", "x", types.TagInt))
	_, err = s.Get("bad", types.Value{})
	assert.Error(t, err)
	require.NoError(t, s.Delete("a"))

	want := `
# HELP kvconf_operations_total Store operations by kind and outcome
# TYPE kvconf_operations_total counter
kvconf_operations_total{op="delete",result="ok"} 1
kvconf_operations_total{op="get",result="decode_error"} 1
kvconf_operations_total{op="get",result="miss"} 1
kvconf_operations_total{op="get",result="ok"} 1
kvconf_operations_total{op="set",result="ok"} 1
kvconf_operations_total{op="set",result="unsupported"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(want), "kvconf_operations_total"))
}

func TestDecodeFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	s, b := newTestStore(t, WithLogger(zerolog.New(&buf)))
	defer s.Close()

	require.NoError(t, b.Backend.Upsert("level", "minus three", types.TagInt))
	_, err := s.Get("level", types.Value{})
	require.Error(t, err)

	assert.Contains(t, buf.String(), `"key":"level"`)
	assert.Contains(t, buf.String(), "stored value does not decode")
}

func TestConcurrentWritersAreSerialized(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			for j := 0; j < 50; j++ {
				if err := s.Set("counter", i*100+j); err != nil {
					return err
				}
				if _, err := s.Get("counter", types.Value{}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	v, ok, err := s.Lookup("counter")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.TagInt, v.Tag())
}
