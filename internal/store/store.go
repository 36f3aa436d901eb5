// Package store implements the typed configuration store: values go through
// the codec on their way to and from an injected persistence backend.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/kvconf/internal/codec"
	xlog "github.com/mesh-intelligence/kvconf/internal/log"
	"github.com/mesh-intelligence/kvconf/internal/metrics"
	"github.com/mesh-intelligence/kvconf/pkg/types"
)

// Store persists typed configuration values by key. It owns its backend:
// the backend is prepared in New and released by Close. All operations are
// serialized, so a Store may be shared between goroutines.
type Store struct {
	mu      sync.Mutex
	backend types.Backend
	closed  bool

	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is the "store" component of the
// process logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New takes ownership of backend and ensures its schema. If that fails the
// backend is closed before the error is returned.
func New(backend types.Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		logger:  xlog.WithComponent("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("store_id", newStoreID()).Logger()

	if err := backend.EnsureSchema(); err != nil {
		if cerr := backend.Close(); cerr != nil {
			s.logger.Warn().Err(cerr).Msg("closing backend after schema failure")
		}
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return s, nil
}

// newStoreID tags log lines so several stores in one process can be told
// apart.
func newStoreID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Set classifies value, encodes it and replaces whatever key held before.
// Values of unsupported types fail with *types.UnsupportedTypeError and
// leave the stored entry untouched.
func (s *Store) Set(key string, value any) error {
	v, err := codec.FromAny(value)
	if err != nil {
		s.metrics.Observe(metrics.OpSet, metrics.ResultUnsupported)
		return err
	}
	return s.SetValue(key, v)
}

// SetValue stores an already-built Value under key. Any string, including
// the empty one, is a valid key.
func (s *Store) SetValue(key string, v types.Value) error {
	raw, tag, err := codec.Encode(v)
	if err != nil {
		s.metrics.Observe(metrics.OpSet, metrics.ResultUnsupported)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}
	if err := s.backend.Upsert(key, raw, tag); err != nil {
		s.metrics.Observe(metrics.OpSet, metrics.ResultError)
		return err
	}

	s.metrics.Observe(metrics.OpSet, metrics.ResultOK)
	s.metrics.ObserveEncoded(string(tag), len(raw))
	s.logger.Debug().Str("key", key).Str("data_type", string(tag)).Msg("set")
	return nil
}

// Get returns the value stored under key, or def unchanged when the key is
// absent. Pass the zero types.Value as def to receive the absent sentinel.
// A row that cannot be decoded with its recorded tag fails with
// *types.DecodeError.
func (s *Store) Get(key string, def types.Value) (types.Value, error) {
	v, ok, err := s.Lookup(key)
	if err != nil {
		return types.Value{}, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Lookup is like Get but reports presence instead of taking a default.
func (s *Store) Lookup(key string) (types.Value, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.Value{}, false, types.ErrStoreClosed
	}

	row, ok, err := s.backend.Fetch(key)
	if err != nil {
		s.metrics.Observe(metrics.OpGet, metrics.ResultError)
		return types.Value{}, false, err
	}
	if !ok {
		s.metrics.Observe(metrics.OpGet, metrics.ResultMiss)
		return types.Value{}, false, nil
	}

	v, err := codec.Decode(row.Value, row.DataType)
	if err != nil {
		var de *types.DecodeError
		if errors.As(err, &de) {
			de.Key = key
		}
		s.metrics.Observe(metrics.OpGet, metrics.ResultDecodeError)
		s.logger.Warn().Err(err).Str("key", key).Str("data_type", string(row.DataType)).Msg("stored value does not decode")
		return types.Value{}, false, err
	}

	s.metrics.Observe(metrics.OpGet, metrics.ResultOK)
	return v, true, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.ErrStoreClosed
	}
	if err := s.backend.Remove(key); err != nil {
		s.metrics.Observe(metrics.OpDelete, metrics.ResultError)
		return err
	}

	s.metrics.Observe(metrics.OpDelete, metrics.ResultOK)
	s.logger.Debug().Str("key", key).Msg("delete")
	return nil
}

// Close releases the backend. Only the first call reaches the backend;
// later calls return nil.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("closing backend: %w", err)
	}
	return nil
}

// GetBool returns the bool stored under key, or def when absent.
func (s *Store) GetBool(key string, def bool) (bool, error) {
	return getTyped(s, key, def, types.TagBool, types.Value.AsBool)
}

// GetInt returns the int stored under key, or def when absent.
func (s *Store) GetInt(key string, def int64) (int64, error) {
	return getTyped(s, key, def, types.TagInt, types.Value.AsInt)
}

// GetFloat returns the float stored under key, or def when absent.
func (s *Store) GetFloat(key string, def float64) (float64, error) {
	return getTyped(s, key, def, types.TagFloat, types.Value.AsFloat)
}

// GetDecimal returns the decimal stored under key, or def when absent.
func (s *Store) GetDecimal(key string, def *apd.Decimal) (*apd.Decimal, error) {
	return getTyped(s, key, def, types.TagDecimal, types.Value.AsDecimal)
}

// GetString returns the string stored under key, or def when absent.
func (s *Store) GetString(key string, def string) (string, error) {
	return getTyped(s, key, def, types.TagString, types.Value.AsString)
}

// getTyped reads key and unwraps it with as. A value of another kind fails
// with types.ErrTypeMismatch.
func getTyped[T any](s *Store, key string, def T, want types.Tag, as func(types.Value) (T, bool)) (T, error) {
	v, ok, err := s.Lookup(key)
	if err != nil || !ok {
		return def, err
	}
	out, ok := as(v)
	if !ok {
		return def, fmt.Errorf("%w: %q holds %s, not %s", types.ErrTypeMismatch, key, v.Tag(), want)
	}
	return out, nil
}
