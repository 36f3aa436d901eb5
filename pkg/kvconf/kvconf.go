// Package kvconf is the public API of the typed configuration store.
//
// Example:
//
//	s, err := kvconf.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".kvconf-db",
//	})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	err = s.Set("price", types.MustDecimal("19.99"))
//	v, err := s.Get("price", types.Value{})
package kvconf

import (
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/kvconf/internal/badgerdb"
	xlog "github.com/mesh-intelligence/kvconf/internal/log"
	"github.com/mesh-intelligence/kvconf/internal/memory"
	"github.com/mesh-intelligence/kvconf/internal/metrics"
	"github.com/mesh-intelligence/kvconf/internal/redisdb"
	"github.com/mesh-intelligence/kvconf/internal/sqlite"
	"github.com/mesh-intelligence/kvconf/internal/store"
	"github.com/mesh-intelligence/kvconf/pkg/types"
)

// Version is the release version reported by the CLI.
const Version = "0.1.0"

// Store is a typed configuration store. See store.Store for the methods.
type Store = store.Store

// Option configures a Store.
type Option = store.Option

// Metrics holds the Prometheus collectors a Store reports to.
type Metrics = metrics.Metrics

// WithLogger sets the logger used by the Store.
func WithLogger(l zerolog.Logger) Option {
	return store.WithLogger(l)
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return store.WithMetrics(m)
}

// NewMetrics creates store collectors registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return metrics.New(reg)
}

// New wraps an existing backend. The Store owns it from here on.
func New(backend types.Backend, opts ...Option) (*Store, error) {
	return store.New(backend, opts...)
}

// Open validates cfg, opens the configured backend and returns a Store
// that owns it. An empty DataDir means the current directory.
func Open(cfg types.Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := OpenBackend(cfg)
	if err != nil {
		return nil, err
	}
	return store.New(backend, opts...)
}

// OpenBackend opens the backend named by cfg without wrapping it in a Store.
func OpenBackend(cfg types.Config) (types.Backend, error) {
	logger := xlog.WithComponent(cfg.Backend)

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}

	switch cfg.Backend {
	case types.BackendSQLite:
		b, err := sqlite.Open(dataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return b, nil
	case types.BackendBadger:
		dir := badgerdb.MemoryDataDir
		if dataDir != badgerdb.MemoryDataDir {
			dir = filepath.Join(dataDir, badgerdb.DirName)
		}
		b, err := badgerdb.Open(dir, logger)
		if err != nil {
			return nil, fmt.Errorf("open badger backend: %w", err)
		}
		return b, nil
	case types.BackendRedis:
		return redisdb.Open(redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.RedisPrefix(),
		}, logger), nil
	case types.BackendMemory:
		return memory.New(), nil
	default:
		return nil, types.ErrBackendUnknown
	}
}
