package kvconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kvconf/internal/sqlite"
	"github.com/mesh-intelligence/kvconf/pkg/types"
)

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := Open(types.Config{})
	assert.ErrorIs(t, err, types.ErrBackendEmpty)

	_, err = Open(types.Config{Backend: "postgres"})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	_, err = Open(types.Config{Backend: types.BackendRedis})
	assert.ErrorIs(t, err, types.ErrRedisAddrEmpty)
}

func TestOpenEachBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  types.Config
	}{
		{"sqlite", types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}},
		{"badger", types.Config{Backend: types.BackendBadger, DataDir: t.TempDir()}},
		{"memory", types.Config{Backend: types.BackendMemory}},
		{"redis", types.Config{Backend: types.BackendRedis, Redis: types.RedisConfig{Addr: mr.Addr()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg, WithLogger(zerolog.Nop()))
			require.NoError(t, err)

			require.NoError(t, s.Set("price", types.MustDecimal("19.99")))
			got, err := s.Get("price", types.Value{})
			require.NoError(t, err)
			assert.True(t, got.Equal(types.MustDecimal("19.99")))

			require.NoError(t, s.Close())
		})
	}
}

func TestOpenSQLiteLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(types.Config{Backend: types.BackendSQLite, DataDir: dir}, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(filepath.Join(dir, sqlite.DBFileName))
	assert.NoError(t, err)
}

func TestValuesPersistAcrossOpen(t *testing.T) {
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	s, err := Open(cfg, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, s.Set("stats", []int{3, 6, 9}))
	require.NoError(t, s.Close())

	s, err = Open(cfg, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get("stats", types.Value{})
	require.NoError(t, err)
	want := types.ListValue(types.IntValue(3), types.IntValue(6), types.IntValue(9))
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := Open(types.Config{Backend: types.BackendMemory},
		WithLogger(zerolog.Nop()), WithMetrics(NewMetrics(reg)))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("enabled", true))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
