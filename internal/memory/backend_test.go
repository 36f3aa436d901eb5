package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kvconf/internal/backendtest"
	"github.com/mesh-intelligence/kvconf/pkg/types"
)

func TestBackendConformance(t *testing.T) {
	backendtest.RunBackend(t, func(t *testing.T) types.Backend {
		return New()
	})
}

func TestClosedBackendRejectsOperations(t *testing.T) {
	b := New()
	require.NoError(t, b.Upsert("k", "1", types.TagInt))
	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "close is idempotent")

	assert.ErrorIs(t, b.Upsert("k", "2", types.TagInt), ErrClosed)
	_, _, err := b.Fetch("k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.Remove("k"), ErrClosed)
	assert.ErrorIs(t, b.EnsureSchema(), ErrClosed)
	assert.Equal(t, 0, b.Len())
}

func TestZeroBackendNeedsSchema(t *testing.T) {
	var b Backend
	require.NoError(t, b.EnsureSchema())
	require.NoError(t, b.Upsert("k", "v", types.TagString))
	assert.Equal(t, 1, b.Len())
}
