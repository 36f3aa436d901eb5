// Package backendtest holds conformance suites shared by every persistence
// backend: one exercising the raw row contract and one exercising the
// Store's typed behavior on top of a backend.
package backendtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kvconf/pkg/types"
)

// Factory opens a fresh, empty backend. Implementations register their own
// cleanup; the suites close backends they are done with themselves.
type Factory func(t *testing.T) types.Backend

// RunBackend checks the row-level contract: idempotent schema creation,
// insert-or-replace, absent fetches and idempotent removal.
func RunBackend(t *testing.T, open Factory) {
	tests := []struct {
		name  string
		check func(t *testing.T, b types.Backend)
	}{
		{
			name: "ensure schema is idempotent",
			check: func(t *testing.T, b types.Backend) {
				require.NoError(t, b.EnsureSchema())
				require.NoError(t, b.EnsureSchema())
			},
		},
		{
			name: "fetch of unknown key reports absent",
			check: func(t *testing.T, b types.Backend) {
				_, ok, err := b.Fetch("missing")
				require.NoError(t, err)
				assert.False(t, ok)
			},
		},
		{
			name: "upsert then fetch returns the row",
			check: func(t *testing.T, b types.Backend) {
				require.NoError(t, b.Upsert("max_items", "10", types.TagInt))
				row, ok, err := b.Fetch("max_items")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, types.Row{Key: "max_items", Value: "10", DataType: types.TagInt}, row)
			},
		},
		{
			name: "upsert replaces value and data type",
			check: func(t *testing.T, b types.Backend) {
				require.NoError(t, b.Upsert("k", "10", types.TagInt))
				require.NoError(t, b.Upsert("k", "ten", types.TagString))
				row, ok, err := b.Fetch("k")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, "ten", row.Value)
				assert.Equal(t, types.TagString, row.DataType)
			},
		},
		{
			name: "empty value is stored as is",
			check: func(t *testing.T, b types.Backend) {
				require.NoError(t, b.Upsert("blank", "", types.TagString))
				row, ok, err := b.Fetch("blank")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, "", row.Value)
			},
		},
		{
			name: "keys are independent",
			check: func(t *testing.T, b types.Backend) {
				require.NoError(t, b.Upsert("a", "1", types.TagInt))
				require.NoError(t, b.Upsert("b", "2", types.TagInt))
				require.NoError(t, b.Remove("a"))
				_, ok, err := b.Fetch("a")
				require.NoError(t, err)
				assert.False(t, ok)
				row, ok, err := b.Fetch("b")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, "2", row.Value)
			},
		},
		{
			name: "remove is idempotent",
			check: func(t *testing.T, b types.Backend) {
				require.NoError(t, b.Upsert("k", "True", types.TagBool))
				require.NoError(t, b.Remove("k"))
				require.NoError(t, b.Remove("k"))
				_, ok, err := b.Fetch("k")
				require.NoError(t, err)
				assert.False(t, ok)
			},
		},
		{
			name: "unicode keys and values survive",
			check: func(t *testing.T, b types.Backend) {
				require.NoError(t, b.Upsert("clé ☃", `{"ü": "ñ"}`, types.TagJSON))
				row, ok, err := b.Fetch("clé ☃")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, `{"ü": "ñ"}`, row.Value)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := open(t)
			require.NoError(t, b.EnsureSchema())
			tt.check(t, b)
			require.NoError(t, b.Close())
		})
	}
}
