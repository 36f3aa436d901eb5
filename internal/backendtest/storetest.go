package backendtest

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kvconf/internal/codec"
	"github.com/mesh-intelligence/kvconf/internal/store"
	"github.com/mesh-intelligence/kvconf/pkg/types"
)

// ValueComparer makes cmp compare Values with Value.Equal.
var ValueComparer = cmp.Comparer(func(a, b types.Value) bool { return a.Equal(b) })

// SampleSettings mirrors the settings the store has always been checked
// against: every supported kind, zero and negative numbers, and nesting.
func SampleSettings() []struct {
	Key   string
	Value any
} {
	return []struct {
		Key   string
		Value any
	}{
		{"enabled", true},
		{"max_items", 10},
		{"api_key", "your_api_key"},
		{"version", 1.23},
		{"price", types.MustDecimal("19.99")},
		{"login_count", 0},
		{"level", -3},
		{"auto_update", false},
		{"stats", []int{3, 6, 9}},
		{"data", types.NewObject().
			Set("key1", types.StringValue("value1")).
			Set("key2", types.ListValue(types.IntValue(1), types.IntValue(2), types.IntValue(3)))},
	}
}

// RunStore checks the typed behavior of a Store built on backends from open.
func RunStore(t *testing.T, open Factory) {
	tests := []struct {
		name  string
		check func(t *testing.T, s *store.Store, b types.Backend)
	}{
		{
			name: "every sample setting round trips and falls back after delete",
			check: func(t *testing.T, s *store.Store, _ types.Backend) {
				for _, tc := range SampleSettings() {
					want, err := codec.FromAny(tc.Value)
					require.NoError(t, err)

					require.NoError(t, s.Set(tc.Key, tc.Value))
					got, err := s.Get(tc.Key, types.Value{})
					require.NoError(t, err)
					if diff := cmp.Diff(want, got, ValueComparer); diff != "" {
						t.Errorf("%s round trip (-want +got):\n%s", tc.Key, diff)
					}

					require.NoError(t, s.Delete(tc.Key))
					got, err = s.Get(tc.Key, types.Value{})
					require.NoError(t, err)
					assert.True(t, got.IsAbsent(), "%s should be absent after delete", tc.Key)

					got, err = s.Get(tc.Key, want)
					require.NoError(t, err)
					assert.True(t, got.Equal(want), "%s default should come back unchanged", tc.Key)
				}
			},
		},
		{
			name: "default is returned for a key never set",
			check: func(t *testing.T, s *store.Store, _ types.Backend) {
				def := types.StringValue("fallback")
				got, err := s.Get("never_set", def)
				require.NoError(t, err)
				assert.True(t, got.Equal(def))

				got, err = s.Get("never_set", types.Value{})
				require.NoError(t, err)
				assert.True(t, got.IsAbsent())

				_, ok, err := s.Lookup("never_set")
				require.NoError(t, err)
				assert.False(t, ok)
			},
		},
		{
			name: "overwrite replaces value and type tag",
			check: func(t *testing.T, s *store.Store, b types.Backend) {
				require.NoError(t, s.Set("k", 10))
				require.NoError(t, s.Set("k", "ten"))

				got, err := s.Get("k", types.Value{})
				require.NoError(t, err)
				assert.True(t, got.Equal(types.StringValue("ten")))

				row, ok, err := b.Fetch("k")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, types.TagString, row.DataType)
			},
		},
		{
			name: "delete twice is not an error",
			check: func(t *testing.T, s *store.Store, _ types.Backend) {
				require.NoError(t, s.Set("k", true))
				require.NoError(t, s.Delete("k"))
				require.NoError(t, s.Delete("k"))
				_, ok, err := s.Lookup("k")
				require.NoError(t, err)
				assert.False(t, ok)
			},
		},
		{
			name: "decimal keeps exact precision",
			check: func(t *testing.T, s *store.Store, b types.Backend) {
				require.NoError(t, s.Set("price", types.MustDecimal("19.99")))

				row, _, err := b.Fetch("price")
				require.NoError(t, err)
				assert.Equal(t, "19.99", row.Value)

				d, err := s.GetDecimal("price", nil)
				require.NoError(t, err)
				require.NotNil(t, d)
				assert.Equal(t, 0, d.Cmp(apd.New(1999, -2)))
				assert.Equal(t, "19.99", d.String())
			},
		},
		{
			name: "nested structure keeps order",
			check: func(t *testing.T, s *store.Store, _ types.Backend) {
				require.NoError(t, s.Set("data", map[string]any{
					"key1": "value1",
					"key2": []any{1, 2, 3},
				}))

				got, err := s.Get("data", types.Value{})
				require.NoError(t, err)
				obj, ok := got.AsObject()
				require.True(t, ok)
				assert.Equal(t, []string{"key1", "key2"}, obj.Keys())

				list, ok := obj.Get("key2")
				require.True(t, ok)
				elems, ok := list.AsList()
				require.True(t, ok)
				require.Len(t, elems, 3)
				for i, want := range []int64{1, 2, 3} {
					n, ok := elems[i].AsInt()
					require.True(t, ok)
					assert.Equal(t, want, n)
				}
			},
		},
		{
			name: "unsupported type leaves prior entry unchanged",
			check: func(t *testing.T, s *store.Store, b types.Backend) {
				require.NoError(t, s.Set("k", "keep me"))

				err := s.Set("k", []byte("raw blob"))
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrUnsupportedType)

				err = s.SetValue("k", types.ListValue(types.MustDecimal("1.5")))
				assert.ErrorIs(t, err, types.ErrUnsupportedType)

				row, ok, err := b.Fetch("k")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, types.Row{Key: "k", Value: "keep me", DataType: types.TagString}, row)
			},
		},
		{
			name: "unsupported type on new key writes nothing",
			check: func(t *testing.T, s *store.Store, b types.Backend) {
				err := s.Set("fresh", struct{}{})
				assert.ErrorIs(t, err, types.ErrUnsupportedType)

				_, ok, err := b.Fetch("fresh")
				require.NoError(t, err)
				assert.False(t, ok)
			},
		},
		{
			name: "corrupted row fails with decode error and stays intact",
			check: func(t *testing.T, s *store.Store, b types.Backend) {
				require.NoError(t, b.Upsert("price", "19.9x", types.TagDecimal))

				_, err := s.Get("price", types.MustDecimal("1"))
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrDecode)
				var de *types.DecodeError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, "price", de.Key)

				row, ok, err := b.Fetch("price")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, "19.9x", row.Value)
			},
		},
		{
			name: "bool decoding accepts only True",
			check: func(t *testing.T, s *store.Store, b types.Backend) {
				require.NoError(t, b.Upsert("flag", "true", types.TagBool))
				got, err := s.GetBool("flag", true)
				require.NoError(t, err)
				assert.False(t, got)
			},
		},
		{
			name: "legacy str rows read as strings",
			check: func(t *testing.T, s *store.Store, b types.Backend) {
				require.NoError(t, b.Upsert("api_key", "your_api_key", types.Tag("str")))
				got, err := s.GetString("api_key", "")
				require.NoError(t, err)
				assert.Equal(t, "your_api_key", got)
			},
		},
		{
			name: "typed getters fall back and detect mismatches",
			check: func(t *testing.T, s *store.Store, _ types.Backend) {
				n, err := s.GetInt("max_items", 25)
				require.NoError(t, err)
				assert.Equal(t, int64(25), n)

				require.NoError(t, s.Set("max_items", 10))
				n, err = s.GetInt("max_items", 25)
				require.NoError(t, err)
				assert.Equal(t, int64(10), n)

				f, err := s.GetFloat("max_items", 0.5)
				assert.ErrorIs(t, err, types.ErrTypeMismatch)
				assert.Equal(t, 0.5, f)
			},
		},
		{
			name: "empty key is an ordinary key",
			check: func(t *testing.T, s *store.Store, _ types.Backend) {
				require.NoError(t, s.Set("", 1))
				require.NoError(t, s.Set("other", 2))

				got, err := s.Get("", types.Value{})
				require.NoError(t, err)
				assert.True(t, got.Equal(types.IntValue(1)), "got %v", got)

				require.NoError(t, s.Delete(""))
				got, err = s.Get("", types.StringValue("gone"))
				require.NoError(t, err)
				assert.True(t, got.Equal(types.StringValue("gone")), "got %v", got)

				got, err = s.Get("other", types.Value{})
				require.NoError(t, err)
				assert.True(t, got.Equal(types.IntValue(2)), "got %v", got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := open(t)
			s, err := store.New(b, store.WithLogger(zerolog.Nop()))
			require.NoError(t, err)
			tt.check(t, s, b)
			require.NoError(t, s.Close())
		})
	}
}
