// Package codec converts configuration values to and from their stored
// form: a canonical text encoding plus the type tag that selects how the
// text is read back. It is pure and performs no I/O.
package codec

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"github.com/mesh-intelligence/kvconf/pkg/types"
)

// Classify returns the tag v would be stored under. Candidates are checked
// in a fixed order: bool, int, string, float, decimal, then lists and
// mappings. Anything else fails with *types.UnsupportedTypeError.
func Classify(v any) (types.Tag, error) {
	val, err := FromAny(v)
	if err != nil {
		return "", err
	}
	return val.Tag(), nil
}

// FromAny converts a native Go value into a types.Value. Integer kinds
// narrower than int64 widen to int, float32 widens to float, slices become
// json lists and maps with string keys become json objects with keys in
// sorted order. A types.Value or *types.Object is accepted as is.
func FromAny(v any) (types.Value, error) {
	// bool first: the order of these cases is the classification order.
	switch x := v.(type) {
	case bool:
		return types.BoolValue(x), nil
	case types.Value:
		if x.IsAbsent() {
			return types.Value{}, &types.UnsupportedTypeError{Type: "absent value"}
		}
		return x, nil
	}

	switch x := v.(type) {
	case int:
		return types.IntValue(int64(x)), nil
	case int8:
		return types.IntValue(int64(x)), nil
	case int16:
		return types.IntValue(int64(x)), nil
	case int32:
		return types.IntValue(int64(x)), nil
	case int64:
		return types.IntValue(x), nil
	case uint8:
		return types.IntValue(int64(x)), nil
	case uint16:
		return types.IntValue(int64(x)), nil
	case uint32:
		return types.IntValue(int64(x)), nil
	case uint:
		return fromUint(uint64(x), "uint")
	case uint64:
		return fromUint(x, "uint64")
	}

	switch x := v.(type) {
	case string:
		if !utf8.ValidString(x) {
			return types.Value{}, &types.UnsupportedTypeError{Type: "string with invalid UTF-8"}
		}
		return types.StringValue(x), nil
	case float64:
		return types.FloatValue(x), nil
	case float32:
		return types.FloatValue(float64(x)), nil
	case *apd.Decimal:
		if x == nil {
			return types.Value{}, &types.UnsupportedTypeError{Type: "nil *apd.Decimal"}
		}
		return types.DecimalValue(x), nil
	case apd.Decimal:
		return types.DecimalValue(&x), nil
	}

	return fromContainer(v)
}

func fromUint(u uint64, name string) (types.Value, error) {
	if u > math.MaxInt64 {
		return types.Value{}, &types.UnsupportedTypeError{Type: name + " overflowing int64"}
	}
	return types.IntValue(int64(u)), nil
}

// fromContainer handles the json candidates: ordered lists and string-keyed
// mappings whose elements are themselves supported.
func fromContainer(v any) (types.Value, error) {
	switch x := v.(type) {
	case *types.Object:
		if x == nil {
			return types.Value{}, &types.UnsupportedTypeError{Type: "nil *types.Object"}
		}
		return types.ObjectValue(x), nil
	case []types.Value:
		return types.ListValue(x...), nil
	case []any:
		return listOf(x)
	case []string:
		return listOf(x)
	case []int:
		return listOf(x)
	case []int64:
		return listOf(x)
	case []float64:
		return listOf(x)
	case []bool:
		return listOf(x)
	case map[string]any:
		return objectOf(x)
	case map[string]string:
		return objectOf(x)
	case map[string]int:
		return objectOf(x)
	case map[string]types.Value:
		return objectOf(x)
	case nil:
		return types.Value{}, &types.UnsupportedTypeError{Type: "nil"}
	default:
		return types.Value{}, &types.UnsupportedTypeError{Type: fmt.Sprintf("%T", v)}
	}
}

func listOf[E any](elems []E) (types.Value, error) {
	out := make([]types.Value, 0, len(elems))
	for _, e := range elems {
		ev, err := FromAny(e)
		if err != nil {
			return types.Value{}, err
		}
		out = append(out, ev)
	}
	return types.ListValue(out...), nil
}

func objectOf[E any](m map[string]E) (types.Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := types.NewObject()
	for _, k := range keys {
		ev, err := FromAny(m[k])
		if err != nil {
			return types.Value{}, err
		}
		obj.Set(k, ev)
	}
	return types.ObjectValue(obj), nil
}
