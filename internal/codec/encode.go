package codec

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mesh-intelligence/kvconf/pkg/types"
)

// Literals for the bool tag. Decoding compares against boolTrue only.
const (
	boolTrue  = "True"
	boolFalse = "False"
)

// Encode returns the canonical text for v and the tag it must be stored
// under. The absent Value, strings with invalid UTF-8, and json containers
// holding decimals, non-finite floats or absent elements fail with
// *types.UnsupportedTypeError.
func Encode(v types.Value) (string, types.Tag, error) {
	switch v.Tag() {
	case types.TagBool:
		b, _ := v.AsBool()
		if b {
			return boolTrue, types.TagBool, nil
		}
		return boolFalse, types.TagBool, nil
	case types.TagInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10), types.TagInt, nil
	case types.TagFloat:
		f, _ := v.AsFloat()
		return formatFloat(f), types.TagFloat, nil
	case types.TagDecimal:
		d, _ := v.AsDecimal()
		return d.String(), types.TagDecimal, nil
	case types.TagString:
		s, _ := v.AsString()
		if !utf8.ValidString(s) {
			return "", "", &types.UnsupportedTypeError{Type: "string with invalid UTF-8"}
		}
		return s, types.TagString, nil
	case types.TagJSON:
		var buf bytes.Buffer
		if err := writeJSON(&buf, v); err != nil {
			return "", "", err
		}
		return buf.String(), types.TagJSON, nil
	default:
		return "", "", &types.UnsupportedTypeError{Type: "absent value"}
	}
}

// formatFloat renders f in its shortest round-trip form: fixed notation
// with at least one fractional digit for magnitudes in [1e-4, 1e16), and
// exponent notation outside that range.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// writeJSON serializes a json Value with ", " and ": " separators so the
// stored text matches what earlier versions of the store wrote.
func writeJSON(buf *bytes.Buffer, v types.Value) error {
	switch v.Tag() {
	case types.TagBool:
		b, _ := v.AsBool()
		buf.WriteString(strconv.FormatBool(b))
	case types.TagInt:
		i, _ := v.AsInt()
		buf.WriteString(strconv.FormatInt(i, 10))
	case types.TagFloat:
		f, _ := v.AsFloat()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return &types.UnsupportedTypeError{Type: "non-finite float inside json"}
		}
		buf.WriteString(formatFloat(f))
	case types.TagString:
		s, _ := v.AsString()
		return writeJSONString(buf, s)
	case types.TagDecimal:
		return &types.UnsupportedTypeError{Type: "decimal inside json"}
	case types.TagJSON:
		if obj, ok := v.AsObject(); ok {
			return writeJSONObject(buf, obj)
		}
		list, _ := v.AsList()
		buf.WriteByte('[')
		for i, elem := range list {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := writeJSON(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return &types.UnsupportedTypeError{Type: "absent value inside json"}
	}
	return nil
}

func writeJSONObject(buf *bytes.Buffer, obj *types.Object) error {
	var err error
	first := true
	buf.WriteByte('{')
	obj.Range(func(key string, elem types.Value) bool {
		if !first {
			buf.WriteString(", ")
		}
		first = false
		if err = writeJSONString(buf, key); err != nil {
			return false
		}
		buf.WriteString(": ")
		err = writeJSON(buf, elem)
		return err == nil
	})
	if err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return &types.UnsupportedTypeError{Type: "string with invalid UTF-8"}
	}
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(scratch.Bytes(), []byte("\n")))
	return nil
}
