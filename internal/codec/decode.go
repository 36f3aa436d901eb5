package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/mesh-intelligence/kvconf/pkg/types"
)

var (
	errJSONNull      = errors.New("null is not a supported value")
	errJSONScalar    = errors.New("json document must be a list or an object")
	errJSONTrailing  = errors.New("unexpected data after json document")
	errJSONBadObject = errors.New("malformed json object")
	errHexFloat      = errors.New("hexadecimal float literals are not supported")
)

// Decode parses raw according to tag. The bool tag yields true only for the
// exact text "True"; every other text yields false. Parse failures and
// unknown tags return *types.DecodeError.
func Decode(raw string, tag types.Tag) (types.Value, error) {
	t, err := types.ParseTag(string(tag))
	if err != nil {
		return types.Value{}, &types.DecodeError{Tag: tag, Raw: raw, Err: err}
	}

	v, err := decode(raw, t)
	if err != nil {
		return types.Value{}, &types.DecodeError{Tag: t, Raw: raw, Err: err}
	}
	return v, nil
}

func decode(raw string, tag types.Tag) (types.Value, error) {
	switch tag {
	case types.TagBool:
		return types.BoolValue(raw == boolTrue), nil
	case types.TagInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return types.Value{}, err
		}
		return types.IntValue(i), nil
	case types.TagFloat:
		if strings.ContainsAny(raw, "xX") {
			return types.Value{}, errHexFloat
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return types.Value{}, err
		}
		return types.FloatValue(f), nil
	case types.TagDecimal:
		d, _, err := apd.NewFromString(raw)
		if err != nil {
			return types.Value{}, err
		}
		return types.DecimalValue(d), nil
	case types.TagString:
		return types.StringValue(raw), nil
	case types.TagJSON:
		return decodeJSON(raw)
	default:
		return types.Value{}, types.ErrUnknownTag
	}
}

// decodeJSON walks the document token by token so that object key order
// and the int/float distinction of number literals survive.
func decodeJSON(raw string) (types.Value, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	v, err := readJSON(dec)
	if err != nil {
		return types.Value{}, err
	}
	if !v.IsList() && !v.IsObject() {
		return types.Value{}, errJSONScalar
	}
	if _, err := dec.Token(); err != io.EOF {
		return types.Value{}, errJSONTrailing
	}
	return v, nil
}

func readJSON(dec *json.Decoder) (types.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return types.Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			return readJSONList(dec)
		case '{':
			return readJSONObject(dec)
		default:
			return types.Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case bool:
		return types.BoolValue(t), nil
	case json.Number:
		return numberValue(t)
	case string:
		return types.StringValue(t), nil
	case nil:
		return types.Value{}, errJSONNull
	default:
		return types.Value{}, fmt.Errorf("unexpected json token %v", tok)
	}
}

func readJSONList(dec *json.Decoder) (types.Value, error) {
	elems := []types.Value{}
	for dec.More() {
		v, err := readJSON(dec)
		if err != nil {
			return types.Value{}, err
		}
		elems = append(elems, v)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return types.Value{}, err
	}
	return types.ListValue(elems...), nil
}

func readJSONObject(dec *json.Decoder) (types.Value, error) {
	obj := types.NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return types.Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return types.Value{}, errJSONBadObject
		}
		v, err := readJSON(dec)
		if err != nil {
			return types.Value{}, err
		}
		obj.Set(key, v)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return types.Value{}, err
	}
	return types.ObjectValue(obj), nil
}

// numberValue keeps integer literals as int and anything with a fraction
// or exponent as float. Literals outside float64 range fail.
func numberValue(n json.Number) (types.Value, error) {
	s := n.String()
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return types.Value{}, err
		}
		return types.FloatValue(f), nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return types.Value{}, err
	}
	return types.IntValue(i), nil
}
