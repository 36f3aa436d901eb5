package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/mesh-intelligence/kvconf/internal/codec"
	"github.com/mesh-intelligence/kvconf/pkg/types"
)

var errBadBool = errors.New(`expected one of true, false, True, False`)

// parseValue converts command-line text into a Value of the given tag.
// Booleans are parsed strictly; other tags use the storage decoder.
func parseValue(raw string, tagName string) (types.Value, error) {
	tag, err := types.ParseTag(tagName)
	if err != nil {
		return types.Value{}, fmt.Errorf("type %q: %w", tagName, err)
	}

	if tag == types.TagBool {
		switch raw {
		case "true", "True":
			return types.BoolValue(true), nil
		case "false", "False":
			return types.BoolValue(false), nil
		default:
			return types.Value{}, fmt.Errorf("parse %q as bool: %w", raw, errBadBool)
		}
	}

	v, err := codec.Decode(raw, tag)
	if err != nil {
		return types.Value{}, fmt.Errorf("parse %q as %s: %w", raw, tag, err)
	}
	return v, nil
}

// formatText renders v for plain output: strings verbatim, everything else
// in its stored form.
func formatText(v types.Value) (string, error) {
	if s, ok := v.AsString(); ok {
		return s, nil
	}
	text, _, err := codec.Encode(v)
	return text, err
}

// entry is the --json output of get.
type entry struct {
	Key   string    `json:"key"`
	Type  types.Tag `json:"type"`
	Value any       `json:"value"`
}

// jsonValue maps v onto a JSON value. Decimals stay strings so their digits
// survive; non-finite floats have no JSON number form and are strings too.
func jsonValue(v types.Value) (any, error) {
	switch v.Tag() {
	case types.TagBool:
		b, _ := v.AsBool()
		return b, nil
	case types.TagInt:
		i, _ := v.AsInt()
		return i, nil
	case types.TagFloat:
		f, _ := v.AsFloat()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return strconv.FormatFloat(f, 'g', -1, 64), nil
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	case types.TagJSON:
		text, _, err := codec.Encode(v)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(text), nil
	default:
		return formatText(v)
	}
}
