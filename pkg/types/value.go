package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Value is a configuration value of one of the supported kinds. The zero
// Value holds nothing; IsAbsent reports true for it and Store.Get returns it
// when a key is missing and no default was given.
//
// A json Value holds either a list (AsList) or an ordered object (AsObject)
// whose leaves are themselves Values.
type Value struct {
	tag  Tag
	b    bool
	i    int64
	f    float64
	d    *apd.Decimal
	s    string
	list []Value
	obj  *Object
}

// BoolValue returns a bool Value.
func BoolValue(b bool) Value {
	return Value{tag: TagBool, b: b}
}

// IntValue returns an int Value.
func IntValue(i int64) Value {
	return Value{tag: TagInt, i: i}
}

// FloatValue returns a float Value.
func FloatValue(f float64) Value {
	return Value{tag: TagFloat, f: f}
}

// DecimalValue returns a decimal Value holding a copy of d.
// A nil d is treated as zero.
func DecimalValue(d *apd.Decimal) Value {
	c := new(apd.Decimal)
	if d != nil {
		c.Set(d)
	}
	return Value{tag: TagDecimal, d: c}
}

// ParseDecimal parses s as an exact decimal number.
func ParseDecimal(s string) (Value, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Value{}, err
	}
	return Value{tag: TagDecimal, d: d}, nil
}

// MustDecimal is like ParseDecimal but panics on malformed input. Intended
// for literals in code and tests.
func MustDecimal(s string) Value {
	v, err := ParseDecimal(s)
	if err != nil {
		panic(fmt.Sprintf("types.MustDecimal(%q): %v", s, err))
	}
	return v
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{tag: TagString, s: s}
}

// ListValue returns a json Value holding the given elements in order.
// A nil or empty call yields an empty list, never an absent Value.
func ListValue(elems ...Value) Value {
	l := make([]Value, len(elems))
	copy(l, elems)
	return Value{tag: TagJSON, list: l}
}

// ObjectValue returns a json Value holding o. A nil o yields an empty object.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{tag: TagJSON, obj: o}
}

// Tag returns the kind of the value, or "" for the absent Value.
func (v Value) Tag() Tag {
	return v.tag
}

// IsAbsent reports whether v is the zero Value.
func (v Value) IsAbsent() bool {
	return v.tag == ""
}

// IsList reports whether v is a json list.
func (v Value) IsList() bool {
	return v.tag == TagJSON && v.obj == nil
}

// IsObject reports whether v is a json object.
func (v Value) IsObject() bool {
	return v.tag == TagJSON && v.obj != nil
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.tag == TagBool
}

func (v Value) AsInt() (int64, bool) {
	return v.i, v.tag == TagInt
}

func (v Value) AsFloat() (float64, bool) {
	return v.f, v.tag == TagFloat
}

// AsDecimal returns a copy of the held decimal.
func (v Value) AsDecimal() (*apd.Decimal, bool) {
	if v.tag != TagDecimal {
		return nil, false
	}
	return new(apd.Decimal).Set(v.d), true
}

func (v Value) AsString() (string, bool) {
	return v.s, v.tag == TagString
}

// AsList returns the elements of a json list. The slice is shared with v.
func (v Value) AsList() ([]Value, bool) {
	if !v.IsList() {
		return nil, false
	}
	return v.list, true
}

func (v Value) AsObject() (*Object, bool) {
	if !v.IsObject() {
		return nil, false
	}
	return v.obj, true
}

// Equal reports whether v and o hold the same kind and equal contents.
// Floats compare numerically with NaN equal to NaN, decimals compare by
// numeric value, lists compare element-wise in order and objects compare by
// key set and per-key value.
func (v Value) Equal(o Value) bool {
	if v.tag != o.tag {
		return false
	}
	switch v.tag {
	case "":
		return true
	case TagBool:
		return v.b == o.b
	case TagInt:
		return v.i == o.i
	case TagFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case TagDecimal:
		return decimalEqual(v.d, o.d)
	case TagString:
		return v.s == o.s
	case TagJSON:
		if v.IsObject() != o.IsObject() {
			return false
		}
		if v.IsObject() {
			return v.obj.Equal(o.obj)
		}
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func decimalEqual(a, b *apd.Decimal) bool {
	aNaN := a.Form == apd.NaN || a.Form == apd.NaNSignaling
	bNaN := b.Form == apd.NaN || b.Form == apd.NaNSignaling
	if aNaN || bNaN {
		return aNaN && bNaN
	}
	return a.Cmp(b) == 0
}

// String renders v for logs and error messages. It is not the storage
// encoding.
func (v Value) String() string {
	switch v.tag {
	case "":
		return "<absent>"
	case TagBool:
		return strconv.FormatBool(v.b)
	case TagInt:
		return strconv.FormatInt(v.i, 10)
	case TagFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TagDecimal:
		return v.d.String()
	case TagString:
		return strconv.Quote(v.s)
	}
	var sb strings.Builder
	if v.IsObject() {
		sb.WriteByte('{')
		first := true
		v.obj.Range(func(key string, elem Value) bool {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(strconv.Quote(key))
			sb.WriteString(": ")
			sb.WriteString(elem.String())
			return true
		})
		sb.WriteByte('}')
		return sb.String()
	}
	sb.WriteByte('[')
	for i, elem := range v.list {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(elem.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
