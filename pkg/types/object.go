package types

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a json mapping from string keys to Values that remembers
// insertion order. Setting an existing key replaces its value in place.
// The zero Object is empty and ready to use.
type Object struct {
	pairs *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{pairs: orderedmap.New[string, Value]()}
}

// Set stores v under key and returns o so calls can be chained.
func (o *Object) Set(key string, v Value) *Object {
	if o.pairs == nil {
		o.pairs = orderedmap.New[string, Value]()
	}
	o.pairs.Set(key, v)
	return o
}

func (o *Object) Get(key string) (Value, bool) {
	if o == nil || o.pairs == nil {
		return Value{}, false
	}
	return o.pairs.Get(key)
}

func (o *Object) Len() int {
	if o == nil || o.pairs == nil {
		return 0
	}
	return o.pairs.Len()
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Range(func(key string, _ Value) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Range calls fn for each pair in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil || o.pairs == nil {
		return
	}
	for pair := o.pairs.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Equal reports whether o and other hold the same key set with equal
// values. Key order is not compared.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	equal := true
	o.Range(func(key string, v Value) bool {
		ov, ok := other.Get(key)
		if !ok || !v.Equal(ov) {
			equal = false
		}
		return equal
	})
	return equal
}
