package types

import (
	"errors"
	"fmt"
)

// Value and codec errors.
var (
	ErrUnsupportedType = errors.New("unsupported data type")
	ErrDecode          = errors.New("cannot decode stored value")
	ErrUnknownTag      = errors.New("unknown type tag")
	ErrTypeMismatch    = errors.New("type mismatch")
)

// ErrStoreClosed is returned by every operation after Close.
var ErrStoreClosed = errors.New("store is closed")

// UnsupportedTypeError is returned when a value cannot be classified into
// one of the supported tags. Nothing is written when it occurs.
type UnsupportedTypeError struct {
	// Type is the Go type of the rejected value, or a short description of
	// the nested element that could not be represented.
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported data type: %s", e.Type)
}

// Is makes errors.Is(err, ErrUnsupportedType) match.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// DecodeError is returned when a stored value cannot be parsed according to
// its recorded tag. The stored row is left untouched.
type DecodeError struct {
	Key string // Key of the row, empty when decoding outside a store.
	Tag Tag    // Tag the row was decoded with.
	Raw string // Encoded value as stored.
	Err error  // Underlying parse error.
}

func (e *DecodeError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("decoding key %q as %s: %v", e.Key, e.Tag, e.Err)
	}
	return fmt.Sprintf("decoding %s value: %v", e.Tag, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDecode) match.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
