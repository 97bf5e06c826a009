package metadata

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrUnsupportedType is returned when a Go value has no Value representation.
	ErrUnsupportedType = errors.New("metadata: unsupported value type")

	// ErrUnsupportedValue is returned for values of a supported type that cannot
	// be carried on the wire, such as NaN or infinite numbers.
	ErrUnsupportedValue = errors.New("metadata: unsupported value")

	// ErrDecode is returned when a wire document does not match the Value grammar.
	ErrDecode = errors.New("metadata: decode failure")
)

// TypeError reports a Go type that FromAny cannot convert.
type TypeError struct {
	Type reflect.Type
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("metadata: unsupported value type %v", e.Type)
}

// Is matches ErrUnsupportedType.
func (e *TypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// DecodeError reports a wire token or value that could not be decoded.
type DecodeError struct {
	// Token is a printable form of the offending token or wire value.
	Token string
	// Reason describes what was expected.
	Reason string
	cause  error
}

func (e *DecodeError) Error() string {
	if e.Token == "" {
		return "metadata: decode: " + e.Reason
	}
	return fmt.Sprintf("metadata: decode %s: %s", e.Token, e.Reason)
}

// Is matches ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error { return e.cause }

// IsUnsupported reports whether err was caused by an unsupported type or value.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedType) || errors.Is(err, ErrUnsupportedValue)
}

// IsDecodeError reports whether err is a decode failure.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}
