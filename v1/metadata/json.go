package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// EncodeJSON encodes v as a JSON document.
//
// Map keys are written in sorted order. Non-finite numbers fail with
// ErrUnsupportedValue.
func EncodeJSON(v Value) ([]byte, error) {
	return appendJSON(nil, v)
}

// DecodeJSON reads exactly one JSON value from dec and converts it into a Value.
//
// JSON numbers become float64 regardless of whether they were written as
// integers. Numbers outside the float64 range fail with a *DecodeError naming
// the literal. The decoder may or may not have UseNumber enabled.
func DecodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, &DecodeError{Reason: "read token", cause: err}
	}
	return decodeToken(dec, tok)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	out, err := decodeBytes(data)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// MarshalJSON implements json.Marshaler. A nil Map encodes as null.
func (m Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return appendMap(nil, m)
}

// UnmarshalJSON implements json.Unmarshaler. The document must be an object or null.
func (m *Map) UnmarshalJSON(data []byte) error {
	out, err := decodeBytes(data)
	if err != nil {
		return err
	}
	switch out.kind {
	case KindNull:
		*m = nil
	case KindMap:
		*m = out.m
	default:
		return &DecodeError{Token: out.kind.String(), Reason: "expected a JSON object"}
	}
	return nil
}

func decodeBytes(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return DecodeJSON(dec)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		n, err := strconv.ParseFloat(string(t), 64)
		if err != nil || math.IsInf(n, 0) {
			return Value{}, &DecodeError{Token: string(t), Reason: "number is not a finite float64", cause: err}
		}
		return Number(n), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Value{}, &DecodeError{Token: fmt.Sprint(t), Reason: "number is not a finite float64"}
		}
		return Number(t), nil
	case json.Delim:
		switch t {
		case '[':
			return decodeArray(dec)
		case '{':
			return decodeObject(dec)
		default:
			return Value{}, &DecodeError{Token: t.String(), Reason: "unexpected delimiter"}
		}
	default:
		return Value{}, &DecodeError{Token: fmt.Sprintf("%v", tok), Reason: fmt.Sprintf("unexpected token of type %T", tok)}
	}
}

func decodeArray(dec *json.Decoder) (Value, error) {
	items := []Value{}
	for dec.More() {
		item, err := DecodeJSON(dec)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return Value{}, err
	}
	return Value{kind: KindList, l: items}, nil
}

func decodeObject(dec *json.Decoder) (Value, error) {
	m := Map{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, &DecodeError{Reason: "read object key", cause: err}
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, &DecodeError{Token: fmt.Sprintf("%v", tok), Reason: "object key is not a string"}
		}
		val, err := DecodeJSON(dec)
		if err != nil {
			return Value{}, fmt.Errorf("key %q: %w", key, err)
		}
		m[key] = val
	}
	if err := expectDelim(dec, '}'); err != nil {
		return Value{}, err
	}
	return Value{kind: KindMap, m: m}, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return &DecodeError{Reason: "read closing " + want.String(), cause: err}
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return &DecodeError{Token: fmt.Sprintf("%v", tok), Reason: "expected " + want.String()}
	}
	return nil
}

func appendJSON(b []byte, v Value) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return append(b, "null"...), nil
	case KindBool:
		return strconv.AppendBool(b, v.b), nil
	case KindNumber:
		if err := validateFinite(v.n); err != nil {
			return nil, err
		}
		num, err := json.Marshal(v.n)
		if err != nil {
			return nil, err
		}
		return append(b, num...), nil
	case KindString:
		return appendString(b, v.s)
	case KindList:
		b = append(b, '[')
		for i, item := range v.l {
			if i > 0 {
				b = append(b, ',')
			}
			var err error
			if b, err = appendJSON(b, item); err != nil {
				return nil, err
			}
		}
		return append(b, ']'), nil
	case KindMap:
		return appendMap(b, v.m)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, v.kind)
	}
}

func appendMap(b []byte, m Map) ([]byte, error) {
	b = append(b, '{')
	for i, k := range m.Keys() {
		if i > 0 {
			b = append(b, ',')
		}
		var err error
		if b, err = appendString(b, k); err != nil {
			return nil, err
		}
		b = append(b, ':')
		if b, err = appendJSON(b, m[k]); err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
	}
	return append(b, '}'), nil
}

func appendString(b []byte, s string) ([]byte, error) {
	quoted, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return append(b, quoted...), nil
}
