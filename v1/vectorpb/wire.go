package vectorpb

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrMalformed is wrapped by every decoding error.
var ErrMalformed = errors.New("vectorpb: malformed message")

// Message is implemented by every request and response type of the service.
type Message interface {
	// Size returns the encoded length in bytes
	Size() int
	// MarshalAppend appends the encoding to b
	MarshalAppend(b []byte) ([]byte, error)
	// Unmarshal replaces the receiver with the decoding of b. Slices and
	// strings never alias b.
	Unmarshal(b []byte) error
}

// Marshal encodes m into a new buffer of exactly m.Size() bytes.
func Marshal(m Message) ([]byte, error) {
	return m.MarshalAppend(make([]byte, 0, m.Size()))
}

var structOptions = proto.MarshalOptions{Deterministic: true}

// ── Encoding ─────────────────────────────────────────────────────────────────

func sizeStringField(num protowire.Number, s string) int {
	if s == "" {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(len(s))
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func sizeOptionalStringField(num protowire.Number, s *string) int {
	if s == nil {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(len(*s))
}

func appendOptionalStringField(b []byte, num protowire.Number, s *string) []byte {
	if s == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, *s)
}

func sizeRepeatedStringField(num protowire.Number, ss []string) int {
	n := 0
	for _, s := range ss {
		n += protowire.SizeTag(num) + protowire.SizeBytes(len(s))
	}
	return n
}

func appendRepeatedStringField(b []byte, num protowire.Number, ss []string) []byte {
	for _, s := range ss {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	return b
}

func sizeUint32Field(num protowire.Number, v uint32) int {
	if v == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeVarint(uint64(v))
}

func appendUint32Field(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func sizeOptionalUint32Field(num protowire.Number, v *uint32) int {
	if v == nil {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeVarint(uint64(*v))
}

func appendOptionalUint32Field(b []byte, num protowire.Number, v *uint32) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(*v))
}

func sizeBoolField(num protowire.Number, v bool) int {
	if !v {
		return 0
	}
	return protowire.SizeTag(num) + 1
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func sizeFloatField(num protowire.Number, v float32) int {
	if math.Float32bits(v) == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeFixed32()
}

func appendFloatField(b []byte, num protowire.Number, v float32) []byte {
	if math.Float32bits(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func sizePackedFloatsField(num protowire.Number, v []float32) int {
	if len(v) == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(4*len(v))
}

func appendPackedFloatsField(b []byte, num protowire.Number, v []float32) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(4*len(v)))
	return appendFloats(b, v)
}

func sizeVarints(v []uint32) int {
	n := 0
	for _, x := range v {
		n += protowire.SizeVarint(uint64(x))
	}
	return n
}

func sizePackedUint32sField(num protowire.Number, v []uint32) int {
	if len(v) == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(sizeVarints(v))
}

func appendPackedUint32sField(b []byte, num protowire.Number, v []uint32) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(sizeVarints(v)))
	for _, x := range v {
		b = protowire.AppendVarint(b, uint64(x))
	}
	return b
}

// sizer is the encoding half of Message.
type sizer interface {
	Size() int
	MarshalAppend(b []byte) ([]byte, error)
}

func sizeMessageField(num protowire.Number, m sizer) int {
	return protowire.SizeTag(num) + protowire.SizeBytes(m.Size())
}

// appendMessageField writes m with its length prefix. Callers skip nil messages.
func appendMessageField(b []byte, num protowire.Number, m sizer) ([]byte, error) {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(m.Size()))
	return m.MarshalAppend(b)
}

func sizeStructField(num protowire.Number, s *structpb.Struct) int {
	if s == nil {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(structOptions.Size(s))
}

func appendStructField(b []byte, num protowire.Number, s *structpb.Struct) ([]byte, error) {
	if s == nil {
		return b, nil
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(structOptions.Size(s)))
	return structOptions.MarshalAppend(b, s)
}

// ── Decoding ─────────────────────────────────────────────────────────────────

// fieldFunc decodes the value of one field from the start of b and returns the
// number of bytes it consumed.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// walk calls fn for every field in b.
func walk(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed(protowire.ParseError(n))
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		b = b[m:]
	}
	return nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

func wireTypeError(typ protowire.Type) error {
	return fmt.Errorf("%w: unexpected wire type %d", ErrMalformed, typ)
}

func checked(n int) (int, error) {
	if n < 0 {
		return 0, malformed(protowire.ParseError(n))
	}
	return n, nil
}

// skipField consumes a field this package does not know.
func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	return checked(protowire.ConsumeFieldValue(num, typ, b))
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, error) {
	if typ != protowire.BytesType {
		return 0, wireTypeError(typ)
	}
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return checked(n)
	}
	*dst = v
	return n, nil
}

func consumeOptionalString(typ protowire.Type, b []byte, dst **string) (int, error) {
	var s string
	n, err := consumeString(typ, b, &s)
	if err != nil {
		return 0, err
	}
	*dst = &s
	return n, nil
}

func consumeRepeatedString(typ protowire.Type, b []byte, dst *[]string) (int, error) {
	var s string
	n, err := consumeString(typ, b, &s)
	if err != nil {
		return 0, err
	}
	*dst = append(*dst, s)
	return n, nil
}

func consumeUint32(typ protowire.Type, b []byte, dst *uint32) (int, error) {
	if typ != protowire.VarintType {
		return 0, wireTypeError(typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return checked(n)
	}
	*dst = uint32(v)
	return n, nil
}

func consumeOptionalUint32(typ protowire.Type, b []byte, dst **uint32) (int, error) {
	var v uint32
	n, err := consumeUint32(typ, b, &v)
	if err != nil {
		return 0, err
	}
	*dst = &v
	return n, nil
}

func consumeBool(typ protowire.Type, b []byte, dst *bool) (int, error) {
	if typ != protowire.VarintType {
		return 0, wireTypeError(typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return checked(n)
	}
	*dst = protowire.DecodeBool(v)
	return n, nil
}

func consumeFloat(typ protowire.Type, b []byte, dst *float32) (int, error) {
	if typ != protowire.Fixed32Type {
		return 0, wireTypeError(typ)
	}
	v, n := protowire.ConsumeFixed32(b)
	if n < 0 {
		return checked(n)
	}
	*dst = math.Float32frombits(v)
	return n, nil
}

// consumeFloats accepts both the packed and the unpacked encoding.
func consumeFloats(typ protowire.Type, b []byte, dst *[]float32) (int, error) {
	switch typ {
	case protowire.BytesType:
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return checked(n)
		}
		if len(v)%4 != 0 {
			return 0, fmt.Errorf("%w: packed float length %d is not a multiple of 4", ErrMalformed, len(v))
		}
		*dst = decodeFloats(*dst, v)
		return n, nil
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return checked(n)
		}
		*dst = append(*dst, math.Float32frombits(v))
		return n, nil
	default:
		return 0, wireTypeError(typ)
	}
}

// consumeUint32s accepts both the packed and the unpacked encoding.
func consumeUint32s(typ protowire.Type, b []byte, dst *[]uint32) (int, error) {
	switch typ {
	case protowire.BytesType:
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return checked(n)
		}
		for len(v) > 0 {
			x, m := protowire.ConsumeVarint(v)
			if m < 0 {
				return checked(m)
			}
			*dst = append(*dst, uint32(x))
			v = v[m:]
		}
		return n, nil
	case protowire.VarintType:
		x, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return checked(n)
		}
		*dst = append(*dst, uint32(x))
		return n, nil
	default:
		return 0, wireTypeError(typ)
	}
}

// consumeMessage hands the body of a length-delimited field to decode.
func consumeMessage(typ protowire.Type, b []byte, decode func([]byte) error) (int, error) {
	if typ != protowire.BytesType {
		return 0, wireTypeError(typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return checked(n)
	}
	if err := decode(v); err != nil {
		return 0, err
	}
	return n, nil
}

func consumeStruct(typ protowire.Type, b []byte, dst **structpb.Struct) (int, error) {
	return consumeMessage(typ, b, func(v []byte) error {
		s := &structpb.Struct{}
		if err := proto.Unmarshal(v, s); err != nil {
			return malformed(err)
		}
		*dst = s
		return nil
	})
}
