package metadata

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToProtoValue converts v into its protobuf wire representation.
//
// The mapping is one to one: null, bool, number, string, list and map become
// the matching structpb kinds.
func ToProtoValue(v Value) (*structpb.Value, error) {
	switch v.kind {
	case KindNull:
		return structpb.NewNullValue(), nil
	case KindBool:
		return structpb.NewBoolValue(v.b), nil
	case KindNumber:
		if err := validateFinite(v.n); err != nil {
			return nil, err
		}
		return structpb.NewNumberValue(v.n), nil
	case KindString:
		return structpb.NewStringValue(v.s), nil
	case KindList:
		values := make([]*structpb.Value, len(v.l))
		for i, item := range v.l {
			pv, err := ToProtoValue(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			values[i] = pv
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	case KindMap:
		s, err := ToProtoStruct(v.m)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = &structpb.Struct{}
		}
		return structpb.NewStructValue(s), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, v.kind)
	}
}

// ToProtoStruct converts m into a protobuf Struct. A nil Map yields a nil Struct,
// which leaves the field unset on the wire.
func ToProtoStruct(m Map) (*structpb.Struct, error) {
	if m == nil {
		return nil, nil
	}
	fields := make(map[string]*structpb.Value, len(m))
	for k, v := range m {
		pv, err := ToProtoValue(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		fields[k] = pv
	}
	return &structpb.Struct{Fields: fields}, nil
}

// FromProtoValue converts a protobuf Value into a Value. A value whose kind is
// unset, or of a kind this package does not know, fails with a *DecodeError.
func FromProtoValue(pv *structpb.Value) (Value, error) {
	if pv == nil {
		return Value{}, &DecodeError{Token: "<nil>", Reason: "missing wire value"}
	}
	switch k := pv.GetKind().(type) {
	case *structpb.Value_NullValue:
		return Null(), nil
	case *structpb.Value_BoolValue:
		return Bool(k.BoolValue), nil
	case *structpb.Value_NumberValue:
		return Number(k.NumberValue), nil
	case *structpb.Value_StringValue:
		return String(k.StringValue), nil
	case *structpb.Value_ListValue:
		items := make([]Value, len(k.ListValue.GetValues()))
		for i, item := range k.ListValue.GetValues() {
			v, err := FromProtoValue(item)
			if err != nil {
				return Value{}, fmt.Errorf("list index %d: %w", i, err)
			}
			items[i] = v
		}
		return Value{kind: KindList, l: items}, nil
	case *structpb.Value_StructValue:
		m, err := FromProtoStruct(k.StructValue)
		if err != nil {
			return Value{}, err
		}
		if m == nil {
			m = Map{}
		}
		return Value{kind: KindMap, m: m}, nil
	case nil:
		return Value{}, &DecodeError{Token: "kind=<unset>", Reason: "wire value has no kind"}
	default:
		return Value{}, &DecodeError{Token: fmt.Sprintf("%T", k), Reason: "unrecognized wire value kind"}
	}
}

// FromProtoStruct converts a protobuf Struct into a Map. A nil Struct yields a nil Map.
func FromProtoStruct(s *structpb.Struct) (Map, error) {
	if s == nil {
		return nil, nil
	}
	m := make(Map, len(s.GetFields()))
	for k, pv := range s.GetFields() {
		v, err := FromProtoValue(pv)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		m[k] = v
	}
	return m, nil
}
