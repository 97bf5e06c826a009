// Package metadata provides the dynamic value model used for vector metadata
// and filters, together with its two wire codecs.
//
// # Value Model
//
// [Value] is a closed union of six variants:
//
//	| Kind        | Go payload   | JSON          | protobuf (structpb) |
//	|-------------|--------------|---------------|---------------------|
//	| KindNull    | -            | null          | null_value          |
//	| KindBool    | bool         | true / false  | bool_value          |
//	| KindNumber  | float64      | number        | number_value        |
//	| KindString  | string       | string        | string_value        |
//	| KindList    | []Value      | array         | list_value          |
//	| KindMap     | Map          | object        | struct_value        |
//
// Values are immutable. Build them with the constructors or from plain Go data:
//
//	genre := metadata.String("documentary")
//	meta := metadata.MustMapOf(map[string]any{
//	    "type":      "number set",
//	    "rank":      3,
//	    "overhyped": false,
//	    "list":      []string{"2", "1"},
//	})
//
// [FromAny] rejects every Go type outside the closed set with
// [ErrUnsupportedType] when the value is built, not later when it is sent.
//
// # Numeric Precision
//
// Every number is a float64, because the RPC wire format has no other numeric
// kind. The JSON path follows the same rule so that both transports return the
// same values. Integers with a magnitude above 2^53 are rounded to the nearest
// double and do not round-trip exactly.
//
// # Filters
//
// Filters are ordinary maps. Operator keys are not interpreted here:
//
//	filter := metadata.Map{
//	    "price": metadata.MapValue(metadata.Map{
//	        "$gte": metadata.Number(75),
//	        "$lte": metadata.Number(125),
//	    }),
//	}
//
// # Codecs
//
//   - JSON: [EncodeJSON], [DecodeJSON] and the json.Marshaler/Unmarshaler
//     implementations on Value and Map.
//   - protobuf: [ToProtoValue], [ToProtoStruct], [FromProtoValue], [FromProtoStruct].
//
// Decoding failures are reported as [*DecodeError] and match [ErrDecode].
package metadata
