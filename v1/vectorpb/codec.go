package vectorpb

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Codec is the gRPC codec for the messages of this package. Its name is
// "proto", so requests carry the standard application/grpc+proto content type
// and interoperate with any protobuf server.
type Codec struct{}

var _ encoding.Codec = Codec{}

func (Codec) Name() string { return "proto" }

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("vectorpb: cannot marshal %T", v)
	}
	return Marshal(m)
}

// Unmarshal decodes data into v. A *Frame receives a copy of the raw bytes so
// they can be decoded after the call returns.
func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case *Frame:
		*m = append((*m)[:0], data...)
		return nil
	case Message:
		return m.Unmarshal(data)
	default:
		return fmt.Errorf("vectorpb: cannot unmarshal into %T", v)
	}
}

// Frame is an undecoded message body.
type Frame []byte
