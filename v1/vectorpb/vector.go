package vectorpb

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/structpb"
)

// SparseValues is the sparse part of a vector.
//
//	message SparseValues {
//	  repeated uint32 indices = 1;
//	  repeated float values = 2;
//	}
type SparseValues struct {
	Indices []uint32
	Values  []float32
}

func (m *SparseValues) Size() int {
	return sizePackedUint32sField(1, m.Indices) +
		sizePackedFloatsField(2, m.Values)
}

func (m *SparseValues) MarshalAppend(b []byte) ([]byte, error) {
	b = appendPackedUint32sField(b, 1, m.Indices)
	b = appendPackedFloatsField(b, 2, m.Values)
	return b, nil
}

func (m *SparseValues) Unmarshal(b []byte) error {
	*m = SparseValues{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint32s(typ, b, &m.Indices)
		case 2:
			return consumeFloats(typ, b, &m.Values)
		}
		return skipField(num, typ, b)
	})
}

// Vector is a stored record.
//
//	message Vector {
//	  string id = 1;
//	  repeated float values = 2;
//	  google.protobuf.Struct metadata = 3;
//	  SparseValues sparse_values = 4;
//	}
type Vector struct {
	ID           string
	Values       []float32
	Metadata     *structpb.Struct
	SparseValues *SparseValues
}

func (m *Vector) Size() int {
	n := sizeStringField(1, m.ID) +
		sizePackedFloatsField(2, m.Values) +
		sizeStructField(3, m.Metadata)
	if m.SparseValues != nil {
		n += sizeMessageField(4, m.SparseValues)
	}
	return n
}

func (m *Vector) MarshalAppend(b []byte) ([]byte, error) {
	var err error
	b = appendStringField(b, 1, m.ID)
	b = appendPackedFloatsField(b, 2, m.Values)
	if b, err = appendStructField(b, 3, m.Metadata); err != nil {
		return nil, err
	}
	if m.SparseValues != nil {
		return appendMessageField(b, 4, m.SparseValues)
	}
	return b, nil
}

func (m *Vector) Unmarshal(b []byte) error {
	*m = Vector{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.ID)
		case 2:
			return consumeFloats(typ, b, &m.Values)
		case 3:
			return consumeStruct(typ, b, &m.Metadata)
		case 4:
			m.SparseValues = &SparseValues{}
			return consumeMessage(typ, b, m.SparseValues.Unmarshal)
		}
		return skipField(num, typ, b)
	})
}

// ScoredVector is a query match.
//
//	message ScoredVector {
//	  string id = 1;
//	  float score = 2;
//	  repeated float values = 3;
//	  google.protobuf.Struct metadata = 4;
//	  SparseValues sparse_values = 5;
//	}
type ScoredVector struct {
	ID           string
	Score        float32
	Values       []float32
	Metadata     *structpb.Struct
	SparseValues *SparseValues
}

func (m *ScoredVector) Size() int {
	n := sizeStringField(1, m.ID) +
		sizeFloatField(2, m.Score) +
		sizePackedFloatsField(3, m.Values) +
		sizeStructField(4, m.Metadata)
	if m.SparseValues != nil {
		n += sizeMessageField(5, m.SparseValues)
	}
	return n
}

func (m *ScoredVector) MarshalAppend(b []byte) ([]byte, error) {
	var err error
	b = appendStringField(b, 1, m.ID)
	b = appendFloatField(b, 2, m.Score)
	b = appendPackedFloatsField(b, 3, m.Values)
	if b, err = appendStructField(b, 4, m.Metadata); err != nil {
		return nil, err
	}
	if m.SparseValues != nil {
		return appendMessageField(b, 5, m.SparseValues)
	}
	return b, nil
}

func (m *ScoredVector) Unmarshal(b []byte) error {
	*m = ScoredVector{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.ID)
		case 2:
			return consumeFloat(typ, b, &m.Score)
		case 3:
			return consumeFloats(typ, b, &m.Values)
		case 4:
			return consumeStruct(typ, b, &m.Metadata)
		case 5:
			m.SparseValues = &SparseValues{}
			return consumeMessage(typ, b, m.SparseValues.Unmarshal)
		}
		return skipField(num, typ, b)
	})
}

// Usage reports consumed read units.
//
//	message Usage {
//	  optional uint32 read_units = 1;
//	}
type Usage struct {
	ReadUnits *uint32
}

func (m *Usage) Size() int {
	return sizeOptionalUint32Field(1, m.ReadUnits)
}

func (m *Usage) MarshalAppend(b []byte) ([]byte, error) {
	return appendOptionalUint32Field(b, 1, m.ReadUnits), nil
}

func (m *Usage) Unmarshal(b []byte) error {
	*m = Usage{}
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeOptionalUint32(typ, b, &m.ReadUnits)
		}
		return skipField(num, typ, b)
	})
}
