package vectorpb

import (
	"encoding/binary"
	"math"
	"slices"
	"unsafe"
)

// nativeLayout is true when the in-memory representation of a float32 equals
// its wire representation (IEEE 754, little-endian).
var nativeLayout = isLittleEndian()

func isLittleEndian() bool {
	var test uint16 = 0x0001
	firstByte := *(*byte)(unsafe.Pointer(&test))
	return firstByte == 1
}

func aligned(v []float32) bool {
	return uintptr(unsafe.Pointer(&v[0]))%4 == 0
}

// appendFloats appends v as consecutive little-endian fixed32 values. On hosts
// whose layout matches the wire the caller's buffer is appended as raw bytes
// without an intermediate copy.
func appendFloats(b []byte, v []float32) []byte {
	if len(v) == 0 {
		return b
	}
	if nativeLayout && aligned(v) {
		return append(b, unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)...)
	}
	return appendFloatsPortable(b, v)
}

func appendFloatsPortable(b []byte, v []float32) []byte {
	b = slices.Grow(b, len(v)*4)
	for _, f := range v {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	return b
}

// decodeFloats appends the floats encoded in b to dst. len(b) must be a
// multiple of 4. The result never aliases b.
func decodeFloats(dst []float32, b []byte) []float32 {
	n := len(b) / 4
	if n == 0 {
		return dst
	}
	start := len(dst)
	dst = slices.Grow(dst, n)[:start+n]
	if nativeLayout {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&dst[start])), n*4), b)
		return dst
	}
	decodeFloatsPortable(dst[start:], b)
	return dst
}

func decodeFloatsPortable(dst []float32, b []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
}
