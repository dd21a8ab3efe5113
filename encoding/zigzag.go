package encoding

import "math/bits"

// Unsigned is the set of word types the integer transforms operate on.
//
// Signed columns are carried as the two's complement bit pattern of their
// values, so one implementation covers int32/uint32 and int64/uint64 columns.
type Unsigned interface {
	~uint32 | ~uint64
}

// Width returns the bit width of T.
func Width[T Unsigned]() int {
	return bits.Len64(uint64(^T(0)))
}

// ZigZag maps the two's complement value v to an unsigned value whose
// magnitude grows with |v|: 0, -1, 1, -2, 2 map to 0, 1, 2, 3, 4.
func ZigZag[T Unsigned](v T) T {
	return (v << 1) ^ (0 - (v >> (Width[T]() - 1)))
}

// UnZigZag is the inverse of ZigZag.
func UnZigZag[T Unsigned](v T) T {
	return (v >> 1) ^ (0 - (v & 1))
}

// ZigZag32 maps a signed 32-bit value to its zigzag form.
func ZigZag32(v int32) uint32 {
	return ZigZag(uint32(v))
}

// UnZigZag32 maps a zigzag value back to a signed 32-bit value.
func UnZigZag32(v uint32) int32 {
	return int32(UnZigZag(v))
}

// ZigZag64 maps a signed 64-bit value to its zigzag form.
func ZigZag64(v int64) uint64 {
	return ZigZag(uint64(v))
}

// UnZigZag64 maps a zigzag value back to a signed 64-bit value.
func UnZigZag64(v uint64) int64 {
	return int64(UnZigZag(v))
}
