package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/mlt/errs"
)

// AppendUvarints appends every value as an unsigned LEB128 varint.
func AppendUvarints[T Unsigned](dst []byte, values []T) []byte {
	for _, v := range values {
		dst = binary.AppendUvarint(dst, uint64(v))
	}

	return dst
}

// DecodeUvarints reads exactly n varints from src.
//
// Returns the decoded values and the number of bytes consumed. A varint that
// is truncated, overlong or does not fit T is reported as ErrMalformedStream.
func DecodeUvarints[T Unsigned](src []byte, n int) ([]T, int, error) {
	if n < 0 || n > len(src) {
		return nil, 0, fmt.Errorf("%w: %d varints in %d bytes", errs.ErrMalformedStream, n, len(src))
	}
	out := make([]T, n)
	limit := uint64(^T(0))
	offset := 0
	for i := range out {
		v, size := binary.Uvarint(src[offset:])
		if size <= 0 {
			return nil, offset, fmt.Errorf("%w: varint %d of %d at byte %d", errs.ErrMalformedStream, i, n, offset)
		}
		if v > limit {
			return nil, offset, fmt.Errorf("%w: varint %d overflows %d bits", errs.ErrMalformedStream, v, Width[T]())
		}
		out[i] = T(v)
		offset += size
	}

	return out, offset, nil
}

// UvarintSize returns the encoded size of v in bytes.
func UvarintSize(v uint64) int {
	size := 1
	for v >= 0x80 {
		v >>= 7
		size++
	}

	return size
}
