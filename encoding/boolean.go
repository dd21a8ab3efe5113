package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/mlt/errs"
)

// EncodeBooleanRLE appends bits as (run length, bit) varint pairs, one pair per
// run of equal bits. An empty input produces no bytes.
func EncodeBooleanRLE(dst []byte, bitset []bool) []byte {
	if len(bitset) == 0 {
		return dst
	}

	current := bitset[0]
	var run uint64
	for _, b := range bitset {
		if b != current {
			dst = appendBoolRun(dst, run, current)
			current = b
			run = 0
		}
		run++
	}

	return appendBoolRun(dst, run, current)
}

func appendBoolRun(dst []byte, run uint64, bit bool) []byte {
	dst = binary.AppendUvarint(dst, run)
	if bit {
		return append(dst, 1)
	}

	return append(dst, 0)
}

// DecodeBooleanRLE reads runs from src until n bits are produced.
//
// Returns the bits and the number of bytes consumed.
func DecodeBooleanRLE(src []byte, n int) ([]bool, int, error) {
	out := make([]bool, 0, min(n, maxPrealloc))
	offset := 0
	for len(out) < n {
		run, size := binary.Uvarint(src[offset:])
		if size <= 0 {
			return nil, offset, fmt.Errorf("%w: truncated boolean run at byte %d", errs.ErrMalformedStream, offset)
		}
		offset += size
		bit, size := binary.Uvarint(src[offset:])
		if size <= 0 || bit > 1 {
			return nil, offset, fmt.Errorf("%w: invalid boolean run value at byte %d", errs.ErrMalformedStream, offset)
		}
		offset += size
		if run == 0 || run > uint64(n-len(out)) {
			return nil, offset, fmt.Errorf("%w: boolean run of %d with %d bits left", errs.ErrMalformedStream, run, n-len(out))
		}
		for i := uint64(0); i < run; i++ {
			out = append(out, bit == 1)
		}
	}

	return out, offset, nil
}

// CountTrue returns the number of set bits.
func CountTrue(bitset []bool) int {
	n := 0
	for _, b := range bitset {
		if b {
			n++
		}
	}

	return n
}
