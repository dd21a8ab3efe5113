package encoding

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/mlt/endian"
	"github.com/arloliu/mlt/errs"
)

// BlockSize is the number of values sharing one bit width in a block packed stream.
const BlockSize = 128

// PackBlocks appends values using fixed-width block bit packing, the physical
// technique tagged as FastPFOR on the wire.
//
// Values are split into full blocks of BlockSize. Each block is one byte
// holding the bit width b of its largest value followed by b little-endian
// 32-bit words (BlockSize*b/32). Values are packed LSB-first and may straddle
// word boundaries; a block of zeros costs one byte. The tail of fewer than
// BlockSize values is written as varints.
func PackBlocks(dst []byte, values []uint32) []byte {
	engine := endian.GetLittleEndianEngine()
	full := len(values) - len(values)%BlockSize
	for start := 0; start < full; start += BlockSize {
		dst = packBlock(dst, engine, values[start:start+BlockSize])
	}

	return AppendUvarints(dst, values[full:])
}

func packBlock(dst []byte, engine endian.EndianEngine, block []uint32) []byte {
	var maxValue uint32
	for _, v := range block {
		maxValue |= v
	}
	width := uint(bits.Len32(maxValue))
	dst = append(dst, byte(width))
	if width == 0 {
		return dst
	}

	var acc uint64
	var pending uint
	for _, v := range block {
		acc |= uint64(v) << pending
		pending += width
		if pending >= 32 {
			dst = engine.AppendUint32(dst, uint32(acc))
			acc >>= 32
			pending -= 32
		}
	}
	if pending > 0 {
		dst = engine.AppendUint32(dst, uint32(acc))
	}

	return dst
}

// UnpackBlocks decodes n values written by PackBlocks.
//
// Returns the values and the number of bytes consumed.
func UnpackBlocks(src []byte, n int) ([]uint32, int, error) {
	if n < 0 || n > len(src)*BlockSize {
		return nil, 0, fmt.Errorf("%w: %d packed values in %d bytes", errs.ErrMalformedStream, n, len(src))
	}

	engine := endian.GetLittleEndianEngine()
	out := make([]uint32, 0, n)
	offset := 0
	full := n - n%BlockSize
	for len(out) < full {
		const count = BlockSize
		if offset >= len(src) {
			return nil, offset, fmt.Errorf("%w: missing block header at byte %d", errs.ErrMalformedStream, offset)
		}
		width := uint(src[offset])
		offset++
		if width > 32 {
			return nil, offset, fmt.Errorf("%w: block bit width %d", errs.ErrMalformedStream, width)
		}
		if width == 0 {
			out = append(out, make([]uint32, count)...)
			continue
		}

		words := count * int(width) / 32
		if offset+words*4 > len(src) {
			return nil, offset, fmt.Errorf("%w: block needs %d words, %d bytes left",
				errs.ErrMalformedStream, words, len(src)-offset)
		}

		mask := uint64(1)<<width - 1
		var acc uint64
		var avail uint
		for i := 0; i < count; i++ {
			if avail < width {
				acc |= uint64(engine.Uint32(src[offset:])) << avail
				offset += 4
				avail += 32
			}
			out = append(out, uint32(acc&mask))
			acc >>= width
			avail -= width
		}
	}

	tail, consumed, err := DecodeUvarints[uint32](src[offset:], n-full)
	if err != nil {
		return nil, offset + consumed, err
	}

	return append(out, tail...), offset + consumed, nil
}
