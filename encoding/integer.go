package encoding

import (
	"fmt"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

// minAverageRunLength is the average run length below which run-length
// candidates are not tried.
const minAverageRunLength = 2

// IntegerEncoding is the cheapest encoding found for an integer sequence.
type IntegerEncoding struct {
	Logical  format.LogicalTechnique
	Physical format.PhysicalTechnique
	// Data is the packed payload.
	Data []byte
	// ValueCount is the number of logical values, after run expansion.
	ValueCount int
	// RunCount is the number of runs; set only when Logical.HasRuns().
	RunCount int
}

// EncodeIntegers picks the smallest of the plain, delta, run-length and
// delta-run-length encodings of values.
//
// Values are two's complement bit patterns; signed selects whether plain and
// run values are zigzag mapped. Deltas are always zigzag mapped. The
// run-length candidates are only built when the average run length is at
// least two. On equal sizes plain beats delta, a run-length candidate beats
// both, and run-length beats delta-run-length. A constant sequence of two or
// more values is always run-length encoded as one run, even when FastPFOR
// packs a block of zeros into fewer bytes than the run pair; that is the
// only case where the result can be larger than plain.
//
// Parameters:
//   - values: the sequence to encode
//   - signed: whether values are signed integers
//   - physical: PhysicalFastPFOR or PhysicalVarint; 64-bit values always use varint
//
// Returns:
//   - IntegerEncoding: the winning technique pair and its payload
//   - error: ErrUnsupportedType for an unusable physical technique
func EncodeIntegers[T Unsigned](values []T, signed bool, physical format.PhysicalTechnique) (IntegerEncoding, error) {
	physical, err := resolvePhysical[T](physical)
	if err != nil {
		return IntegerEncoding{}, err
	}

	plain := make([]T, len(values))
	copy(plain, values)
	if signed {
		ZigZagAll(plain)
	}

	rawDeltas := Delta(values)
	deltas := make([]T, len(rawDeltas))
	copy(deltas, rawDeltas)
	ZigZagAll(deltas)

	best := IntegerEncoding{
		Logical:    format.LogicalNone,
		Physical:   physical,
		Data:       packPhysical(nil, plain, physical),
		ValueCount: len(values),
	}

	deltaData := packPhysical(nil, deltas, physical)
	if len(deltaData) < len(best.Data) {
		best.Logical = format.LogicalDelta
		best.Data = deltaData
	}

	if runs := CountRuns(values); runs > 0 && len(values)/runs >= minAverageRunLength {
		lengths, runValues := RunLengths(values)
		if signed {
			ZigZagAll(runValues)
		}
		data := packPhysical(nil, append(lengths, runValues...), physical)
		// a constant sequence is always a single run, even where a block of
		// zeros packs smaller than the run pair
		if len(data) <= len(best.Data) || runs == 1 {
			best.Logical = format.LogicalRLE
			best.Data = data
			best.RunCount = runs
		}
	}

	if runs := CountRuns(rawDeltas); runs > 0 && len(values)/runs >= minAverageRunLength {
		lengths, runValues := RunLengths(deltas)
		data := packPhysical(nil, append(lengths, runValues...), physical)
		if len(data) < len(best.Data) || (len(data) == len(best.Data) && !best.Logical.HasRuns()) {
			best.Logical = format.LogicalDeltaRLE
			best.Data = data
			best.RunCount = runs
		}
	}

	return best, nil
}

// DecodeIntegers reverses EncodeIntegers.
//
// Parameters:
//   - data: the packed payload
//   - logical, physical: the techniques recorded in the stream header
//   - valueCount: the logical value count recorded in the stream header
//   - runCount: the run count recorded in the header; ignored unless logical has runs
//   - signed: whether the column holds signed integers
//
// Returns:
//   - []T: exactly valueCount values
//   - error: ErrMalformedStream if the payload does not match the header
func DecodeIntegers[T Unsigned](
	data []byte,
	logical format.LogicalTechnique,
	physical format.PhysicalTechnique,
	valueCount, runCount int,
	signed bool,
) ([]T, error) {
	physicalCount := valueCount
	if logical.HasRuns() {
		physicalCount = 2 * runCount
	}

	raw, consumed, err := unpackPhysical[T](data, physicalCount, physical)
	if err != nil {
		return nil, err
	}
	if consumed != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d values", errs.ErrMalformedStream, len(data)-consumed, physicalCount)
	}

	switch logical {
	case format.LogicalNone:
		if signed {
			UnZigZagAll(raw)
		}

		return raw, nil
	case format.LogicalDelta:
		return PrefixSum(UnZigZagAll(raw)), nil
	case format.LogicalRLE:
		out, err := ExpandRuns(raw[:runCount], raw[runCount:], valueCount)
		if err != nil {
			return nil, err
		}
		if signed {
			UnZigZagAll(out)
		}

		return out, nil
	case format.LogicalDeltaRLE:
		out, err := ExpandRuns(raw[:runCount], raw[runCount:], valueCount)
		if err != nil {
			return nil, err
		}

		return PrefixSum(UnZigZagAll(out)), nil
	default:
		return nil, fmt.Errorf("%w: logical technique %s for integers", errs.ErrMalformedStream, logical)
	}
}

// EncodeMortonCodes encodes a sorted set of Morton codes as plain (not zigzag)
// deltas and keeps whichever of block packing and varint is smaller.
func EncodeMortonCodes(codes []uint32) IntegerEncoding {
	deltas := Delta(codes)
	packed := PackBlocks(nil, deltas)
	varints := AppendUvarints(nil, deltas)

	enc := IntegerEncoding{
		Logical:    format.LogicalDelta,
		Physical:   format.PhysicalFastPFOR,
		Data:       packed,
		ValueCount: len(codes),
	}
	if len(varints) < len(packed) {
		enc.Physical = format.PhysicalVarint
		enc.Data = varints
	}

	return enc
}

// DecodeMortonCodes reverses EncodeMortonCodes.
func DecodeMortonCodes(data []byte, physical format.PhysicalTechnique, valueCount int) ([]uint32, error) {
	raw, consumed, err := unpackPhysical[uint32](data, valueCount, physical)
	if err != nil {
		return nil, err
	}
	if consumed != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after morton codes", errs.ErrMalformedStream, len(data)-consumed)
	}

	return PrefixSum(raw), nil
}

func resolvePhysical[T Unsigned](physical format.PhysicalTechnique) (format.PhysicalTechnique, error) {
	switch physical {
	case format.PhysicalFastPFOR:
		if Width[T]() > 32 {
			return format.PhysicalVarint, nil
		}

		return physical, nil
	case format.PhysicalVarint:
		return physical, nil
	default:
		return 0, fmt.Errorf("%w: physical technique %s for integers", errs.ErrUnsupportedType, physical)
	}
}

func packPhysical[T Unsigned](dst []byte, values []T, physical format.PhysicalTechnique) []byte {
	if physical == format.PhysicalFastPFOR {
		words := make([]uint32, len(values))
		for i, v := range values {
			words[i] = uint32(v)
		}

		return PackBlocks(dst, words)
	}

	return AppendUvarints(dst, values)
}

func unpackPhysical[T Unsigned](src []byte, n int, physical format.PhysicalTechnique) ([]T, int, error) {
	switch physical {
	case format.PhysicalFastPFOR:
		if Width[T]() > 32 {
			return nil, 0, fmt.Errorf("%w: block packing of %d-bit values", errs.ErrMalformedStream, Width[T]())
		}
		words, consumed, err := UnpackBlocks(src, n)
		if err != nil {
			return nil, consumed, err
		}
		out := make([]T, n)
		for i, w := range words {
			out[i] = T(w)
		}

		return out, consumed, nil
	case format.PhysicalVarint:
		return DecodeUvarints[T](src, n)
	default:
		return nil, 0, fmt.Errorf("%w: physical technique %s for integers", errs.ErrMalformedStream, physical)
	}
}
