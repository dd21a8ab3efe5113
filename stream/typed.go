package stream

import (
	"fmt"

	"github.com/arloliu/mlt/encoding"
	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

// EncodeIntegers runs the adaptive integer codec over values and wraps the
// winning encoding in a stream of role typ.
//
// Parameters:
//   - typ: the stream role to record in the header
//   - values: two's complement bit patterns
//   - signed: whether values are zigzag mapped before packing
//   - physical: requested physical technique
//
// Returns:
//   - Stream: header plus payload of the cheapest candidate
//   - error: ErrUnsupportedType for an unusable physical technique
func EncodeIntegers[T encoding.Unsigned](typ format.StreamType, values []T, signed bool,
	physical format.PhysicalTechnique,
) (Stream, error) {
	enc, err := encoding.EncodeIntegers(values, signed, physical)
	if err != nil {
		return Stream{}, fmt.Errorf("%s stream: %w", typ, err)
	}

	return FromIntegers(typ, enc), nil
}

// DecodeIntegers reverses EncodeIntegers using the techniques recorded in s.
func DecodeIntegers[T encoding.Unsigned](s Stream, signed bool) ([]T, error) {
	h := s.Header
	if h.Logical == format.LogicalBooleanRLE || h.Physical == format.PhysicalNone {
		return nil, fmt.Errorf("%w: %s stream with %s/%s is not an integer stream",
			errs.ErrMalformedStream, h.Type, h.Logical, h.Physical)
	}
	if h.Logical.HasRuns() && !h.HasRunCount {
		return nil, fmt.Errorf("%w: %s stream selects %s without a run count", errs.ErrInvariantViolation, h.Type, h.Logical)
	}

	values, err := encoding.DecodeIntegers[T](s.Data, h.Logical, h.Physical, int(h.ValueCount), int(h.RunCount), signed)
	if err != nil {
		return nil, fmt.Errorf("%s stream: %w", h.Type, err)
	}

	return values, nil
}

// EncodeBooleans run-length encodes bits into a stream of role typ.
func EncodeBooleans(typ format.StreamType, bits []bool) Stream {
	return New(typ, format.LogicalBooleanRLE, format.PhysicalVarint, len(bits), encoding.EncodeBooleanRLE(nil, bits))
}

// DecodeBooleans reverses EncodeBooleans.
func DecodeBooleans(s Stream) ([]bool, error) {
	h := s.Header
	if h.Logical != format.LogicalBooleanRLE || h.Physical != format.PhysicalVarint {
		return nil, fmt.Errorf("%w: %s stream with %s/%s is not a boolean stream",
			errs.ErrMalformedStream, h.Type, h.Logical, h.Physical)
	}

	bits, consumed, err := encoding.DecodeBooleanRLE(s.Data, int(h.ValueCount))
	if err != nil {
		return nil, fmt.Errorf("%s stream: %w", h.Type, err)
	}
	if consumed != len(s.Data) {
		return nil, fmt.Errorf("%w: %s stream has %d trailing bytes", errs.ErrMalformedStream, h.Type, len(s.Data)-consumed)
	}

	return bits, nil
}

// Expect returns ErrMalformedStream unless s has role typ.
func Expect(s Stream, typ format.StreamType) error {
	if s.Header.Type != typ {
		return fmt.Errorf("%w: expected %s stream, found %s", errs.ErrMalformedStream, typ, s.Header.Type)
	}

	return nil
}
