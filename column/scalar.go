package column

import (
	"fmt"
	"math"

	"github.com/arloliu/mlt/encoding"
	"github.com/arloliu/mlt/endian"
	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/stream"
)

var engine = endian.GetLittleEndianEngine()

// EncodeBooleans encodes a boolean column as PRESENT and DATA boolean RLE streams.
func EncodeBooleans(col Nullable[bool]) ([]stream.Stream, error) {
	if err := col.validate(); err != nil {
		return nil, err
	}

	return []stream.Stream{
		stream.EncodeBooleans(format.StreamPresent, col.Present),
		stream.EncodeBooleans(format.StreamData, col.Compact()),
	}, nil
}

// DecodeBooleans reverses EncodeBooleans.
func DecodeBooleans(streams []stream.Stream) (Nullable[bool], error) {
	if err := expectRoles(streams, format.StreamPresent, format.StreamData); err != nil {
		return Nullable[bool]{}, err
	}
	present, err := stream.DecodeBooleans(streams[0])
	if err != nil {
		return Nullable[bool]{}, err
	}
	values, err := stream.DecodeBooleans(streams[1])
	if err != nil {
		return Nullable[bool]{}, err
	}

	return expand(present, values)
}

type integer interface {
	~int32 | ~int64 | ~uint32 | ~uint64
}

// encodeIntegerColumn converts V values to their U bit patterns before
// running the integer codec. Callers pair V with the unsigned type of the
// same width.
func encodeIntegerColumn[V integer, U encoding.Unsigned](col Nullable[V], signed bool,
	physical format.PhysicalTechnique,
) ([]stream.Stream, error) {
	if err := col.validate(); err != nil {
		return nil, err
	}

	compact := col.Compact()
	words := make([]U, len(compact))
	for i, v := range compact {
		words[i] = U(v)
	}

	data, err := stream.EncodeIntegers(format.StreamData, words, signed, physical)
	if err != nil {
		return nil, err
	}

	return []stream.Stream{stream.EncodeBooleans(format.StreamPresent, col.Present), data}, nil
}

func decodeIntegerColumn[V integer, U encoding.Unsigned](streams []stream.Stream, signed bool) (Nullable[V], error) {
	if err := expectRoles(streams, format.StreamPresent, format.StreamData); err != nil {
		return Nullable[V]{}, err
	}
	present, err := stream.DecodeBooleans(streams[0])
	if err != nil {
		return Nullable[V]{}, err
	}
	words, err := stream.DecodeIntegers[U](streams[1], signed)
	if err != nil {
		return Nullable[V]{}, err
	}

	values := make([]V, len(words))
	for i, w := range words {
		values[i] = V(w)
	}

	return expand(present, values)
}

// EncodeInt32s encodes a signed 32-bit column.
//
// Parameters:
//   - col: one slot per row; absent rows are skipped in the DATA stream
//   - physical: PhysicalFastPFOR or PhysicalVarint
//
// Returns:
//   - []stream.Stream: PRESENT and DATA
//   - error: ErrUnsupportedType for an unusable physical technique
func EncodeInt32s(col Nullable[int32], physical format.PhysicalTechnique) ([]stream.Stream, error) {
	return encodeIntegerColumn[int32, uint32](col, true, physical)
}

// DecodeInt32s reverses EncodeInt32s.
func DecodeInt32s(streams []stream.Stream) (Nullable[int32], error) {
	return decodeIntegerColumn[int32, uint32](streams, true)
}

// EncodeUint32s encodes an unsigned 32-bit column.
func EncodeUint32s(col Nullable[uint32], physical format.PhysicalTechnique) ([]stream.Stream, error) {
	return encodeIntegerColumn[uint32, uint32](col, false, physical)
}

// DecodeUint32s reverses EncodeUint32s.
func DecodeUint32s(streams []stream.Stream) (Nullable[uint32], error) {
	return decodeIntegerColumn[uint32, uint32](streams, false)
}

// EncodeInt64s encodes a signed 64-bit column. 64-bit values are always varint coded.
func EncodeInt64s(col Nullable[int64], physical format.PhysicalTechnique) ([]stream.Stream, error) {
	return encodeIntegerColumn[int64, uint64](col, true, physical)
}

// DecodeInt64s reverses EncodeInt64s.
func DecodeInt64s(streams []stream.Stream) (Nullable[int64], error) {
	return decodeIntegerColumn[int64, uint64](streams, true)
}

// EncodeUint64s encodes an unsigned 64-bit column. 64-bit values are always varint coded.
func EncodeUint64s(col Nullable[uint64], physical format.PhysicalTechnique) ([]stream.Stream, error) {
	return encodeIntegerColumn[uint64, uint64](col, false, physical)
}

// DecodeUint64s reverses EncodeUint64s.
func DecodeUint64s(streams []stream.Stream) (Nullable[uint64], error) {
	return decodeIntegerColumn[uint64, uint64](streams, false)
}

// EncodeFloats encodes a float column; DATA holds little-endian float32 values.
func EncodeFloats(col Nullable[float32]) ([]stream.Stream, error) {
	if err := col.validate(); err != nil {
		return nil, err
	}

	compact := col.Compact()
	data := make([]byte, 0, 4*len(compact))
	for _, v := range compact {
		data = engine.AppendUint32(data, math.Float32bits(v))
	}

	return []stream.Stream{
		stream.EncodeBooleans(format.StreamPresent, col.Present),
		stream.New(format.StreamData, format.LogicalNone, format.PhysicalNone, len(compact), data),
	}, nil
}

// DecodeFloats reverses EncodeFloats.
func DecodeFloats(streams []stream.Stream) (Nullable[float32], error) {
	present, data, err := decodeFixedWidth(streams, 4)
	if err != nil {
		return Nullable[float32]{}, err
	}

	values := make([]float32, len(data)/4)
	for i := range values {
		values[i] = math.Float32frombits(engine.Uint32(data[4*i:]))
	}

	return expand(present, values)
}

// EncodeDoubles encodes a double column; DATA holds little-endian float64 values.
func EncodeDoubles(col Nullable[float64]) ([]stream.Stream, error) {
	if err := col.validate(); err != nil {
		return nil, err
	}

	compact := col.Compact()
	data := make([]byte, 0, 8*len(compact))
	for _, v := range compact {
		data = engine.AppendUint64(data, math.Float64bits(v))
	}

	return []stream.Stream{
		stream.EncodeBooleans(format.StreamPresent, col.Present),
		stream.New(format.StreamData, format.LogicalNone, format.PhysicalNone, len(compact), data),
	}, nil
}

// DecodeDoubles reverses EncodeDoubles.
func DecodeDoubles(streams []stream.Stream) (Nullable[float64], error) {
	present, data, err := decodeFixedWidth(streams, 8)
	if err != nil {
		return Nullable[float64]{}, err
	}

	values := make([]float64, len(data)/8)
	for i := range values {
		values[i] = math.Float64frombits(engine.Uint64(data[8*i:]))
	}

	return expand(present, values)
}

func decodeFixedWidth(streams []stream.Stream, width int) ([]bool, []byte, error) {
	if err := expectRoles(streams, format.StreamPresent, format.StreamData); err != nil {
		return nil, nil, err
	}
	present, err := stream.DecodeBooleans(streams[0])
	if err != nil {
		return nil, nil, err
	}

	h := streams[1].Header
	if h.Logical != format.LogicalNone || h.Physical != format.PhysicalNone {
		return nil, nil, fmt.Errorf("%w: floating point DATA stream with %s/%s", errs.ErrMalformedStream, h.Logical, h.Physical)
	}
	if uint64(h.ValueCount)*uint64(width) != uint64(len(streams[1].Data)) {
		return nil, nil, fmt.Errorf("%w: %d values of %d bytes in %d bytes",
			errs.ErrMalformedStream, h.ValueCount, width, len(streams[1].Data))
	}

	return present, streams[1].Data, nil
}

// expectRoles checks that streams has exactly the given roles in order.
func expectRoles(streams []stream.Stream, roles ...format.StreamType) error {
	if len(streams) != len(roles) {
		return fmt.Errorf("%w: column has %d streams, want %d", errs.ErrMalformedStream, len(streams), len(roles))
	}
	for i, role := range roles {
		if err := stream.Expect(streams[i], role); err != nil {
			return err
		}
	}

	return nil
}
