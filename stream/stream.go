package stream

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/mlt/encoding"
	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

// Stream is a header together with its payload.
type Stream struct {
	Header Header
	Data   []byte
}

// New creates a stream whose header byte length matches data.
func New(typ format.StreamType, logical format.LogicalTechnique, physical format.PhysicalTechnique,
	valueCount int, data []byte,
) Stream {
	return Stream{Header: NewHeader(typ, logical, physical, valueCount, len(data)), Data: data}
}

// FromIntegers wraps an integer encoding, recording its run count when it has one.
func FromIntegers(typ format.StreamType, enc encoding.IntegerEncoding) Stream {
	h := NewHeader(typ, enc.Logical, enc.Physical, enc.ValueCount, len(enc.Data))
	if enc.Logical.HasRuns() {
		h = h.WithRunCount(enc.RunCount)
	}

	return Stream{Header: h, Data: enc.Data}
}

// Integers returns the integer encoding a stream carries, for DecodeIntegers.
func (s Stream) Integers() encoding.IntegerEncoding {
	return encoding.IntegerEncoding{
		Logical:    s.Header.Logical,
		Physical:   s.Header.Physical,
		Data:       s.Data,
		ValueCount: int(s.Header.ValueCount),
		RunCount:   int(s.Header.RunCount),
	}
}

// AppendTo appends the header and payload to dst.
func (s Stream) AppendTo(dst []byte) ([]byte, error) {
	if int(s.Header.ByteLength) != len(s.Data) {
		return dst, fmt.Errorf("%w: %s header declares %d bytes, payload has %d",
			errs.ErrInvariantViolation, s.Header.Type, s.Header.ByteLength, len(s.Data))
	}

	dst, err := s.Header.AppendTo(dst)
	if err != nil {
		return dst, err
	}

	return append(dst, s.Data...), nil
}

// Size returns the encoded size of the stream including its header.
func (s Stream) Size() int {
	size := 2 + encoding.UvarintSize(uint64(s.Header.ValueCount)) + encoding.UvarintSize(uint64(s.Header.ByteLength))
	if s.Header.HasRunCount {
		size += encoding.UvarintSize(uint64(s.Header.RunCount))
	}
	if m := s.Header.Morton; m != nil {
		size += encoding.UvarintSize(uint64(m.NumBits)) + encoding.UvarintSize(uint64(m.CoordinateShift))
	}

	return size + len(s.Data)
}

// AppendColumn appends the stream count followed by every stream.
func AppendColumn(dst []byte, streams []Stream) ([]byte, error) {
	dst = binary.AppendUvarint(dst, uint64(len(streams)))
	for _, s := range streams {
		var err error
		if dst, err = s.AppendTo(dst); err != nil {
			return dst, err
		}
	}

	return dst, nil
}

// ColumnSize returns the encoded size of a stream sequence including its count.
func ColumnSize(streams []Stream) int {
	size := encoding.UvarintSize(uint64(len(streams)))
	for _, s := range streams {
		size += s.Size()
	}

	return size
}

// PayloadSize returns the total payload bytes of streams, excluding headers.
func PayloadSize(streams ...Stream) int {
	size := 0
	for _, s := range streams {
		size += len(s.Data)
	}

	return size
}
