package stream

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

// Reader is a forward-only cursor over an encoded buffer. Every read is bounds
// checked and reports ErrBufferTooShort instead of panicking.
type Reader struct {
	data   []byte
	offset int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

func (r *Reader) ReadByte() (byte, error) {
	if r.offset >= len(r.data) {
		return 0, fmt.Errorf("%w: reading byte at %d", errs.ErrBufferTooShort, r.offset)
	}
	b := r.data[r.offset]
	r.offset++

	return b, nil
}

func (r *Reader) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.offset:])
	if n == 0 {
		return 0, fmt.Errorf("%w: reading varint at %d", errs.ErrBufferTooShort, r.offset)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: varint overflow at %d", errs.ErrMalformedStream, r.offset)
	}
	r.offset += n

	return v, nil
}

// ReadUvarint32 reads a varint that must fit in 32 bits.
func (r *Reader) ReadUvarint32() (uint32, error) {
	v, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: varint %d exceeds 32 bits", errs.ErrMalformedStream, v)
	}

	return uint32(v), nil
}

// Next returns the next n bytes without copying.
func (r *Reader) Next(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at %d, have %d", errs.ErrBufferTooShort, n, r.offset, r.Remaining())
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n

	return b, nil
}

// ReadHeader decodes one stream header.
func (r *Reader) ReadHeader() (Header, error) {
	typ, err := r.ReadByte()
	if err != nil {
		return Header{}, err
	}
	techniques, err := r.ReadByte()
	if err != nil {
		return Header{}, err
	}

	h := Header{
		Type:     format.StreamType(typ),
		Logical:  format.LogicalTechnique(techniques >> 4),
		Physical: format.PhysicalTechnique(techniques & 0x0F),
	}
	if !h.Type.Valid() {
		return Header{}, fmt.Errorf("%w: stream type %d", errs.ErrInvalidHeader, typ)
	}
	if !h.Logical.Valid() || !h.Physical.Valid() {
		return Header{}, fmt.Errorf("%w: technique byte 0x%02x", errs.ErrInvalidHeader, techniques)
	}

	if h.ValueCount, err = r.ReadUvarint32(); err != nil {
		return Header{}, err
	}
	if h.ByteLength, err = r.ReadUvarint32(); err != nil {
		return Header{}, err
	}
	if h.Logical.HasRuns() {
		if h.RunCount, err = r.ReadUvarint32(); err != nil {
			return Header{}, err
		}
		h.HasRunCount = true
	}
	if h.Type == format.StreamMortonVertexBuffer {
		var params MortonParams
		if params.NumBits, err = r.ReadUvarint32(); err != nil {
			return Header{}, err
		}
		if params.CoordinateShift, err = r.ReadUvarint32(); err != nil {
			return Header{}, err
		}
		h.Morton = &params
	}

	return h, nil
}

// ReadStream reads a header and the ByteLength payload bytes that follow it.
func (r *Reader) ReadStream() (Stream, error) {
	h, err := r.ReadHeader()
	if err != nil {
		return Stream{}, err
	}
	data, err := r.Next(int(h.ByteLength))
	if err != nil {
		return Stream{}, fmt.Errorf("%s payload: %w", h.Type, err)
	}

	return Stream{Header: h, Data: data}, nil
}

// ReadColumn reads a column's leading stream count and that many streams.
func (r *Reader) ReadColumn() ([]Stream, error) {
	count, err := r.ReadUvarint32()
	if err != nil {
		return nil, err
	}
	if int(count) > r.Remaining() {
		return nil, fmt.Errorf("%w: %d streams in %d bytes", errs.ErrMalformedStream, count, r.Remaining())
	}

	streams := make([]Stream, 0, count)
	for i := uint32(0); i < count; i++ {
		s, err := r.ReadStream()
		if err != nil {
			return nil, fmt.Errorf("stream %d of %d: %w", i, count, err)
		}
		streams = append(streams, s)
	}

	return streams, nil
}
