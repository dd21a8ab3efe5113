// Package stream implements the self-describing stream unit of the tile format:
// the variable-length stream header, a bounds-checked read cursor and the
// per-column stream sequence framing.
package stream

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

// MortonParams are the Z-order curve parameters carried by a Morton vertex buffer.
type MortonParams struct {
	NumBits         uint32
	CoordinateShift uint32
}

// Header describes the payload that follows it.
//
// Wire layout:
//
//	[type: 1 byte][logical<<4 | physical: 1 byte][uvarint ValueCount][uvarint ByteLength]
//	[uvarint RunCount]                     only if Logical is RLE or DeltaRLE
//	[uvarint NumBits][uvarint CoordShift]  only if Type is MortonVertexBuffer
//
// ValueCount is the logical number of values, after any run expansion.
type Header struct {
	Type       format.StreamType
	Logical    format.LogicalTechnique
	Physical   format.PhysicalTechnique
	ValueCount uint32
	ByteLength uint32

	// RunCount is meaningful only when HasRunCount is set.
	RunCount    uint32
	HasRunCount bool

	// Morton is non-nil exactly for MortonVertexBuffer streams.
	Morton *MortonParams
}

// NewHeader creates a header without optional fields.
func NewHeader(typ format.StreamType, logical format.LogicalTechnique, physical format.PhysicalTechnique,
	valueCount, byteLength int,
) Header {
	return Header{
		Type:       typ,
		Logical:    logical,
		Physical:   physical,
		ValueCount: uint32(valueCount),
		ByteLength: uint32(byteLength),
	}
}

// WithRunCount returns a copy of h carrying runCount.
func (h Header) WithRunCount(runCount int) Header {
	h.RunCount = uint32(runCount)
	h.HasRunCount = true

	return h
}

// WithMorton returns a copy of h carrying Morton curve parameters.
func (h Header) WithMorton(params MortonParams) Header {
	h.Morton = &params
	return h
}

// Validate checks that the optional fields match the role and logical technique.
func (h Header) Validate() error {
	if !h.Type.Valid() {
		return fmt.Errorf("%w: stream type %d", errs.ErrInvalidHeader, h.Type)
	}
	if !h.Logical.Valid() || !h.Physical.Valid() {
		return fmt.Errorf("%w: technique %d/%d", errs.ErrInvalidHeader, h.Logical, h.Physical)
	}
	if h.Logical.HasRuns() != h.HasRunCount {
		return fmt.Errorf("%w: %s stream with run count present=%t", errs.ErrInvariantViolation, h.Logical, h.HasRunCount)
	}
	if (h.Type == format.StreamMortonVertexBuffer) != (h.Morton != nil) {
		return fmt.Errorf("%w: %s stream with morton parameters present=%t", errs.ErrInvariantViolation, h.Type, h.Morton != nil)
	}

	return nil
}

// AppendTo appends the encoded header to dst.
func (h Header) AppendTo(dst []byte) ([]byte, error) {
	if err := h.Validate(); err != nil {
		return dst, err
	}

	dst = append(dst, byte(h.Type), byte(h.Logical)<<4|byte(h.Physical))
	dst = binary.AppendUvarint(dst, uint64(h.ValueCount))
	dst = binary.AppendUvarint(dst, uint64(h.ByteLength))
	if h.HasRunCount {
		dst = binary.AppendUvarint(dst, uint64(h.RunCount))
	}
	if h.Morton != nil {
		dst = binary.AppendUvarint(dst, uint64(h.Morton.NumBits))
		dst = binary.AppendUvarint(dst, uint64(h.Morton.CoordinateShift))
	}

	return dst, nil
}

// Bytes returns the encoded header.
func (h Header) Bytes() ([]byte, error) {
	return h.AppendTo(make([]byte, 0, 16))
}

func (h Header) String() string {
	s := fmt.Sprintf("%s[%s/%s values=%d bytes=%d", h.Type, h.Logical, h.Physical, h.ValueCount, h.ByteLength)
	if h.HasRunCount {
		s += fmt.Sprintf(" runs=%d", h.RunCount)
	}
	if h.Morton != nil {
		s += fmt.Sprintf(" bits=%d shift=%d", h.Morton.NumBits, h.Morton.CoordinateShift)
	}

	return s + "]"
}

// ParseHeader decodes a header from the start of data.
//
// Returns the header and the number of bytes it occupied.
func ParseHeader(data []byte) (Header, int, error) {
	r := NewReader(data)
	h, err := r.ReadHeader()
	if err != nil {
		return Header{}, 0, err
	}

	return h, r.Offset(), nil
}
