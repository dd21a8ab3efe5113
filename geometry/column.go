package geometry

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/paulmach/orb"

	"github.com/arloliu/mlt/encoding"
	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/stream"
)

// Encoding names the vertex layout chosen for a geometry column.
type Encoding uint8

const (
	EncodingPlain   Encoding = iota // EncodingPlain writes every vertex in order.
	EncodingHilbert                 // EncodingHilbert writes a Hilbert ordered vertex dictionary.
	EncodingMorton                  // EncodingMorton writes a Morton ordered dictionary of codes.
)

func (e Encoding) String() string {
	switch e {
	case EncodingPlain:
		return "plain"
	case EncodingHilbert:
		return "hilbert"
	case EncodingMorton:
		return "morton"
	default:
		return "unknown"
	}
}

// Encode flattens geoms and encodes the geometry column.
//
// All three vertex layouts are built and the one with the smallest payload
// wins: plain when it is no larger than both dictionaries, Hilbert when it is
// smaller than plain and no larger than Morton, Morton otherwise. Morton is
// skipped when the coordinate range needs more than 16 bits per axis.
//
// Parameters:
//   - geoms: one geometry per feature
//   - physical: physical technique for every integer stream of the column
//
// Returns:
//   - []stream.Stream: GEOMETRY_TYPES, the non-empty count streams, the vertex streams
//   - Encoding: the chosen vertex layout
//   - error: ErrUnsupportedType for an unsupported geometry or physical technique
func Encode(geoms []orb.Geometry, physical format.PhysicalTechnique) ([]stream.Stream, Encoding, error) {
	flat, err := Flatten(geoms)
	if err != nil {
		return nil, 0, err
	}

	return EncodeFlat(flat, physical)
}

// EncodeFlat encodes an already flattened geometry column. See Encode.
func EncodeFlat(flat Flat, physical format.PhysicalTechnique) ([]stream.Stream, Encoding, error) {
	streams := make([]stream.Stream, 0, 6)

	types, err := stream.EncodeIntegers(format.StreamGeometryTypes, flat.Types, false, physical)
	if err != nil {
		return nil, 0, err
	}
	streams = append(streams, types)

	counts := []struct {
		role   format.StreamType
		values []uint32
	}{
		{format.StreamNumGeometries, flat.NumGeometries},
		{format.StreamNumParts, flat.NumParts},
		{format.StreamNumRings, flat.NumRings},
	}
	for _, c := range counts {
		if len(c.values) == 0 {
			continue
		}
		s, err := stream.EncodeIntegers(c.role, c.values, false, physical)
		if err != nil {
			return nil, 0, err
		}
		streams = append(streams, s)
	}

	vertexStreams, enc, err := encodeVertices(flat.Vertices, physical)
	if err != nil {
		return nil, 0, err
	}

	return append(streams, vertexStreams...), enc, nil
}

func encodeVertices(vertices []Vertex, physical format.PhysicalTechnique) ([]stream.Stream, Encoding, error) {
	plain, err := stream.EncodeIntegers(format.StreamVertexBuffer, zigZagDeltas(vertices), false, physical)
	if err != nil {
		return nil, 0, err
	}
	best := []stream.Stream{plain}
	if len(vertices) == 0 {
		return best, EncodingPlain, nil
	}

	curve := CurveFor(vertices)

	hilbert, err := encodeHilbert(vertices, curve, physical)
	if err != nil {
		return nil, 0, err
	}
	plainSize := stream.PayloadSize(best...)
	hilbertSize := stream.PayloadSize(hilbert...)

	var morton []stream.Stream
	if curve.HasMorton() {
		if morton, err = encodeMorton(vertices, curve, physical); err != nil {
			return nil, 0, err
		}
	}
	mortonSize := stream.PayloadSize(morton...)

	switch {
	case morton == nil:
		if hilbertSize < plainSize {
			return hilbert, EncodingHilbert, nil
		}

		return best, EncodingPlain, nil
	case plainSize <= hilbertSize && plainSize <= mortonSize:
		return best, EncodingPlain, nil
	case hilbertSize < plainSize && hilbertSize <= mortonSize:
		return hilbert, EncodingHilbert, nil
	default:
		return morton, EncodingMorton, nil
	}
}

// encodeHilbert builds the distinct vertices sorted by Hilbert distance,
// ties broken on coordinates, and the per vertex offsets into them.
func encodeHilbert(vertices []Vertex, curve Curve, physical format.PhysicalTechnique) ([]stream.Stream, error) {
	type keyed struct {
		key uint64
		v   Vertex
	}

	seen := make(map[Vertex]struct{}, len(vertices))
	entries := make([]keyed, 0, len(vertices))
	for _, v := range vertices {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		entries = append(entries, keyed{key: curve.Hilbert(v), v: v})
	}
	slices.SortFunc(entries, func(a, b keyed) int {
		return cmp.Or(cmp.Compare(a.key, b.key), cmp.Compare(a.v.X, b.v.X), cmp.Compare(a.v.Y, b.v.Y))
	})

	index := make(map[Vertex]uint32, len(entries))
	dictionary := make([]Vertex, len(entries))
	for i, e := range entries {
		index[e.v] = uint32(i)
		dictionary[i] = e.v
	}
	offsets := make([]uint32, len(vertices))
	for i, v := range vertices {
		offsets[i] = index[v]
	}

	offsetStream, err := stream.EncodeIntegers(format.StreamVertexOffsets, offsets, false, physical)
	if err != nil {
		return nil, err
	}
	valueStream, err := stream.EncodeIntegers(format.StreamVertexBuffer, zigZagDeltas(dictionary), false, physical)
	if err != nil {
		return nil, err
	}

	return []stream.Stream{offsetStream, valueStream}, nil
}

// encodeMorton builds the sorted distinct Morton codes and the per vertex
// offsets into them.
func encodeMorton(vertices []Vertex, curve Curve, physical format.PhysicalTechnique) ([]stream.Stream, error) {
	codes := make([]uint32, len(vertices))
	for i, v := range vertices {
		codes[i] = curve.Morton(v)
	}

	sorted := slices.Clone(codes)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	index := make(map[uint32]uint32, len(sorted))
	for i, code := range sorted {
		index[code] = uint32(i)
	}
	offsets := make([]uint32, len(codes))
	for i, code := range codes {
		offsets[i] = index[code]
	}

	offsetStream, err := stream.EncodeIntegers(format.StreamVertexOffsets, offsets, false, physical)
	if err != nil {
		return nil, err
	}

	enc := encoding.EncodeMortonCodes(sorted)
	h := stream.NewHeader(format.StreamMortonVertexBuffer, enc.Logical, enc.Physical, enc.ValueCount, len(enc.Data)).
		WithMorton(stream.MortonParams{NumBits: curve.NumBits, CoordinateShift: curve.CoordinateShift})

	return []stream.Stream{offsetStream, {Header: h, Data: enc.Data}}, nil
}

// Decode reverses Encode.
//
// Returns ErrMalformedStream when the streams do not form a geometry column
// and ErrInvariantViolation when a vertex offset points past its dictionary.
func Decode(streams []stream.Stream) ([]orb.Geometry, error) {
	flat, err := DecodeFlat(streams)
	if err != nil {
		return nil, err
	}

	return Unflatten(flat)
}

// DecodeFlat decodes the streams of a geometry column to its flattened form.
func DecodeFlat(streams []stream.Stream) (Flat, error) {
	var (
		flat          Flat
		offsets       *stream.Stream
		vertexBuffer  *stream.Stream
		mortonBuffer  *stream.Stream
		seen          = make(map[format.StreamType]bool, len(streams))
		hasTypeStream bool
	)

	for i := range streams {
		s := &streams[i]
		role := s.Header.Type
		if seen[role] {
			return Flat{}, fmt.Errorf("%w: duplicate %s stream in geometry column", errs.ErrMalformedStream, role)
		}
		seen[role] = true

		var err error
		switch role {
		case format.StreamGeometryTypes:
			flat.Types, err = stream.DecodeIntegers[uint32](*s, false)
			hasTypeStream = true
		case format.StreamNumGeometries:
			flat.NumGeometries, err = stream.DecodeIntegers[uint32](*s, false)
		case format.StreamNumParts:
			flat.NumParts, err = stream.DecodeIntegers[uint32](*s, false)
		case format.StreamNumRings:
			flat.NumRings, err = stream.DecodeIntegers[uint32](*s, false)
		case format.StreamVertexOffsets:
			offsets = s
		case format.StreamVertexBuffer:
			vertexBuffer = s
		case format.StreamMortonVertexBuffer:
			mortonBuffer = s
		default:
			err = fmt.Errorf("%w: %s stream in geometry column", errs.ErrMalformedStream, role)
		}
		if err != nil {
			return Flat{}, err
		}
	}
	if !hasTypeStream {
		return Flat{}, fmt.Errorf("%w: geometry column without GEOMETRY_TYPES", errs.ErrMalformedStream)
	}

	vertices, err := decodeVertices(offsets, vertexBuffer, mortonBuffer)
	if err != nil {
		return Flat{}, err
	}
	flat.Vertices = vertices

	return flat, nil
}

func decodeVertices(offsets, vertexBuffer, mortonBuffer *stream.Stream) ([]Vertex, error) {
	switch {
	case vertexBuffer != nil && mortonBuffer != nil:
		return nil, fmt.Errorf("%w: geometry column with both vertex buffers", errs.ErrMalformedStream)
	case vertexBuffer != nil:
		values, err := stream.DecodeIntegers[uint32](*vertexBuffer, false)
		if err != nil {
			return nil, err
		}
		dictionary, err := fromZigZagDeltas(values)
		if err != nil {
			return nil, err
		}
		if offsets == nil {
			return dictionary, nil
		}

		return resolveOffsets(*offsets, func(i uint32) (Vertex, bool) {
			if int(i) >= len(dictionary) {
				return Vertex{}, false
			}
			return dictionary[i], true
		}, len(dictionary))
	case mortonBuffer != nil:
		if offsets == nil {
			return nil, fmt.Errorf("%w: Morton vertex buffer without VERTEX_OFFSETS", errs.ErrMalformedStream)
		}
		h := mortonBuffer.Header
		if h.Morton == nil {
			return nil, fmt.Errorf("%w: Morton vertex buffer without curve parameters", errs.ErrInvariantViolation)
		}
		codes, err := encoding.DecodeMortonCodes(mortonBuffer.Data, h.Physical, int(h.ValueCount))
		if err != nil {
			return nil, err
		}
		curve := Curve{NumBits: h.Morton.NumBits, CoordinateShift: h.Morton.CoordinateShift}

		return resolveOffsets(*offsets, func(i uint32) (Vertex, bool) {
			if int(i) >= len(codes) {
				return Vertex{}, false
			}
			return curve.FromMorton(codes[i]), true
		}, len(codes))
	default:
		return nil, fmt.Errorf("%w: geometry column without a vertex buffer", errs.ErrMalformedStream)
	}
}

func resolveOffsets(s stream.Stream, lookup func(uint32) (Vertex, bool), size int) ([]Vertex, error) {
	offsets, err := stream.DecodeIntegers[uint32](s, false)
	if err != nil {
		return nil, err
	}

	vertices := make([]Vertex, len(offsets))
	for i, off := range offsets {
		v, ok := lookup(off)
		if !ok {
			return nil, fmt.Errorf("%w: vertex offset %d into a dictionary of %d", errs.ErrInvariantViolation, off, size)
		}
		vertices[i] = v
	}

	return vertices, nil
}

// zigZagDeltas returns the zigzag mapped x,y deltas of vertices, starting from (0,0).
func zigZagDeltas(vertices []Vertex) []uint32 {
	out := make([]uint32, 0, 2*len(vertices))
	var prev Vertex
	for _, v := range vertices {
		out = append(out, encoding.ZigZag32(v.X-prev.X), encoding.ZigZag32(v.Y-prev.Y))
		prev = v
	}

	return out
}

func fromZigZagDeltas(values []uint32) ([]Vertex, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("%w: vertex buffer holds %d values", errs.ErrMalformedStream, len(values))
	}

	vertices := make([]Vertex, len(values)/2)
	var prev Vertex
	for i := range vertices {
		prev = Vertex{
			X: prev.X + encoding.UnZigZag32(values[2*i]),
			Y: prev.Y + encoding.UnZigZag32(values[2*i+1]),
		}
		vertices[i] = prev
	}

	return vertices, nil
}
