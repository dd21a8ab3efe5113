package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
	"github.com/arloliu/mlt/stream"
)

func roundTrip(t *testing.T, streams []stream.Stream) []stream.Stream {
	t.Helper()

	buf, err := stream.AppendColumn(nil, streams)
	require.NoError(t, err)
	got, err := stream.NewReader(buf).ReadColumn()
	require.NoError(t, err)

	return got
}

func roles(streams []stream.Stream) []format.StreamType {
	out := make([]format.StreamType, len(streams))
	for i, s := range streams {
		out[i] = s.Header.Type
	}

	return out
}

func square(x, y, size float64) orb.Ring {
	return orb.Ring{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}
}

func TestEncode_TwoPointLine(t *testing.T) {
	line := orb.LineString{{0, 0}, {3, 4}}

	streams, enc, err := Encode([]orb.Geometry{line}, format.PhysicalVarint)
	require.NoError(t, err)
	require.Equal(t, EncodingPlain, enc)
	require.Equal(t, []format.StreamType{
		format.StreamGeometryTypes, format.StreamNumParts, format.StreamVertexBuffer,
	}, roles(streams))

	require.Equal(t, []uint32{0, 0, 6, 8}, zigZagDeltas([]Vertex{{0, 0}, {3, 4}}))
	values, err := stream.DecodeIntegers[uint32](streams[2], false)
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 0, 6, 8}, values)

	got, err := Decode(roundTrip(t, streams))
	require.NoError(t, err)
	require.Equal(t, []orb.Geometry{line}, got)
}

func TestEncode_RoundTrip(t *testing.T) {
	poly := orb.Polygon{square(0, 0, 10), square(2, 2, 3)}
	tests := []struct {
		name  string
		geoms []orb.Geometry
		roles []format.StreamType
	}{
		{
			name:  "points",
			geoms: []orb.Geometry{orb.Point{1, 2}, orb.Point{-5, 7}, orb.Point{1, 2}},
			roles: []format.StreamType{format.StreamGeometryTypes},
		},
		{
			name:  "polygon with hole",
			geoms: []orb.Geometry{poly},
			roles: []format.StreamType{format.StreamGeometryTypes, format.StreamNumParts, format.StreamNumRings},
		},
		{
			name: "multi line",
			geoms: []orb.Geometry{orb.MultiLineString{
				{{0, 0}, {1, 1}, {2, 0}},
				{{5, 5}, {6, 6}},
			}},
			roles: []format.StreamType{format.StreamGeometryTypes, format.StreamNumGeometries, format.StreamNumParts},
		},
		{
			name: "multi polygon",
			geoms: []orb.Geometry{orb.MultiPolygon{
				poly,
				{square(100, 100, 50)},
			}},
			roles: []format.StreamType{
				format.StreamGeometryTypes, format.StreamNumGeometries, format.StreamNumParts, format.StreamNumRings,
			},
		},
		{
			name:  "multi point",
			geoms: []orb.Geometry{orb.MultiPoint{{1, 1}, {2, 2}, {3, 3}}},
			roles: []format.StreamType{format.StreamGeometryTypes, format.StreamNumGeometries},
		},
		{
			name: "mixed",
			geoms: []orb.Geometry{
				orb.Point{4096, 4096},
				orb.LineString{{-64, -64}, {0, 10}, {20, 30}},
				poly,
				orb.MultiPoint{{7, 7}},
				orb.MultiLineString{{{1, 1}, {2, 2}}},
				orb.MultiPolygon{{square(40, 40, 4)}},
			},
			roles: []format.StreamType{
				format.StreamGeometryTypes, format.StreamNumGeometries, format.StreamNumParts, format.StreamNumRings,
			},
		},
		{
			name:  "empty column",
			geoms: []orb.Geometry{},
			roles: []format.StreamType{format.StreamGeometryTypes},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, physical := range []format.PhysicalTechnique{format.PhysicalFastPFOR, format.PhysicalVarint} {
				streams, _, err := Encode(tt.geoms, physical)
				require.NoError(t, err)
				require.Equal(t, tt.roles, roles(streams)[:len(tt.roles)])

				got, err := Decode(roundTrip(t, streams))
				require.NoError(t, err)
				require.Equal(t, tt.geoms, got)
			}
		})
	}
}

func TestFlatten_DropsClosingVertex(t *testing.T) {
	flat, err := Flatten([]orb.Geometry{orb.Polygon{square(0, 0, 1)}})
	require.NoError(t, err)
	require.Equal(t, []uint32{uint32(format.GeometryPolygon)}, flat.Types)
	require.Equal(t, []uint32{1}, flat.NumRings)
	require.Equal(t, []uint32{4}, flat.NumParts)
	require.Len(t, flat.Vertices, 4)
}

func TestFlatten_RoundsCoordinates(t *testing.T) {
	flat, err := Flatten([]orb.Geometry{orb.Point{1.4, 2.6}})
	require.NoError(t, err)
	require.Equal(t, []Vertex{{1, 3}}, flat.Vertices)
}

func TestFlatten_Errors(t *testing.T) {
	tests := []struct {
		name string
		geom orb.Geometry
	}{
		{"nil", nil},
		{"collection", orb.Collection{orb.Point{1, 1}}},
		{"bound", orb.Bound{}},
		{"out of grid", orb.Point{1e12, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Flatten([]orb.Geometry{tt.geom})
			require.ErrorIs(t, err, errs.ErrUnsupportedType)
		})
	}
}

func TestEncode_DictionaryLayouts(t *testing.T) {
	// a grid of shared vertices referenced many times favours a dictionary
	geoms := make([]orb.Geometry, 0, 400)
	for i := range 400 {
		x := float64((i * 37) % 20 * 200)
		y := float64((i * 11) % 20 * 200)
		geoms = append(geoms, orb.LineString{{x, y}, {y, x}, {x, y}})
	}

	flat, err := Flatten(geoms)
	require.NoError(t, err)

	curve := CurveFor(flat.Vertices)
	hilbert, err := encodeHilbert(flat.Vertices, curve, format.PhysicalFastPFOR)
	require.NoError(t, err)
	require.Equal(t, []format.StreamType{format.StreamVertexOffsets, format.StreamVertexBuffer}, roles(hilbert))

	morton, err := encodeMorton(flat.Vertices, curve, format.PhysicalFastPFOR)
	require.NoError(t, err)
	require.Equal(t, []format.StreamType{format.StreamVertexOffsets, format.StreamMortonVertexBuffer}, roles(morton))
	require.Equal(t, &stream.MortonParams{NumBits: curve.NumBits, CoordinateShift: curve.CoordinateShift}, morton[1].Header.Morton)

	for _, layout := range [][]stream.Stream{hilbert, morton} {
		var offsets, values *stream.Stream
		offsets = &layout[0]
		values = &layout[1]
		var vertices []Vertex
		if values.Header.Type == format.StreamMortonVertexBuffer {
			vertices, err = decodeVertices(offsets, nil, values)
		} else {
			vertices, err = decodeVertices(offsets, values, nil)
		}
		require.NoError(t, err)
		require.Equal(t, flat.Vertices, vertices)
	}

	streams, enc, err := Encode(geoms, format.PhysicalFastPFOR)
	require.NoError(t, err)
	require.NotEqual(t, EncodingPlain, enc)

	got, err := Decode(roundTrip(t, streams))
	require.NoError(t, err)
	require.Equal(t, geoms, got)
}

func TestEncode_SelectionNeverLargerThanPlain(t *testing.T) {
	geoms := []orb.Geometry{
		orb.LineString{{0, 0}, {100, 100}, {200, 50}, {0, 0}},
		orb.Polygon{square(10, 10, 30)},
	}
	flat, err := Flatten(geoms)
	require.NoError(t, err)

	plain, err := stream.EncodeIntegers(format.StreamVertexBuffer, zigZagDeltas(flat.Vertices), false, format.PhysicalVarint)
	require.NoError(t, err)

	chosen, _, err := encodeVertices(flat.Vertices, format.PhysicalVarint)
	require.NoError(t, err)
	require.LessOrEqual(t, stream.PayloadSize(chosen...), stream.PayloadSize(plain))
}

func TestDecode_Errors(t *testing.T) {
	encode := func(role format.StreamType, values ...uint32) stream.Stream {
		s, err := stream.EncodeIntegers(role, values, false, format.PhysicalVarint)
		require.NoError(t, err)
		return s
	}
	types := encode(format.StreamGeometryTypes, uint32(format.GeometryPoint))
	vertices := encode(format.StreamVertexBuffer, 2, 4)

	tests := []struct {
		name    string
		streams []stream.Stream
		wantErr error
	}{
		{"no types", []stream.Stream{vertices}, errs.ErrMalformedStream},
		{"no vertices", []stream.Stream{types}, errs.ErrMalformedStream},
		{"duplicate role", []stream.Stream{types, types, vertices}, errs.ErrMalformedStream},
		{"index buffer", []stream.Stream{types, encode(format.StreamIndexBuffer, 1), vertices}, errs.ErrMalformedStream},
		{"odd vertex values", []stream.Stream{types, encode(format.StreamVertexBuffer, 1, 2, 3)}, errs.ErrMalformedStream},
		{"too few vertices", []stream.Stream{encode(format.StreamGeometryTypes, 0, 0), vertices}, errs.ErrMalformedStream},
		{"unused vertices", []stream.Stream{types, encode(format.StreamVertexBuffer, 2, 4, 2, 4)}, errs.ErrMalformedStream},
		{"unknown type", []stream.Stream{encode(format.StreamGeometryTypes, 9), vertices}, errs.ErrMalformedStream},
		{"line without parts", []stream.Stream{encode(format.StreamGeometryTypes, uint32(format.GeometryLineString)), vertices}, errs.ErrMalformedStream},
		{
			"offset past dictionary",
			[]stream.Stream{types, encode(format.StreamVertexOffsets, 1), vertices},
			errs.ErrInvariantViolation,
		},
		{
			"morton without offsets",
			[]stream.Stream{types, stream.New(format.StreamMortonVertexBuffer, format.LogicalDelta, format.PhysicalVarint, 1, []byte{0})},
			errs.ErrMalformedStream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.streams)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	geoms := make([]orb.Geometry, 0, 1000)
	for i := range 1000 {
		x := float64(i % 4096)
		geoms = append(geoms, orb.LineString{{x, 0}, {x, 10}, {x + 5, 20}})
	}

	b.ReportAllocs()
	for b.Loop() {
		if _, _, err := Encode(geoms, format.PhysicalFastPFOR); err != nil {
			b.Fatal(err)
		}
	}
}
