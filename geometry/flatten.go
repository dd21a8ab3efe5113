// Package geometry implements the geometry column codec.
//
// Geometries are flattened into parallel streams: one type code per feature,
// sub-geometry counts of multi geometries (NUM_GEOMETRIES), ring counts of
// polygons (NUM_RINGS), vertex counts of lines and rings (NUM_PARTS) and one
// vertex sequence. Count streams that would be empty are omitted. Rings are
// stored without their closing vertex, which is re-appended on decode.
//
// The vertex sequence is written in one of three ways, whichever has the
// smallest payload:
//
//	plain    VERTEX_BUFFER                           zigzag delta x,y pairs
//	hilbert  VERTEX_OFFSETS, VERTEX_BUFFER           dictionary sorted on a Hilbert curve
//	morton   VERTEX_OFFSETS, MORTON_VERTEX_BUFFER    delta coded sorted Morton codes
package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

// Vertex is a point on the integer tile grid.
type Vertex struct {
	X, Y int32
}

// Point converts v back to an orb point.
func (v Vertex) Point() orb.Point {
	return orb.Point{float64(v.X), float64(v.Y)}
}

// Flat is the flattened form of a geometry column.
type Flat struct {
	Types         []uint32
	NumGeometries []uint32
	NumParts      []uint32
	NumRings      []uint32
	Vertices      []Vertex
}

// Flatten converts geometries to their flattened form.
//
// Coordinates are rounded to the nearest integer. Supported geometries are
// orb.Point, orb.LineString, orb.Polygon and their multi variants.
//
// Returns ErrUnsupportedType for any other geometry, a nil geometry, or a
// coordinate outside the int32 range.
func Flatten(geoms []orb.Geometry) (Flat, error) {
	f := Flat{Types: make([]uint32, 0, len(geoms))}
	for i, g := range geoms {
		if err := f.add(g); err != nil {
			return Flat{}, fmt.Errorf("feature %d: %w", i, err)
		}
	}

	return f, nil
}

func (f *Flat) add(g orb.Geometry) error {
	switch g := g.(type) {
	case orb.Point:
		f.Types = append(f.Types, uint32(format.GeometryPoint))
		return f.addVertices([]orb.Point{g})
	case orb.MultiPoint:
		f.Types = append(f.Types, uint32(format.GeometryMultiPoint))
		f.NumGeometries = append(f.NumGeometries, uint32(len(g)))
		return f.addVertices(g)
	case orb.LineString:
		f.Types = append(f.Types, uint32(format.GeometryLineString))
		return f.addLine(g)
	case orb.MultiLineString:
		f.Types = append(f.Types, uint32(format.GeometryMultiLineString))
		f.NumGeometries = append(f.NumGeometries, uint32(len(g)))
		for _, ls := range g {
			if err := f.addLine(ls); err != nil {
				return err
			}
		}

		return nil
	case orb.Polygon:
		f.Types = append(f.Types, uint32(format.GeometryPolygon))
		return f.addPolygon(g)
	case orb.MultiPolygon:
		f.Types = append(f.Types, uint32(format.GeometryMultiPolygon))
		f.NumGeometries = append(f.NumGeometries, uint32(len(g)))
		for _, p := range g {
			if err := f.addPolygon(p); err != nil {
				return err
			}
		}

		return nil
	case nil:
		return fmt.Errorf("%w: missing geometry", errs.ErrUnsupportedType)
	default:
		return fmt.Errorf("%w: geometry %s", errs.ErrUnsupportedType, g.GeoJSONType())
	}
}

func (f *Flat) addLine(ls orb.LineString) error {
	f.NumParts = append(f.NumParts, uint32(len(ls)))
	return f.addVertices(ls)
}

func (f *Flat) addPolygon(p orb.Polygon) error {
	f.NumRings = append(f.NumRings, uint32(len(p)))
	for _, ring := range p {
		if len(ring) > 1 && ring.Closed() {
			ring = ring[:len(ring)-1]
		}
		f.NumParts = append(f.NumParts, uint32(len(ring)))
		if err := f.addVertices(ring); err != nil {
			return err
		}
	}

	return nil
}

func (f *Flat) addVertices(points []orb.Point) error {
	for _, p := range points {
		x, err := toGrid(p[0])
		if err != nil {
			return err
		}
		y, err := toGrid(p[1])
		if err != nil {
			return err
		}
		f.Vertices = append(f.Vertices, Vertex{X: x, Y: y})
	}

	return nil
}

func toGrid(c float64) (int32, error) {
	r := math.Round(c)
	if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
		return 0, fmt.Errorf("%w: coordinate %v outside the integer tile grid", errs.ErrUnsupportedType, c)
	}

	return int32(r), nil
}

// Unflatten rebuilds geometries from their flattened form. Every count and
// vertex must be consumed exactly.
func Unflatten(f Flat) ([]orb.Geometry, error) {
	u := unflattener{flat: f}
	geoms := make([]orb.Geometry, len(f.Types))
	for i, typ := range f.Types {
		g, err := u.next(format.GeometryType(typ))
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		geoms[i] = g
	}

	if u.geometries != len(f.NumGeometries) || u.parts != len(f.NumParts) ||
		u.rings != len(f.NumRings) || u.vertices != len(f.Vertices) {
		return nil, fmt.Errorf("%w: geometry streams hold unused counts or vertices", errs.ErrMalformedStream)
	}

	return geoms, nil
}

// unflattener walks the count streams with one cursor per stream.
type unflattener struct {
	flat       Flat
	geometries int
	parts      int
	rings      int
	vertices   int
}

func (u *unflattener) next(typ format.GeometryType) (orb.Geometry, error) {
	switch typ {
	case format.GeometryPoint:
		pts, err := u.take(1)
		if err != nil {
			return nil, err
		}

		return pts[0], nil
	case format.GeometryMultiPoint:
		n, err := u.count(u.flat.NumGeometries, &u.geometries, format.StreamNumGeometries)
		if err != nil {
			return nil, err
		}
		pts, err := u.take(n)
		if err != nil {
			return nil, err
		}

		return orb.MultiPoint(pts), nil
	case format.GeometryLineString:
		return u.line()
	case format.GeometryMultiLineString:
		n, err := u.count(u.flat.NumGeometries, &u.geometries, format.StreamNumGeometries)
		if err != nil {
			return nil, err
		}
		mls := make(orb.MultiLineString, 0, min(n, len(u.flat.NumParts)))
		for range n {
			ls, err := u.line()
			if err != nil {
				return nil, err
			}
			mls = append(mls, ls)
		}

		return mls, nil
	case format.GeometryPolygon:
		return u.polygon()
	case format.GeometryMultiPolygon:
		n, err := u.count(u.flat.NumGeometries, &u.geometries, format.StreamNumGeometries)
		if err != nil {
			return nil, err
		}
		mp := make(orb.MultiPolygon, 0, min(n, len(u.flat.NumRings)))
		for range n {
			p, err := u.polygon()
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}

		return mp, nil
	default:
		return nil, fmt.Errorf("%w: geometry type %d", errs.ErrMalformedStream, typ)
	}
}

func (u *unflattener) line() (orb.LineString, error) {
	n, err := u.count(u.flat.NumParts, &u.parts, format.StreamNumParts)
	if err != nil {
		return nil, err
	}
	pts, err := u.take(n)
	if err != nil {
		return nil, err
	}

	return orb.LineString(pts), nil
}

func (u *unflattener) polygon() (orb.Polygon, error) {
	rings, err := u.count(u.flat.NumRings, &u.rings, format.StreamNumRings)
	if err != nil {
		return nil, err
	}

	p := make(orb.Polygon, 0, min(rings, len(u.flat.NumParts)))
	for range rings {
		n, err := u.count(u.flat.NumParts, &u.parts, format.StreamNumParts)
		if err != nil {
			return nil, err
		}
		pts, err := u.take(n)
		if err != nil {
			return nil, err
		}
		ring := make(orb.Ring, len(pts), len(pts)+1)
		copy(ring, pts)
		if len(ring) > 0 {
			ring = append(ring, ring[0])
		}
		p = append(p, ring)
	}

	return p, nil
}

func (u *unflattener) count(counts []uint32, cursor *int, role format.StreamType) (int, error) {
	if *cursor >= len(counts) {
		return 0, fmt.Errorf("%w: %s stream exhausted after %d entries", errs.ErrMalformedStream, role, len(counts))
	}
	n := int(counts[*cursor])
	*cursor++

	return n, nil
}

func (u *unflattener) take(n int) ([]orb.Point, error) {
	if n > len(u.flat.Vertices)-u.vertices {
		return nil, fmt.Errorf("%w: %d vertices requested, %d left", errs.ErrMalformedStream, n, len(u.flat.Vertices)-u.vertices)
	}

	pts := make([]orb.Point, n)
	for i := range pts {
		pts[i] = u.flat.Vertices[u.vertices+i].Point()
	}
	u.vertices += n

	return pts, nil
}
