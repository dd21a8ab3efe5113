package tile

import "github.com/paulmach/orb"

// Version is the layer frame version written by this package.
const Version = 1

// Feature is one row of a layer.
//
// Property values use Go types matching the declared field type:
//
//	boolean  bool
//	int32    int32
//	int64    int64
//	uint32   uint32
//	uint64   uint64
//	float    float32
//	double   float64
//	string   string
//	struct   map[string]any holding string values keyed by child name
//
// The encoder also accepts other numeric types when the value fits the
// declared type. A missing key or a nil value is a null.
type Feature struct {
	ID         uint64
	Geometry   orb.Geometry
	Properties map[string]any
}

// Layer is a named set of features sharing one coordinate grid.
type Layer struct {
	ID       uint32
	Name     string
	Extent   uint32
	Features []Feature
}

// Geometries returns the geometry of every feature in order.
func (l Layer) Geometries() []orb.Geometry {
	geoms := make([]orb.Geometry, len(l.Features))
	for i, f := range l.Features {
		geoms[i] = f.Geometry
	}

	return geoms
}
