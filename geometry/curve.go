package geometry

import "math/bits"

// maxMortonBits is the widest coordinate range whose Morton codes fit 32 bits.
const maxMortonBits = 16

// Curve holds the space filling curve parameters of a geometry column.
//
// Coordinates are shifted by CoordinateShift so that the smallest coordinate
// of the column maps to a non-negative value, and NumBits is the bit length
// of the largest shifted coordinate. Both axes share the same parameters.
type Curve struct {
	NumBits         uint32
	CoordinateShift uint32
}

// NewCurve sizes a curve for coordinates in [minValue, maxValue], taken over
// both axes of every vertex of the column.
func NewCurve(minValue, maxValue int32) Curve {
	var shift uint32
	if minValue < 0 {
		shift = uint32(-int64(minValue))
	}
	span := uint64(int64(maxValue) + int64(shift))

	return Curve{
		NumBits:         uint32(max(bits.Len64(span), 1)),
		CoordinateShift: shift,
	}
}

// CurveFor sizes a curve over vertices. An empty vertex list gets a one bit curve.
func CurveFor(vertices []Vertex) Curve {
	if len(vertices) == 0 {
		return NewCurve(0, 0)
	}

	lo, hi := vertices[0].X, vertices[0].X
	for _, v := range vertices {
		lo = min(lo, v.X, v.Y)
		hi = max(hi, v.X, v.Y)
	}

	return NewCurve(lo, hi)
}

// HasMorton reports whether Morton codes of this curve fit 32 bits.
func (c Curve) HasMorton() bool {
	return c.NumBits <= maxMortonBits
}

func (c Curve) shifted(v Vertex) (uint64, uint64) {
	return uint64(int64(v.X) + int64(c.CoordinateShift)), uint64(int64(v.Y) + int64(c.CoordinateShift))
}

// Hilbert returns the distance of v along a Hilbert curve covering a
// 2^NumBits square.
func (c Curve) Hilbert(v Vertex) uint64 {
	x, y := c.shifted(v)
	n := uint64(1) << c.NumBits

	var d uint64
	for s := n >> 1; s > 0; s >>= 1 {
		var rx, ry uint64
		if x&s != 0 {
			rx = 1
		}
		if y&s != 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)

		// rotate the quadrant
		if ry == 0 {
			if rx == 1 {
				x = s - 1 - (x & (s - 1))
				y = s - 1 - (y & (s - 1))
			}
			x, y = y, x
		}
		x &= s - 1
		y &= s - 1
	}

	return d
}

// Morton interleaves the shifted coordinates of v, x bits at even positions
// and y bits at odd positions. Only valid when HasMorton.
func (c Curve) Morton(v Vertex) uint32 {
	x, y := c.shifted(v)
	return uint32(spread(x) | spread(y)<<1)
}

// FromMorton reverses Morton.
func (c Curve) FromMorton(code uint32) Vertex {
	x := int64(compact(uint64(code))) - int64(c.CoordinateShift)
	y := int64(compact(uint64(code)>>1)) - int64(c.CoordinateShift)

	return Vertex{X: int32(x), Y: int32(y)}
}

// spread moves the low 16 bits of v to the even bit positions.
func spread(v uint64) uint64 {
	v &= 0xFFFF
	v = (v | v<<8) & 0x00FF00FF
	v = (v | v<<4) & 0x0F0F0F0F
	v = (v | v<<2) & 0x33333333
	v = (v | v<<1) & 0x55555555

	return v
}

// compact gathers the even bit positions of v into the low 16 bits.
func compact(v uint64) uint64 {
	v &= 0x55555555
	v = (v | v>>1) & 0x33333333
	v = (v | v>>2) & 0x0F0F0F0F
	v = (v | v>>4) & 0x00FF00FF
	v = (v | v>>8) & 0x0000FFFF

	return v
}
