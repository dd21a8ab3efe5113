// Package format defines the small enumerations shared by the tile wire format:
// stream roles, the two technique axes, column data types, geometry types and
// the optional tile compression type.
//
// All enumerations are uint8 so that they can be written to the wire as a single
// byte (or packed as a nibble) without conversion.
package format

import (
	"fmt"
	"strings"
)

type (
	StreamType        uint8
	LogicalTechnique  uint8
	PhysicalTechnique uint8
	DataType          uint8
	GeometryType      uint8
	CompressionType   uint8
)

// Stream roles. The ordinal is written as the first byte of every stream header.
const (
	StreamPresent            StreamType = 0  // StreamPresent is the per-value null mask of a column.
	StreamData               StreamType = 1  // StreamData carries the values of a column.
	StreamDataReference      StreamType = 2  // StreamDataReference carries dictionary indices.
	StreamLength             StreamType = 3  // StreamLength carries string byte lengths.
	StreamDictionary         StreamType = 4  // StreamDictionary carries dictionary bytes.
	StreamSymbolLength       StreamType = 5  // StreamSymbolLength carries FSST symbol lengths.
	StreamSymbolTable        StreamType = 6  // StreamSymbolTable carries the FSST symbol table.
	StreamGeometryTypes      StreamType = 7  // StreamGeometryTypes carries one geometry type per feature.
	StreamNumGeometries      StreamType = 8  // StreamNumGeometries carries sub-geometry counts of multi geometries.
	StreamNumParts           StreamType = 9  // StreamNumParts carries vertex counts of lines and rings.
	StreamNumRings           StreamType = 10 // StreamNumRings carries ring counts of polygons.
	StreamIndexBuffer        StreamType = 11 // StreamIndexBuffer is reserved for triangulated polygons.
	StreamVertexOffsets      StreamType = 12 // StreamVertexOffsets carries offsets into a vertex dictionary.
	StreamVertexBuffer       StreamType = 13 // StreamVertexBuffer carries zigzag delta coded vertices.
	StreamMortonVertexBuffer StreamType = 14 // StreamMortonVertexBuffer carries delta coded Morton codes.
)

// Logical techniques, stored in the high nibble of the technique byte.
const (
	LogicalNone       LogicalTechnique = 0
	LogicalDelta      LogicalTechnique = 1
	LogicalRLE        LogicalTechnique = 2
	LogicalDeltaRLE   LogicalTechnique = 3
	LogicalBooleanRLE LogicalTechnique = 4
)

// Physical techniques, stored in the low nibble of the technique byte.
const (
	PhysicalNone     PhysicalTechnique = 0
	PhysicalFastPFOR PhysicalTechnique = 1
	PhysicalVarint   PhysicalTechnique = 2
)

// Column data types declared by a layer schema.
const (
	TypeBoolean  DataType = 0x1
	TypeInt32    DataType = 0x2
	TypeInt64    DataType = 0x3
	TypeUint32   DataType = 0x4
	TypeUint64   DataType = 0x5
	TypeFloat    DataType = 0x6
	TypeDouble   DataType = 0x7
	TypeString   DataType = 0x8
	TypeGeometry DataType = 0x9
	TypeStruct   DataType = 0xA
)

// Geometry types as written to the geometry-types stream.
const (
	GeometryPoint           GeometryType = 0
	GeometryLineString      GeometryType = 1
	GeometryPolygon         GeometryType = 2
	GeometryMultiPoint      GeometryType = 3
	GeometryMultiLineString GeometryType = 4
	GeometryMultiPolygon    GeometryType = 5
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 block compression.
	CompressionGzip CompressionType = 0x5 // CompressionGzip represents gzip, the usual MVT transport encoding.
)

func (s StreamType) String() string {
	switch s {
	case StreamPresent:
		return "Present"
	case StreamData:
		return "Data"
	case StreamDataReference:
		return "DataReference"
	case StreamLength:
		return "Length"
	case StreamDictionary:
		return "Dictionary"
	case StreamSymbolLength:
		return "SymbolLength"
	case StreamSymbolTable:
		return "SymbolTable"
	case StreamGeometryTypes:
		return "GeometryTypes"
	case StreamNumGeometries:
		return "NumGeometries"
	case StreamNumParts:
		return "NumParts"
	case StreamNumRings:
		return "NumRings"
	case StreamIndexBuffer:
		return "IndexBuffer"
	case StreamVertexOffsets:
		return "VertexOffsets"
	case StreamVertexBuffer:
		return "VertexBuffer"
	case StreamMortonVertexBuffer:
		return "MortonVertexBuffer"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is a known stream role.
func (s StreamType) Valid() bool {
	return s <= StreamMortonVertexBuffer
}

func (l LogicalTechnique) String() string {
	switch l {
	case LogicalNone:
		return "None"
	case LogicalDelta:
		return "Delta"
	case LogicalRLE:
		return "RLE"
	case LogicalDeltaRLE:
		return "DeltaRLE"
	case LogicalBooleanRLE:
		return "BooleanRLE"
	default:
		return "Unknown"
	}
}

// Valid reports whether l is a known logical technique.
func (l LogicalTechnique) Valid() bool {
	return l <= LogicalBooleanRLE
}

// HasRuns reports whether streams using l carry an explicit run count.
func (l LogicalTechnique) HasRuns() bool {
	return l == LogicalRLE || l == LogicalDeltaRLE
}

func (p PhysicalTechnique) String() string {
	switch p {
	case PhysicalNone:
		return "None"
	case PhysicalFastPFOR:
		return "FastPFOR"
	case PhysicalVarint:
		return "Varint"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is a known physical technique.
func (p PhysicalTechnique) Valid() bool {
	return p <= PhysicalVarint
}

func (d DataType) String() string {
	switch d {
	case TypeBoolean:
		return "Boolean"
	case TypeInt32:
		return "Int32"
	case TypeInt64:
		return "Int64"
	case TypeUint32:
		return "Uint32"
	case TypeUint64:
		return "Uint64"
	case TypeFloat:
		return "Float"
	case TypeDouble:
		return "Double"
	case TypeString:
		return "String"
	case TypeGeometry:
		return "Geometry"
	case TypeStruct:
		return "Struct"
	default:
		return "Unknown"
	}
}

// ParseDataType maps a case-insensitive name such as "int32" to its DataType.
func ParseDataType(name string) (DataType, bool) {
	for d := TypeBoolean; d <= TypeStruct; d++ {
		if strings.EqualFold(name, d.String()) {
			return d, true
		}
	}

	return 0, false
}

// MarshalText writes d by name so that schemas read well in config files.
func (d DataType) MarshalText() ([]byte, error) {
	if d < TypeBoolean || d > TypeStruct {
		return nil, fmt.Errorf("unknown data type %d", uint8(d))
	}

	return []byte(strings.ToLower(d.String())), nil
}

func (d *DataType) UnmarshalText(text []byte) error {
	parsed, ok := ParseDataType(string(text))
	if !ok {
		return fmt.Errorf("unknown data type %q", text)
	}
	*d = parsed

	return nil
}

// IsInteger reports whether d is one of the four integer types.
func (d DataType) IsInteger() bool {
	return d == TypeInt32 || d == TypeInt64 || d == TypeUint32 || d == TypeUint64
}

// IsSigned reports whether values of d are zigzag mapped before packing.
func (d DataType) IsSigned() bool {
	return d == TypeInt32 || d == TypeInt64
}

func (g GeometryType) String() string {
	switch g {
	case GeometryPoint:
		return "Point"
	case GeometryLineString:
		return "LineString"
	case GeometryPolygon:
		return "Polygon"
	case GeometryMultiPoint:
		return "MultiPoint"
	case GeometryMultiLineString:
		return "MultiLineString"
	case GeometryMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionGzip:
		return "Gzip"
	default:
		return "Unknown"
	}
}

// ParseCompressionType maps a case-insensitive name such as "zstd" to its CompressionType.
func ParseCompressionType(name string) (CompressionType, bool) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	case "gzip":
		return CompressionGzip, true
	default:
		return 0, false
	}
}

// ParsePhysicalTechnique maps a case-insensitive name such as "fastpfor" to its PhysicalTechnique.
func ParsePhysicalTechnique(name string) (PhysicalTechnique, bool) {
	switch strings.ToLower(name) {
	case "", "fastpfor", "fast_pfor":
		return PhysicalFastPFOR, true
	case "varint":
		return PhysicalVarint, true
	default:
		return 0, false
	}
}
