// Package endian provides the byte order used for fixed-width payloads of a tile.
//
// Varint coded streams have no byte order. Fixed-width payloads (float and
// double columns, the 32-bit words of block packed integer streams) are always
// little-endian on the wire, independent of the host.
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, math.Float32bits(v))
package endian

import "encoding/binary"

// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder so that the
// same value can both read fixed-width words and append them to a growing buffer.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the wire byte order of the tile format.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
