// Package encoding implements the value transforms stream payloads are built from.
//
// Logical transforms:
//   - ZigZag maps signed values to unsigned ones that stay small for small magnitudes
//   - Delta / PrefixSum convert between values and first differences
//   - RunLengths / ExpandRuns convert between values and (length, value) runs
//   - EncodeBooleanRLE / DecodeBooleanRLE handle bitsets such as presence masks
//
// Physical packers:
//   - AppendUvarints / DecodeUvarints write unsigned LEB128 varints
//   - PackBlocks / UnpackBlocks write 128-value blocks with a shared bit width
//
// EncodeIntegers composes both levels: it builds every logical candidate for
// an integer sequence, packs each with the requested physical technique and
// keeps the smallest. DecodeIntegers reverses it from the technique pair,
// value count and run count recorded in a stream header.
//
// All integer functions are generic over uint32 and uint64. Signed columns pass
// the two's complement bit pattern of their values and set signed=true, so
// arithmetic wraps in the column's own width.
package encoding
