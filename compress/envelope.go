package compress

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

// MaxRawSize bounds the uncompressed size an envelope may declare.
const MaxRawSize = 256 * 1024 * 1024 // 256MiB

// Wrap compresses an encoded tile and prefixes it with the envelope header:
//
//	[compression type: 1 byte][uvarint raw length][payload]
//
// Parameters:
//   - tile: The encoded tile
//   - compressionType: Codec to apply; CompressionNone stores the tile as is
//
// Returns:
//   - []byte: The envelope
//   - error: ErrInvalidCompression for an unknown type, or a codec error
func Wrap(tile []byte, compressionType format.CompressionType) ([]byte, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}
	if len(tile) > MaxRawSize {
		return nil, fmt.Errorf("%w: tile of %d bytes exceeds %d", errs.ErrInvariantViolation, len(tile), MaxRawSize)
	}

	payload, err := codec.Compress(tile)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+binary.MaxVarintLen32+len(payload))
	out = append(out, byte(compressionType))
	out = binary.AppendUvarint(out, uint64(len(tile)))

	return append(out, payload...), nil
}

// Unwrap reverses Wrap.
//
// Returns:
//   - []byte: The encoded tile
//   - format.CompressionType: The codec the envelope named
//   - error: ErrInvalidCompression for an unknown type, ErrBufferTooShort for a
//     truncated header, ErrMalformedStream for a payload that does not
//     decompress to the declared length
func Unwrap(data []byte) ([]byte, format.CompressionType, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("%w: empty envelope", errs.ErrBufferTooShort)
	}

	compressionType := format.CompressionType(data[0])
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, 0, err
	}

	rawSize, n := binary.Uvarint(data[1:])
	if n == 0 {
		return nil, 0, fmt.Errorf("%w: envelope length", errs.ErrBufferTooShort)
	}
	if n < 0 || rawSize > MaxRawSize {
		return nil, 0, fmt.Errorf("%w: envelope declares %d bytes", errs.ErrMalformedStream, rawSize)
	}

	tile, err := codec.Decompress(data[1+n:], int(rawSize))
	if err != nil {
		return nil, 0, fmt.Errorf("%s envelope: %w", compressionType, err)
	}

	return tile, compressionType, nil
}
