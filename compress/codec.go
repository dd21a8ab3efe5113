package compress

import (
	"fmt"

	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

// Compressor compresses a whole encoded tile.
//
// Memory management:
//   - The returned slice is owned by the caller, except for NoOpCompressor
//     which returns its input
//   - The input slice is not modified
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// rawSize is the uncompressed length recorded in the tile envelope. Codecs
// whose block format does not store it use it to size the output buffer;
// all codecs reject output of any other length.
type Decompressor interface {
	Decompress(data []byte, rawSize int) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
	format.CompressionGzip: NewGzipCompressor(),
}

// GetCodec returns the built-in codec for a compression type.
//
// Returns:
//   - Codec: A shared codec, safe for concurrent use
//   - error: ErrInvalidCompression for an unknown type
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompression, compressionType)
}

// Types returns every supported compression type in wire order.
func Types() []format.CompressionType {
	return []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
		format.CompressionGzip,
	}
}

func checkSize(name string, out []byte, rawSize int) ([]byte, error) {
	if len(out) != rawSize {
		return nil, fmt.Errorf("%w: %s produced %d bytes, envelope says %d",
			errs.ErrMalformedStream, name, len(out), rawSize)
	}

	return out, nil
}
