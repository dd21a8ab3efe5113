package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/mlt/errs"
)

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor compresses tiles as a single LZ4 block. The block format
// does not store the decompressed size, so Decompress relies on the size
// from the tile envelope.
type LZ4Compressor struct{}

var _ Codec = LZ4Compressor{}

func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data with a pooled lz4.Compressor.
//
// Returns:
//   - []byte: The LZ4 block (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:n], nil
}

// Decompress decodes an LZ4 block into a buffer of exactly rawSize bytes.
func (c LZ4Compressor) Decompress(data []byte, rawSize int) ([]byte, error) {
	if rawSize == 0 {
		if len(data) != 0 {
			return nil, fmt.Errorf("%w: lz4 block of %d bytes for an empty tile", errs.ErrMalformedStream, len(data))
		}

		return nil, nil
	}

	buf := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}

	return checkSize("lz4", buf[:n], rawSize)
}
