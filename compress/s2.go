package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/mlt/errs"
)

// S2Compressor compresses tiles with S2, a faster Snappy extension.
type S2Compressor struct{}

var _ Codec = S2Compressor{}

func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (c S2Compressor) Decompress(data []byte, rawSize int) ([]byte, error) {
	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if n != rawSize {
		return nil, fmt.Errorf("%w: s2 block holds %d bytes, envelope says %d", errs.ErrMalformedStream, n, rawSize)
	}

	out, err := s2.Decode(make([]byte, rawSize), data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}
