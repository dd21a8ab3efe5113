package compress

// NoOpCompressor stores tiles uncompressed.
type NoOpCompressor struct{}

var _ Codec = NoOpCompressor{}

func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data itself; the result shares memory with the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself after checking its length.
func (c NoOpCompressor) Decompress(data []byte, rawSize int) ([]byte, error) {
	return checkSize("none", data, rawSize)
}
