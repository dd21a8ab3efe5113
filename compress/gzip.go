package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestCompression)
		return w
	},
}

// GzipCompressor compresses tiles with gzip, the transport encoding most
// vector tile servers already use.
type GzipCompressor struct{}

var _ Codec = GzipCompressor{}

func NewGzipCompressor() GzipCompressor {
	return GzipCompressor{}
}

func (c GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, _ := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(w)
	w.Reset(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress reads at most rawSize+1 bytes so that a corrupt size cannot
// make it inflate an unbounded stream.
func (c GzipCompressor) Decompress(data []byte, rawSize int) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}
	defer r.Close()

	out := bytes.NewBuffer(make([]byte, 0, rawSize))
	if _, err := io.Copy(out, io.LimitReader(r, int64(rawSize)+1)); err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}

	return checkSize("gzip", out.Bytes(), rawSize)
}
