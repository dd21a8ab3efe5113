// Package pool provides reusable byte buffers for assembling columns and layers.
package pool

import (
	"encoding/binary"
	"sync"
)

const (
	ColumnBufferDefaultSize  = 1024 * 4        // 4KiB
	ColumnBufferMaxThreshold = 1024 * 256      // 256KiB
	LayerBufferDefaultSize   = 1024 * 64       // 64KiB
	LayerBufferMaxThreshold  = 1024 * 1024 * 4 // 4MiB
)

// ByteBuffer is an append-only byte slice wrapper.
//
// Bytes returns the internal slice; callers that keep the result after the
// buffer goes back to its pool must use Clone instead.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a buffer with the given initial capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Clone returns a copy of the buffer contents that is safe to keep after Put.
func (bb *ByteBuffer) Clone() []byte {
	out := make([]byte, len(bb.B))
	copy(out, bb.B)

	return out
}

func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// MustWrite appends data to the buffer.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Write implements io.Writer. It never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteByte implements io.ByteWriter. It never fails.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// WriteUvarint appends v as an unsigned LEB128 varint.
func (bb *ByteBuffer) WriteUvarint(v uint64) {
	bb.B = binary.AppendUvarint(bb.B, v)
}

// Grow makes room for at least requiredBytes more bytes without another allocation.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	if cap(bb.B)-len(bb.B) >= requiredBytes {
		return
	}

	growBy := cap(bb.B) / 4
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// ByteBufferPool is a sync.Pool of ByteBuffers that drops oversized buffers on Put.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose buffers start at defaultSize bytes.
// Buffers that grew beyond maxThreshold are not returned to the pool; zero disables the limit.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	columnPool = NewByteBufferPool(ColumnBufferDefaultSize, ColumnBufferMaxThreshold)
	layerPool  = NewByteBufferPool(LayerBufferDefaultSize, LayerBufferMaxThreshold)
)

// GetColumnBuffer returns a buffer sized for a single encoded column.
func GetColumnBuffer() *ByteBuffer {
	return columnPool.Get()
}

func PutColumnBuffer(bb *ByteBuffer) {
	columnPool.Put(bb)
}

// GetLayerBuffer returns a buffer sized for a whole encoded layer.
func GetLayerBuffer() *ByteBuffer {
	return layerPool.Get()
}

func PutLayerBuffer(bb *ByteBuffer) {
	layerPool.Put(bb)
}
