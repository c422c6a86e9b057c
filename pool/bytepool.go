// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "bytes"

// DefaultChunkSize is the read chunk a channel uses unless configured.
const DefaultChunkSize = 64 << 10

// maxRetained keeps one oversized message from pinning memory in the pool.
const maxRetained = 4 << 20

// BytePool hands out fixed-size read chunks.
type BytePool struct {
	pool ObjectPool[*[]byte]
	size int
}

// NewBytePool creates a pool of size-byte chunks.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &BytePool{
		pool: NewSyncPool(func() *[]byte {
			b := make([]byte, size)
			return &b
		}, func(b *[]byte) bool { return cap(*b) == size }),
		size: size,
	}
}

// Size returns the chunk length.
func (b *BytePool) Size() int {
	return b.size
}

// GetBuffer returns a chunk of Size bytes.
func (b *BytePool) GetBuffer() *[]byte {
	buf := b.pool.Get()
	*buf = (*buf)[:b.size]
	return buf
}

// PutBuffer returns a chunk to the pool.
func (b *BytePool) PutBuffer(buf *[]byte) {
	if buf == nil {
		return
	}
	b.pool.Put(buf)
}

// BufferPool hands out empty growable buffers for message serialization.
type BufferPool struct {
	pool ObjectPool[*bytes.Buffer]
}

// NewBufferPool creates a buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: NewSyncPool(func() *bytes.Buffer { return new(bytes.Buffer) }, func(b *bytes.Buffer) bool {
			if b.Cap() > maxRetained {
				return false
			}
			b.Reset()
			return true
		}),
	}
}

// Get returns an empty buffer.
func (p *BufferPool) Get() *bytes.Buffer {
	return p.pool.Get()
}

// Put recycles buf. buf must not be used afterwards.
func (p *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	p.pool.Put(buf)
}

var (
	defaultBuffers = NewBufferPool()
	defaultChunks  = NewBytePool(DefaultChunkSize)
)

// DefaultBuffers returns the process-wide serialization buffer pool.
func DefaultBuffers() *BufferPool { return defaultBuffers }

// DefaultChunks returns the process-wide pool of DefaultChunkSize chunks.
func DefaultChunks() *BytePool { return defaultChunks }
