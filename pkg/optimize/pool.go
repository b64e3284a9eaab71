package optimize

import (
	"io"
	"sync"
)

// CopyBufferSize is the buffer size used by Copy.
const CopyBufferSize = 32 << 10

// BytePool is a pool of fixed-size byte slices to reduce allocations
type BytePool struct {
	pool sync.Pool
	size int
}

// NewBytePool creates a new byte pool with specified size
func NewBytePool(size int) *BytePool {
	p := &BytePool{size: size}
	p.pool.New = func() interface{} {
		b := make([]byte, size)
		return &b
	}
	return p
}

// Get returns a slice of exactly Size bytes. Contents are not zeroed.
func (p *BytePool) Get() *[]byte {
	return p.pool.Get().(*[]byte)
}

// Put returns a slice to the pool. Slices of the wrong size are dropped.
func (p *BytePool) Put(b *[]byte) {
	if b == nil || cap(*b) < p.size {
		return
	}
	*b = (*b)[:p.size]
	p.pool.Put(b)
}

func (p *BytePool) Size() int {
	return p.size
}

var copyBuffers = NewBytePool(CopyBufferSize)

// Copy is io.Copy with a pooled buffer.
func Copy(dst io.Writer, src io.Reader) (int64, error) {
	buf := copyBuffers.Get()
	defer copyBuffers.Put(buf)
	return io.CopyBuffer(dst, src, *buf)
}
