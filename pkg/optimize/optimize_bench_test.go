package optimize

import (
	"bytes"
	"io"
	"testing"
)

func BenchmarkBytePool(b *testing.B) {
	pool := NewBytePool(CopyBufferSize)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		buf := pool.Get()
		(*buf)[0] = byte(i)
		pool.Put(buf)
	}
}

func BenchmarkByteAllocation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buf := make([]byte, CopyBufferSize)
		buf[0] = byte(i)
	}
}

// onlyReader hides WriterTo so the copy actually goes through the buffer.
type onlyReader struct{ io.Reader }

func BenchmarkCopy(b *testing.B) {
	payload := bytes.Repeat([]byte{0x89}, 256<<10)
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = Copy(io.Discard, onlyReader{bytes.NewReader(payload)})
	}
}

func BenchmarkStdlibCopy(b *testing.B) {
	payload := bytes.Repeat([]byte{0x89}, 256<<10)
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = io.Copy(io.Discard, onlyReader{bytes.NewReader(payload)})
	}
}
