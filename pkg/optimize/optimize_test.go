package optimize

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytePool(t *testing.T) {
	pool := NewBytePool(1024)
	assert.Equal(t, 1024, pool.Size())

	buf := pool.Get()
	require.Len(t, *buf, 1024)

	*buf = (*buf)[:10]
	pool.Put(buf)

	buf2 := pool.Get()
	assert.Len(t, *buf2, 1024)
}

func TestBytePoolDropsShortSlices(t *testing.T) {
	pool := NewBytePool(64)
	short := make([]byte, 8)
	pool.Put(&short)
	pool.Put(nil)

	assert.Len(t, *pool.Get(), 64)
}

func TestCopy(t *testing.T) {
	src := strings.Repeat("reelhub", CopyBufferSize/3)

	var dst bytes.Buffer
	n, err := Copy(&dst, strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, int64(len(src)), n)
	assert.Equal(t, src, dst.String())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestCopyPropagatesReadError(t *testing.T) {
	var dst bytes.Buffer
	_, err := Copy(&dst, failingReader{})
	assert.EqualError(t, err, "disk on fire")
}
