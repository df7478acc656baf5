package plumbing

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteCounter(t *testing.T) {
	wc := new(WriteCounter)

	n, err := io.Copy(wc, strings.NewReader("hello, world"))
	assert.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, uint64(12), wc.Count())

	wc.Write(make([]byte, 100))
	assert.Equal(t, uint64(112), wc.Count())
}
