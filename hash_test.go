package sha1sum

import (
	"crypto/sha1"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWriteInPieces(t *testing.T) {
	data := randomBytes(10000, 4)
	want := sha1.Sum(data)

	for _, piece := range []int{1, 7, 63, 64, 65, 128, 1000, 10000} {
		t.Run(fmt.Sprintf("%d", piece), func(t *testing.T) {
			h := New()
			for p := data; len(p) > 0; {
				n := piece
				if n > len(p) {
					n = len(p)
				}
				written, err := h.Write(p[:n])
				assert.NoError(t, err)
				assert.Equal(t, n, written)
				p = p[n:]
			}

			assert.Equal(t, want[:], h.Sum(nil))
		})
	}
}

func TestNewSumIsRepeatable(t *testing.T) {
	h := New()
	h.Write([]byte("ab"))

	first := h.Sum(nil)
	assert.Equal(t, first, h.Sum(nil))

	h.Write([]byte("c"))
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", fmt.Sprintf("%x", h.Sum(nil)))
}

func TestNewSumAppends(t *testing.T) {
	h := New()

	b := h.Sum([]byte("prefix"))

	assert.Equal(t, "prefix", string(b[:6]))
	assert.Equal(t, HashBytes(nil), fmt.Sprintf("%x", b[6:]))
}

func TestNewReset(t *testing.T) {
	h := New()
	h.Write([]byte("some data"))
	h.Reset()

	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", fmt.Sprintf("%x", h.Sum(nil)))
	assert.Equal(t, Size, h.Size())
	assert.Equal(t, BlockSize, h.BlockSize())
}
