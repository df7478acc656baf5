package sha1sum

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeftRotate(t *testing.T) {
	tests := []struct {
		x    uint32
		n    uint
		want uint32
	}{
		{0x80000000, 1, 0x00000001},
		{0x00000001, 31, 0x80000000},
		{0x12345678, 4, 0x23456781},
		{0x67452301, 5, 0xe8a4602c},
		{0xefcdab89, 30, 0x7bf36ae2},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, leftRotate(tt.x, tt.n), "leftRotate(%#08x, %d)", tt.x, tt.n)
	}
}

func TestLeftRotateMatchesBits(t *testing.T) {
	for _, x := range []uint32{0, 1, 0xdeadbeef, 0xffffffff, 0x5a827999} {
		for n := uint(1); n < 32; n++ {
			assert.Equal(t, bits.RotateLeft32(x, int(n)), leftRotate(x, n))
		}
	}
}
