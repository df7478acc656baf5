package sha1sum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep(t *testing.T) {
	// "abc" fits in a single padded block
	p := pad([]byte("abc"), 3)
	b := p.blocks()

	assert.Len(t, b, BlockSize)
	assert.Equal(t, State{0xa9993e36, 0x4706816a, 0xba3e2571, 0x7850c26c, 0x9cd0d89d}, initialState().step(b))
}

func TestStepDoesNotModifyReceiver(t *testing.T) {
	s := initialState()
	block := make([]byte, BlockSize)

	_ = s.step(block)

	assert.Equal(t, initialState(), s)
}

func TestBlocksIgnoresPartialBlock(t *testing.T) {
	data := make([]byte, 2*BlockSize+10)
	for i := range data {
		data[i] = byte(i)
	}

	want := initialState().step(data[:BlockSize]).step(data[BlockSize : 2*BlockSize])

	assert.Equal(t, want, blocks(initialState(), data))
	assert.Equal(t, initialState(), blocks(initialState(), data[:BlockSize-1]))
}
