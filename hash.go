package sha1sum

import "hash"

// digest is the incremental form of Sum, used where the length of the input
// isn't known up front such as standard input or zip members.
type digest struct {
	s   State
	x   [BlockSize]byte
	nx  int
	len uint64
}

// New returns a new hash.Hash computing the SHA-1 digest.
func New() hash.Hash {
	return newDigest()
}

func newDigest() *digest {
	d := new(digest)
	d.Reset()
	return d
}

func (d *digest) Reset() {
	d.s = initialState()
	d.nx = 0
	d.len = 0
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Write(p []byte) (int, error) {
	nn := len(p)
	d.len += uint64(nn)

	if d.nx > 0 {
		n := copy(d.x[d.nx:], p)
		d.nx += n
		if d.nx == BlockSize {
			d.s = d.s.step(d.x[:])
			d.nx = 0
		}
		p = p[n:]
	}

	if len(p) >= BlockSize {
		n := len(p) &^ (BlockSize - 1)
		d.s = blocks(d.s, p[:n])
		p = p[n:]
	}

	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}

	return nn, nil
}

// state returns the digest of everything written so far without modifying d.
func (d *digest) state() State {
	p := pad(d.x[:d.nx], d.len)
	return blocks(d.s, p.blocks())
}

func (d *digest) Sum(in []byte) []byte {
	b := d.state().Bytes()
	return append(in, b[:]...)
}
