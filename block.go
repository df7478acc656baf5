package sha1sum

const (
	_K0 = 0x5A827999
	_K1 = 0x6ED9EBA1
	_K2 = 0x8F1BBCDC
	_K3 = 0xCA62C1D6
)

// step compresses exactly one 64 byte block into s and returns the result.
func (s State) step(block []byte) State {
	_ = block[BlockSize-1]

	var w [80]uint32

	for i := 0; i < 16; i++ {
		j := i * 4
		w[i] = uint32(block[j])<<24 | uint32(block[j+1])<<16 | uint32(block[j+2])<<8 | uint32(block[j+3])
	}

	for i := 16; i < 80; i++ {
		w[i] = leftRotate(w[i-3]^w[i-8]^w[i-14]^w[i-16], 1)
	}

	a, b, c, d, e := s.H0, s.H1, s.H2, s.H3, s.H4

	i := 0
	for ; i < 20; i++ {
		f := (b & c) ^ (^b & d)
		t := leftRotate(a, 5) + f + e + _K0 + w[i]
		a, b, c, d, e = t, a, leftRotate(b, 30), c, d
	}
	for ; i < 40; i++ {
		f := b ^ c ^ d
		t := leftRotate(a, 5) + f + e + _K1 + w[i]
		a, b, c, d, e = t, a, leftRotate(b, 30), c, d
	}
	for ; i < 60; i++ {
		f := (b & c) ^ (b & d) ^ (c & d)
		t := leftRotate(a, 5) + f + e + _K2 + w[i]
		a, b, c, d, e = t, a, leftRotate(b, 30), c, d
	}
	for ; i < 80; i++ {
		f := b ^ c ^ d
		t := leftRotate(a, 5) + f + e + _K3 + w[i]
		a, b, c, d, e = t, a, leftRotate(b, 30), c, d
	}

	s.H0 += a
	s.H1 += b
	s.H2 += c
	s.H3 += d
	s.H4 += e

	return s
}

// blocks compresses every complete block in p, any trailing partial block is
// ignored.
func blocks(s State, p []byte) State {
	for len(p) >= BlockSize {
		s = s.step(p[:BlockSize])
		p = p[BlockSize:]
	}
	return s
}
