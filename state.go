package sha1sum

import "encoding/binary"

const (
	init0 = 0x67452301
	init1 = 0xEFCDAB89
	init2 = 0x98BADCFE
	init3 = 0x10325476
	init4 = 0xC3D2E1F0
)

// State is the five word running state of a SHA-1 computation. Once the
// final block has been compressed it is the digest.
type State struct {
	H0, H1, H2, H3, H4 uint32
}

func initialState() State {
	return State{init0, init1, init2, init3, init4}
}

const hexDigits = "0123456789abcdef"

func appendHex32(dst []byte, x uint32) []byte {
	for shift := 28; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(x>>uint(shift))&0xf])
	}
	return dst
}

func (s State) words() [5]uint32 {
	return [5]uint32{s.H0, s.H1, s.H2, s.H3, s.H4}
}

// String returns the digest as 40 lowercase hexadecimal characters.
func (s State) String() string {
	b := make([]byte, 0, HexSize)
	for _, h := range s.words() {
		b = appendHex32(b, h)
	}
	return string(b)
}

// Bytes returns the digest in its 20 byte big-endian form.
func (s State) Bytes() [Size]byte {
	var digest [Size]byte
	for i, h := range s.words() {
		binary.BigEndian.PutUint32(digest[i*4:], h)
	}
	return digest
}
