package sha1sum

// padding holds the one or two final blocks of a message: the trailing data
// bytes, a single 0x80 marker, zeroes and the big-endian message length in
// bits.
type padding struct {
	buf [2 * BlockSize]byte
	n   int
}

// pad builds the final blocks for tail, which must be shorter than a block.
// total is the length in bytes of the whole message, not just the tail.
func pad(tail []byte, total uint64) padding {
	if len(tail) >= BlockSize {
		panic("sha1sum: padding tail must be shorter than a block")
	}

	var p padding

	copy(p.buf[:], tail)
	p.buf[len(tail)] = 0x80

	// The length field needs 8 bytes after the marker
	if len(tail) < BlockSize-8 {
		p.n = BlockSize
	} else {
		p.n = 2 * BlockSize
	}

	length := total << 3
	for i := 1; i <= 8; i++ {
		p.buf[p.n-i] = byte(length)
		length >>= 8
		if length == 0 {
			break
		}
	}

	return p
}

func (p *padding) blocks() []byte {
	return p.buf[:p.n]
}
