package sha1sum

// leftRotate rotates x left by n bits. n must be in the range [1, 31], the
// compressor only ever uses 1, 5 and 30.
func leftRotate(x uint32, n uint) uint32 {
	return x<<n | x>>(32-n)
}
