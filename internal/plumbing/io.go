package plumbing

import (
	"sync/atomic"
)

// WriteCounter is an io.Writer that discards its input and counts the bytes.
type WriteCounter struct {
	count uint64
}

func (wc *WriteCounter) Write(p []byte) (int, error) {
	n := len(p)
	atomic.AddUint64(&wc.count, uint64(n))
	return n, nil
}

func (wc *WriteCounter) Count() uint64 {
	return atomic.LoadUint64(&wc.count)
}
