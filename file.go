package sha1sum

import (
	"fmt"
	"io"
)

func fileSize(f io.Seeker) (uint64, error) {
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	return uint64(end), nil
}

// SumFile returns the SHA-1 digest and the size of the named file. The file
// is read in chunks of the configured size; only the final chunk may be
// short.
func (h *Hasher) SumFile(path string) (State, uint64, error) {
	f, err := h.fs.Open(path)
	if err != nil {
		return State{}, 0, err
	}
	defer f.Close()

	size, err := fileSize(f)
	if err != nil {
		return State{}, 0, fmt.Errorf("%s: %w", path, err)
	}

	s := initialState()
	chunk := make([]byte, h.chunkSize)

	remaining := size
	for remaining > uint64(len(chunk)) {
		if _, err := io.ReadFull(f, chunk); err != nil {
			return State{}, 0, fmt.Errorf("%s: %w", path, err)
		}
		s = blocks(s, chunk)
		remaining -= uint64(len(chunk))
	}

	// Whatever is left fits in one chunk, it may be empty
	tail := chunk[:remaining]
	if _, err := io.ReadFull(f, tail); err != nil {
		return State{}, 0, fmt.Errorf("%s: %w", path, err)
	}

	n := len(tail) &^ (BlockSize - 1)
	s = blocks(s, tail[:n])

	p := pad(tail[n:], size)

	return blocks(s, p.blocks()), size, nil
}
