// Package sha1sum computes SHA-1 digests of byte slices and of files, which
// are streamed in fixed size chunks rather than read into memory.
package sha1sum

import (
	"errors"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

// Hasher hashes files found on a filesystem. It is safe for concurrent use.
type Hasher struct {
	fs        billy.Filesystem
	logger    *zap.Logger
	chunkSize int
}

// Option configures a Hasher.
type Option func(*Hasher) error

// WithChunkSize sets the size of each read from a file. It must be a
// positive multiple of BlockSize.
func WithChunkSize(n int) Option {
	return func(h *Hasher) error {
		if n <= 0 || n%BlockSize != 0 {
			return fmt.Errorf("chunk size %d is not a positive multiple of %d", n, BlockSize)
		}
		h.chunkSize = n
		return nil
	}
}

// NewHasher returns a Hasher reading files from fs and logging to logger.
func NewHasher(fs billy.Filesystem, logger *zap.Logger, options ...Option) (*Hasher, error) {
	if fs == nil {
		return nil, errors.New("need a filesystem")
	}
	if logger == nil {
		return nil, errors.New("need a logger")
	}

	hasher := Hasher{
		fs:        fs,
		logger:    logger,
		chunkSize: DefaultChunkSize,
	}

	for _, option := range options {
		if err := option(&hasher); err != nil {
			return nil, err
		}
	}

	return &hasher, nil
}

// ChunkSize returns the size of each read from a file.
func (h *Hasher) ChunkSize() int {
	return h.chunkSize
}

// HashFile returns the SHA-1 digest of the named file as a hexadecimal
// string. On failure the error is logged and an empty string is returned.
func (h *Hasher) HashFile(path string) string {
	s, _, err := h.SumFile(path)
	if err != nil {
		h.logger.Error("can not hash file", zap.String("path", path), zap.Error(err))
		return ""
	}

	return s.String()
}
