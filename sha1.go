package sha1sum

import (
	"os"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// Size is the size of a SHA-1 digest in bytes.
	Size = 20
	// HexSize is the length of a digest rendered as hexadecimal.
	HexSize = 2 * Size
	// BlockSize is the size of the blocks consumed by the compressor.
	BlockSize = 64
	// DefaultChunkSize is the size of each read when hashing a file.
	DefaultChunkSize = 4096
)

// Sum returns the SHA-1 digest of data.
func Sum(data []byte) State {
	n := len(data) &^ (BlockSize - 1)

	s := blocks(initialState(), data[:n])
	p := pad(data[n:], uint64(len(data)))

	return blocks(s, p.blocks())
}

// HashBytes returns the SHA-1 digest of data as a hexadecimal string.
func HashBytes(data []byte) string {
	return Sum(data).String()
}

var (
	defaultOnce   sync.Once
	defaultHasher *Hasher
)

func stderrLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zapcore.ErrorLevel,
	)
	return zap.New(core)
}

// HashFile returns the SHA-1 digest of the named file on the local
// filesystem. If the file cannot be read a diagnostic is written to standard
// error and an empty string is returned.
func HashFile(path string) string {
	defaultOnce.Do(func() {
		defaultHasher = &Hasher{
			fs:        osfs.New(""),
			logger:    stderrLogger(),
			chunkSize: DefaultChunkSize,
		}
	})
	return defaultHasher.HashFile(path)
}
