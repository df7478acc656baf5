package sha1sum

import (
	"path"
	"path/filepath"
)

// Filter decides which paths, relative to the directory being scanned, are
// skipped by the pipeline. Hidden files and directories are always skipped.
type Filter interface {
	ignorePath(string) bool
}

// NoFilter skips nothing beyond hidden entries.
type NoFilter struct{}

func (NoFilter) ignorePath(relpath string) bool {
	return false
}

// Exclude skips any path where either the whole relative path or its final
// element matches one of the glob patterns.
type Exclude []string

// NewExclude returns an Exclude filter after checking every pattern is
// well-formed.
func NewExclude(patterns ...string) (Exclude, error) {
	for _, pattern := range patterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, err
		}
	}
	return Exclude(patterns), nil
}

func (e Exclude) ignorePath(relpath string) bool {
	relpath = filepath.ToSlash(relpath)
	for _, pattern := range e {
		if ok, _ := path.Match(pattern, relpath); ok {
			return true
		}
		if ok, _ := path.Match(pattern, path.Base(relpath)); ok {
			return true
		}
	}
	return false
}
