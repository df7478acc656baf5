package sha1sum

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bodgit/sha1sum/internal/plumbing"
	"github.com/go-git/go-billy/v5/util"
	"github.com/uwedeportivo/torrentzip"
	"go.uber.org/zap"
)

func copyMember(w *torrentzip.Writer, f *zip.File) error {
	fr, err := f.Open()
	if err != nil {
		return err
	}
	defer fr.Close()

	fw, err := w.Create(f.Name)
	if err != nil {
		return err
	}

	_, err = io.Copy(fw, fr)

	return err
}

// Repack rewrites the named zip archive in place as a TorrentZip, which
// always produces the same bytes for the same members, and returns the
// digest and size of the new archive computed while it was written.
func (h *Hasher) Repack(path string) (State, uint64, error) {
	in, err := h.fs.Open(path)
	if err != nil {
		return State{}, 0, err
	}
	defer in.Close()

	size, err := fileSize(in)
	if err != nil {
		return State{}, 0, err
	}

	reader, err := zip.NewReader(in, int64(size))
	if err != nil {
		return State{}, 0, fmt.Errorf("%s: %w", path, err)
	}

	tmpfile, err := util.TempFile(h.fs, filepath.Dir(path), "."+filepath.Base(path))
	if err != nil {
		return State{}, 0, err
	}
	defer h.fs.Remove(tmpfile.Name())

	d := newDigest()
	wc := new(plumbing.WriteCounter)

	// Create new zip and compute SHA1 at the same time
	w, err := torrentzip.NewWriter(io.MultiWriter(tmpfile, d, wc))
	if err != nil {
		tmpfile.Close()
		return State{}, 0, err
	}

	for _, f := range reader.File {
		if err := copyMember(w, f); err != nil {
			tmpfile.Close()
			return State{}, 0, fmt.Errorf("%s: %s: %w", path, f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		tmpfile.Close()
		return State{}, 0, err
	}

	if err := tmpfile.Close(); err != nil {
		return State{}, 0, err
	}

	if err := in.Close(); err != nil {
		return State{}, 0, err
	}

	if err := h.fs.Rename(tmpfile.Name(), path); err != nil {
		return State{}, 0, err
	}

	s := d.state()

	h.logger.Debug("repacked",
		zap.String("path", path),
		zap.Uint64("size", wc.Count()),
		zap.String("sha1", s.String()),
	)

	return s, wc.Count(), nil
}
