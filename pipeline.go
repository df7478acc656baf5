package sha1sum

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bodgit/sha1sum/internal/plumbing"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Result is the digest of a single file, or of a single member of a zip
// archive in which case Member is set.
type Result struct {
	Path   string `json:"path"`
	Member string `json:"member,omitempty"`
	Size   uint64 `json:"size"`
	SHA1   string `json:"sha1"`
	Known  bool   `json:"known,omitempty"`
}

// Name returns the path of the result, zip members are named after the
// archive.
func (r Result) Name() string {
	if r.Member != "" {
		return r.Path + "/" + r.Member
	}
	return r.Path
}

type collector struct {
	mutex   sync.Mutex
	results []Result
}

func (c *collector) add(r Result) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.results = append(c.results, r)
}

func (c *collector) sorted() []Result {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	sort.Slice(c.results, func(i, j int) bool {
		return c.results[i].Name() < c.results[j].Name()
	})
	return c.results
}

func (h *Hasher) findFiles(ctx context.Context, dir string, filter Filter) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- util.Walk(h.fs, dir, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Work out the path relative to the base directory
			relpath, err := filepath.Rel(dir, file)
			if err != nil {
				return err
			}

			if relpath != "." && (info.Name()[0] == '.' || (filter != nil && filter.ignorePath(relpath))) {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func mergeFiles(ctx context.Context, in ...<-chan string) (<-chan string, <-chan error, error) {
	var wg sync.WaitGroup
	out := make(chan string)
	errc := make(chan error, 1)
	wg.Add(len(in))
	for _, c := range in {
		go func(c <-chan string) {
			defer wg.Done()
			for n := range c {
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
		close(errc)
	}()
	return out, errc, nil
}

func (h *Hasher) detect(file string) (string, error) {
	f, err := h.fs.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}

	return mtype.Extension(), nil
}

func (h *Hasher) mimeSplitter(ctx context.Context, in <-chan string) (<-chan string, <-chan string, <-chan error, error) {
	out := make(chan string)
	zip := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(zip)
		defer close(errc)
		var result error
		for file := range in {
			extension, err := h.detect(file)
			if err != nil {
				result = multierr.Append(result, err)
				continue
			}
			switch extension {
			case ".zip":
				select {
				case zip <- file:
				case <-ctx.Done():
					return
				}
			default:
				select {
				case out <- file:
				case <-ctx.Done():
					return
				}
			}
		}
		errc <- result
	}()
	return out, zip, errc, nil
}

func (h *Hasher) record(c *collector, m *Manifest, r Result) error {
	if m != nil {
		known, err := m.match(r.Size, r.SHA1)
		if err != nil {
			return err
		}
		r.Known = known
	}

	h.logger.Debug("hashed",
		zap.String("path", r.Name()),
		zap.Uint64("size", r.Size),
		zap.String("sha1", r.SHA1),
	)

	c.add(r)

	return nil
}

func (h *Hasher) processFile(ctx context.Context, c *collector, m *Manifest, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		var result error
		for file := range in {
			s, size, err := h.SumFile(file)
			if err != nil {
				result = multierr.Append(result, err)
				continue
			}

			if err := h.record(c, m, Result{Path: file, Size: size, SHA1: s.String()}); err != nil {
				result = multierr.Append(result, err)
			}
		}
		errc <- result
	}()
	return errc, nil
}

func (h *Hasher) sumZip(c *collector, m *Manifest, file string) error {
	f, err := h.fs.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	size, err := fileSize(f)
	if err != nil {
		return err
	}

	r, err := zip.NewReader(f, int64(size))
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	for _, zf := range r.File {
		if zf.FileInfo().IsDir() {
			continue
		}

		fr, err := zf.Open()
		if err != nil {
			return fmt.Errorf("%s: %s: %w", file, zf.Name, err)
		}

		d := newDigest()
		wc := new(plumbing.WriteCounter)

		_, err = io.Copy(io.MultiWriter(d, wc), fr)
		fr.Close()
		if err != nil {
			return fmt.Errorf("%s: %s: %w", file, zf.Name, err)
		}

		if err := h.record(c, m, Result{Path: file, Member: zf.Name, Size: wc.Count(), SHA1: d.state().String()}); err != nil {
			return err
		}
	}

	return nil
}

func (h *Hasher) processZip(ctx context.Context, c *collector, m *Manifest, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		var result error
		for file := range in {
			if err := h.sumZip(c, m, file); err != nil {
				result = multierr.Append(result, err)
			}
		}
		errc <- result
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	var result error
	for err := range mergeErrors(errs...) {
		result = multierr.Append(result, err)
	}
	return result
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Pipeline hashes every regular file found beneath dirs using the given
// number of workers. Zip archives are opened and each member is hashed
// instead. If m is not nil every result is looked up in it and matching
// entries are marked as seen. The results are sorted by name; errors for
// individual files don't stop the pipeline and are returned combined
// alongside whatever could be hashed.
func (h *Hasher) Pipeline(m *Manifest, dirs []string, filter Filter, workers int) ([]Result, error) {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	if workers < 1 {
		workers = 1
	}

	var filecList []<-chan string
	var errcList []<-chan error

	for _, dir := range dirs {
		filec, errc, err := h.findFiles(ctx, dir, filter)
		if err != nil {
			return nil, err
		}
		filecList = append(filecList, filec)
		errcList = append(errcList, errc)
	}

	mergec, errc, err := mergeFiles(ctx, filecList...)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	filec, zipc, errc, err := h.mimeSplitter(ctx, mergec)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	c := new(collector)

	for i := 0; i < workers; i++ {
		errc, err = h.processFile(ctx, c, m, filec)
		if err != nil {
			return nil, err
		}
		errcList = append(errcList, errc)

		errc, err = h.processZip(ctx, c, m, zipc)
		if err != nil {
			return nil, err
		}
		errcList = append(errcList, errc)
	}

	err = waitForPipeline(errcList...)

	return c.sorted(), err
}
