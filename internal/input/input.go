// Package input acquires file contents as resident byte regions for
// slice-based search. The search engine itself never opens files; this
// package is the collaborator that feeds it. Small files are read with
// pread into pooled buffers, large ones are memory-mapped when the
// searcher's memory map preference allows it.
package input

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/dl/linegrep/internal/searcher"
)

// DefaultMmapThreshold is the file size at or above which the adaptive
// opener prefers a memory map over a buffered read.
const DefaultMmapThreshold = 256 * 1024

// Region is file content resident in memory. Close must be called when
// the region is no longer referenced; it returns pooled buffers and
// unmaps mappings.
type Region struct {
	Data  []byte
	close func() error
}

// Close releases the region's backing storage.
func (r Region) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Opener acquires a file's contents as a Region.
type Opener interface {
	Open(path string) (Region, error)
}

// NewOpener selects an acquisition strategy from the searcher's memory
// map preference. With MmapNever every file is read onto the heap; with
// MmapAuto files of threshold bytes or more are mapped instead. A
// threshold of 0 means DefaultMmapThreshold.
func NewOpener(choice searcher.MmapChoice, threshold int64) Opener {
	if choice == searcher.MmapNever {
		return bufferedOpener{}
	}
	if threshold <= 0 {
		threshold = DefaultMmapThreshold
	}
	return adaptiveOpener{threshold: threshold}
}

type bufferedOpener struct{}

func (bufferedOpener) Open(path string) (Region, error) {
	fd, size, err := openSized(path)
	if err != nil {
		return Region{}, err
	}
	if size == 0 {
		unix.Close(fd)
		return Region{}, nil
	}
	return readBuffered(fd, size)
}

type adaptiveOpener struct {
	threshold int64
}

func (o adaptiveOpener) Open(path string) (Region, error) {
	fd, size, err := openSized(path)
	if err != nil {
		return Region{}, err
	}
	if size == 0 {
		unix.Close(fd)
		return Region{}, nil
	}
	if size >= o.threshold {
		return readMmap(fd, size)
	}
	return readBuffered(fd, size)
}

// openSized opens path read-only and returns its size from a single
// fstat. O_NOATIME is attempted first; it fails on files the caller
// does not own, so plain O_RDONLY is the fallback.
func openSized(path string) (fd int, size int64, err error) {
	fd, err = unix.Open(path, unix.O_RDONLY|unix.O_NOATIME, 0)
	if err != nil {
		fd, err = unix.Open(path, unix.O_RDONLY, 0)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return 0, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return fd, stat.Size, nil
}
