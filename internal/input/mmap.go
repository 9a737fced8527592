package input

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// readMmap memory-maps an already-opened fd of known size, with
// sequential-access kernel hints. Falls back to a buffered read when
// the mapping fails (some filesystems refuse mmap). Takes ownership of
// fd.
func readMmap(fd int, size int64) (Region, error) {
	unix.Fadvise(fd, 0, size, unix.FADV_SEQUENTIAL)

	data, err := syscall.Mmap(fd, 0, int(size), syscall.PROT_READ, syscall.MAP_PRIVATE|syscall.MAP_POPULATE)
	if err != nil {
		return readBuffered(fd, size)
	}
	unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return Region{
		Data: data,
		close: func() error {
			unix.Madvise(data, unix.MADV_DONTNEED)
			syscall.Munmap(data)
			unix.Close(fd)
			return nil
		},
	}, nil
}
