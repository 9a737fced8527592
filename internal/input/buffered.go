package input

import (
	"sync"

	"golang.org/x/sys/unix"
)

// bufPool reuses read buffers across files. Buffers are stored as
// *[]byte so the pool keeps the backing array even after the slice has
// been regrown for a larger file.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 64*1024)
		return &b
	},
}

// readBuffered reads the whole file into a pooled buffer using pread,
// which needs no seek state. Takes ownership of fd.
func readBuffered(fd int, size int64) (Region, error) {
	bp := bufPool.Get().(*[]byte)
	buf := *bp
	if cap(buf) < int(size) {
		buf = make([]byte, size)
	} else {
		buf = buf[:size]
	}

	total := 0
	for total < int(size) {
		n, err := unix.Pread(fd, buf[total:], int64(total))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			unix.Close(fd)
			*bp = buf
			bufPool.Put(bp)
			return Region{}, err
		}
		if n == 0 {
			break // file shrank under us
		}
		total += n
	}
	unix.Close(fd)

	return Region{
		Data: buf[:total],
		close: func() error {
			*bp = buf
			bufPool.Put(bp)
			return nil
		},
	}, nil
}
