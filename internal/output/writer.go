package output

import (
	"os"

	"golang.org/x/sys/unix"
)

// Writer writes formatted output to a file descriptor with writev.
type Writer struct {
	fd int
}

// NewWriter creates a Writer on stdout.
func NewWriter() *Writer {
	return &Writer{fd: int(os.Stdout.Fd())}
}

// Write pushes data to the descriptor, retrying short writes.
func (w *Writer) Write(data []byte) error {
	for len(data) > 0 {
		n, err := unix.Writev(w.fd, [][]byte{data})
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// OrderedWriter consumes per-file results from concurrent workers and
// writes them in sequence order, so parallel runs produce the same
// output as sequential ones.
type OrderedWriter struct {
	writer    *Writer
	formatter Formatter
	multiFile bool
	buf       []byte
}

// NewOrderedWriter creates an OrderedWriter.
func NewOrderedWriter(w *Writer, f Formatter, multiFile bool) *OrderedWriter {
	return &OrderedWriter{
		writer:    w,
		formatter: f,
		multiFile: multiFile,
	}
}

// WriteOrdered drains results, buffering out-of-order arrivals and
// flushing runs of consecutive sequence numbers. onMatch, when non-nil,
// is invoked once per result that contains a match; onError, when
// non-nil, once per result that carries an error. Errored results
// produce no output but still advance the sequence.
func (ow *OrderedWriter) WriteOrdered(results <-chan *Result, onMatch func(), onError func(path string, err error)) {
	nextSeq := 1
	pending := make(map[int]*Result)

	for r := range results {
		if r.Err != nil {
			if onError != nil {
				onError(r.Path, r.Err)
			}
		} else if r.HasMatch() && onMatch != nil {
			onMatch()
		}
		if r.Seq != nextSeq {
			pending[r.Seq] = r
			continue
		}
		ow.writeResult(r)
		nextSeq++
		for {
			p, ok := pending[nextSeq]
			if !ok {
				break
			}
			ow.writeResult(p)
			delete(pending, nextSeq)
			nextSeq++
		}
	}
}

func (ow *OrderedWriter) writeResult(r *Result) {
	if r.Err != nil {
		return
	}
	ow.buf = ow.formatter.Format(ow.buf[:0], r, ow.multiFile)
	ow.writer.Write(ow.buf)
}
