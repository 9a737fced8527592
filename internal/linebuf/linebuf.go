// Package linebuf provides an incrementally filled line buffer for
// streaming line-oriented search. The buffer reads from a stream in
// fixed-size chunks, guarantees that callers only ever observe complete
// lines (except at end of input), applies binary detection during the
// fill, and enforces a configurable allocation budget.
package linebuf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// DefaultCapacity is the initial size of a line buffer when no explicit
// capacity is configured.
const DefaultCapacity = 64 * 1024

// AllocError is returned when a buffer would need to grow beyond its
// configured allocation limit to make progress.
type AllocError struct {
	// Limit is the configured limit in bytes.
	Limit int
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("configured allocation limit (%d bytes) exceeded", e.Limit)
}

// BinaryDetection controls how the buffer responds to binary data
// during a fill.
type BinaryDetection struct {
	kind binaryKind
	b    byte
}

type binaryKind int

const (
	binaryNone binaryKind = iota
	binaryQuit
	binaryConvert
)

// NoDetection performs no binary detection. This is the default.
func NoDetection() BinaryDetection {
	return BinaryDetection{kind: binaryNone}
}

// QuitOnByte stops the fill at the first occurrence of b. The buffer
// then behaves as if the stream ended immediately before that byte.
func QuitOnByte(b byte) BinaryDetection {
	return BinaryDetection{kind: binaryQuit, b: b}
}

// ConvertByte replaces every occurrence of b with the line terminator
// during the fill, so callers never observe it.
func ConvertByte(b byte) BinaryDetection {
	return BinaryDetection{kind: binaryConvert, b: b}
}

// QuitByte returns the byte that stops a fill, if quit detection is
// configured.
func (d BinaryDetection) QuitByte() (byte, bool) {
	if d.kind == binaryQuit {
		return d.b, true
	}
	return 0, false
}

// Allocation controls how a buffer may grow beyond its initial
// capacity. The zero value permits unbounded doubling.
type Allocation struct {
	limited    bool
	additional int
}

// GrowUnbounded lets the buffer double freely. This is the default.
func GrowUnbounded() Allocation {
	return Allocation{}
}

// GrowLimit lets the buffer grow by at most additional bytes beyond its
// initial capacity before fills fail with an AllocError.
func GrowLimit(additional int) Allocation {
	return Allocation{limited: true, additional: additional}
}

// Options configures a LineBuffer.
type Options struct {
	// LineTerm is the line terminator byte. Zero means '\n'.
	LineTerm byte
	// Capacity is the initial buffer size. When zero and growth is
	// unbounded, DefaultCapacity is used; with a growth limit, zero is
	// honored literally (a zero-byte budget fails on first fill).
	Capacity int
	// Alloc is the growth policy.
	Alloc Allocation
	// Binary is the binary detection policy applied during fills.
	Binary BinaryDetection
}

// LineBuffer buffers stream data so that it can be scanned one complete
// line at a time. A LineBuffer is reused across searches via Reset.
type LineBuffer struct {
	lineTerm byte
	binary   BinaryDetection
	alloc    Allocation
	maxSize  int // largest permitted allocation when alloc is limited

	// buf[:end] holds valid data. buf[pos:lastLineTerm] is the region
	// exposed to callers: it always ends at a line terminator, except
	// once the input is exhausted, when it extends to end.
	buf          []byte
	pos          int
	lastLineTerm int
	end          int

	absOff    int64 // absolute stream offset of buf[0]
	binaryOff int64 // absolute offset of the detected binary byte, -1 if none
	sawEOF    bool
}

// New creates a LineBuffer from the given options.
func New(opts Options) *LineBuffer {
	term := opts.LineTerm
	if term == 0 {
		term = '\n'
	}
	capacity := opts.Capacity
	if capacity == 0 && !opts.Alloc.limited {
		capacity = DefaultCapacity
	}
	b := &LineBuffer{
		lineTerm: term,
		binary:   opts.Binary,
		alloc:    opts.Alloc,
		buf:      make([]byte, capacity),
	}
	if opts.Alloc.limited {
		b.maxSize = capacity + opts.Alloc.additional
	}
	b.Reset()
	return b
}

// Reset discards all buffered data so the buffer can serve a new stream.
// The underlying allocation is retained.
func (b *LineBuffer) Reset() {
	b.pos = 0
	b.lastLineTerm = 0
	b.end = 0
	b.absOff = 0
	b.binaryOff = -1
	b.sawEOF = false
}

// Buffer returns the bytes currently available for scanning. The slice
// ends at a line terminator, except at end of input where the final
// unterminated line is included.
func (b *LineBuffer) Buffer() []byte {
	return b.buf[b.pos:b.lastLineTerm]
}

// Consume marks the first n bytes of Buffer as scanned.
func (b *LineBuffer) Consume(n int) {
	if n > b.lastLineTerm-b.pos {
		panic("linebuf: consumed more than available")
	}
	b.pos += n
}

// AbsoluteOffset returns the absolute stream offset of Buffer()[0].
func (b *LineBuffer) AbsoluteOffset() int64 {
	return b.absOff + int64(b.pos)
}

// BinaryByteOffset returns the absolute offset of the byte that
// triggered quit detection, or -1 if none was found.
func (b *LineBuffer) BinaryByteOffset() int64 {
	return b.binaryOff
}

// Fill reads from rd until at least one complete line is buffered, the
// input is exhausted, or an error occurs. It reports whether any
// unconsumed data is available. Interrupted reads are retried
// transparently.
func (b *LineBuffer) Fill(rd io.Reader) (bool, error) {
	if b.sawEOF || b.binaryOff >= 0 {
		return b.pos < b.lastLineTerm, nil
	}
	b.roll()
	if b.lastLineTerm > b.pos {
		return true, nil
	}
	for {
		if b.end == len(b.buf) {
			if err := b.grow(); err != nil {
				return false, err
			}
		}
		n, err := rd.Read(b.buf[b.end:])
		if n > 0 {
			if done, avail := b.absorb(n); done {
				return avail, nil
			}
		}
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if err == io.EOF {
				b.sawEOF = true
				b.lastLineTerm = b.end
				return b.pos < b.end, nil
			}
			return false, err
		}
	}
}

// absorb applies binary detection to n newly read bytes and updates the
// complete-line boundary. It reports whether the fill is finished and,
// if so, whether data is available.
func (b *LineBuffer) absorb(n int) (done, avail bool) {
	old := b.end
	b.end += n
	switch b.binary.kind {
	case binaryQuit:
		if i := bytes.IndexByte(b.buf[old:b.end], b.binary.b); i >= 0 {
			b.end = old + i
			b.binaryOff = b.absOff + int64(b.end)
			b.lastLineTerm = b.end
			return true, b.pos < b.end
		}
	case binaryConvert:
		chunk := b.buf[old:b.end]
		for {
			i := bytes.IndexByte(chunk, b.binary.b)
			if i < 0 {
				break
			}
			chunk[i] = b.lineTerm
			chunk = chunk[i+1:]
		}
	}
	if i := bytes.LastIndexByte(b.buf[old:b.end], b.lineTerm); i >= 0 {
		b.lastLineTerm = old + i + 1
		return true, true
	}
	return false, false
}

// roll moves unconsumed data to the front of the buffer, freeing the
// tail for the next read.
func (b *LineBuffer) roll() {
	if b.pos == 0 {
		return
	}
	copy(b.buf, b.buf[b.pos:b.end])
	b.end -= b.pos
	b.lastLineTerm -= b.pos
	b.absOff += int64(b.pos)
	b.pos = 0
}

// grow doubles the buffer, capped at the configured allocation limit.
func (b *LineBuffer) grow() error {
	var newSize int
	if b.alloc.limited {
		if len(b.buf) >= b.maxSize {
			return &AllocError{Limit: b.maxSize}
		}
		newSize = 2 * len(b.buf)
		if newSize > b.maxSize {
			newSize = b.maxSize
		}
	} else {
		newSize = 2 * len(b.buf)
	}
	nb := make([]byte, newSize)
	copy(nb, b.buf[:b.end])
	b.buf = nb
	return nil
}

// Reader couples a stream with a LineBuffer for the duration of one
// search.
type Reader struct {
	rd io.Reader
	b  *LineBuffer
}

// NewReader resets the buffer and binds it to rd.
func NewReader(rd io.Reader, b *LineBuffer) *Reader {
	b.Reset()
	return &Reader{rd: rd, b: b}
}

// Fill delegates to the buffer's Fill against the bound stream.
func (r *Reader) Fill() (bool, error) {
	return r.b.Fill(r.rd)
}

// Buffer returns the bytes available for scanning.
func (r *Reader) Buffer() []byte { return r.b.Buffer() }

// Consume marks the first n bytes of Buffer as scanned.
func (r *Reader) Consume(n int) { r.b.Consume(n) }

// AbsoluteOffset returns the absolute stream offset of Buffer()[0].
func (r *Reader) AbsoluteOffset() int64 { return r.b.AbsoluteOffset() }

// BinaryByteOffset returns the offset of the detected binary byte, or -1.
func (r *Reader) BinaryByteOffset() int64 { return r.b.BinaryByteOffset() }
