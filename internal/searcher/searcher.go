// Package searcher executes line-oriented searches over streams and
// resident byte regions, reporting matches and context lines to a
// caller-supplied sink. The pattern-matching algorithm itself is
// supplied per search call as a matcher.Matcher.
package searcher

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/sys/unix"

	"github.com/dl/linegrep/internal/linebuf"
	"github.com/dl/linegrep/internal/matcher"
)

// Builder configures and constructs a Searcher.
//
// All setters are independent and chainable. Building fails only for
// configurations under which no search strategy could acquire input.
type Builder struct {
	config config
}

// NewBuilder returns a Builder with the default configuration: newline
// terminator, no inversion, no context, no line numbers, no heap limit,
// automatic memory maps, no binary detection, single-line matching.
func NewBuilder() *Builder {
	return &Builder{config: defaultConfig()}
}

// LineTerminator sets the byte that delimits lines. Default '\n'.
func (b *Builder) LineTerminator(t byte) *Builder {
	b.config.lineTerm = t
	return b
}

// InvertMatch makes lines that do not match the pattern the reported
// match set.
func (b *Builder) InvertMatch(yes bool) *Builder {
	b.config.invertMatch = yes
	return b
}

// LineNumber enables counting and reporting of 1-based line numbers.
// Counting has a small cost, so it is off by default.
func (b *Builder) LineNumber(yes bool) *Builder {
	b.config.lineNumber = yes
	return b
}

// MultiLine permits matches to span line boundaries. This requires the
// entire input resident in memory: stream searches read the whole
// stream onto the heap first.
func (b *Builder) MultiLine(yes bool) *Builder {
	b.config.multiLine = yes
	return b
}

// BeforeContext sets how many lines preceding each match to report.
func (b *Builder) BeforeContext(n int) *Builder {
	b.config.beforeContext = n
	return b
}

// AfterContext sets how many lines following each match to report.
func (b *Builder) AfterContext(n int) *Builder {
	b.config.afterContext = n
	return b
}

// HeapLimit bounds the number of bytes the searcher may allocate for
// buffering. A negative value removes the limit (the default). Zero
// disables heap-based search entirely, leaving memory maps as the only
// strategy.
func (b *Builder) HeapLimit(n int) *Builder {
	if n < 0 {
		n = -1
	}
	b.config.heapLimit = n
	return b
}

// MemoryMap sets the memory map strategy.
func (b *Builder) MemoryMap(choice MmapChoice) *Builder {
	b.config.mmap = choice
	return b
}

// BinaryDetection sets the binary detection strategy.
func (b *Builder) BinaryDetection(d BinaryDetection) *Builder {
	b.config.binary = d
	return b
}

// CheckMatcherLineTerminator makes searches fail when the matcher
// declares a line terminator different from the searcher's. Off by
// default: most matchers are terminator-agnostic and the check is
// stricter than commonly wanted.
func (b *Builder) CheckMatcherLineTerminator(yes bool) *Builder {
	b.config.checkMatcherLT = yes
	return b
}

// Build validates the configuration and constructs a Searcher. Reuse a
// built searcher across many sequential searches to amortize its buffer
// allocations.
func (b *Builder) Build() (*Searcher, error) {
	if b.config.heapLimit == 0 && !b.config.mmap.enabled() {
		return nil, ErrSearchUnavailable
	}
	return &Searcher{
		config:  b.config,
		lineBuf: linebuf.New(b.config.lineBufferOptions()),
	}, nil
}

// Searcher executes searches over a haystack and writes results to a
// caller-provided sink. A searcher owns its buffers exclusively, so at
// most one search may be in progress per instance; run one searcher per
// worker to search concurrently.
type Searcher struct {
	config config

	// lineBuf is the incremental buffer for streaming line-oriented
	// search. Its contents are transient per search call.
	lineBuf *linebuf.LineBuffer

	// multiBuf holds the entire stream contents for multi-line stream
	// search. Cleared and refilled per search call.
	multiBuf []byte
}

// SearchReader executes a search over r, reporting to sink.
//
// When multi-line search is disabled the stream is searched
// incrementally through the line buffer. Otherwise the stream is read
// to completion onto the heap first, subject to the heap limit; prefer
// searching a resident region when one is available so this copy is
// avoided.
func (s *Searcher) SearchReader(m matcher.Matcher, r io.Reader, sink Sink) error {
	if err := s.checkMatcher(m); err != nil {
		return err
	}
	if s.config.multiLine {
		if err := s.fillMultiLineBuffer(r); err != nil {
			return err
		}
		return s.newMultiLine(m, s.multiBuf, sink).run()
	}
	rbl := readByLine{
		core: newScanCore(s, m, sink, true, false),
		rdr:  linebuf.NewReader(r, s.lineBuf),
	}
	return rbl.run()
}

// SearchSlice executes a search over an already resident byte region,
// reporting to sink. No copy of data is made.
func (s *Searcher) SearchSlice(m matcher.Matcher, data []byte, sink Sink) error {
	if err := s.checkMatcher(m); err != nil {
		return err
	}
	if s.config.multiLine {
		return s.newMultiLine(m, data, sink).run()
	}
	sbl := sliceByLine{
		core: newScanCore(s, m, sink, false, true),
		data: data,
	}
	return sbl.run()
}

// LineTerminator returns the line terminator used by this searcher.
func (s *Searcher) LineTerminator() byte { return s.config.lineTerm }

// InvertMatch reports whether this searcher inverts its results.
func (s *Searcher) InvertMatch() bool { return s.config.invertMatch }

// LineNumber reports whether this searcher counts line numbers.
func (s *Searcher) LineNumber() bool { return s.config.lineNumber }

// MultiLine reports whether matches may span lines.
func (s *Searcher) MultiLine() bool { return s.config.multiLine }

// BeforeContext returns the number of leading context lines to report.
func (s *Searcher) BeforeContext() int { return s.config.beforeContext }

// AfterContext returns the number of trailing context lines to report.
func (s *Searcher) AfterContext() int { return s.config.afterContext }

func (s *Searcher) checkMatcher(m matcher.Matcher) error {
	if !s.config.checkMatcherLT {
		return nil
	}
	if t, ok := m.LineTerminator(); ok && t != s.config.lineTerm {
		return &MismatchedLineTermError{Matcher: t, Searcher: s.config.lineTerm}
	}
	return nil
}

// fillMultiLineBuffer reads r to completion into multiBuf. Without a
// heap limit it defers to the standard read-to-end path; with one it
// pre-sizes the buffer and doubles it as needed, capped at the limit.
func (s *Searcher) fillMultiLineBuffer(r io.Reader) error {
	if s.config.heapLimit < 0 {
		b := bytes.NewBuffer(s.multiBuf[:0])
		if _, err := b.ReadFrom(r); err != nil {
			return err
		}
		s.multiBuf = b.Bytes()
		return nil
	}

	limit := s.config.heapLimit
	if limit == 0 {
		return &linebuf.AllocError{Limit: limit}
	}

	size := linebuf.DefaultCapacity
	if size > limit {
		size = limit
	}
	buf := s.multiBuf[:0]
	if cap(buf) < size {
		buf = make([]byte, size)
	} else {
		buf = buf[:size]
	}

	pos := 0
	for {
		n, err := r.Read(buf[pos:])
		pos += n
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if err == io.EOF {
				s.multiBuf = buf[:pos]
				return nil
			}
			return err
		}
		if pos == len(buf) {
			if len(buf) == limit {
				// The buffer is exactly at the limit. That is fine if
				// the stream happens to end here, so probe for one
				// more byte before declaring the limit exceeded.
				more, err := s.probe(r)
				if err != nil {
					return err
				}
				if more {
					return &linebuf.AllocError{Limit: limit}
				}
				s.multiBuf = buf[:pos]
				return nil
			}
			size := 2 * len(buf)
			if size > limit {
				size = limit
			}
			nb := make([]byte, size)
			copy(nb, buf)
			buf = nb
		}
	}
}

// probe reports whether r has at least one more byte. Any byte it does
// read would not fit within the heap limit, so it is discarded.
func (s *Searcher) probe(r io.Reader) (bool, error) {
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n > 0 {
			return true, nil
		}
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}
	}
}
