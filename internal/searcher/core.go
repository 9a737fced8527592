package searcher

import (
	"bytes"

	"github.com/dl/linegrep/internal/matcher"
)

// contextEntry is a line retained for potential before-context
// reporting.
type contextEntry struct {
	bytes   []byte
	offset  int64
	lineNum int64
}

// scanCore is the matching, context-window, and line-numbering logic
// shared by the streaming and slice scanners. It classifies one line at
// a time and reports matches with their surrounding context.
type scanCore struct {
	s    *Searcher
	m    matcher.Matcher
	sink Sink

	// before is a rolling window of the most recent non-reported lines,
	// sized exactly to the configured before-context count.
	before []contextEntry
	// afterLeft counts down trailing context lines still owed to the
	// most recent match.
	afterLeft int
	// lineNum is the 1-based number of the next line to be processed;
	// 0 when line numbering is disabled.
	lineNum int64

	// copyLines retains copies of before-context lines. Required for
	// streaming search, where the underlying buffer rolls between
	// fills.
	copyLines bool
	// binaryByte re-checks every reported span during resident-region
	// search, where no fill step enforces the policy.
	binaryByte   byte
	checkBinary  bool
	binaryCutoff bool
}

// newScanCore builds the shared scanner state. resident enables
// per-span binary re-checks under a quit policy.
func newScanCore(s *Searcher, m matcher.Matcher, sink Sink, copyLines, resident bool) scanCore {
	c := scanCore{s: s, m: m, sink: sink, copyLines: copyLines}
	if n := s.config.beforeContext; n > 0 {
		c.before = make([]contextEntry, 0, n)
	}
	if s.config.lineNumber {
		c.lineNum = 1
	}
	if resident {
		if b, ok := s.config.binary.det.QuitByte(); ok {
			c.binaryByte = b
			c.checkBinary = true
		}
	}
	return c
}

// processLine runs the matcher against one line (without its
// terminator) and reports it according to the context rules. It returns
// false when the search should stop.
func (c *scanCore) processLine(line []byte, offset int64) (bool, error) {
	_, matched := c.m.FindAt(line, 0)
	return c.processClassified(line, offset, matched)
}

// processClassified applies invert-match, context, and line-number
// bookkeeping to an already classified line.
func (c *scanCore) processClassified(line []byte, offset int64, matched bool) (bool, error) {
	goon := true
	var err error

	switch {
	case matched != c.s.config.invertMatch:
		goon, err = c.flushBefore()
		if goon && err == nil {
			goon, err = c.deliverMatch(line, offset, c.lineNum)
		}
		c.afterLeft = c.s.config.afterContext
	case c.afterLeft > 0:
		goon, err = c.deliverContext(line, offset, c.lineNum, ContextAfter)
		c.afterLeft--
	case cap(c.before) > 0:
		c.pushBefore(line, offset)
	}

	if c.lineNum > 0 {
		c.lineNum++
	}
	return goon, err
}

// pushBefore retains a line in the rolling before-context window,
// evicting the oldest entry when full.
func (c *scanCore) pushBefore(line []byte, offset int64) {
	if len(c.before) == cap(c.before) {
		copy(c.before, c.before[1:])
		c.before = c.before[:len(c.before)-1]
	}
	if c.copyLines {
		line = append([]byte(nil), line...)
	}
	c.before = append(c.before, contextEntry{
		bytes:   line,
		offset:  offset,
		lineNum: c.lineNum,
	})
}

// flushBefore reports and clears the retained before-context lines.
func (c *scanCore) flushBefore() (bool, error) {
	for i := range c.before {
		e := &c.before[i]
		goon, err := c.deliverContext(e.bytes, e.offset, e.lineNum, ContextBefore)
		if !goon || err != nil {
			c.before = c.before[:0]
			return goon, err
		}
	}
	c.before = c.before[:0]
	return true, nil
}

func (c *scanCore) deliverMatch(line []byte, offset, lineNum int64) (bool, error) {
	if goon, err := c.spanCheck(line, offset); !goon || err != nil {
		return goon, err
	}
	return c.sink.Match(c.s, &SinkMatch{
		Bytes:      line,
		Offset:     offset,
		LineNumber: lineNum,
	})
}

func (c *scanCore) deliverContext(line []byte, offset, lineNum int64, kind SinkContextKind) (bool, error) {
	if goon, err := c.spanCheck(line, offset); !goon || err != nil {
		return goon, err
	}
	return c.sink.Context(c.s, &SinkContext{
		Bytes:      line,
		Offset:     offset,
		LineNumber: lineNum,
		Kind:       kind,
	})
}

// spanCheck inspects a span about to be reported for the binary byte.
// A hit suppresses the span and ends the search as if at end of input.
func (c *scanCore) spanCheck(span []byte, offset int64) (bool, error) {
	if !c.checkBinary {
		return true, nil
	}
	i := bytes.IndexByte(span, c.binaryByte)
	if i < 0 {
		return true, nil
	}
	c.binaryCutoff = true
	return false, notifyBinary(c.s, c.sink, offset+int64(i))
}
