package searcher

import (
	"bytes"

	"github.com/dl/linegrep/internal/matcher"
)

// binaryCheckSize is how much of the head of a resident region is
// inspected for binary data when a quit policy is combined with
// multi-line search.
const binaryCheckSize = 8192

// span is a byte range of whole lines; end includes the trailing line
// terminator when one is present.
type span struct {
	start, end int
}

// multiLine finds matches that may cross line boundaries within a fully
// resident region. Line boundaries and context are derived lazily
// around each match; overlapping expanded spans are merged so no byte
// range is ever reported twice.
type multiLine struct {
	s    *Searcher
	m    matcher.Matcher
	sink Sink
	data []byte

	// lastEnd is the exclusive end of the last reported line; nothing
	// at or before it is reported again.
	lastEnd   int
	afterLeft int

	// Forward-only line counting: all reporting is in non-decreasing
	// offset order, so a single counter over terminators suffices.
	lineNum int64
	counted int

	binaryByte  byte
	checkBinary bool
	truncatedAt int64
}

func (s *Searcher) newMultiLine(m matcher.Matcher, data []byte, sink Sink) *multiLine {
	ml := &multiLine{
		s:           s,
		m:           m,
		sink:        sink,
		data:        data,
		truncatedAt: -1,
	}
	if s.config.lineNumber {
		ml.lineNum = 1
	}
	if b, ok := s.config.binary.det.QuitByte(); ok {
		ml.binaryByte = b
		ml.checkBinary = true
	}
	return ml
}

func (ml *multiLine) run() error {
	if ml.checkBinary {
		head := ml.data
		if len(head) > binaryCheckSize {
			head = head[:binaryCheckSize]
		}
		if i := bytes.IndexByte(head, ml.binaryByte); i >= 0 {
			ml.truncatedAt = int64(i)
			ml.data = ml.data[:i]
		}
	}

	var goon bool
	var err error
	if ml.s.config.invertMatch {
		goon, err = ml.runInvert()
	} else {
		goon, err = ml.runMatches()
	}
	if err != nil {
		return err
	}
	if goon && ml.truncatedAt >= 0 {
		return notifyBinary(ml.s, ml.sink, ml.truncatedAt)
	}
	return nil
}

func (ml *multiLine) runMatches() (bool, error) {
	var pending span
	hasPending := false
	pos := 0
	for pos <= len(ml.data) {
		mt, ok := ml.m.FindAt(ml.data, pos)
		if !ok {
			break
		}
		sp := ml.lineSpan(mt)
		if hasPending && sp.start < pending.end {
			// Shares a line with the pending span; coalesce.
			if sp.end > pending.end {
				pending.end = sp.end
			}
		} else {
			if hasPending {
				if goon, err := ml.emit(pending); !goon || err != nil {
					return goon, err
				}
			}
			pending, hasPending = sp, true
		}
		if mt.End > pos {
			pos = mt.End
		} else {
			pos++ // empty match; force progress
		}
	}
	if hasPending {
		if goon, err := ml.emit(pending); !goon || err != nil {
			return goon, err
		}
	}
	return ml.emitAfter(len(ml.data))
}

// runInvert reports the lines not covered by any match span, using the
// same context machinery as line-oriented search. The match search
// itself still runs over the full region.
func (ml *multiLine) runInvert() (bool, error) {
	var spans []span
	pos := 0
	for pos <= len(ml.data) {
		mt, ok := ml.m.FindAt(ml.data, pos)
		if !ok {
			break
		}
		sp := ml.lineSpan(mt)
		if n := len(spans); n > 0 && sp.start < spans[n-1].end {
			if sp.end > spans[n-1].end {
				spans[n-1].end = sp.end
			}
		} else {
			spans = append(spans, sp)
		}
		if mt.End > pos {
			pos = mt.End
		} else {
			pos++
		}
	}

	core := newScanCore(ml.s, ml.m, ml.sink, false, true)
	si := 0
	off := 0
	for off < len(ml.data) {
		le := ml.lineEndAt(off)
		for si < len(spans) && spans[si].end <= off {
			si++
		}
		matched := si < len(spans) && spans[si].start < le
		line := trimTerm(ml.data[off:le], ml.s.config.lineTerm)
		goon, err := core.processClassified(line, int64(off), matched)
		if !goon || err != nil {
			return goon, err
		}
		off = le
	}
	return true, nil
}

// emit reports one coalesced match span, preceded by any trailing
// context still owed to the previous match and this span's own leading
// context. Lines already reported are never reported again.
func (ml *multiLine) emit(sp span) (bool, error) {
	if goon, err := ml.emitAfter(sp.start); !goon || err != nil {
		return goon, err
	}
	if goon, err := ml.emitBefore(sp.start); !goon || err != nil {
		return goon, err
	}

	raw := ml.data[sp.start:sp.end]
	lineNum := ml.lineNumberAt(sp.start)
	if goon, err := ml.spanCheck(raw, int64(sp.start)); !goon || err != nil {
		return goon, err
	}
	goon, err := ml.sink.Match(ml.s, &SinkMatch{
		Bytes:      trimTerm(raw, ml.s.config.lineTerm),
		Offset:     int64(sp.start),
		LineNumber: lineNum,
	})
	ml.lastEnd = sp.end
	ml.afterLeft = ml.s.config.afterContext
	return goon, err
}

// emitAfter reports trailing context lines owed to the previous match,
// stopping before limit.
func (ml *multiLine) emitAfter(limit int) (bool, error) {
	for ml.afterLeft > 0 && ml.lastEnd < limit {
		le := ml.lineEndAt(ml.lastEnd)
		raw := ml.data[ml.lastEnd:le]
		lineNum := ml.lineNumberAt(ml.lastEnd)
		if goon, err := ml.spanCheck(raw, int64(ml.lastEnd)); !goon || err != nil {
			return goon, err
		}
		goon, err := ml.sink.Context(ml.s, &SinkContext{
			Bytes:      trimTerm(raw, ml.s.config.lineTerm),
			Offset:     int64(ml.lastEnd),
			LineNumber: lineNum,
			Kind:       ContextAfter,
		})
		ml.lastEnd = le
		ml.afterLeft--
		if !goon || err != nil {
			return goon, err
		}
	}
	return true, nil
}

// emitBefore reports up to the configured number of lines immediately
// preceding start, clamped so already reported lines stay unreported.
func (ml *multiLine) emitBefore(start int) (bool, error) {
	n := ml.s.config.beforeContext
	if n == 0 || start <= ml.lastEnd {
		return true, nil
	}
	begin := start
	for i := 0; i < n && begin > ml.lastEnd && begin > 0; i++ {
		prev := ml.prevLineStart(begin)
		if prev < ml.lastEnd {
			break
		}
		begin = prev
	}
	for off := begin; off < start; {
		le := ml.lineEndAt(off)
		raw := ml.data[off:le]
		lineNum := ml.lineNumberAt(off)
		if goon, err := ml.spanCheck(raw, int64(off)); !goon || err != nil {
			return goon, err
		}
		goon, err := ml.sink.Context(ml.s, &SinkContext{
			Bytes:      trimTerm(raw, ml.s.config.lineTerm),
			Offset:     int64(off),
			LineNumber: lineNum,
			Kind:       ContextBefore,
		})
		if !goon || err != nil {
			return goon, err
		}
		off = le
	}
	return true, nil
}

// lineSpan expands a match range to the enclosing complete lines.
func (ml *multiLine) lineSpan(m matcher.Match) span {
	term := ml.s.config.lineTerm
	start := 0
	if i := bytes.LastIndexByte(ml.data[:m.Start], term); i >= 0 {
		start = i + 1
	}
	end := m.End
	if end > m.Start && ml.data[end-1] == term {
		return span{start: start, end: end}
	}
	if i := bytes.IndexByte(ml.data[end:], term); i >= 0 {
		end += i + 1
	} else {
		end = len(ml.data)
	}
	return span{start: start, end: end}
}

// lineEndAt returns the exclusive end of the line starting at off,
// including its terminator when present.
func (ml *multiLine) lineEndAt(off int) int {
	if i := bytes.IndexByte(ml.data[off:], ml.s.config.lineTerm); i >= 0 {
		return off + i + 1
	}
	return len(ml.data)
}

// prevLineStart returns the start of the line that ends at off.
func (ml *multiLine) prevLineStart(off int) int {
	if off == 0 {
		return 0
	}
	return bytes.LastIndexByte(ml.data[:off-1], ml.s.config.lineTerm) + 1
}

// lineNumberAt returns the 1-based line number of the line starting at
// off, or 0 when numbering is disabled. Offsets must be queried in
// non-decreasing order.
func (ml *multiLine) lineNumberAt(off int) int64 {
	if ml.lineNum == 0 {
		return 0
	}
	ml.lineNum += countByte(ml.data[ml.counted:off], ml.s.config.lineTerm)
	ml.counted = off
	return ml.lineNum
}

func (ml *multiLine) spanCheck(raw []byte, offset int64) (bool, error) {
	if !ml.checkBinary {
		return true, nil
	}
	i := bytes.IndexByte(raw, ml.binaryByte)
	if i < 0 {
		return true, nil
	}
	return false, notifyBinary(ml.s, ml.sink, offset+int64(i))
}

// trimTerm drops a trailing line terminator.
func trimTerm(b []byte, term byte) []byte {
	if n := len(b); n > 0 && b[n-1] == term {
		return b[:n-1]
	}
	return b
}

// countByte counts occurrences of b without allocating.
func countByte(data []byte, b byte) int64 {
	var n int64
	for {
		i := bytes.IndexByte(data, b)
		if i < 0 {
			return n
		}
		n++
		data = data[i+1:]
	}
}
