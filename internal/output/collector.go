package output

import (
	"github.com/dl/linegrep/internal/matcher"
	"github.com/dl/linegrep/internal/searcher"
)

// Collector is the sink handed to the searcher for one file. It copies
// every delivery into a Result; the searcher's buffers are only valid
// for the duration of each callback.
type Collector struct {
	m   matcher.Matcher
	res Result
}

// NewCollector returns a Collector for one search over path. m is used
// to recover the match positions within each reported line for
// highlighting; pass nil to skip that (inverted searches have no
// positions worth showing).
func NewCollector(path string, seq int, m matcher.Matcher) *Collector {
	return &Collector{
		m:   m,
		res: Result{Path: path, Seq: seq},
	}
}

// Result returns the collected result. Valid once the search returned.
func (c *Collector) Result() *Result {
	return &c.res
}

func (c *Collector) Match(s *searcher.Searcher, m *searcher.SinkMatch) (bool, error) {
	line := Line{
		Kind:   KindMatch,
		Number: m.LineNumber,
		Offset: m.Offset,
		Text:   append([]byte(nil), m.Bytes...),
	}
	if c.m != nil && !s.InvertMatch() {
		line.Spans = findSpans(c.m, line.Text)
	}
	c.res.Lines = append(c.res.Lines, line)
	return true, nil
}

func (c *Collector) Context(_ *searcher.Searcher, ctx *searcher.SinkContext) (bool, error) {
	c.res.Lines = append(c.res.Lines, Line{
		Kind:   KindContext,
		Number: ctx.LineNumber,
		Offset: ctx.Offset,
		Text:   append([]byte(nil), ctx.Bytes...),
	})
	return true, nil
}

func (c *Collector) Binary(_ *searcher.Searcher, offset int64) (bool, error) {
	c.res.Binary = true
	c.res.BinaryOffset = offset
	return false, nil
}

// findSpans locates every match range within text.
func findSpans(m matcher.Matcher, text []byte) [][2]int {
	var spans [][2]int
	at := 0
	for at <= len(text) {
		mt, ok := m.FindAt(text, at)
		if !ok {
			break
		}
		spans = append(spans, [2]int{mt.Start, mt.End})
		if mt.End > at {
			at = mt.End
		} else {
			at++
		}
	}
	return spans
}
