// Package output consumes search results and renders them. Its sinks
// implement the searcher's consumer interface; its formatters and the
// writev-backed writer turn collected results into stdout bytes.
package output

// LineKind distinguishes matched lines from their context.
type LineKind int

const (
	// KindMatch is a matched line (or span of lines in multi-line mode).
	KindMatch LineKind = iota
	// KindContext is a before/after context line.
	KindContext
)

// Line is one reported line, copied out of the searcher's transient
// buffers.
type Line struct {
	Kind   LineKind
	Number int64 // 1-based; 0 when line numbering is off
	Offset int64
	Text   []byte
	// Spans are the match ranges within Text, for highlighting. Empty
	// for context lines and inverted matches.
	Spans [][2]int
}

// Result aggregates everything reported for a single file.
type Result struct {
	Path         string
	Seq          int
	Lines        []Line
	Binary       bool // binary detection cut the search short
	BinaryOffset int64
	Err          error
}

// Count returns the number of matched lines in this result.
func (r *Result) Count() int {
	n := 0
	for i := range r.Lines {
		if r.Lines[i].Kind == KindMatch {
			n++
		}
	}
	return n
}

// HasMatch reports whether this result contains at least one match.
func (r *Result) HasMatch() bool {
	for i := range r.Lines {
		if r.Lines[i].Kind == KindMatch {
			return true
		}
	}
	return false
}
