package searcher

// SinkMatch describes a matched line or, in multi-line mode, a span of
// matched lines. Bytes excludes the trailing line terminator and is
// only valid for the duration of the callback.
type SinkMatch struct {
	Bytes      []byte
	Offset     int64 // absolute byte offset of the start of the span
	LineNumber int64 // 1-based; 0 when line numbering is disabled
}

// SinkContextKind distinguishes the position of a context line relative
// to the match it accompanies.
type SinkContextKind int

const (
	// ContextBefore precedes its match.
	ContextBefore SinkContextKind = iota
	// ContextAfter follows its match.
	ContextAfter
)

// SinkContext describes a context line reported adjacent to a match.
type SinkContext struct {
	Bytes      []byte
	Offset     int64
	LineNumber int64
	Kind       SinkContextKind
}

// Sink receives search results in strictly increasing offset order.
// Each delivery returns whether the search should continue; an error
// aborts the search and is propagated to the searcher's caller
// unmodified.
type Sink interface {
	Match(s *Searcher, m *SinkMatch) (bool, error)
	Context(s *Searcher, c *SinkContext) (bool, error)
}

// BinarySink is implemented by sinks that want to know when binary
// detection truncated the search. offset is the absolute position of
// the detected binary byte.
type BinarySink interface {
	Binary(s *Searcher, offset int64) (bool, error)
}

// notifyBinary informs the sink of a binary cutoff when it cares.
func notifyBinary(s *Searcher, sink Sink, offset int64) error {
	if bs, ok := sink.(BinarySink); ok {
		_, err := bs.Binary(s, offset)
		return err
	}
	return nil
}
