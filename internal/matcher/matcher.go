package matcher

// Match is a half-open byte range [Start, End) within some haystack.
// It carries no data of its own, only the index pair.
type Match struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the match.
func (m Match) Len() int { return m.End - m.Start }

// Matcher finds pattern matches in a byte region.
//
// Implementations are used by the searcher for both line-oriented and
// multi-line search: for line-oriented search the haystack is a single
// line (without its terminator), for multi-line search it is the entire
// resident contents.
type Matcher interface {
	// FindAt returns the first match in data that begins at or after
	// the given offset. Position-dependent patterns (anchors,
	// lookarounds) are interpreted against the full haystack, never
	// against the suffix starting at the offset. ok is false when
	// there is no further match.
	FindAt(data []byte, at int) (m Match, ok bool)

	// LineTerminator reports the line terminator this matcher was built
	// around, if it declares one. Searchers may verify it against their
	// own configured terminator.
	LineTerminator() (byte, bool)
}

// matchCache memoizes every match position within one haystack. Regex
// engines offer no find-at-offset entry point, and matching against
// data[at:] would re-anchor '^' and lookbehinds at the query offset,
// so regex-backed matchers enumerate all matches over the full
// haystack once and answer queries from that list. The list rebuilds
// for a new haystack and on any query at offset 0, which is where
// every scan sequence starts.
type matchCache struct {
	haystack []byte
	spans    [][]int
}

func (c *matchCache) findAt(enum func([]byte) [][]int, data []byte, at int) (Match, bool) {
	if at > len(data) {
		return Match{}, false
	}
	if at == 0 || !c.sameHaystack(data) {
		c.spans = enum(data)
		c.haystack = data
	}
	for _, sp := range c.spans {
		if sp[0] >= at {
			return Match{Start: sp[0], End: sp[1]}, true
		}
	}
	return Match{}, false
}

func (c *matchCache) sameHaystack(data []byte) bool {
	if len(data) != len(c.haystack) {
		return false
	}
	return len(data) == 0 || &data[0] == &c.haystack[0]
}
