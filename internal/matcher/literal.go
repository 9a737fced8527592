package matcher

import "bytes"

// LiteralMatcher finds occurrences of a single fixed byte string.
// Case-insensitive matching folds ASCII only, matching grep -F -i.
type LiteralMatcher struct {
	pattern    []byte
	patternLow []byte // lowered pattern for case-insensitive search
	ignoreCase bool
}

// NewLiteralMatcher creates a LiteralMatcher for a fixed pattern.
func NewLiteralMatcher(pattern string, ignoreCase bool) *LiteralMatcher {
	p := []byte(pattern)
	pLow := p
	if ignoreCase {
		pLow = bytes.ToLower(p)
	}
	return &LiteralMatcher{
		pattern:    p,
		patternLow: pLow,
		ignoreCase: ignoreCase,
	}
}

func (m *LiteralMatcher) FindAt(data []byte, at int) (Match, bool) {
	if at > len(data) {
		return Match{}, false
	}
	var idx int
	if m.ignoreCase {
		idx = indexFold(data[at:], m.patternLow)
	} else {
		idx = bytes.Index(data[at:], m.pattern)
	}
	if idx < 0 {
		return Match{}, false
	}
	start := at + idx
	return Match{Start: start, End: start + len(m.pattern)}, true
}

// LineTerminator declares '\n' when the pattern cannot match across a
// line boundary, i.e. when it contains no newline itself.
func (m *LiteralMatcher) LineTerminator() (byte, bool) {
	if bytes.IndexByte(m.pattern, '\n') >= 0 {
		return 0, false
	}
	return '\n', true
}

// indexFold returns the index of the first ASCII-case-insensitive
// occurrence of needle (already lowered) in haystack, or -1.
func indexFold(haystack, needle []byte) int {
	if len(needle) == 0 {
		return 0
	}
	if len(needle) > len(haystack) {
		return -1
	}
	first := needle[0]
	firstUp := toUpper(first)
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if c := haystack[i]; c != first && c != firstUp {
			continue
		}
		if equalFold(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

// equalFold reports whether a equals lowered needle b under ASCII folding.
func equalFold(a, b []byte) bool {
	for i := range b {
		if toLower(a[i]) != b[i] {
			return false
		}
	}
	return true
}

// toLower converts an ASCII byte to lowercase.
func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// toUpper converts an ASCII byte to uppercase.
func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
