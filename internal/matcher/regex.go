package matcher

import "regexp"

// RegexMatcher uses Go's RE2 regexp engine.
type RegexMatcher struct {
	re    *regexp.Regexp
	cache matchCache
}

// NewRegexMatcher creates a RegexMatcher for the given pattern.
func NewRegexMatcher(pattern string, ignoreCase bool) (*RegexMatcher, error) {
	if ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{re: re}, nil
}

func (m *RegexMatcher) FindAt(data []byte, at int) (Match, bool) {
	return m.cache.findAt(func(b []byte) [][]int {
		return m.re.FindAllIndex(b, -1)
	}, data, at)
}

// LineTerminator reports no terminator: RE2 patterns carry no implied
// line discipline of their own.
func (m *RegexMatcher) LineTerminator() (byte, bool) {
	return 0, false
}
