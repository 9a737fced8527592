package matcher

import (
	"go.elara.ws/pcre"
)

// PCREMatcher matches using PCRE2-compatible regexes via the pure Go pcre
// package. Supports lookahead, lookbehind, backreferences, and atomic groups.
type PCREMatcher struct {
	re    *pcre.Regexp
	cache matchCache
}

// NewPCREMatcher creates a PCREMatcher from a PCRE2 pattern string.
func NewPCREMatcher(pattern string, ignoreCase bool) (*PCREMatcher, error) {
	var opts pcre.CompileOption
	if ignoreCase {
		opts |= pcre.Caseless
	}

	re, err := pcre.CompileOpts(pattern, opts)
	if err != nil {
		return nil, err
	}
	return &PCREMatcher{re: re}, nil
}

func (m *PCREMatcher) FindAt(data []byte, at int) (Match, bool) {
	return m.cache.findAt(func(b []byte) [][]int {
		return m.re.FindAllIndex(b, -1)
	}, data, at)
}

func (m *PCREMatcher) LineTerminator() (byte, bool) {
	return 0, false
}

// Close releases the compiled PCRE regex resources.
func (m *PCREMatcher) Close() {
	if m.re != nil {
		m.re.Close()
	}
}
