package matcher

import (
	"fmt"
	"regexp"
	"strings"
)

// NewMatcher creates the appropriate Matcher based on the provided options.
// Selection logic:
//   - PCRE flag -> PCREMatcher (PCRE2 via pure Go port)
//   - Fixed + 1 pattern -> LiteralMatcher (substring search)
//   - Fixed + N patterns -> RegexMatcher over quoted alternation
//   - Otherwise -> RegexMatcher (RE2), with literal detection so that
//     plain strings passed without -F still take the fast path
func NewMatcher(patterns []string, fixed bool, usePCRE bool, ignoreCase bool) (Matcher, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no patterns provided")
	}

	if usePCRE {
		return NewPCREMatcher(combine(patterns, false), ignoreCase)
	}

	if fixed {
		if len(patterns) == 1 {
			return NewLiteralMatcher(patterns[0], ignoreCase), nil
		}
		return NewRegexMatcher(combine(patterns, true), ignoreCase)
	}

	// A single pattern with no regex metacharacters is a fixed string in
	// disguise. Bypass the regex engine, the same literal optimization
	// ripgrep does.
	if len(patterns) == 1 && isLiteral(patterns[0]) {
		return NewLiteralMatcher(patterns[0], ignoreCase), nil
	}

	return NewRegexMatcher(combine(patterns, false), ignoreCase)
}

// combine joins multiple patterns into a single alternation. When quote
// is set, each pattern is treated as a fixed string.
func combine(patterns []string, quote bool) string {
	if len(patterns) == 1 && !quote {
		return patterns[0]
	}
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		if quote {
			p = regexp.QuoteMeta(p)
		}
		parts[i] = "(?:" + p + ")"
	}
	return strings.Join(parts, "|")
}

// isLiteral returns true if the pattern contains no regex metacharacters
// and can be treated as a fixed string.
func isLiteral(pattern string) bool {
	return !strings.ContainsAny(pattern, `\.+*?()|[]{}^$`)
}
