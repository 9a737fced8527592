package matcher

import (
	"testing"
)

func TestLiteralMatcher_FindAt(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		ignoreCase bool
		haystack   string
		at         int
		wantStart  int
		wantEnd    int
		wantOK     bool
	}{
		{"found at start", "foo", false, "foobar", 0, 0, 3, true},
		{"found mid", "bar", false, "foobar", 0, 3, 6, true},
		{"found after at", "foo", false, "foofoo", 1, 3, 6, true},
		{"not found", "baz", false, "foobar", 0, 0, 0, false},
		{"at past end", "foo", false, "foo", 4, 0, 0, false},
		{"at equals end", "foo", false, "foo", 3, 0, 0, false},
		{"empty haystack", "foo", false, "", 0, 0, 0, false},
		{"case sensitive miss", "FOO", false, "foobar", 0, 0, 0, false},
		{"case fold hit", "FOO", true, "xfooy", 0, 1, 4, true},
		{"case fold mixed", "fOo", true, "xFoOy", 0, 1, 4, true},
		{"fold skips near miss", "abc", true, "aBxaBc", 0, 3, 6, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewLiteralMatcher(tt.pattern, tt.ignoreCase)
			got, ok := m.FindAt([]byte(tt.haystack), tt.at)
			if ok != tt.wantOK {
				t.Fatalf("FindAt(%q, %d) ok = %v, want %v", tt.haystack, tt.at, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Start != tt.wantStart || got.End != tt.wantEnd {
				t.Errorf("FindAt(%q, %d) = [%d,%d), want [%d,%d)",
					tt.haystack, tt.at, got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestLiteralMatcher_LineTerminator(t *testing.T) {
	if term, ok := NewLiteralMatcher("foo", false).LineTerminator(); !ok || term != '\n' {
		t.Errorf("single-line literal: got (%q, %v), want ('\\n', true)", term, ok)
	}
	if _, ok := NewLiteralMatcher("foo\nbar", false).LineTerminator(); ok {
		t.Error("literal containing newline should declare no terminator")
	}
}

func TestRegexMatcher_FindAt(t *testing.T) {
	m, err := NewRegexMatcher(`\d+`, false)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("ab12cd34")

	got, ok := m.FindAt(data, 0)
	if !ok || got.Start != 2 || got.End != 4 {
		t.Errorf("FindAt 0 = [%d,%d) %v, want [2,4) true", got.Start, got.End, ok)
	}
	got, ok = m.FindAt(data, 4)
	if !ok || got.Start != 6 || got.End != 8 {
		t.Errorf("FindAt 4 = [%d,%d) %v, want [6,8) true", got.Start, got.End, ok)
	}
	if _, ok := m.FindAt(data, 8); ok {
		t.Error("FindAt 8: unexpected match")
	}
	if _, ok := m.FindAt(data, 9); ok {
		t.Error("FindAt past end: unexpected match")
	}
}

func TestRegexMatcher_AnchorsKeepHaystackMeaning(t *testing.T) {
	// '^' anchors at the start of the haystack, not at the query
	// offset: querying past position 0 must not conjure matches.
	m, err := NewRegexMatcher(`^b`, false)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("a\nb\nc\n")
	if got, ok := m.FindAt(data, 0); ok {
		t.Errorf("FindAt 0 = [%d,%d), want no match", got.Start, got.End)
	}
	if got, ok := m.FindAt(data, 2); ok {
		t.Errorf("FindAt 2 = [%d,%d), want no match", got.Start, got.End)
	}

	// With (?m) the anchor legitimately matches at a line start.
	m, err = NewRegexMatcher(`(?m)^b`, false)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := m.FindAt(data, 1); !ok || got.Start != 2 || got.End != 3 {
		t.Errorf("FindAt 1 = [%d,%d) %v, want [2,3) true", got.Start, got.End, ok)
	}
}

func TestRegexMatcher_NewHaystackRefreshes(t *testing.T) {
	m, err := NewRegexMatcher(`\d+`, false)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := m.FindAt([]byte("ab12"), 0); !ok || got.Start != 2 {
		t.Fatalf("first haystack: [%d,%d) %v, want start 2", got.Start, got.End, ok)
	}
	if got, ok := m.FindAt([]byte("7xyz"), 0); !ok || got.Start != 0 || got.End != 1 {
		t.Errorf("second haystack: [%d,%d) %v, want [0,1) true", got.Start, got.End, ok)
	}
	// A different haystack queried at a non-zero offset must not be
	// answered from the previous haystack's matches either.
	if got, ok := m.FindAt([]byte("abcd89"), 3); !ok || got.Start != 4 || got.End != 6 {
		t.Errorf("third haystack at 3: [%d,%d) %v, want [4,6) true", got.Start, got.End, ok)
	}
}

func TestRegexMatcher_IgnoreCase(t *testing.T) {
	m, err := NewRegexMatcher("error", true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.FindAt([]byte("an ERROR here"), 0); !ok {
		t.Error("case-insensitive regex missed ERROR")
	}
}

func TestRegexMatcher_InvalidPattern(t *testing.T) {
	if _, err := NewRegexMatcher("(unclosed", false); err == nil {
		t.Error("expected compile error for unbalanced group")
	}
}

func TestPCREMatcher_Lookahead(t *testing.T) {
	m, err := NewPCREMatcher(`foo(?=bar)`, false)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	got, ok := m.FindAt([]byte("foobaz foobar"), 0)
	if !ok || got.Start != 7 || got.End != 10 {
		t.Errorf("FindAt = [%d,%d) %v, want [7,10) true", got.Start, got.End, ok)
	}
}

func TestPCREMatcher_LookbehindAtOffset(t *testing.T) {
	m, err := NewPCREMatcher(`(?<=a)b`, false)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	data := []byte("ab cb")
	// The lookbehind sees the byte before the match even when the
	// query starts exactly at the match position.
	if got, ok := m.FindAt(data, 1); !ok || got.Start != 1 || got.End != 2 {
		t.Errorf("FindAt 1 = [%d,%d) %v, want [1,2) true", got.Start, got.End, ok)
	}
	if _, ok := m.FindAt(data, 2); ok {
		t.Error("FindAt 2: unexpected match after the only hit")
	}
}

func TestPCREMatcher_Caseless(t *testing.T) {
	m, err := NewPCREMatcher("warn", true)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	if _, ok := m.FindAt([]byte("WARN: disk"), 0); !ok {
		t.Error("caseless PCRE missed WARN")
	}
}

func TestNewMatcher_Selection(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		fixed    bool
		pcre     bool
		wantType string
	}{
		{"fixed single", []string{"foo"}, true, false, "*matcher.LiteralMatcher"},
		{"plain string auto literal", []string{"hello"}, false, false, "*matcher.LiteralMatcher"},
		{"regex metachars", []string{"foo.*bar"}, false, false, "*matcher.RegexMatcher"},
		{"fixed multiple", []string{"a.b", "c"}, true, false, "*matcher.RegexMatcher"},
		{"pcre", []string{"foo"}, false, true, "*matcher.PCREMatcher"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.patterns, tt.fixed, tt.pcre, false)
			if err != nil {
				t.Fatal(err)
			}
			var gotType string
			switch m.(type) {
			case *LiteralMatcher:
				gotType = "*matcher.LiteralMatcher"
			case *RegexMatcher:
				gotType = "*matcher.RegexMatcher"
			case *PCREMatcher:
				gotType = "*matcher.PCREMatcher"
			}
			if gotType != tt.wantType {
				t.Errorf("NewMatcher(%v) = %s, want %s", tt.patterns, gotType, tt.wantType)
			}
		})
	}

	if _, err := NewMatcher(nil, false, false, false); err == nil {
		t.Error("expected error for zero patterns")
	}
}

func TestNewMatcher_FixedMultipleQuotesMeta(t *testing.T) {
	// With -F the dot is a literal dot, not a wildcard.
	m, err := NewMatcher([]string{"a.b", "zz"}, true, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.FindAt([]byte("axb"), 0); ok {
		t.Error("quoted alternation treated '.' as a wildcard")
	}
	if _, ok := m.FindAt([]byte("a.b"), 0); !ok {
		t.Error("quoted alternation missed the literal")
	}
	if _, ok := m.FindAt([]byte("xzzx"), 0); !ok {
		t.Error("quoted alternation missed the second branch")
	}
}

func TestNewMatcher_MultipleRegexAlternation(t *testing.T) {
	m, err := NewMatcher([]string{`^foo`, `bar$`}, false, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.FindAt([]byte("fooxxx"), 0); !ok {
		t.Error("alternation missed first branch")
	}
	if _, ok := m.FindAt([]byte("xxxbar"), 0); !ok {
		t.Error("alternation missed second branch")
	}
	if _, ok := m.FindAt([]byte("xfoox"), 0); ok {
		t.Error("anchored branch matched unanchored")
	}
}
