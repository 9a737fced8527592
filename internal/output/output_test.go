package output

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/dl/linegrep/internal/matcher"
	"github.com/dl/linegrep/internal/searcher"
)

func devNullFd(t *testing.T) int {
	t.Helper()
	f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return int(f.Fd())
}

func textResult(path string, lines ...Line) *Result {
	return &Result{Path: path, Seq: 1, Lines: lines}
}

func TestTextFormatter_SingleFile(t *testing.T) {
	f := NewTextFormatter(false, false, false, NoStyles())
	r := textResult("test.txt",
		Line{Kind: KindMatch, Number: 1, Offset: 0, Text: []byte("hello world")},
		Line{Kind: KindMatch, Number: 3, Offset: 16, Text: []byte("hello again")},
	)
	got := string(f.Format(nil, r, false))
	want := "1:hello world\n--\n3:hello again\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTextFormatter_MultiFile(t *testing.T) {
	f := NewTextFormatter(false, false, false, NoStyles())
	r := textResult("test.txt",
		Line{Kind: KindMatch, Number: 5, Offset: 24, Text: []byte("match line")},
	)
	got := string(f.Format(nil, r, true))
	want := "test.txt:5:match line\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTextFormatter_ContextSeparator(t *testing.T) {
	f := NewTextFormatter(false, false, false, NoStyles())
	r := textResult("t",
		Line{Kind: KindContext, Number: 1, Text: []byte("a")},
		Line{Kind: KindMatch, Number: 2, Text: []byte("foo")},
		Line{Kind: KindContext, Number: 3, Text: []byte("b")},
	)
	got := string(f.Format(nil, r, false))
	want := "1-a\n2:foo\n3-b\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTextFormatter_NoLineNumbers(t *testing.T) {
	f := NewTextFormatter(false, false, false, NoStyles())
	r := textResult("t",
		Line{Kind: KindMatch, Number: 0, Text: []byte("foo")},
		Line{Kind: KindMatch, Number: 0, Text: []byte("bar")},
	)
	got := string(f.Format(nil, r, false))
	want := "foo\nbar\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTextFormatter_CountOnly(t *testing.T) {
	f := NewTextFormatter(true, false, false, NoStyles())
	r := textResult("test.txt",
		Line{Kind: KindMatch, Number: 1, Text: []byte("x")},
		Line{Kind: KindContext, Number: 2, Text: []byte("y")},
		Line{Kind: KindMatch, Number: 3, Text: []byte("z")},
	)
	if got := string(f.Format(nil, r, false)); got != "2\n" {
		t.Errorf("single file count = %q, want %q", got, "2\n")
	}
	if got := string(f.Format(nil, r, true)); got != "test.txt:2\n" {
		t.Errorf("multi file count = %q, want %q", got, "test.txt:2\n")
	}
}

func TestTextFormatter_FilesOnly(t *testing.T) {
	f := NewTextFormatter(false, true, false, NoStyles())
	with := textResult("has.txt", Line{Kind: KindMatch, Text: []byte("x")})
	without := textResult("empty.txt")

	if got := string(f.Format(nil, with, true)); got != "has.txt\n" {
		t.Errorf("got %q, want %q", got, "has.txt\n")
	}
	if got := string(f.Format(nil, without, true)); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestCollector_CopiesAndClassifies(t *testing.T) {
	s, err := searcher.NewBuilder().
		LineNumber(true).
		BeforeContext(1).
		AfterContext(1).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	m := matcher.NewLiteralMatcher("foo", false)
	c := NewCollector("file.txt", 7, m)

	data := []byte("a\nxfooy\nb\n")
	if err := s.SearchSlice(m, data, c); err != nil {
		t.Fatalf("SearchSlice: %v", err)
	}
	// Overwrite the haystack; collected lines must be unaffected.
	copy(data, make([]byte, len(data)))

	r := c.Result()
	if r.Path != "file.txt" || r.Seq != 7 {
		t.Errorf("result identity = %s/%d, want file.txt/7", r.Path, r.Seq)
	}
	if len(r.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(r.Lines))
	}
	if r.Lines[0].Kind != KindContext || string(r.Lines[0].Text) != "a" {
		t.Errorf("line[0] = %v %q", r.Lines[0].Kind, r.Lines[0].Text)
	}
	if r.Lines[1].Kind != KindMatch || string(r.Lines[1].Text) != "xfooy" {
		t.Errorf("line[1] = %v %q", r.Lines[1].Kind, r.Lines[1].Text)
	}
	if len(r.Lines[1].Spans) != 1 || r.Lines[1].Spans[0] != [2]int{1, 4} {
		t.Errorf("spans = %v, want [[1 4]]", r.Lines[1].Spans)
	}
	if r.Lines[2].Kind != KindContext || string(r.Lines[2].Text) != "b" {
		t.Errorf("line[2] = %v %q", r.Lines[2].Kind, r.Lines[2].Text)
	}
	if r.Count() != 1 || !r.HasMatch() {
		t.Errorf("Count() = %d HasMatch() = %v", r.Count(), r.HasMatch())
	}
}

func TestCollector_Binary(t *testing.T) {
	s, err := searcher.NewBuilder().
		BinaryDetection(searcher.QuitOnByte(0x00)).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	// The matched line carries the binary byte, so the span check
	// suppresses it and reports the cutoff.
	m := matcher.NewLiteralMatcher("o", false)
	c := NewCollector("bin", 1, m)
	if err := s.SearchSlice(m, []byte("fo\x00o\nfoo\n"), c); err != nil {
		t.Fatalf("SearchSlice: %v", err)
	}
	r := c.Result()
	if !r.Binary || r.BinaryOffset != 2 {
		t.Errorf("binary = %v at %d, want true at 2", r.Binary, r.BinaryOffset)
	}
	if len(r.Lines) != 0 {
		t.Errorf("got %d lines, want none past the cutoff", len(r.Lines))
	}
}

func TestFindSpans_Multiple(t *testing.T) {
	m := matcher.NewLiteralMatcher("ab", false)
	spans := findSpans(m, []byte("ab ab ab"))
	want := [][2]int{{0, 2}, {3, 5}, {6, 8}}
	if len(spans) != len(want) {
		t.Fatalf("got %v, want %v", spans, want)
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Errorf("span[%d] = %v, want %v", i, spans[i], want[i])
		}
	}
}

func TestOrderedWriterFlushesInOrder(t *testing.T) {
	// The writer itself needs a real fd; exercise ordering through the
	// formatter by observing the onMatch callback order instead.
	results := make(chan *Result, 3)
	results <- &Result{Path: "c", Seq: 3, Lines: []Line{{Kind: KindMatch, Text: []byte("x")}}}
	results <- &Result{Path: "a", Seq: 1, Lines: []Line{{Kind: KindMatch, Text: []byte("x")}}}
	results <- &Result{Path: "b", Seq: 2, Lines: []Line{{Kind: KindMatch, Text: []byte("x")}}}
	close(results)

	var order []string
	f := &recordingFormatter{order: &order}
	ow := NewOrderedWriter(&Writer{fd: devNullFd(t)}, f, true)
	matches := 0
	ow.WriteOrdered(results, func() { matches++ }, nil)

	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("write order = %v, want [a b c]", order)
	}
	if matches != 3 {
		t.Errorf("onMatch fired %d times, want 3", matches)
	}
}

func TestOrderedWriterReportsErrors(t *testing.T) {
	wantErr := errors.New("open failed")
	results := make(chan *Result, 3)
	results <- &Result{Path: "a", Seq: 1, Lines: []Line{{Kind: KindMatch, Text: []byte("x")}}}
	results <- &Result{Path: "bad", Seq: 2, Err: wantErr}
	results <- &Result{Path: "c", Seq: 3, Lines: []Line{{Kind: KindMatch, Text: []byte("x")}}}
	close(results)

	var order []string
	f := &recordingFormatter{order: &order}
	ow := NewOrderedWriter(&Writer{fd: devNullFd(t)}, f, true)

	var gotPath string
	var gotErr error
	matches := 0
	ow.WriteOrdered(results, func() { matches++ }, func(path string, err error) {
		gotPath, gotErr = path, err
	})

	if gotPath != "bad" || gotErr != wantErr {
		t.Errorf("onError got (%q, %v), want (%q, %v)", gotPath, gotErr, "bad", wantErr)
	}
	// The failed file is skipped but must not stall the sequence.
	if strings.Join(order, ",") != "a,c" {
		t.Errorf("write order = %v, want [a c]", order)
	}
	if matches != 2 {
		t.Errorf("onMatch fired %d times, want 2", matches)
	}
}

type recordingFormatter struct {
	order *[]string
}

func (f *recordingFormatter) Format(buf []byte, r *Result, _ bool) []byte {
	*f.order = append(*f.order, r.Path)
	return buf
}
