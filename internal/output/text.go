package output

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// TextFormatter renders results as human-readable text, grep-style:
// optional file name and line number prefixes, ':' separators on
// matched lines and '-' on context lines, "--" between disjoint groups.
type TextFormatter struct {
	countOnly bool
	filesOnly bool
	useColor  bool
	styles    Styles
}

// NewTextFormatter creates a TextFormatter. styles is only consulted
// when useColor is set.
func NewTextFormatter(countOnly, filesOnly, useColor bool, styles Styles) *TextFormatter {
	return &TextFormatter{
		countOnly: countOnly,
		filesOnly: filesOnly,
		useColor:  useColor,
		styles:    styles,
	}
}

func (f *TextFormatter) Format(buf []byte, r *Result, multiFile bool) []byte {
	if f.filesOnly {
		if r.HasMatch() {
			buf = append(buf, r.Path...)
			buf = append(buf, '\n')
		}
		return buf
	}

	if f.countOnly {
		if multiFile {
			buf = append(buf, r.Path...)
			buf = append(buf, ':')
		}
		buf = strconv.AppendInt(buf, int64(r.Count()), 10)
		buf = append(buf, '\n')
		return buf
	}

	var prevNum int64
	for i := range r.Lines {
		line := &r.Lines[i]
		if i > 0 && line.Number > 0 && prevNum > 0 && line.Number != prevNum+1 {
			buf = f.appendStyled(buf, f.styles.Separator, "--")
			buf = append(buf, '\n')
		}
		buf = f.formatLine(buf, r.Path, line, multiFile)
		prevNum = line.Number
	}
	if r.Binary && len(r.Lines) > 0 {
		buf = append(buf, "binary file "...)
		buf = append(buf, r.Path...)
		buf = append(buf, " matches (found binary data)\n"...)
	}
	return buf
}

func (f *TextFormatter) formatLine(buf []byte, path string, line *Line, multiFile bool) []byte {
	sep := ":"
	if line.Kind == KindContext {
		sep = "-"
	}

	if multiFile {
		buf = f.appendStyled(buf, f.styles.Filename, path)
		buf = f.appendStyled(buf, f.styles.Separator, sep)
	}
	if line.Number > 0 {
		buf = f.appendStyled(buf, f.styles.LineNum, strconv.FormatInt(line.Number, 10))
		buf = f.appendStyled(buf, f.styles.Separator, sep)
	}

	if f.useColor && len(line.Spans) > 0 {
		buf = f.highlight(buf, line.Text, line.Spans)
	} else {
		buf = append(buf, line.Text...)
	}
	buf = append(buf, '\n')
	return buf
}

func (f *TextFormatter) appendStyled(buf []byte, style lipgloss.Style, s string) []byte {
	if f.useColor {
		return append(buf, style.Render(s)...)
	}
	return append(buf, s...)
}

func (f *TextFormatter) highlight(buf, text []byte, spans [][2]int) []byte {
	prev := 0
	for _, sp := range spans {
		start, end := sp[0], sp[1]
		if start > len(text) {
			break
		}
		if end > len(text) {
			end = len(text)
		}
		if start > prev {
			buf = append(buf, text[prev:start]...)
		}
		buf = append(buf, f.styles.Match.Render(string(text[start:end]))...)
		prev = end
	}
	if prev < len(text) {
		buf = append(buf, text[prev:]...)
	}
	return buf
}
