package output

import (
	"encoding/json"
)

// JSONFormatter renders results as JSON Lines, one object per reported
// line, with a trailing "binary" record when binary detection cut the
// search short.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

type jsonLine struct {
	Type       string    `json:"type"` // "match" or "context"
	File       string    `json:"file,omitempty"`
	LineNum    int64     `json:"line_number,omitempty"`
	ByteOffset int64     `json:"byte_offset"`
	Text       string    `json:"text"`
	Spans      []jsonPos `json:"spans,omitempty"`
}

type jsonPos struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type jsonBinary struct {
	Type       string `json:"type"` // "binary"
	File       string `json:"file,omitempty"`
	ByteOffset int64  `json:"byte_offset"`
}

func (f *JSONFormatter) Format(buf []byte, r *Result, _ bool) []byte {
	for i := range r.Lines {
		line := &r.Lines[i]
		jl := jsonLine{
			Type:       "match",
			File:       r.Path,
			LineNum:    line.Number,
			ByteOffset: line.Offset,
			Text:       string(line.Text),
		}
		if line.Kind == KindContext {
			jl.Type = "context"
		}
		if len(line.Spans) > 0 {
			jl.Spans = make([]jsonPos, len(line.Spans))
			for i, sp := range line.Spans {
				jl.Spans[i] = jsonPos{Start: sp[0], End: sp[1]}
			}
		}
		data, _ := json.Marshal(jl)
		buf = append(buf, data...)
		buf = append(buf, '\n')
	}
	if r.Binary {
		data, _ := json.Marshal(jsonBinary{
			Type:       "binary",
			File:       r.Path,
			ByteOffset: r.BinaryOffset,
		})
		buf = append(buf, data...)
		buf = append(buf, '\n')
	}
	return buf
}

var _ Formatter = (*JSONFormatter)(nil)
