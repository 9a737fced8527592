package searcher

import "bytes"

// sliceByLine runs the same matching and context logic as readByLine,
// but directly over an already resident byte region: no fill step, no
// growth, no copies of retained context lines.
type sliceByLine struct {
	core scanCore
	data []byte
}

func (s *sliceByLine) run() error {
	term := s.core.s.config.lineTerm
	pos := 0
	for pos < len(s.data) {
		line := s.data[pos:]
		if i := bytes.IndexByte(line, term); i >= 0 {
			line = line[:i]
		}
		goon, err := s.core.processLine(line, int64(pos))
		if err != nil {
			return err
		}
		if !goon {
			return nil
		}
		pos += len(line)
		if pos < len(s.data) {
			pos++ // the terminator
		}
	}
	return nil
}
