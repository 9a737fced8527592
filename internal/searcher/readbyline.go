package searcher

import (
	"bytes"

	"github.com/dl/linegrep/internal/linebuf"
)

// readByLine drives incremental fills of the line buffer against a
// stream, scanning the buffered bytes one line at a time. Binary
// detection is enforced by the buffer's fill step; a detected binary
// byte surfaces here as end of input.
type readByLine struct {
	core scanCore
	rdr  *linebuf.Reader
}

func (r *readByLine) run() error {
	term := r.core.s.config.lineTerm
	for {
		ok, err := r.rdr.Fill()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		// The buffer ends either at a line terminator or at true end
		// of input, so a trailing unterminated fragment is a final
		// line.
		buf := r.rdr.Buffer()
		base := r.rdr.AbsoluteOffset()
		consumed := 0
		for consumed < len(buf) {
			line := buf[consumed:]
			if i := bytes.IndexByte(line, term); i >= 0 {
				line = line[:i]
			}
			goon, err := r.core.processLine(line, base+int64(consumed))
			consumed += len(line)
			if consumed < len(buf) {
				consumed++ // the terminator
			}
			if err != nil {
				r.rdr.Consume(consumed)
				return err
			}
			if !goon {
				r.rdr.Consume(consumed)
				return nil
			}
		}
		r.rdr.Consume(consumed)
	}

	if off := r.rdr.BinaryByteOffset(); off >= 0 {
		return notifyBinary(r.core.s, r.core.sink, off)
	}
	return nil
}
