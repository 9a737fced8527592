package searcher

import (
	"errors"
	"fmt"

	"github.com/dl/linegrep/internal/linebuf"
)

// MmapChoice controls whether callers that can feed the searcher a
// memory-mapped region are permitted to do so.
type MmapChoice int

const (
	// MmapAuto uses memory maps when they are believed advantageous.
	MmapAuto MmapChoice = iota
	// MmapNever disables memory maps entirely. With multi-line search
	// this forces the entire input onto the heap.
	MmapNever
)

func (c MmapChoice) enabled() bool { return c == MmapAuto }

// BinaryDetection is the strategy for detecting and reacting to binary
// data while searching.
//
// For streaming search the policy is enforced by the line buffer as it
// fills. For searches over fully resident contents only the head of the
// region and each reported span are inspected.
type BinaryDetection struct {
	det linebuf.BinaryDetection
}

// NoBinaryDetection performs no binary detection. This is the default.
func NoBinaryDetection() BinaryDetection {
	return BinaryDetection{det: linebuf.NoDetection()}
}

// QuitOnByte treats any occurrence of b as binary data and stops the
// search as if end of input had been reached.
func QuitOnByte(b byte) BinaryDetection {
	return BinaryDetection{det: linebuf.QuitOnByte(b)}
}

// convertByte replaces b with the line terminator during streaming
// fills so it is never observed downstream. Defined for completeness;
// not reachable from the builder.
func convertByte(b byte) BinaryDetection {
	return BinaryDetection{det: linebuf.ConvertByte(b)}
}

// config is the internal configuration of a searcher. It is written
// only by the Builder and read-only afterwards.
type config struct {
	lineTerm       byte
	invertMatch    bool
	afterContext   int
	beforeContext  int
	lineNumber     bool
	heapLimit      int // -1 means no limit; 0 disables heap search
	mmap           MmapChoice
	binary         BinaryDetection
	multiLine      bool
	checkMatcherLT bool
}

func defaultConfig() config {
	return config{
		lineTerm:  '\n',
		heapLimit: -1,
		mmap:      MmapAuto,
		binary:    NoBinaryDetection(),
	}
}

// lineBufferOptions derives the line buffer configuration. A heap limit
// smaller than the default capacity becomes the buffer's entire
// allowance; a larger one leaves the default capacity and turns the
// remainder into a hard growth budget.
func (c *config) lineBufferOptions() linebuf.Options {
	opts := linebuf.Options{
		LineTerm: c.lineTerm,
		Binary:   c.binary.det,
	}
	if c.heapLimit >= 0 {
		if c.heapLimit <= linebuf.DefaultCapacity {
			opts.Capacity = c.heapLimit
			opts.Alloc = linebuf.GrowLimit(0)
		} else {
			opts.Capacity = linebuf.DefaultCapacity
			opts.Alloc = linebuf.GrowLimit(c.heapLimit - linebuf.DefaultCapacity)
		}
	}
	return opts
}

// ErrSearchUnavailable indicates that the configuration prevents every
// search strategy: a heap limit of 0 with memory maps disabled leaves
// no way to acquire input data.
var ErrSearchUnavailable = errors.New("searcher: no available search strategy")

// MismatchedLineTermError indicates that a matcher declares a line
// terminator different from the searcher's configured one. It is only
// reported when the (opt-in) consistency check is enabled.
type MismatchedLineTermError struct {
	Matcher  byte
	Searcher byte
}

func (e *MismatchedLineTermError) Error() string {
	return fmt.Sprintf(
		"searcher: mismatched line terminators: matcher has 0x%02X but searcher has 0x%02X",
		e.Matcher, e.Searcher,
	)
}
