package cli

import "fmt"

// ColorMode controls when colored output is used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color when stdout is a terminal
	ColorAlways                  // always use color
	ColorNever                   // never use color
)

// Config holds all configuration for a linegrep invocation.
type Config struct {
	Patterns      []string
	Fixed         bool
	PCRE          bool
	IgnoreCase    bool
	SmartCase     bool
	Invert        bool
	MultiLine     bool
	LineNumbers   bool
	CountOnly     bool
	FileNamesOnly bool
	ContextBefore int
	ContextAfter  int
	NullData      bool // NUL-terminated lines instead of newline
	Recursive     bool
	NoIgnore      bool
	Hidden        bool
	SearchBinary  bool // search files that look binary instead of skipping them
	Follow        bool
	JSONOutput    bool
	Color         ColorMode
	Workers       int
	HeapLimit     int // bytes of buffering allowed; < 0 means unlimited
	NoMmap        bool
	MmapThreshold int64
	Paths         []string
}

// Validate checks that the config is valid and returns an error if not.
func (c *Config) Validate() error {
	if len(c.Patterns) == 0 {
		return fmt.Errorf("no pattern specified")
	}
	if c.Fixed && c.PCRE {
		return fmt.Errorf("cannot use -F (fixed) and -P (pcre) together")
	}
	if c.ContextBefore < 0 {
		return fmt.Errorf("invalid context before: %d", c.ContextBefore)
	}
	if c.ContextAfter < 0 {
		return fmt.Errorf("invalid context after: %d", c.ContextAfter)
	}
	if c.CountOnly && c.FileNamesOnly {
		return fmt.Errorf("cannot use -c (count) and -l (files-with-matches) together")
	}
	if c.Follow && len(c.Paths) == 0 {
		return fmt.Errorf("--follow requires at least one file to watch")
	}
	if c.Follow && c.Recursive {
		return fmt.Errorf("cannot use --follow and -r (recursive) together")
	}
	if c.HeapLimit == 0 && c.NoMmap {
		return fmt.Errorf("--heap-limit 0 with --no-mmap leaves no way to read input")
	}
	return nil
}
