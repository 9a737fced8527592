package cli

import (
	"bytes"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dl/linegrep/internal/input"
	"github.com/dl/linegrep/internal/matcher"
	"github.com/dl/linegrep/internal/output"
	"github.com/dl/linegrep/internal/scheduler"
	"github.com/dl/linegrep/internal/searcher"
	"github.com/dl/linegrep/internal/walker"
	"github.com/dl/linegrep/internal/watch"
)

// Run executes the search with the given config.
// Returns exit code: 0 = match found, 1 = no match, 2 = error.
func Run(cfg Config) int {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level: log.WarnLevel,
	})

	m, err := buildMatcher(cfg)
	if err != nil {
		logger.Error("invalid pattern", "err", err)
		return 2
	}
	s, err := buildSearcher(cfg)
	if err != nil {
		logger.Error("invalid search configuration", "err", err)
		return 2
	}

	useColor := false
	switch cfg.Color {
	case ColorAlways:
		useColor = true
	case ColorNever:
		useColor = false
	case ColorAuto:
		useColor = output.StdoutIsTerminal()
	}

	w := output.NewWriter()
	var formatter output.Formatter
	if cfg.JSONOutput {
		formatter = output.NewJSONFormatter()
	} else {
		styles := output.NoStyles()
		if useColor {
			styles = output.NewStyles()
		}
		formatter = output.NewTextFormatter(cfg.CountOnly, cfg.FileNamesOnly, useColor, styles)
	}

	if cfg.Follow {
		return runFollow(cfg, s, m, formatter, w, logger)
	}
	if len(cfg.Paths) == 0 {
		return runStdin(s, m, formatter, w, logger)
	}
	if cfg.Recursive {
		return runRecursive(cfg, formatter, w, logger)
	}
	return runFiles(cfg, s, m, formatter, w, logger)
}

// buildMatcher constructs the matcher for cfg, resolving smart case:
// patterns without an upper-case letter search case-insensitively.
func buildMatcher(cfg Config) (matcher.Matcher, error) {
	ignoreCase := cfg.IgnoreCase
	if cfg.SmartCase && !ignoreCase {
		ignoreCase = !anyUpper(cfg.Patterns)
	}
	return matcher.NewMatcher(cfg.Patterns, cfg.Fixed, cfg.PCRE, ignoreCase)
}

func anyUpper(patterns []string) bool {
	for _, p := range patterns {
		for i := 0; i < len(p); i++ {
			if p[i] >= 'A' && p[i] <= 'Z' {
				return true
			}
		}
	}
	return false
}

func buildSearcher(cfg Config) (*searcher.Searcher, error) {
	b := searcher.NewBuilder().
		InvertMatch(cfg.Invert).
		LineNumber(cfg.LineNumbers).
		MultiLine(cfg.MultiLine).
		BeforeContext(cfg.ContextBefore).
		AfterContext(cfg.ContextAfter).
		HeapLimit(cfg.HeapLimit)
	if cfg.NullData {
		b.LineTerminator(0x00)
	} else if !cfg.SearchBinary {
		// A NUL terminator rules out NUL-based binary detection.
		b.BinaryDetection(searcher.QuitOnByte(0x00))
	}
	if cfg.NoMmap {
		b.MemoryMap(searcher.MmapNever)
	}
	return b.Build()
}

func (c Config) mmapChoice() searcher.MmapChoice {
	if c.NoMmap {
		return searcher.MmapNever
	}
	return searcher.MmapAuto
}

func runStdin(s *searcher.Searcher, m matcher.Matcher, formatter output.Formatter, w *output.Writer, logger *log.Logger) int {
	c := output.NewCollector("", 0, m)
	if err := s.SearchReader(m, os.Stdin, c); err != nil {
		logger.Error("search error", "err", err)
		return 2
	}
	r := c.Result()
	w.Write(formatter.Format(nil, r, false))
	if r.HasMatch() {
		return 0
	}
	return 1
}

func runFiles(cfg Config, s *searcher.Searcher, m matcher.Matcher, formatter output.Formatter, w *output.Writer, logger *log.Logger) int {
	opener := input.NewOpener(cfg.mmapChoice(), cfg.MmapThreshold)
	multiFile := len(cfg.Paths) > 1
	hasMatch := false

	var buf []byte
	for _, path := range cfg.Paths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			logger.Warn("is a directory", "path", path)
			continue
		}
		region, err := opener.Open(path)
		if err != nil {
			logger.Warn("open error", "path", path, "err", err)
			continue
		}
		if !cfg.SearchBinary && walker.IsBinary(region.Data) {
			region.Close()
			continue
		}
		c := output.NewCollector(path, 0, m)
		err = s.SearchSlice(m, region.Data, c)
		region.Close()
		if err != nil {
			logger.Warn("search error", "path", path, "err", err)
			continue
		}
		r := c.Result()
		if r.HasMatch() {
			hasMatch = true
		}
		buf = formatter.Format(buf[:0], r, multiFile)
		w.Write(buf)
	}

	if hasMatch {
		return 0
	}
	return 1
}

// runRecursive builds searcher and matcher per worker via the
// scheduler's factories; the ones built in Run are not shared.
func runRecursive(cfg Config, formatter output.Formatter, w *output.Writer, logger *log.Logger) int {
	fileCh, errCh := walker.Walk(cfg.Paths, walker.WalkOptions{
		Recursive:     true,
		NoIgnore:      cfg.NoIgnore,
		Hidden:        cfg.Hidden,
		SkipBinaryExt: !cfg.SearchBinary,
	})

	go func() {
		for err := range errCh {
			logger.Warn("walk error", "err", err)
		}
	}()

	opener := input.NewOpener(cfg.mmapChoice(), cfg.MmapThreshold)
	sched := scheduler.New(cfg.Workers,
		func() (*searcher.Searcher, error) { return buildSearcher(cfg) },
		func() (matcher.Matcher, error) { return buildMatcher(cfg) },
		opener, !cfg.SearchBinary)
	resultCh := sched.Run(fileCh)

	var hasMatch atomic.Bool
	ow := output.NewOrderedWriter(w, formatter, true)
	ow.WriteOrdered(resultCh, func() {
		hasMatch.Store(true)
	}, func(path string, err error) {
		logger.Warn("error", "path", path, "err", err)
	})

	if hasMatch.Load() {
		return 0
	}
	return 1
}

func runFollow(cfg Config, s *searcher.Searcher, m matcher.Matcher, formatter output.Formatter, w *output.Writer, logger *log.Logger) int {
	watcher, err := watch.New()
	if err != nil {
		logger.Error("failed to create watcher", "err", err)
		return 2
	}
	defer watcher.Close()

	for _, path := range cfg.Paths {
		if err := watcher.Add(path); err != nil {
			logger.Error("failed to watch", "path", path, "err", err)
			return 2
		}
	}

	hasMatch := false
	var buf []byte
	for evt := range watcher.Events() {
		if evt.Err != nil {
			logger.Warn("watch error", "err", evt.Err)
			continue
		}

		switch evt.Type {
		case watch.EventModified:
			data, err := watcher.ReadNew(evt.Path)
			if err != nil {
				logger.Warn("read error", "path", evt.Path, "err", err)
				continue
			}
			if len(data) == 0 {
				continue
			}
			c := output.NewCollector(evt.Path, 0, m)
			if err := s.SearchReader(m, bytes.NewReader(data), c); err != nil {
				logger.Warn("search error", "path", evt.Path, "err", err)
				continue
			}
			r := c.Result()
			if r.HasMatch() || r.Binary {
				hasMatch = hasMatch || r.HasMatch()
				buf = formatter.Format(buf[:0], r, true)
				w.Write(buf)
			}

		case watch.EventCreated:
			if err := watcher.Add(evt.Path); err != nil {
				logger.Warn("failed to watch new file", "path", evt.Path, "err", err)
			}

		case watch.EventDeleted:
			logger.Warn("watched file removed", "path", evt.Path)
		}
	}

	if hasMatch {
		return 0
	}
	return 1
}
