// Package watch implements follow mode: watched files are re-searched
// as content is appended to them, tail -f style.
package watch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sys/unix"

	"github.com/dl/linegrep/internal/matcher"
	"github.com/dl/linegrep/internal/searcher"
)

// Event is a file change relevant to follow mode.
type Event struct {
	Path string
	Type EventType
	Err  error
}

// EventType identifies the kind of file change.
type EventType int

const (
	EventModified EventType = iota
	EventCreated
	EventDeleted
)

// Watcher tracks files for appended content. It remembers a read
// offset per file so each change only surfaces the new bytes.
type Watcher struct {
	fw      *fsnotify.Watcher
	offsets map[string]int64
}

// New creates a Watcher.
func New() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	return &Watcher{
		fw:      fw,
		offsets: make(map[string]int64),
	}, nil
}

// Add starts watching a path. For files the current size becomes the
// follow offset, so only content appended after Add is reported.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fw.Add(abs); err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		w.offsets[abs] = info.Size()
	}
	return nil
}

// Events translates the underlying notifications. The channel closes
// when the watcher is closed.
func (w *Watcher) Events() <-chan Event {
	ch := make(chan Event, 64)
	go func() {
		defer close(ch)
		for {
			select {
			case ev, ok := <-w.fw.Events:
				if !ok {
					return
				}
				switch {
				case ev.Has(fsnotify.Create):
					ch <- Event{Path: ev.Name, Type: EventCreated}
				case ev.Has(fsnotify.Write):
					ch <- Event{Path: ev.Name, Type: EventModified}
				case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
					ch <- Event{Path: ev.Name, Type: EventDeleted}
				}
			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				ch <- Event{Err: err}
			}
		}
	}()
	return ch
}

// ReadNew returns the bytes appended to path since the previous call
// (or since Add). A truncated file restarts from the beginning.
func (w *Watcher) ReadNew(path string) ([]byte, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOATIME, 0)
	if err != nil {
		fd, err = unix.Open(path, unix.O_RDONLY, 0)
		if err != nil {
			return nil, err
		}
	}
	defer unix.Close(fd)

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		return nil, err
	}

	last := w.offsets[path]
	if stat.Size < last {
		last = 0 // truncation, e.g. log rotation
	}
	if stat.Size == last {
		return nil, nil
	}

	buf := make([]byte, stat.Size-last)
	total := 0
	for total < len(buf) {
		n, err := unix.Pread(fd, buf[total:], last+int64(total))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		total += n
	}
	w.offsets[path] = last + int64(total)
	return buf[:total], nil
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// Follower pumps appended content through a streaming search, sending
// results to one sink. One searcher serves all watched files; follow
// mode is sequential by nature.
type Follower struct {
	w    *Watcher
	s    *searcher.Searcher
	m    matcher.Matcher
	sink searcher.Sink
}

// NewFollower creates a Follower over an existing watcher.
func NewFollower(w *Watcher, s *searcher.Searcher, m matcher.Matcher, sink searcher.Sink) *Follower {
	return &Follower{w: w, s: s, m: m, sink: sink}
}

// Run processes events until done is closed or the watcher closes.
// Event delivery errors are returned; search errors end the follow too,
// matching the engine's propagate-verbatim rule.
func (f *Follower) Run(done <-chan struct{}) error {
	events := f.w.Events()
	for {
		select {
		case <-done:
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				return ev.Err
			}
			if ev.Type == EventDeleted {
				continue
			}
			data, err := f.w.ReadNew(ev.Path)
			if err != nil || len(data) == 0 {
				continue // file may be gone already; not fatal
			}
			if err := f.s.SearchReader(f.m, bytes.NewReader(data), f.sink); err != nil {
				return err
			}
		}
	}
}
