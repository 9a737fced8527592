// Package walker discovers candidate files for searching. Traversal
// honors .gitignore rules layer by layer, skips VCS and (optionally)
// hidden entries, and can pre-filter files whose extension marks them
// as binary.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileEntry is a file discovered during traversal.
type FileEntry struct {
	Path string
}

// WalkOptions configures traversal behavior.
type WalkOptions struct {
	Recursive     bool
	NoIgnore      bool // skip .gitignore processing
	Hidden        bool // include hidden files and directories
	SkipBinaryExt bool // drop files with known binary extensions
}

// Walk traverses the given roots and sends discovered files on the
// returned channel. Without Recursive, the roots are treated as literal
// file paths. Traversal errors are reported on the error channel; they
// never stop the walk.
func Walk(roots []string, opts WalkOptions) (<-chan FileEntry, <-chan error) {
	fileCh := make(chan FileEntry, 256)
	errCh := make(chan error, 16)

	go func() {
		defer close(fileCh)
		defer close(errCh)

		if !opts.Recursive {
			for _, root := range roots {
				info, err := os.Stat(root)
				if err != nil {
					errCh <- &WalkError{Path: root, Err: err}
					continue
				}
				if info.Mode().IsRegular() {
					fileCh <- FileEntry{Path: root}
				}
			}
			return
		}

		for _, root := range roots {
			walkRoot(root, opts, fileCh, errCh)
		}
	}()

	return fileCh, errCh
}

// walkRoot runs one depth-first traversal. The ignore stack mirrors the
// walk: descending into a directory pushes its .gitignore layer, and
// moving to a path outside a layer's directory pops it.
func walkRoot(root string, opts WalkOptions, fileCh chan<- FileEntry, errCh chan<- error) {
	stack := newIgnoreStack()
	if !opts.NoIgnore {
		stack.push(root)
	}

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errCh <- &WalkError{Path: path, Err: err}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		stack.trim(path)

		name := d.Name()
		if d.IsDir() {
			if skipDir(name, opts.Hidden) {
				return fs.SkipDir
			}
			if !opts.NoIgnore {
				if stack.isIgnored(path, true) {
					return fs.SkipDir
				}
				stack.push(path)
			}
			return nil
		}

		if !opts.Hidden && strings.HasPrefix(name, ".") {
			return nil
		}
		if opts.SkipBinaryExt && IsBinaryExtension(name) {
			return nil
		}
		if !opts.NoIgnore && stack.isIgnored(path, false) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			// Follow symlinks to regular files only; symlinked
			// directories are not descended into.
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		fileCh <- FileEntry{Path: path}
		return nil
	})
}

// skipDir reports directories that are never descended into. VCS
// directories are always skipped; other hidden directories only when
// hidden files are excluded.
func skipDir(name string, hidden bool) bool {
	switch name {
	case ".git", ".svn", ".hg":
		return true
	}
	return !hidden && strings.HasPrefix(name, ".")
}

// WalkError is a traversal error tied to the path that caused it.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return "walk " + e.Path + ": " + e.Err.Error()
}

func (e *WalkError) Unwrap() error {
	return e.Err
}
