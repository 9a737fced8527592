package walker

import (
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// ignoreStack tracks .gitignore rules along the current traversal path.
// Each layer belongs to one directory; a path is ignored when any
// enclosing layer's rules match it.
type ignoreStack struct {
	layers []ignoreLayer
}

type ignoreLayer struct {
	dir    string
	parser *ignore.GitIgnore
}

func newIgnoreStack() *ignoreStack {
	return &ignoreStack{}
}

// push loads the directory's .gitignore and adds it as a layer. A
// missing or unparsable file still pushes a layer so stack depth
// mirrors traversal depth.
func (s *ignoreStack) push(dir string) {
	parser, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		s.layers = append(s.layers, ignoreLayer{dir: dir})
		return
	}
	s.layers = append(s.layers, ignoreLayer{dir: dir, parser: parser})
}

// pop removes the top layer.
func (s *ignoreStack) pop() {
	if len(s.layers) > 0 {
		s.layers = s.layers[:len(s.layers)-1]
	}
}

// trim pops layers whose directory no longer encloses path. Needed
// because a depth-first walk gives no leave-directory event.
func (s *ignoreStack) trim(path string) {
	for len(s.layers) > 0 {
		dir := s.layers[len(s.layers)-1].dir
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return
		}
		s.layers = s.layers[:len(s.layers)-1]
	}
}

// isIgnored reports whether any active layer ignores the path.
func (s *ignoreStack) isIgnored(fullPath string, isDir bool) bool {
	for _, layer := range s.layers {
		if layer.parser == nil {
			continue
		}
		rel, err := filepath.Rel(layer.dir, fullPath)
		if err != nil {
			continue
		}
		if isDir {
			rel += "/"
		}
		if layer.parser.MatchesPath(rel) {
			return true
		}
	}
	return false
}
