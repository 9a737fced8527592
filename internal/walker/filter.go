package walker

import (
	"bytes"
	"strings"
)

// IsBinary reports whether data looks binary: a NUL byte within the
// first 8KB, the GNU grep heuristic. Used to skip whole files before
// handing them to a searcher configured without binary detection.
func IsBinary(data []byte) bool {
	limit := 8192
	if len(data) < limit {
		limit = len(data)
	}
	return bytes.IndexByte(data[:limit], 0) >= 0
}

// IsBinaryExtension reports whether the filename's extension marks a
// known binary format, letting the walker drop the file without opening
// it. Versioned shared libs ("libfoo.so.1.2.3") are covered too.
func IsBinaryExtension(name string) bool {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return false
	}
	ext := name[dot:]
	if len(ext) == 2 {
		switch ext[1] {
		case 'a', 'o', 'z':
			return true
		}
	}
	if _, ok := binaryExts[ext]; ok {
		return true
	}
	return strings.Contains(name, ".so.")
}

// binaryExts is the set of file extensions known to be binary.
// Covers: compiled objects, shared libs, archives, images, audio, video,
// fonts, executables, compressed, databases, and other common binary formats.
var binaryExts = map[string]struct{}{
	// Compiled / linked
	".so":    {},
	".dylib": {},
	".dll":   {},
	".exe":   {},
	".bin":   {},
	".elf":   {},
	".class": {},
	".pyc":   {},
	".pyo":   {},
	".wasm":  {},
	// Archives / compressed
	".gz":  {},
	".bz2": {},
	".xz":  {},
	".zst": {},
	".lz4": {},
	".lzo": {},
	".zip": {},
	".tar": {},
	".rar": {},
	".7z":  {},
	".cab": {},
	".deb": {},
	".rpm": {},
	".jar": {},
	".war": {},
	// Images
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".ico":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
	".svg":  {}, // technically text, but rarely grepped
	".psd":  {},
	".xcf":  {},
	// Audio / video
	".mp3":  {},
	".mp4":  {},
	".ogg":  {},
	".flac": {},
	".wav":  {},
	".avi":  {},
	".mkv":  {},
	".webm": {},
	".mov":  {},
	".wmv":  {},
	// Fonts
	".ttf":   {},
	".otf":   {},
	".woff":  {},
	".woff2": {},
	".eot":   {},
	// Documents (binary formats)
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".xls":  {},
	".xlsx": {},
	".ppt":  {},
	".pptx": {},
	".odt":  {},
	// Databases
	".db":     {},
	".sqlite": {},
	".mdb":    {},
	// Misc binary
	".swp": {},
	".swo": {},
	".DS_Store": {},
}
