package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
)

// File is one loaded scenario file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}

// FileSet owns every file read during a run. Slot 0 is reserved so that
// NoFileID never resolves.
type FileSet struct {
	files []File
	index map[string]FileID
}

// NewFileSet creates an empty set.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 1, 8),
		index: make(map[string]FileID),
	}
}

// Add stores content under path and returns its id. Re-adding a path
// yields a fresh id; the index points at the newest one.
func (fs *FileSet) Add(path string, content []byte) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(n)
	path = filepath.ToSlash(filepath.Clean(path))
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: lineIndex(content),
		Hash:    sha256.Sum256(content),
	})
	fs.index[path] = id
	return id
}

// Load reads path from disk, strips a UTF-8 BOM and folds CRLF to LF.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- scenario paths come from the command line
	content, err := os.ReadFile(path)
	if err != nil {
		return NoFileID, err
	}
	return fs.Add(path, normalizeNewlines(stripBOM(content))), nil
}

// Get returns the file for id or nil.
func (fs *FileSet) Get(id FileID) *File {
	if !id.IsValid() || int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Lookup finds the newest file added under path.
func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.index[filepath.ToSlash(filepath.Clean(path))]
	return id, ok
}

// Resolve converts span offsets into line/column pairs.
func (fs *FileSet) Resolve(span Span) (start, end LineCol, ok bool) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}, false
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End), true
}

// Line returns the text of 1-based line n without its terminator.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	start := 0
	if n > 1 {
		start = int(f.LineIdx[n-2]) + 1
	}
	end := len(f.Content)
	if int(n) <= len(f.LineIdx) {
		end = int(f.LineIdx[n-1])
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

func stripBOM(content []byte) []byte {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:]
	}
	return content
}

func normalizeNewlines(content []byte) []byte {
	out := content[:0:0]
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			continue
		}
		out = append(out, content[i])
	}
	return out
}

func lineIndex(content []byte) []uint32 {
	var out []uint32
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) // #nosec G115 -- bounded by safecast in Add callers
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// number of newlines strictly before off
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	start := uint32(0)
	if line > 0 {
		start = lineIdx[line-1] + 1
	}
	return LineCol{Line: uint32(line) + 1, Col: off - start + 1} // #nosec G115
}
