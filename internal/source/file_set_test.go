package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("a/b.toml", []byte("one\ntwo\nthree"))
	if !id.IsValid() {
		t.Fatalf("first file must get a valid id")
	}
	start, end, ok := fs.Resolve(Span{File: id, Start: 4, End: 10})
	if !ok {
		t.Fatalf("resolve failed")
	}
	if start != (LineCol{Line: 2, Col: 1}) {
		t.Fatalf("start = %+v", start)
	}
	if end != (LineCol{Line: 3, Col: 3}) {
		t.Fatalf("end = %+v", end)
	}
	if got := fs.Get(id).Line(3); got != "three" {
		t.Fatalf("Line(3) = %q", got)
	}
	if _, _, ok := fs.Resolve(Span{}); ok {
		t.Fatalf("NoFileID must not resolve")
	}
}

func TestFileSetLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.toml")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := string(fs.Get(id).Content); got != "a\nb\n" {
		t.Fatalf("content = %q", got)
	}
	if again, ok := fs.Lookup(path); !ok || again != id {
		t.Fatalf("Lookup did not find the loaded file")
	}
}
