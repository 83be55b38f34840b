package source

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("entry.js", []byte("hello world"), 0)
	if id1 != 0 {
		t.Fatalf("first FileID = %d, want 0", id1)
	}
	latestID, ok := fs.GetLatest("entry.js")
	if !ok || latestID != id1 {
		t.Fatalf("GetLatest = %d, %v; want %d, true", latestID, ok, id1)
	}

	id2 := fs.Add("entry.js", []byte("hello universe"), 0)
	if id2 != 1 {
		t.Fatalf("second FileID = %d, want 1", id2)
	}
	latestID, ok = fs.GetLatest("entry.js")
	if !ok || latestID != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d, true", latestID, ok, id2)
	}

	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Fatalf("first version content = %q", got)
	}
	if got := string(fs.Get(id2).Content); got != "hello universe" {
		t.Fatalf("second version content = %q", got)
	}
	if fs.Get(99) != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.js", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("LineIdx length = %d, want %d", len(file.LineIdx), len(expected))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Fatalf("LineIdx[%d] = %d, want %d", i, file.LineIdx[i], val)
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Fatalf("expected FileVirtual flag")
	}
}

func TestCRLFNormalization(t *testing.T) {
	normalized, changed := normalizeCRLF([]byte("a\r\nb\r\nc\r"))
	if !changed {
		t.Fatalf("expected CRLF normalization to be detected")
	}
	if string(normalized) != "a\nb\nc\r" {
		t.Fatalf("normalized = %q", normalized)
	}
	if _, changed := normalizeCRLF([]byte("plain\n")); changed {
		t.Fatalf("unexpected change for LF-only input")
	}
}

func TestBOMRemoval(t *testing.T) {
	withoutBOM, hadBOM := removeBOM([]byte{0xEF, 0xBB, 0xBF, 'x', '\n'})
	if !hadBOM {
		t.Fatalf("expected BOM to be detected")
	}
	if string(withoutBOM) != "x\n" {
		t.Fatalf("content without BOM = %q", withoutBOM)
	}
}

func TestLoadNormalizesAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.js")
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("let a = 1;\r\nlet b = 2;\r\n")...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "let a = 1;\nlet b = 2;\n" {
		t.Fatalf("content = %q", file.Content)
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b, want BOM and CRLF set", file.Flags)
	}
	if got := file.GetLine(2); got != "let b = 2;" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := file.FormatPath("relative", dir); got != "crlf.js" {
		t.Fatalf("FormatPath(relative) = %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "missing.js")); !os.IsNotExist(err) {
		t.Fatalf("Load error = %v, want not-exist", err)
	}
	if fs.Len() != 0 {
		t.Fatalf("failed load must not add a file")
	}
}

func TestResolveUTF8(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("utf.js", []byte("α\n"))

	start, end := fs.Resolve(Span{File: id, Start: 0, End: 1})
	if start != (LineCol{Line: 1, Col: 1}) {
		t.Fatalf("start = %+v", start)
	}
	if end != (LineCol{Line: 1, Col: 2}) {
		t.Fatalf("end = %+v", end)
	}
}

func TestFileSetConcurrentAdd(t *testing.T) {
	fs := NewFileSet()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fs.AddVirtual("m.js", []byte("x"))
			if fs.Get(id) == nil {
				t.Errorf("missing file %d", id)
			}
		}()
	}
	wg.Wait()
	if fs.Len() != 32 {
		t.Fatalf("Len = %d, want 32", fs.Len())
	}
	seen := make(map[FileID]bool)
	for i := 0; i < fs.Len(); i++ {
		f := fs.Get(FileID(i))
		if f.ID != FileID(i) || seen[f.ID] {
			t.Fatalf("file ids not dense: %d", f.ID)
		}
		seen[f.ID] = true
	}
}

func TestOffsetOf(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("o.js", []byte("ab\nçd\n")))

	cases := []struct {
		line, col int
		want      uint32
		ok        bool
	}{
		{1, 1, 0, true},
		{1, 3, 2, true},
		{2, 2, 5, true}, // 'ç' is two bytes
		{2, 9, 6, true}, // clamps at the newline
		{3, 1, 7, true},
		{4, 1, 0, false},
		{0, 1, 0, false},
	}
	for _, tc := range cases {
		got, ok := f.OffsetOf(tc.line, tc.col)
		if got != tc.want || ok != tc.ok {
			t.Errorf("OffsetOf(%d, %d) = %d, %v; want %d, %v", tc.line, tc.col, got, ok, tc.want, tc.ok)
		}
	}
}
