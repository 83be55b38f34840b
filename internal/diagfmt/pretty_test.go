package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"minipack/internal/diag"
	"minipack/internal/source"
)

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("import x from \"./missing.js\";\n")
	fileID := fs.AddVirtual("/home/user/project/src/entry.js", content)
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevError,
		diag.ProjUnresolvedImport,
		source.Span{File: fileID, Start: 14, End: 28},
		"cannot resolve \"./missing.js\"",
	))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/entry.js:1:15"},
		{"Relative path", PathModeRelative, "src/entry.js:1:15"},
		{"Basename only", PathModeBasename, "entry.js:1:15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR") {
				t.Error("Expected ERROR in output")
			}
			if !strings.Contains(output, "PRJ5001") {
				t.Error("Expected PRJ5001 code in output")
			}
		})
	}
}

func TestPrettyCaretUnderSpan(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.js", []byte("const a = 1;\nimport b from 'b';\n"))

	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SynParseError, source.Span{File: fileID, Start: 27, End: 30}, "unexpected"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, source and caret lines, got:\n%s", buf.String())
	}
	if lines[0] != "a.js:2:15: ERROR SYN2001: unexpected" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != " 2 | import b from 'b';" {
		t.Fatalf("unexpected source line %q", lines[1])
	}
	if lines[2] != "   |               ^~~" {
		t.Fatalf("unexpected caret line %q", lines[2])
	}
}

func TestPrettyNotesAndPathFallback(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("entry.js", []byte("import './gone.js';\n"))

	bag := diag.NewBag(4)
	d := diag.NewError(diag.IOLoadFileError, source.Span{File: 99}, "open gone.js: no such file").
		WithPath("/abs/gone.js").
		WithNote(source.Span{File: fileID, Start: 7, End: 18}, "imported here")
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	output := buf.String()

	if !strings.HasPrefix(output, "/abs/gone.js: ERROR IO4001: open gone.js") {
		t.Fatalf("expected path fallback header, got:\n%s", output)
	}
	if !strings.Contains(output, "note: entry.js:1:8 imported here") {
		t.Fatalf("expected note with location, got:\n%s", output)
	}
}
