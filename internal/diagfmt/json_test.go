package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"minipack/internal/diag"
	"minipack/internal/source"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.js", []byte("export { a } from './a.js';\nimport 'x\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.SynParseError, source.Span{File: fileID, Start: 35, End: 38}, "unterminated string literal").
		WithNote(source.Span{File: fileID, Start: 0, End: 6}, "module starts here"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected exactly one diagnostic, got %+v", output)
	}
	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SYN2001" {
		t.Errorf("unexpected severity/code: %s %s", d.Severity, d.Code)
	}
	if d.Location.File != "test.js" || d.Location.StartLine != 2 || d.Location.StartCol != 8 {
		t.Errorf("unexpected location: %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartLine != 1 {
		t.Errorf("unexpected notes: %+v", d.Notes)
	}
}

func TestJSONWithoutPositionsAndMax(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.js", []byte("a\nb\nc\n"))

	bag := diag.NewBag(10)
	for i := range 3 {
		start := uint32(i * 2)
		bag.Add(diag.New(diag.SevWarning, diag.ProjDuplicateImport, source.Span{File: fileID, Start: start, End: start + 1}, "dup"))
	}
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: 7}, "gone").WithPath("/x/gone.js"))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("expected Max to cap output at 2, got %d", out.Count)
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Fatalf("positions must be omitted, got %+v", out.Diagnostics[0].Location)
	}

	all := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if got := all.Diagnostics[3].Location.File; got != "/x/gone.js" {
		t.Fatalf("expected path fallback for unloaded file, got %q", got)
	}
}
