package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"minipack/internal/source"
)

type shortLine struct {
	sev  string
	code string
	path string
	line uint32
	col  uint32
	msg  string
}

func (l shortLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.sev, l.code, l.path, l.line, l.col, l.msg)
}

// FormatShortDiagnostics renders one line per diagnostic (and per note when
// includeNotes is set), ordered by location. Paths are relative to the file
// set's base directory; diagnostics without a loaded file fall back to
// Diagnostic.Path with a 0:0 position.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	lines := make([]shortLine, 0, len(diags))
	for _, d := range diags {
		if path, line, col, ok := locate(fs, d.Primary); ok {
			lines = append(lines, shortLine{d.Severity.label(), d.Code.ID(), path, line, col, flatten(d.Message)})
		} else if d.Path != "" {
			lines = append(lines, shortLine{d.Severity.label(), d.Code.ID(), filepath.ToSlash(d.Path), 0, 0, flatten(d.Message)})
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			if path, line, col, ok := locate(fs, n.Span); ok {
				lines = append(lines, shortLine{"note", d.Code.ID(), path, line, col, flatten(n.Msg)})
			}
		}
	}
	slices.SortStableFunc(lines, func(a, b shortLine) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.line, b.line),
			cmp.Compare(a.col, b.col),
			cmp.Compare(a.sev, b.sev),
			cmp.Compare(a.code, b.code),
			cmp.Compare(a.msg, b.msg),
		)
	})

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return strings.Join(out, "\n")
}

func locate(fs *source.FileSet, span source.Span) (path string, line, col uint32, ok bool) {
	if fs == nil {
		return "", 0, 0, false
	}
	f := fs.Get(span.File)
	if f == nil {
		return "", 0, 0, false
	}
	start, _ := fs.Resolve(span)
	path = strings.TrimPrefix(filepath.ToSlash(f.FormatPath("relative", fs.BaseDir())), "./")
	return path, start.Line, start.Col, true
}

// flatten folds a multi-line message onto one line.
func flatten(msg string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(msg), " "))
}
