package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"minipack/internal/diag"
	"minipack/internal/source"
)

type palette struct {
	err, warn, info, code, path, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:   color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		info:  color.New(color.FgCyan, color.Bold),
		code:  color.New(color.Faint),
		path:  color.New(color.Bold),
		caret: color.New(color.FgGreen, color.Bold),
		note:  color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders the bag in order (call bag.Sort first for stable output):
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	   <line> | source text
//	          | ^~~~
//
// followed by notes in the same location format.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		loc := location(fs, d.Primary, d.Path, opts.PathMode)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path.Sprint(loc),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message,
		)
		writeContext(w, fs, d.Primary, int(opts.Context), p)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s %s\n", p.note.Sprint("note:"), location(fs, n.Span, "", opts.PathMode), n.Msg)
		}
	}
}

func location(fs *source.FileSet, sp source.Span, fallback string, mode PathMode) string {
	if fs != nil {
		if f := fs.Get(sp.File); f != nil {
			start, _ := fs.Resolve(sp)
			return fmt.Sprintf("%s:%d:%d", f.FormatPath(mode.fileSetMode(), fs.BaseDir()), start.Line, start.Col)
		}
	}
	if fallback != "" {
		return fallback
	}
	return "<unknown>"
}

func writeContext(w io.Writer, fs *source.FileSet, sp source.Span, context int, p palette) {
	if fs == nil {
		return
	}
	f := fs.Get(sp.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(sp)
	first := int(start.Line) - context
	if first < 1 {
		first = 1
	}
	last := int(start.Line) + context
	width := len(fmt.Sprint(last))
	for ln := first; ln <= last; ln++ {
		text := f.GetLine(uint32(ln))
		if text == "" && ln != int(start.Line) {
			continue
		}
		fmt.Fprintf(w, " %*d | %s\n", width, ln, strings.TrimRight(text, "\r"))
		if ln != int(start.Line) {
			continue
		}
		n := 1
		if end.Line == start.Line && end.Col > start.Col {
			n = int(end.Col - start.Col)
		}
		marker := "^" + strings.Repeat("~", n-1)
		fmt.Fprintf(w, " %*s | %s%s\n", width, "", strings.Repeat(" ", int(start.Col)-1), p.caret.Sprint(marker))
	}
}
