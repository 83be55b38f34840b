package module

import (
	"errors"
	"fmt"
	"strings"

	"minipack/internal/diag"
	"minipack/internal/source"
)

var (
	ErrSourceRead = errors.New("source read error")
	ErrParse      = errors.New("parse error")
	ErrTransform  = errors.New("transform error")
	// ErrResolution marks an import whose target is invalid, unreadable or unparsable.
	ErrResolution = errors.New("resolution error")
)

// Error is a fatal failure while building one module, tagged with the
// import edge that led to it when the module is not the entry.
type Error struct {
	Kind error // one of the Err* sentinels
	Path string

	HasImporter bool
	Importer    ID
	ImportPath  string
	ImportSpan  source.Span // literal in the importer's file

	HasSpan bool
	Span    source.Span // position inside Path, when known

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.HasImporter {
		fmt.Fprintf(&b, "module %d imports %q -> ", e.Importer, e.ImportPath)
	}
	fmt.Fprintf(&b, "%v in %s", e.Kind, e.Path)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes Kind, the cause and, for failures reached through an
// import, ErrResolution.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 3)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.HasImporter && e.Kind != ErrResolution && e.Kind != ErrTransform {
		errs = append(errs, ErrResolution)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// WithImporter tags e with the edge importer --importPath--> e.Path.
func (e *Error) WithImporter(importer ID, imp Import) *Error {
	e.HasImporter = true
	e.Importer = importer
	e.ImportPath = imp.Path
	e.ImportSpan = imp.Span
	return e
}

func (e *Error) code() diag.Code {
	switch {
	case e.Kind == ErrParse:
		return diag.SynParseError
	case e.Kind == ErrTransform:
		return diag.XfmTransformError
	case e.Kind == ErrResolution:
		return diag.ProjInvalidImportPath
	case e.HasImporter:
		return diag.ProjUnresolvedImport
	default:
		return diag.IOLoadFileError
	}
}

// Diagnostic converts e for rendering. The primary span points into the
// failing file when known, otherwise at the import literal in the importer.
func (e *Error) Diagnostic() *diag.Diagnostic {
	msg := e.Kind.Error()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.HasImporter {
		msg = fmt.Sprintf("%s (imported as %q by module %d)", msg, e.ImportPath, e.Importer)
	}

	d := diag.NewError(e.code(), source.Span{}, msg).WithPath(e.Path)
	switch {
	case e.HasSpan:
		d.Primary = e.Span
		if e.HasImporter {
			d.WithNote(e.ImportSpan, "imported here")
		}
	case e.HasImporter:
		d.Primary = e.ImportSpan
	default:
		d.Primary = source.Span{File: noFile}
	}
	return d
}

// noFile never names a loaded file, so renderers fall back to Diagnostic.Path.
const noFile = ^source.FileID(0)

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var me *Error
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
