package buildpipeline

import (
	"errors"

	"minipack/internal/diag"
	"minipack/internal/graph"
	"minipack/internal/module"
	"minipack/internal/source"
)

// ErrorDiagnostics converts a pipeline failure into renderable diagnostics.
// It returns nil for failures that carry no location, such as cancellation
// or bad flags.
func ErrorDiagnostics(err error) *diag.Bag {
	if err == nil {
		return nil
	}
	var d *diag.Diagnostic
	if me, ok := module.AsError(err); ok {
		d = me.Diagnostic()
	} else {
		switch {
		case errors.Is(err, graph.ErrBrokenTable):
			d = diag.NewError(diag.ProjBrokenTable, source.Span{}, err.Error())
		case errors.Is(err, ErrWrite):
			d = diag.NewError(diag.IOWriteError, source.Span{}, err.Error())
		default:
			return nil
		}
	}
	bag := diag.NewBag(1)
	bag.Add(d)
	return bag
}
