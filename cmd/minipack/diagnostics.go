package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"minipack/internal/buildpipeline"
	"minipack/internal/diag"
	"minipack/internal/diagfmt"
	"minipack/internal/source"
)

// reportedError marks a failure whose diagnostics were already printed.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// reportError prints err unless it was rendered as diagnostics already.
func reportError(cmd *cobra.Command, err error) {
	var rep reportedError
	if errors.As(err, &rep) {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
}

type diagPrinter struct {
	out      io.Writer
	format   string
	pathMode diagfmt.PathMode
	color    bool
	quiet    bool
	max      int
}

func newDiagPrinter(cmd *cobra.Command) (diagPrinter, error) {
	flags := cmd.Root().PersistentFlags()
	colorValue, err := flags.GetString("color")
	if err != nil {
		return diagPrinter{}, err
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return diagPrinter{}, err
	}
	max, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return diagPrinter{}, err
	}
	format, err := flags.GetString("diag-format")
	if err != nil {
		return diagPrinter{}, err
	}
	switch format {
	case "pretty", "short", "json":
	default:
		return diagPrinter{}, fmt.Errorf("unknown diagnostic format %q (want pretty, short or json)", format)
	}
	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return diagPrinter{}, err
	}
	out := cmd.ErrOrStderr()
	color, err := readColor(colorValue, out)
	if err != nil {
		return diagPrinter{}, err
	}
	return diagPrinter{
		out:      out,
		format:   format,
		pathMode: diagfmt.ParsePathMode(pathMode),
		color:    color,
		quiet:    quiet,
		max:      max,
	}, nil
}

// print renders bag sorted and deduplicated, honouring --max-diagnostics.
// Warnings are dropped under --quiet.
func (p diagPrinter) print(bag *diag.Bag, files *source.FileSet) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	if p.quiet && bag.HasWarnings() {
		errs := diag.NewBag(bag.Len())
		for _, d := range bag.Items() {
			if d.Severity >= diag.SevError {
				errs.Add(d)
			}
		}
		bag = errs
	}
	if bag.Len() == 0 {
		return
	}
	bag.Sort()
	bag.Dedup()
	limit := p.max
	if limit <= 0 {
		limit = bag.Len()
	}
	shown := diag.NewBag(limit)
	for _, d := range bag.Items() {
		if !shown.Add(d) {
			break
		}
	}
	switch p.format {
	case "json":
		if err := diagfmt.JSON(p.out, shown, files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         p.pathMode,
			IncludeNotes:     true,
		}); err != nil {
			fmt.Fprintf(p.out, "error: %v\n", err)
		}
		return
	case "short":
		if text := diag.FormatShortDiagnostics(shown.Items(), files, true); text != "" {
			fmt.Fprintln(p.out, text)
		}
	default:
		diagfmt.Pretty(p.out, shown, files, diagfmt.PrettyOpts{
			Color:     p.color,
			Context:   1,
			PathMode:  p.pathMode,
			ShowNotes: true,
		})
	}
	if hidden := bag.Len() - shown.Len(); hidden > 0 {
		fmt.Fprintf(p.out, "... %d more diagnostics\n", hidden)
	}
}

// fail renders err as diagnostics when it carries a location, and returns
// the error to hand back to cobra.
func (p diagPrinter) fail(err error, files *source.FileSet) error {
	bag := buildpipeline.ErrorDiagnostics(err)
	if bag == nil {
		return err
	}
	p.print(bag, files)
	return reportedError{err: err}
}
