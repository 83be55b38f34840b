// Package testkit holds fixtures and invariant checks shared by tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"minipack/internal/jsparse"
	"minipack/internal/module"
	"minipack/internal/source"
)

// CheckImportSpans verifies the spans recorded for d's imports against sf:
// 1) every span belongs to sf and lies within its content
// 2) every span covers a quoted literal whose value is the import path
// 3) spans appear in strictly increasing order, so duplicates stay distinct
func CheckImportSpans(d *module.Descriptor, sf *source.File) error {
	if d == nil || sf == nil {
		return fmt.Errorf("nil descriptor or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var prevEnd uint32
	for i, imp := range d.Imports {
		sp := imp.Span
		if sp.File != sf.ID {
			return fmt.Errorf("import %d span file mismatch: got=%d want=%d", i, sp.File, sf.ID)
		}
		if sp.End <= sp.Start || sp.End > lenContent {
			return fmt.Errorf("import %d span %v out of bounds (content %d)", i, sp, lenContent)
		}
		if i > 0 && sp.Start < prevEnd {
			return fmt.Errorf("import %d span %v overlaps or precedes previous import", i, sp)
		}
		lit := sf.Content[sp.Start:sp.End]
		if len(lit) < 2 || lit[0] != lit[len(lit)-1] || (lit[0] != '"' && lit[0] != '\'') {
			return fmt.Errorf("import %d span %v does not cover a string literal: %q", i, sp, lit)
		}
		got, err := jsparse.Unquote(string(lit))
		if err != nil {
			return fmt.Errorf("import %d span %v: %w", i, sp, err)
		}
		if got != imp.Path {
			return fmt.Errorf("import %d span decodes to %q, want %q", i, got, imp.Path)
		}
		prevEnd = sp.End
	}
	return nil
}
