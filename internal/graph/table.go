package graph

import (
	"errors"
	"fmt"

	"minipack/internal/module"
)

// ErrBrokenTable reports a Module Table that violates its invariants.
var ErrBrokenTable = errors.New("broken module table")

// Table is the Module Table: descriptors indexed by identity.
type Table []*module.Descriptor

// Entry returns the descriptor of identity 0.
func (t Table) Entry() *module.Descriptor {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// Validate checks that identities are dense and match positions, that every
// declared import has a mapping entry, and that every mapping entry names a
// declared import and an identity present in the table.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty table", ErrBrokenTable)
	}
	for i, d := range t {
		if d == nil {
			return fmt.Errorf("%w: slot %d is nil", ErrBrokenTable, i)
		}
		if int(d.ID) != i {
			return fmt.Errorf("%w: slot %d holds module %d", ErrBrokenTable, i, d.ID)
		}
		declared := make(map[string]bool, len(d.Imports))
		for _, imp := range d.Imports {
			declared[imp.Path] = true
			if _, ok := d.Mapping[imp.Path]; !ok {
				return fmt.Errorf("%w: module %d import %q is unmapped", ErrBrokenTable, i, imp.Path)
			}
		}
		for p, target := range d.Mapping {
			if !declared[p] {
				return fmt.Errorf("%w: module %d maps undeclared import %q", ErrBrokenTable, i, p)
			}
			if int(target) >= len(t) {
				return fmt.Errorf("%w: module %d maps %q to missing module %d", ErrBrokenTable, i, p, target)
			}
		}
	}
	return nil
}

// Edges returns each module's distinct targets in first-declaration order.
func (t Table) Edges() [][]module.ID {
	out := make([][]module.ID, len(t))
	for i, d := range t {
		seen := make(map[module.ID]bool, len(d.Imports))
		for _, imp := range d.Imports {
			to, ok := d.Mapping[imp.Path]
			if !ok || seen[to] {
				continue
			}
			seen[to] = true
			out[i] = append(out[i], to)
		}
	}
	return out
}
