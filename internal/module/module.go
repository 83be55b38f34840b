// Package module builds Module Descriptors: one per visited source file,
// carrying its identity, declared imports and transformed CommonJS body.
package module

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"minipack/internal/jsparse"
	"minipack/internal/project"
	"minipack/internal/source"
)

// ID is a Module Identity: dense, assigned in discovery order, 0 is the entry.
type ID uint32

// IDFromInt converts a table index into an ID.
func IDFromInt(n int) (ID, error) {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, fmt.Errorf("module id %d out of range: %w", n, err)
	}
	return ID(v), nil
}

// Import is one declared import in declaration order.
type Import = jsparse.Import

// Descriptor is one module's contribution to the bundle. The factory
// returns it with an empty Mapping; the graph builder fills Mapping and
// nothing mutates the descriptor afterwards.
type Descriptor struct {
	ID          ID
	Source      string // resolved location the module was read from
	File        source.FileID
	Imports     []Import
	Body        string
	Mapping     map[string]ID
	ContentHash project.Digest
}

// ImportPaths returns the literal import strings, duplicates preserved.
func (d *Descriptor) ImportPaths() []string {
	return jsparse.Paths(d.Imports)
}

// MappingKeys returns the mapping keys in lexical order.
func (d *Descriptor) MappingKeys() []string {
	keys := make([]string, 0, len(d.Mapping))
	for k := range d.Mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
