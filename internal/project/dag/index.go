package dag

import (
	"sort"

	"minipack/internal/graph"
	"minipack/internal/module"
)

// ModuleIndex groups identities by the source they were read from. Without
// deduplication one source can own several identities.
type ModuleIndex struct {
	NameToIDs map[string][]module.ID
	Names     []string // distinct sources, sorted
}

// BuildIndex collects distinct sources in lexical order.
func BuildIndex(table graph.Table) ModuleIndex {
	idx := ModuleIndex{NameToIDs: make(map[string][]module.ID, len(table))}
	for _, d := range table {
		if _, seen := idx.NameToIDs[d.Source]; !seen {
			idx.Names = append(idx.Names, d.Source)
		}
		idx.NameToIDs[d.Source] = append(idx.NameToIDs[d.Source], d.ID)
	}
	sort.Strings(idx.Names)
	return idx
}

// Copies reports how many identities were built from name.
func (idx ModuleIndex) Copies(name string) int {
	return len(idx.NameToIDs[name])
}

// Duplicated returns the sources built more than once, sorted.
func (idx ModuleIndex) Duplicated() []string {
	var out []string
	for _, name := range idx.Names {
		if len(idx.NameToIDs[name]) > 1 {
			out = append(out, name)
		}
	}
	return out
}
