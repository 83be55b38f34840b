// Package dag analyses a finished Module Table: edge lists, topological
// batches, cycles and aggregate module hashes.
package dag

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"minipack/internal/diag"
	"minipack/internal/graph"
	"minipack/internal/module"
	"minipack/internal/source"
)

type Graph struct {
	Edges [][]module.ID // Edges[from] = sorted distinct targets, self-edges excluded
	Indeg []int
}

// BuildGraph derives edges from the table's mappings. Self-imports and
// repeated import literals are reported as warnings when r is non-nil.
func BuildGraph(table graph.Table, r diag.Reporter) Graph {
	g := Graph{
		Edges: make([][]module.ID, len(table)),
		Indeg: make([]int, len(table)),
	}
	for from, d := range table {
		first := make(map[string]source.Span, len(d.Imports))
		seen := make(map[module.ID]struct{}, len(d.Imports))
		for _, imp := range d.Imports {
			if prev, dup := first[imp.Path]; dup {
				if r != nil {
					diag.ReportWarning(r, diag.ProjDuplicateImport, imp.Span,
						fmt.Sprintf("%q is imported more than once", imp.Path)).
						WithNote(prev, "previous import here").
						Emit()
				}
				continue
			}
			first[imp.Path] = imp.Span
			to, ok := d.Mapping[imp.Path]
			if !ok {
				continue
			}
			if to == d.ID {
				if r != nil {
					diag.ReportWarning(r, diag.ProjSelfImport, imp.Span,
						fmt.Sprintf("module %q imports itself", filepath.Base(d.Source))).
						Emit()
				}
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			g.Edges[from] = append(g.Edges[from], to)
			g.Indeg[int(to)]++
		}
		slices.Sort(g.Edges[from])
	}
	return g
}

// ReportCycles emits one warning per module on an import cycle, pointing at
// the import that stays inside the cycle.
func ReportCycles(table graph.Table, topo *Topo, r diag.Reporter) {
	if r == nil || topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	inCycle := make(map[module.ID]bool, len(topo.Cycles))
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		inCycle[id] = true
		names = append(names, filepath.Base(table[int(id)].Source))
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		d := table[int(id)]
		var primary source.Span
		for _, imp := range d.Imports {
			if to, ok := d.Mapping[imp.Path]; ok && inCycle[to] && to != id {
				primary = imp.Span
				break
			}
		}
		msg := fmt.Sprintf("module %q participates in an import cycle: %s", filepath.Base(d.Source), summary)
		diag.ReportWarning(r, diag.ProjImportCycle, primary, msg).Emit()
	}
}
