package buildpipeline

import (
	"fmt"

	"minipack/internal/diag"
	"minipack/internal/graph"
	"minipack/internal/project"
	"minipack/internal/project/dag"
	"minipack/internal/source"
)

// Analysis is the structural view of a finished Module Table.
type Analysis struct {
	Index  dag.ModuleIndex
	Graph  dag.Graph
	Topo   *dag.Topo
	Hashes []project.Digest
	// Bag holds warnings: self-imports, repeated literals, cycles.
	Bag *diag.Bag
}

// Analyze computes edges, topological batches, cycles and module hashes.
// files, when set, lets warnings raised by copies of one source collapse
// into a single diagnostic.
func Analyze(table graph.Table, files *source.FileSet) *Analysis {
	bag := diag.NewBag(len(table)*4 + 16)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag}, files)
	g := dag.BuildGraph(table, reporter)
	topo := dag.ToposortKahn(g)
	dag.ReportCycles(table, topo, reporter)
	return &Analysis{
		Index:  dag.BuildIndex(table),
		Graph:  g,
		Topo:   topo,
		Hashes: dag.ModuleHashes(table, g),
		Bag:    bag,
	}
}

// BundleHash is the aggregate hash of the entry module.
func (a *Analysis) BundleHash() project.Digest {
	if a == nil || len(a.Hashes) == 0 {
		return project.Digest{}
	}
	return a.Hashes[0]
}

// Summary is a one-line description used in timings.
func (a *Analysis) Summary() string {
	if a == nil {
		return ""
	}
	s := fmt.Sprintf("%d sources, %d batches", len(a.Index.Names), len(a.Topo.Batches))
	if a.Topo.Cyclic {
		s += fmt.Sprintf(", %d modules on cycles", len(a.Topo.Cycles))
	}
	return s
}
