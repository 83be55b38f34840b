package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"minipack/internal/module"
)

type Topo struct {
	Order   []module.ID   // importers before their imports
	Batches [][]module.ID // waves of modules with no pending importer
	Cyclic  bool
	Cycles  []module.ID // modules on a cycle, ascending
}

func toID(i int) module.ID {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return module.ID(v)
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]module.ID, 0, nodeCount),
		Batches: make([][]module.ID, 0),
	}

	current := make([]module.ID, 0, nodeCount)
	for i := range nodeCount {
		if indeg[i] == 0 {
			current = append(current, toID(i))
		}
	}

	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]module.ID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			for _, to := range g.Edges[int(id)] {
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != nodeCount {
		topo.Cyclic = true
		topo.Cycles = cycleMembers(g, indeg)
	}
	return topo
}

// cycleMembers narrows the nodes Kahn left behind to those on a cycle by
// peeling leftovers whose remaining imports all lead out of the leftover set.
func cycleMembers(g Graph, indeg []int) []module.ID {
	left := make([]bool, len(g.Edges))
	for i, n := range indeg {
		left[i] = n > 0
	}
	for changed := true; changed; {
		changed = false
		for i := range g.Edges {
			if !left[i] {
				continue
			}
			onward := false
			for _, to := range g.Edges[i] {
				if left[int(to)] {
					onward = true
					break
				}
			}
			if !onward {
				left[i] = false
				changed = true
			}
		}
	}
	var out []module.ID
	for i, ok := range left {
		if ok {
			out = append(out, toID(i))
		}
	}
	return out
}
