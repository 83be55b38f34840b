package dag

import (
	"minipack/internal/graph"
	"minipack/internal/project"
)

// ModuleHashes folds each module's content hash with the hashes of its
// imports, H(content || dep1 || dep2 ...), deps in edge order. An import
// that closes a cycle contributes the target's content hash only.
func ModuleHashes(table graph.Table, g Graph) []project.Digest {
	const (
		unvisited = iota
		active
		done
	)
	out := make([]project.Digest, len(table))
	state := make([]int, len(table))

	var visit func(int)
	visit = func(id int) {
		state[id] = active
		deps := make([]project.Digest, 0, len(g.Edges[id]))
		for _, to := range g.Edges[id] {
			switch state[int(to)] {
			case unvisited:
				visit(int(to))
				deps = append(deps, out[int(to)])
			case active:
				deps = append(deps, table[int(to)].ContentHash)
			default:
				deps = append(deps, out[int(to)])
			}
		}
		out[id] = project.Combine(table[id].ContentHash, deps...)
		state[id] = done
	}
	for id := range table {
		if state[id] == unvisited {
			visit(id)
		}
	}
	return out
}
