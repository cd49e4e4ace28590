// Package dependency orders build targets so that every target comes after
// the targets it depends on.
package dependency

import (
	"errors"
	"fmt"
)

// ErrCycle is returned when the dependency graph contains a cycle.
var ErrCycle = errors.New("dependency cycle detected")

// Node is one vertex of the graph: an ID and the IDs it depends on.
type Node struct {
	ID        string
	DependsOn []string
}

// Resolve returns:
// - ordered: node IDs in topological order (dependencies first)
// - tiers: node IDs grouped by depth (tier 0 = no deps, tier 1 = depend only on tier 0, etc.)
//
// Within a tier, IDs keep the order of nodes. Unknown dependencies are an error.
func Resolve(nodes []Node) (ordered []string, tiers [][]string, err error) {
	if len(nodes) == 0 {
		return nil, nil, nil
	}

	position := make(map[string]int, len(nodes))
	for i, n := range nodes {
		position[n.ID] = i
	}

	inDegree := make([]int, len(nodes))
	dependents := make([][]int, len(nodes))

	for i, n := range nodes {
		seen := make(map[string]bool, len(n.DependsOn))

		for _, dep := range n.DependsOn {
			j, ok := position[dep]
			if !ok {
				return nil, nil, fmt.Errorf("%s depends on unknown target %q", n.ID, dep)
			}

			if seen[dep] {
				continue
			}

			seen[dep] = true
			inDegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var queue []int
	for i := range nodes {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	ordered = make([]string, 0, len(nodes))

	for len(queue) > 0 {
		tier := make([]string, len(queue))
		next := make([]bool, len(nodes))

		for k, i := range queue {
			tier[k] = nodes[i].ID
			ordered = append(ordered, nodes[i].ID)

			for _, d := range dependents[i] {
				inDegree[d]--
				if inDegree[d] == 0 {
					next[d] = true
				}
			}
		}

		tiers = append(tiers, tier)

		queue = queue[:0]
		for i, ok := range next {
			if ok {
				queue = append(queue, i)
			}
		}
	}

	if len(ordered) != len(nodes) {
		return nil, nil, ErrCycle
	}

	return ordered, tiers, nil
}
