package gen

import (
	"sort"

	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/plan"
)

// topoSort returns indices in execution order.
//
// Nodes are by index in the input slice.
// depsFn(i) yields indices that must be executed before i.
//
// The result is deterministic: when multiple nodes are available, we pick the
// smallest index. Nodes left on or behind a cycle are returned as stuck.
func topoSort(n int, depsFn func(i int) []int) (order, stuck []int) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := range n {
		for _, d := range depsFn(i) {
			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int

	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order = make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)
		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				// Insert while keeping ready sorted.
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	for i := range n {
		if indeg[i] > 0 {
			stuck = append(stuck, i)
		}
	}

	return order, stuck
}

// orderMembers returns the assignment order of sets: a member whose sources
// read Target.X comes after X. Unknown names and self references are ignored.
func orderMembers(sets []plan.DataSourceSet) ([]int, error) {
	byName := make(map[string]int, len(sets))
	for i := range sets {
		byName[sets[i].Name()] = i
	}

	order, stuck := topoSort(len(sets), func(i int) []int {
		var deps []int

		for _, name := range sets[i].DependsOn {
			if j, ok := byName[name]; ok && j != i {
				deps = append(deps, j)
			}
		}

		sort.Ints(deps)

		return deps
	})

	if len(stuck) > 0 {
		cycle := make([]string, 0, len(stuck)+1)
		for _, i := range stuck {
			cycle = append(cycle, sets[i].Name())
		}

		cycle = append(cycle, cycle[0])

		return nil, &diagnostic.CyclicConfigurationError{Cycle: cycle}
	}

	return order, nil
}
