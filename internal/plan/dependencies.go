package plan

import "slices"

// dependsOn collects the target members read through `Target.X` by the
// expressions and conditions of sources, sorted and deduplicated.
//
// Semantics: if the value or condition of member B reads Target.A, then B is
// assigned after A.
func dependsOn(sources []DataSource) []string {
	var deps []string

	for i := range sources {
		ds := &sources[i]
		if ds.Fallback {
			continue
		}

		if ds.Condition != nil {
			deps = append(deps, ds.Condition.Targets()...)
		}

		deps = append(deps, ds.Value.Targets()...)
	}

	slices.Sort(deps)

	return slices.Compact(deps)
}
