package plan

import (
	"fmt"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/common"
	"shape-mapper/node"
)

// maptimeSources is strategy 2 for string-keyed dictionary sources. Keys
// match case-insensitively. Complex members also read the entries under
// "Name" + separator, enumerables the indexed keys "Name" + pattern.
func (r *Resolver) maptimeSources(pc *pairContext, q *analyze.QualifiedMember) []DataSource {
	if !node.StringKeyed(pc.sig.Source) {
		return nil
	}

	entire := node.EntireSource(pc.sig.Source)
	name := q.Name()
	sep := r.opts.Separator

	var out []DataSource

	add := func(n *node.Node, explanation string) {
		if value, ok := r.adapt(pc.sig, n, q.Type); ok {
			out = append(out, DataSource{Origin: OriginMaptime, Value: value, Explanation: explanation})
		}
	}

	add(node.Lookup(entire, name), fmt.Sprintf("key %q", name))

	switch q.Kind() {
	case analyze.TypeKindComplex:
		add(node.Subset(entire, name+sep), fmt.Sprintf("keys %q", name+sep+"*"))
	case analyze.TypeKindEnumerable:
		elemSep := ""
		if analyze.Classify(common.Deref(q.Type).Elem()) == analyze.TypeKindComplex {
			elemSep = sep
		}

		add(node.Indexed(entire, name, r.opts.ElementPattern, elemSep),
			fmt.Sprintf("keys %q", name+fmt.Sprintf(r.opts.ElementPattern, 0)+elemSep))
	}

	return out
}
