package plan

import (
	"fmt"
	"reflect"
	"strings"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/mapping"
	"shape-mapper/node"
)

// resolveMembers builds one set per writable target member, in declaration
// order.
func (r *Resolver) resolveMembers(pc *pairContext) []DataSourceSet {
	root := analyze.NewRoot(pc.sig.Target)

	var sets []DataSourceSet

	for _, m := range r.analyzer.Analyze(pc.sig.Target).Writable() {
		q := root.Child(m)

		var configured []DataSource
		if !r.ignored(pc, m) {
			configured = r.configuredSources(pc, q)
		}

		sets = append(sets, r.resolveSet(pc, q, configured))
	}

	return sets
}

// resolveSet runs strategies 2 to 5 after the configured sources of q.
// An unconditional source ends the set.
func (r *Resolver) resolveSet(pc *pairContext, q *analyze.QualifiedMember, configured []DataSource) DataSourceSet {
	param := q.Member.Role == analyze.RoleParameter

	set := DataSourceSet{Member: q}
	if !param && r.ignored(pc, q.Member) {
		set.Ignored = true
		return set
	}

	sources := configured
	done := hasUnconditional(sources)

	if !done {
		more := r.maptimeSources(pc, q)
		sources = append(sources, more...)
		done = hasUnconditional(more)
	}

	if !done {
		mm := r.matchMember(pc, q, configured)

		more := r.factorySources(pc, q, mm)
		if len(more) == 0 {
			more = r.matchedSources(pc, q, mm)
		}

		sources = append(sources, more...)
		done = hasUnconditional(more)
	}

	if !done {
		sources = append(sources, r.fallbackSource(pc, q, param))
	}

	set.Sources = sources
	set.OnlyIfZero = !param && pc.sig.Intent == node.IntentMerge && q.Member.Readable()
	set.DependsOn = dependsOn(sources)

	return set
}

func hasUnconditional(sources []DataSource) bool {
	for i := range sources {
		if !sources[i].IsConditional() {
			return true
		}
	}

	return false
}

// ignored reports whether an ignore rule covers target member m.
func (r *Resolver) ignored(pc *pairContext, m *analyze.Member) bool {
	for _, rule := range pc.rules {
		switch rule.Kind {
		case mapping.RuleIgnore, mapping.RuleIgnoreFilter:
			if rule.AppliesTo(m) {
				return true
			}
		}
	}

	return false
}

// appliesTo matches a member rule against m. Constructor parameters match
// member names case-insensitively.
func appliesTo(rule *mapping.Rule, m *analyze.Member) bool {
	if rule.Filter != nil || m.Role != analyze.RoleParameter {
		return rule.AppliesTo(m)
	}

	return strings.EqualFold(rule.Member, m.Name)
}

// configuredSources is strategy 1: data source rules naming q or matching
// it by filter, in relevance order, up to the first unconditional one.
func (r *Resolver) configuredSources(pc *pairContext, q *analyze.QualifiedMember) []DataSource {
	var out []DataSource

	for _, rule := range pc.rules {
		if rule.Kind != mapping.RuleDataSource || (rule.Member == "" && rule.Filter == nil) || !appliesTo(rule, q.Member) {
			continue
		}

		value, read, err := r.configuredValue(pc, rule, q.Type)
		if err != nil {
			pc.plan.Diagnostics.AddWarning("configured_source_skipped", err.Error(), pc.pair, q.Path())
			continue
		}

		out = append(out, DataSource{
			Origin:       OriginConfigured,
			Value:        value,
			Condition:    rule.Condition,
			SourceMember: read,
			Rule:         rule,
			Explanation:  rule.Value.String(),
		})

		if !out[len(out)-1].IsConditional() {
			break
		}
	}

	return out
}

// configuredValue builds the node of a configured value producing dst and
// returns the source member it reads, if any. A nil dst stands for the
// instance of the target, see instanceType.
func (r *Resolver) configuredValue(
	pc *pairContext,
	rule *mapping.Rule,
	dst reflect.Type,
) (*node.Node, *analyze.QualifiedMember, error) {
	var (
		n    *node.Node
		read *analyze.QualifiedMember
	)

	v := rule.Value
	if v.Path != "" {
		q, err := r.analyzer.Resolve(pc.sig.Source, v.Path, false)
		if err != nil {
			return nil, nil, err
		}

		read = q
	}

	switch v.Kind {
	case mapping.ValuePath:
		n = node.Source(read)
	case mapping.ValueConstant:
		if !v.Constant.IsValid() {
			if dst == nil {
				dst = pc.sig.Target
			}

			return node.Default(dst), nil, nil
		}

		n = node.Constant(v.Constant)
	case mapping.ValueFunc:
		c := v.Caster()

		var arg *node.Node

		switch {
		case read != nil:
			arg = node.Source(read)
		case !c.Contextual:
			arg = node.EntireSource(pc.sig.Source)
		}

		n = node.Func(*c, arg)
	case mapping.ValueExpr:
		n = node.Expr(v.Expression())
	case mapping.ValueEntireSource:
		n = node.EntireSource(pc.sig.Source)
	default:
		return nil, nil, fmt.Errorf("%w: value kind %d", mapping.ErrMissingPart, v.Kind)
	}

	if dst == nil {
		dst = instanceType(pc.sig.Target, n.Type)
	}

	adapted, ok := r.adapt(pc.sig, n, dst)
	if !ok {
		return nil, nil, &diagnostic.UnconvertibleTypeError{Path: rule.String(), SourceType: n.Type, TargetType: dst}
	}

	return adapted, read, nil
}

// fallbackSource is strategy 5: the existing value when the intent starts
// from an existing target, the type default otherwise.
func (r *Resolver) fallbackSource(pc *pairContext, q *analyze.QualifiedMember, param bool) DataSource {
	value := node.Default(q.Type)
	if !param && pc.sig.Intent.UsesExisting() && q.Member.Readable() {
		value = node.Existing(q)
	}

	return DataSource{Origin: OriginFallback, Value: value, Fallback: true}
}
