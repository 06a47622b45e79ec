package plan

import (
	"fmt"
	"reflect"
	"strings"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/coerce"
	"shape-mapper/internal/common"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/mapping"
	"shape-mapper/internal/match"
	"shape-mapper/node"
)

// Origin tells which resolution strategy produced a data source.
type Origin int

const (
	// OriginConfigured - explicit data source rule.
	OriginConfigured Origin = iota + 1
	// OriginMaptime - key of a string-keyed dictionary source.
	OriginMaptime
	// OriginFactory - configured simple-type factory over the matched source member.
	OriginFactory
	// OriginMatched - source member found by tag or name.
	OriginMatched
	// OriginFallback - existing target value or type default.
	OriginFallback
)

// String returns a human-readable origin name.
func (o Origin) String() string {
	switch o {
	case OriginConfigured:
		return "configured"
	case OriginMaptime:
		return "maptime"
	case OriginFactory:
		return "factory"
	case OriginMatched:
		return "matched"
	case OriginFallback:
		return "fallback"
	default:
		return common.UnknownStr
	}
}

// DataSource is one way to obtain the value of a target member.
type DataSource struct {
	// Origin is the strategy that produced the source.
	Origin Origin
	// Value computes the value, already adapted to the member type.
	Value *node.Node
	// Condition guards the source, nil when unconditional.
	Condition *node.Condition
	// Fallback marks the existing-value or default source closing a set.
	// It performs no assignment.
	Fallback bool
	// SourceMember is the source member read, nil when none.
	SourceMember *analyze.QualifiedMember
	// Rule is the configured rule behind the source, nil for inferred ones.
	Rule *mapping.Rule
	// Reason is the matching rule of an OriginMatched source.
	Reason match.Reason
	// Explanation describes why the source was chosen.
	Explanation string
}

// IsConditional reports whether the source may yield nothing at runtime,
// either by its condition or by a fallible value.
func (d *DataSource) IsConditional() bool {
	return d.Condition != nil || d.Value.Fallible()
}

// String describes the source for diagnostics and plan export.
func (d *DataSource) String() string {
	var b strings.Builder

	b.WriteString(d.Origin.String())

	if d.Fallback {
		if d.Value != nil && d.Value.Kind == node.KindExisting {
			b.WriteString(": existing value")
		} else {
			b.WriteString(": default")
		}
	} else if d.Explanation != "" {
		fmt.Fprintf(&b, ": %s", d.Explanation)
	}

	if d.Condition != nil {
		fmt.Fprintf(&b, " if %s", d.Condition)
	}

	return b.String()
}

// DataSourceSet lists the data sources of one target member or constructor
// parameter in precedence order. At runtime the first source yielding a
// value wins.
type DataSourceSet struct {
	// Member is the target member or parameter.
	Member *analyze.QualifiedMember
	// Key is the entry key when the target is a dictionary; Member is nil then.
	Key string
	// Sources in precedence order.
	Sources []DataSource
	// Ignored sets are never assigned.
	Ignored bool
	// OnlyIfZero guards every non-fallback source with "the existing member is zero".
	OnlyIfZero bool
	// DependsOn lists target members that must be assigned first.
	DependsOn []string
}

// Name returns the member name or the dictionary key.
func (s *DataSourceSet) Name() string {
	if s.Member == nil {
		return s.Key
	}

	return s.Member.Name()
}

// Type returns the type the sources produce.
func (s *DataSourceSet) Type() reflect.Type {
	if s.Member == nil {
		if len(s.Sources) > 0 {
			return s.Sources[0].Value.Type
		}

		return nil
	}

	return s.Member.Type
}

// HasValue reports whether some non-fallback source may supply a value.
func (s *DataSourceSet) HasValue() bool {
	for i := range s.Sources {
		if !s.Sources[i].Fallback {
			return true
		}
	}

	return false
}

// IsDefinitelyPopulated reports whether an unconditional non-fallback source
// guarantees a value.
func (s *DataSourceSet) IsDefinitelyPopulated() bool {
	for i := range s.Sources {
		if !s.Sources[i].Fallback && !s.Sources[i].IsConditional() {
			return true
		}
	}

	return false
}

// Reads returns the source members read by non-fallback sources.
func (s *DataSourceSet) Reads() []*analyze.QualifiedMember {
	var out []*analyze.QualifiedMember

	for i := range s.Sources {
		if q := s.Sources[i].SourceMember; q != nil && !s.Sources[i].Fallback {
			out = append(out, q)
		}
	}

	return out
}

// CandidateOrigin tells how a construction candidate builds the target.
type CandidateOrigin int

const (
	// CandidateConfigured - configured factory or whole-target data source.
	CandidateConfigured CandidateOrigin = iota + 1
	// CandidateFactoryMethod - registered Create*/Get* function.
	CandidateFactoryMethod
	// CandidateConstructor - registered New* function.
	CandidateConstructor
	// CandidateZeroValue - the zero value of the target type.
	CandidateZeroValue
)

// String returns a human-readable candidate origin.
func (o CandidateOrigin) String() string {
	switch o {
	case CandidateConfigured:
		return "configured"
	case CandidateFactoryMethod:
		return "factory method"
	case CandidateConstructor:
		return "constructor"
	case CandidateZeroValue:
		return "zero value"
	default:
		return common.UnknownStr
	}
}

// priority orders candidates with equal parameter counts.
func (o CandidateOrigin) priority() int {
	switch o {
	case CandidateConfigured:
		return 3
	case CandidateFactoryMethod:
		return 2
	case CandidateConstructor:
		return 1
	default:
		return 0
	}
}

// ConstructionCandidate is one way to create the target instance.
type ConstructionCandidate struct {
	// Origin is the kind of candidate.
	Origin CandidateOrigin
	// Rule is the configured rule of a CandidateConfigured.
	Rule *mapping.Rule
	// Value produces the instance of a CandidateConfigured.
	Value *node.Node
	// Ctor is the registered function of a factory method or constructor.
	Ctor *analyze.Constructor
	// Params holds one set per Ctor parameter, in call order.
	Params []DataSourceSet
	// Condition guards the candidate, nil when unconditional.
	Condition *node.Condition
	// Supplies names the target members set through the parameters.
	Supplies []string
}

// Usable reports whether every parameter set has a value.
func (c *ConstructionCandidate) Usable() bool {
	if c.Origin == CandidateConfigured && c.Value == nil {
		return false
	}

	for i := range c.Params {
		if !c.Params[i].HasValue() {
			return false
		}
	}

	return true
}

// IsConditional reports whether the candidate may decline at runtime.
// Parameters left without a value at runtime receive their type default.
func (c *ConstructionCandidate) IsConditional() bool {
	return c.Condition != nil || c.Value.Fallible()
}

// String describes the candidate.
func (c *ConstructionCandidate) String() string {
	var s string

	switch c.Origin {
	case CandidateConfigured:
		s = "configured " + c.Rule.Value.String()
		if c.Rule.Kind == mapping.RuleFactory {
			s = "configured factory " + c.Rule.Caster.String()
		}
	case CandidateFactoryMethod, CandidateConstructor:
		names := make([]string, len(c.Params))
		for i := range c.Params {
			names[i] = c.Params[i].Name()
		}

		s = fmt.Sprintf("%s %s(%s)", c.Origin, c.Ctor, strings.Join(names, ", "))
	default:
		s = c.Origin.String()
	}

	if c.Condition != nil {
		s += " if " + c.Condition.String()
	}

	return s
}

// Construction is the selected way to create the target of a complex plan.
type Construction struct {
	// Candidates lists every candidate in rank order.
	Candidates []*ConstructionCandidate
	// Selected are the usable candidates tried at runtime, in order. Only the
	// last one may be unconditional.
	Selected []*ConstructionCandidate
	// Committed is set when the last selected candidate is unconditional.
	Committed bool
	// Failure explains why no candidate is guaranteed to succeed.
	Failure string
}

// Branch is one arm of a derived-type dispatch.
type Branch struct {
	// Source is the runtime source type tested; the runtime type must equal
	// it or derive from it.
	Source reflect.Type
	// Target is the type the source is mapped to.
	Target reflect.Type
	// Condition guards the branch, nil when unconditional.
	Condition *node.Condition
	// Rule is the derived pair rule, nil for the declared pair.
	Rule *mapping.Rule
	// Declared marks the branch of the declared source type.
	Declared bool
}

// String describes the branch.
func (b *Branch) String() string {
	s := fmt.Sprintf("%s -> %s", analyze.TypeString(b.Source), analyze.TypeString(b.Target))
	if b.Declared {
		s += " (declared)"
	}

	if b.Condition != nil {
		s += " if " + b.Condition.String()
	}

	return s
}

// MappingPlan is the resolved mapping of one signature. Kind selects the
// meaningful fields: Conversion for primitive pairs, Root for collection
// pairs, Construction and Members for complex targets, Branches for
// derived-type dispatch.
type MappingPlan struct {
	// Signature is the mapped pair.
	Signature node.Signature
	// Kind is how the pair is mapped as a whole.
	Kind node.DispatcherEnum
	// Conversion maps primitive pairs.
	Conversion *coerce.Conversion
	// Root maps enumerable and dictionary pairs.
	Root *node.Node
	// Construction creates complex targets.
	Construction *Construction
	// Members holds one set per writable target member, or per dictionary
	// entry for dictionary targets, in declaration order.
	Members []DataSourceSet
	// Branches are tried in order for derived-type dispatch.
	Branches []Branch
	// Structural enables runtime detection after the branches.
	Structural bool
	// Implementations are the candidate targets of structural detection
	// when the target is an interface.
	Implementations []reflect.Type
	// Nested lists the signatures referenced by the plan.
	Nested []node.Signature
	// Diagnostics contains warnings and notes from resolution.
	Diagnostics diagnostic.Diagnostics
}

// UnmappedMembers returns the writable target members without a value source.
func (p *MappingPlan) UnmappedMembers() []*analyze.QualifiedMember {
	var out []*analyze.QualifiedMember

	for i := range p.Members {
		s := &p.Members[i]
		if s.Member != nil && !s.Ignored && !s.HasValue() && !p.supplied(s.Member.Name()) {
			out = append(out, s.Member)
		}
	}

	return out
}

// supplied reports whether the committed constructor sets member name.
func (p *MappingPlan) supplied(name string) bool {
	if p.Construction == nil || !p.Construction.Committed {
		return false
	}

	last, _ := common.Last(p.Construction.Selected)

	for _, s := range last.Supplies {
		if strings.EqualFold(s, name) {
			return true
		}
	}

	return false
}

// Matches returns the members resolved by structural matching, with their reasons.
func (p *MappingPlan) Matches() map[string]match.Reason {
	out := make(map[string]match.Reason)

	for i := range p.Members {
		for _, ds := range p.Members[i].Sources {
			if ds.Origin == OriginMatched {
				out[p.Members[i].Name()] = ds.Reason
			}
		}
	}

	return out
}
