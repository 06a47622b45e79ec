package match

import (
	"reflect"
	"strings"

	"shape-mapper/internal/analyze"
)

// MapTag is the struct tag naming the source member of a target member.
const MapTag = "map"

// Reason tells which rule matched a source member.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTag         // `map:"Name"` on the target
	ReasonJSON        // equal json tag names
	ReasonExact       // equal names
	ReasonFold        // names equal ignoring case
	ReasonFlatten     // CustomerName <- Customer.Name
	ReasonFuzzy       // ranked candidate
)

// String returns a human-readable representation of the Reason.
func (r Reason) String() string {
	switch r {
	case ReasonTag:
		return "tag"
	case ReasonJSON:
		return "json"
	case ReasonExact:
		return "exact"
	case ReasonFold:
		return "fold"
	case ReasonFlatten:
		return "flatten"
	case ReasonFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// MemberMatch is the outcome of matching one target member.
type MemberMatch struct {
	Source *analyze.QualifiedMember
	Reason Reason
	Found  bool
}

// Matcher finds source members for target members by tag and name.
// Skip, when set, hides source members from every rule.
type Matcher struct {
	Analyzer *analyze.Analyzer
	Skip     func(*analyze.QualifiedMember) bool

	// MaxFlattenDepth bounds the source paths considered for flattening.
	MaxFlattenDepth int
}

// Match looks up the source member of target in src by, in order, the map
// tag, the json tag, the exact name, the case-folded name and flattening.
func (m *Matcher) Match(src reflect.Type, target *analyze.Member) MemberMatch {
	root := analyze.NewRoot(src)
	info := m.Analyzer.Analyze(src)

	if info.Kind != analyze.TypeKindComplex && info.Kind != analyze.TypeKindInterface {
		return MemberMatch{}
	}

	var readable []*analyze.QualifiedMember

	for _, sm := range info.Readable() {
		q := root.Child(sm)
		if m.Skip == nil || !m.Skip(q) {
			readable = append(readable, q)
		}
	}

	if tag := target.TagName(MapTag); tag != "" {
		if q, err := m.Analyzer.Resolve(src, tag, false); err == nil && !m.skipped(q) {
			return MemberMatch{Source: q, Reason: ReasonTag, Found: true}
		}
	}

	if name := target.TagName("json"); name != "" {
		for _, q := range readable {
			if q.Member.TagName("json") == name {
				return MemberMatch{Source: q, Reason: ReasonJSON, Found: true}
			}
		}
	}

	for _, q := range readable {
		if q.Member.Name == target.Name {
			return MemberMatch{Source: q, Reason: ReasonExact, Found: true}
		}
	}

	for _, q := range readable {
		if strings.EqualFold(q.Member.Name, target.Name) {
			return MemberMatch{Source: q, Reason: ReasonFold, Found: true}
		}
	}

	if q := m.flatten(src, target.Name); q != nil {
		return MemberMatch{Source: q, Reason: ReasonFlatten, Found: true}
	}

	return MemberMatch{}
}

// flatten returns the shallowest nested source path whose segments, joined,
// spell the target name.
func (m *Matcher) flatten(src reflect.Type, name string) *analyze.QualifiedMember {
	depth := m.MaxFlattenDepth
	if depth < 2 {
		depth = 2
	}

	want := NormalizeIdent(name)

	for _, q := range m.Analyzer.ReadablePaths(src, depth) {
		if q.Depth() < 2 || m.skipped(q) {
			continue
		}

		if NormalizeIdent(q.Flat()) == want {
			return q
		}
	}

	return nil
}

func (m *Matcher) skipped(q *analyze.QualifiedMember) bool {
	if m.Skip == nil {
		return false
	}

	for cur := q; cur != nil && !cur.IsRoot(); cur = cur.Parent {
		if m.Skip(cur) {
			return true
		}
	}

	return false
}

// Fuzzy ranks the remaining readable members of src against target and
// returns the confident winner, if any.
func (m *Matcher) Fuzzy(src reflect.Type, target *analyze.Member, c Coercer, minScore, minGap float64) MemberMatch {
	info := m.Analyzer.Analyze(src)
	root := analyze.NewRoot(src)

	var sources []*analyze.Member

	for _, sm := range info.Readable() {
		if !m.skipped(root.Child(sm)) {
			sources = append(sources, sm)
		}
	}

	best := RankCandidates(target, sources, c).HighConfidence(minScore, minGap)
	if best == nil {
		return MemberMatch{}
	}

	return MemberMatch{Source: root.Child(best.Source), Reason: ReasonFuzzy, Found: true}
}
