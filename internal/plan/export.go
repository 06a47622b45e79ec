package plan

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/mapping"
)

// Document is the YAML description of a MappingPlan. It is meant for review
// and for external emitters; it cannot be loaded back.
type Document struct {
	Signature    string           `yaml:"signature"`
	Kind         string           `yaml:"kind"`
	RuntimeCheck bool             `yaml:"runtime_check,omitempty"`
	Conversion   string           `yaml:"conversion,omitempty"`
	Root         string           `yaml:"root,omitempty"`
	Construction *ConstructionDoc `yaml:"construction,omitempty"`
	Members      []MemberDoc      `yaml:"members,omitempty"`
	Branches     []string         `yaml:"branches,omitempty"`
	Structural   bool             `yaml:"structural,omitempty"`
	Nested       []string         `yaml:"nested,omitempty"`
	Diagnostics  []string         `yaml:"diagnostics,omitempty"`
}

// ConstructionDoc describes the selected construction.
type ConstructionDoc struct {
	Selected  []string `yaml:"selected"`
	Committed bool     `yaml:"committed"`
	Failure   string   `yaml:"failure,omitempty"`
}

// MemberDoc describes the data sources of one member.
type MemberDoc struct {
	Member     string   `yaml:"member"`
	Type       string   `yaml:"type,omitempty"`
	Ignored    bool     `yaml:"ignored,omitempty"`
	OnlyIfZero bool     `yaml:"only_if_zero,omitempty"`
	DependsOn  []string `yaml:"depends_on,omitempty"`
	Sources    []string `yaml:"sources,omitempty"`
}

// Describe builds the Document of p.
func Describe(p *MappingPlan) *Document {
	doc := &Document{
		Signature:    p.Signature.String(),
		Kind:         p.Kind.String(),
		RuntimeCheck: p.Signature.RuntimeCheck,
		Structural:   p.Structural,
	}

	if p.Conversion != nil {
		doc.Conversion = p.Conversion.Via
	}

	if p.Root != nil {
		doc.Root = p.Root.String()
	}

	if c := p.Construction; c != nil {
		doc.Construction = &ConstructionDoc{Committed: c.Committed, Failure: c.Failure}
		for _, cand := range c.Selected {
			doc.Construction.Selected = append(doc.Construction.Selected, cand.String())
		}
	}

	for i := range p.Members {
		doc.Members = append(doc.Members, describeSet(&p.Members[i]))
	}

	for i := range p.Branches {
		doc.Branches = append(doc.Branches, p.Branches[i].String())
	}

	for _, sig := range p.Nested {
		doc.Nested = append(doc.Nested, sig.String())
	}

	for _, d := range p.Diagnostics.All() {
		doc.Diagnostics = append(doc.Diagnostics, d.String())
	}

	return doc
}

func describeSet(s *DataSourceSet) MemberDoc {
	md := MemberDoc{
		Member:     s.Name(),
		Ignored:    s.Ignored,
		OnlyIfZero: s.OnlyIfZero,
		DependsOn:  s.DependsOn,
	}

	if t := s.Type(); t != nil {
		md.Type = analyze.TypeString(t)
	}

	for i := range s.Sources {
		ds := &s.Sources[i]

		desc := ds.String()
		if !ds.Fallback {
			desc += " = " + ds.Value.String()
		}

		md.Sources = append(md.Sources, desc)
	}

	return md
}

// ExportYAML renders the Document of p.
func ExportYAML(p *MappingPlan) ([]byte, error) {
	return yaml.Marshal(Describe(p))
}

// ExportSuggestions turns the structural matches of complex plans into a
// rule file, so that inferred mappings can be reviewed and pinned. Members
// without a value source are listed as ignored.
func ExportSuggestions(plans ...*MappingPlan) *mapping.MappingFile {
	mf := &mapping.MappingFile{Version: "1"}

	for _, p := range plans {
		if p.Construction == nil {
			continue
		}

		tm := mapping.TypeMapping{
			Source:   analyze.TypeString(p.Signature.Source),
			Target:   analyze.TypeString(p.Signature.Target),
			OneToOne: make(map[string]string),
		}

		for i := range p.Members {
			for _, ds := range p.Members[i].Sources {
				if ds.Origin == OriginMatched && ds.SourceMember != nil {
					tm.OneToOne[ds.SourceMember.Path()] = p.Members[i].Name()
				}
			}
		}

		for _, q := range p.UnmappedMembers() {
			tm.Ignore = append(tm.Ignore, q.Path())
		}

		mf.TypeMappings = append(mf.TypeMappings, tm)
	}

	return mf
}

// FormatReport renders p as indented text, one line per member.
func FormatReport(p *MappingPlan) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "=== %s (%s) ===\n", p.Signature, p.Kind)

	if p.Conversion != nil {
		fmt.Fprintf(&sb, "conversion: %s\n", p.Conversion.Via)
	}

	if p.Root != nil {
		fmt.Fprintf(&sb, "root: %s\n", p.Root)
	}

	if c := p.Construction; c != nil {
		for _, cand := range c.Selected {
			fmt.Fprintf(&sb, "construct: %s\n", cand)
		}

		if c.Failure != "" {
			fmt.Fprintf(&sb, "construct: %s\n", c.Failure)
		}
	}

	for i := range p.Members {
		s := &p.Members[i]

		switch {
		case s.Ignored:
			fmt.Fprintf(&sb, "  %s: ignored\n", s.Name())
		case len(s.Sources) > 0:
			fmt.Fprintf(&sb, "  %s: %s\n", s.Name(), s.Sources[0].String())

			for _, ds := range s.Sources[1:] {
				fmt.Fprintf(&sb, "  %s  else %s\n", strings.Repeat(" ", len(s.Name())), ds.String())
			}
		}
	}

	for i := range p.Branches {
		fmt.Fprintf(&sb, "  branch %s\n", p.Branches[i].String())
	}

	if p.Structural {
		sb.WriteString("  branch runtime type\n")
	}

	return sb.String()
}
