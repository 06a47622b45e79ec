package mapping

import (
	"gopkg.in/yaml.v3"
)

// MappingFile is the root of a YAML rule file.
type MappingFile struct {
	// Version of the rule file schema.
	Version string `yaml:"version,omitempty"`

	// TypeMappings lists the rules, grouped by scope.
	TypeMappings []TypeMapping `yaml:"mappings"`

	// Transforms declares the named functions the fields refer to, with the
	// types they are expected to take and return.
	Transforms []TransformDef `yaml:"transforms,omitempty"`
}

// TypeMapping groups the rules of one scope.
type TypeMapping struct {
	// Source type name ("store.Order", "Order" or a full package path).
	// Empty matches every source type.
	Source string `yaml:"source,omitempty"`

	// Target type name. Empty matches every target type.
	Target string `yaml:"target,omitempty"`

	// Intent narrows the scope: create, merge or overwrite. Empty means all.
	Intent string `yaml:"intent,omitempty"`

	// OneToOne maps source member paths to target member names.
	// Example: { "OrderID": "ID", "Customer.Name": "Customer" }
	OneToOne map[string]string `yaml:"121,omitempty"`

	// Fields defines target members with full control over the value.
	Fields []FieldMapping `yaml:"fields,omitempty"`

	// Ignore lists target members that are never assigned.
	Ignore StringOrArray `yaml:"ignore,omitempty"`

	// IgnoreSource lists source member paths that are never read.
	IgnoreSource StringOrArray `yaml:"ignore_source,omitempty"`

	// Derived maps runtime source types to derived target types.
	Derived []DerivedDef `yaml:"derived,omitempty"`

	// Reverse opts the scope in (true) or out (false) of mirroring its
	// path-to-path rules into the reversed scope.
	Reverse *bool `yaml:"reverse,omitempty"`
}

// FieldMapping defines the value of one or more target members.
// Exactly one of Source, Value, Expr or Transform without Source is expected;
// Transform with Source applies the transform to that member.
type FieldMapping struct {
	// Target names the target member(s): "Name" or ["FirstName", "DisplayName"].
	Target StringOrArray `yaml:"target"`

	// Source is a source member path such as "Customer.Name".
	Source string `yaml:"source,omitempty"`

	// Value is a constant, decoded into the target member type.
	// A zero Kind means the key is absent.
	Value yaml.Node `yaml:"value,omitempty"`

	// Expr is an expression over Source, Target, Parent, Index and Key.
	Expr string `yaml:"expr,omitempty"`

	// When guards the rule with a boolean expression.
	When string `yaml:"when,omitempty"`

	// Transform names a registered function applied to Source, or to the
	// whole source value when Source is empty.
	Transform string `yaml:"transform,omitempty"`
}

// HasValue reports whether the mapping carries a constant.
func (fm *FieldMapping) HasValue() bool {
	return fm.Value.Kind != 0
}

// ValueForms counts how many value forms the mapping uses.
func (fm *FieldMapping) ValueForms() int {
	n := 0

	if fm.Source != "" || fm.Transform != "" {
		n++
	}

	if fm.HasValue() {
		n++
	}

	if fm.Expr != "" {
		n++
	}

	return n
}

// DerivedDef pairs a runtime source type with the target type it maps to.
type DerivedDef struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// TransformDef documents a transform function.
// The implementation is registered with a TransformRegistry; the declared
// types are checked against it.
type TransformDef struct {
	// Name is the transform identifier used in field mappings.
	Name string `yaml:"name"`

	// SourceType is the expected input type (e.g., "int", "store.Price").
	SourceType string `yaml:"source_type,omitempty"`

	// TargetType is the expected output type (e.g., "float64", "warehouse.Amount").
	TargetType string `yaml:"target_type,omitempty"`

	// Description is an optional human-readable description.
	Description string `yaml:"description,omitempty"`
}
