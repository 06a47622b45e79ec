package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/node"
)

// LoadFile loads and parses a YAML rule file from the given path.
func LoadFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a MappingFile.
func Parse(data []byte) (*MappingFile, error) {
	var mf MappingFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&mf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse rule YAML: %w", err)
	}

	if mf.Version == "" {
		mf.Version = "1"
	}

	return &mf, nil
}

// Marshal serializes a MappingFile to YAML.
func Marshal(mf *MappingFile) ([]byte, error) {
	return yaml.Marshal(mf)
}

// WriteFile writes a MappingFile to the given path.
func WriteFile(mf *MappingFile, path string) error {
	data, err := Marshal(mf)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write rule file %s: %w", path, err)
	}

	return nil
}

// NormalizeTypeMapping expands the 121 shorthand into Fields entries, ordered
// by source path, ahead of the explicit ones.
func NormalizeTypeMapping(tm *TypeMapping) {
	if len(tm.OneToOne) == 0 {
		return
	}

	sources := make([]string, 0, len(tm.OneToOne))
	for source := range tm.OneToOne {
		sources = append(sources, source)
	}

	slices.Sort(sources)

	expanded := make([]FieldMapping, 0, len(sources)+len(tm.Fields))
	for _, source := range sources {
		expanded = append(expanded, FieldMapping{
			Source: source,
			Target: StringOrArray{tm.OneToOne[source]},
		})
	}

	tm.Fields = append(expanded, tm.Fields...)
	tm.OneToOne = nil
}

// NormalizeMappingFile normalizes all type mappings in a file.
func NormalizeMappingFile(mf *MappingFile) {
	for i := range mf.TypeMappings {
		NormalizeTypeMapping(&mf.TypeMappings[i])
	}
}

// Apply registers the rules of every type mapping of mf with reg. Type names
// are resolved against catalog and transform names against transforms, which
// may be nil. Each type mapping is registered atomically; failures of all of
// them are combined into the returned error.
func Apply(mf *MappingFile, reg *Registry, catalog *analyze.Catalog, transforms *TransformRegistry) error {
	var errs error

	for i := range mf.TypeMappings {
		tm := mf.TypeMappings[i]
		NormalizeTypeMapping(&tm)

		rules, err := tm.rules(reg.Analyzer(), catalog, transforms)
		if err == nil {
			err = reg.Register(rules...)
		}

		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mapping %d (%s): %w", i+1, tm.String(), err))
		}
	}

	return errs
}

// String returns "Source -> Target" with "*" for omitted types.
func (tm *TypeMapping) String() string {
	src, dst := tm.Source, tm.Target
	if src == "" {
		src = "*"
	}

	if dst == "" {
		dst = "*"
	}

	if tm.Intent != "" {
		return tm.Intent + ": " + src + " -> " + dst
	}

	return src + " -> " + dst
}

func (tm *TypeMapping) scope(catalog *analyze.Catalog) (Scope, error) {
	var scope Scope

	intent, err := node.ParseIntent(tm.Intent)
	if err != nil {
		return scope, err
	}

	resolve := func(name string) (reflect.Type, error) {
		if name == "" {
			return nil, nil
		}

		t, ok := ResolveTypeID(name, catalog)
		if !ok {
			return nil, fmt.Errorf("type %q not found", name)
		}

		return t, nil
	}

	src, err := resolve(tm.Source)
	if err != nil {
		return scope, err
	}

	dst, err := resolve(tm.Target)
	if err != nil {
		return scope, err
	}

	return Pair(src, dst).WithIntent(intent), nil
}

func (tm *TypeMapping) rules(analyzer *analyze.Analyzer, catalog *analyze.Catalog, transforms *TransformRegistry) ([]*Rule, error) {
	scope, err := tm.scope(catalog)
	if err != nil {
		return nil, err
	}

	var rules []*Rule

	for _, fm := range tm.Fields {
		if len(fm.Target) == 0 {
			return nil, errors.New("field mapping without target")
		}

		for _, target := range fm.Target {
			value, err := fm.value(analyzer, scope, target, transforms)
			if err != nil {
				return nil, err
			}

			rule := MapTo(scope, target, value)
			if fm.When != "" {
				rule.IfExpr(fm.When)
			}

			rules = append(rules, rule)
		}
	}

	for _, member := range tm.Ignore {
		rules = append(rules, Ignore(scope, member))
	}

	for _, path := range tm.IgnoreSource {
		rules = append(rules, IgnoreSource(scope, path))
	}

	for _, d := range tm.Derived {
		src, ok := ResolveTypeID(d.Source, catalog)
		if !ok {
			return nil, fmt.Errorf("derived source type %q not found", d.Source)
		}

		dst, ok := ResolveTypeID(d.Target, catalog)
		if !ok {
			return nil, fmt.Errorf("derived target type %q not found", d.Target)
		}

		rules = append(rules, Derived(scope, src, dst))
	}

	if tm.Reverse != nil {
		if *tm.Reverse {
			rules = append(rules, Reverse(scope))
		} else {
			rules = append(rules, NoReverse(scope))
		}
	}

	return rules, nil
}

func (fm *FieldMapping) value(analyzer *analyze.Analyzer, scope Scope, target string, transforms *TransformRegistry) (Value, error) {
	if forms := fm.ValueForms(); forms != 1 {
		return Value{}, fmt.Errorf("field %s: expected one of source, value, expr or transform, got %d", target, forms)
	}

	switch {
	case fm.Transform != "":
		c, ok := transforms.Get(fm.Transform)
		if !ok {
			return Value{}, fmt.Errorf("field %s: transform %q not registered", target, fm.Transform)
		}

		v := Through(fm.Source, nil)
		v.caster = &c

		return v, nil

	case fm.Source != "":
		return FromPath(fm.Source), nil

	case fm.Expr != "":
		return FromExpr(fm.Expr), nil
	}

	// constants take the type of the member they are assigned to
	if scope.Target == nil {
		var v any
		if err := fm.Value.Decode(&v); err != nil {
			return Value{}, fmt.Errorf("field %s: %w", target, err)
		}

		return FromConstant(v), nil
	}

	m := analyzer.Analyze(scope.Target).Member(target)
	if m == nil {
		return Value{}, &diagnostic.ConfigurationError{Type: scope.Target, Member: target, Err: analyze.ErrNoMember}
	}

	ptr := reflect.New(m.Type)
	if err := fm.Value.Decode(ptr.Interface()); err != nil {
		return Value{}, &diagnostic.ConfigurationError{Type: scope.Target, Member: target, Err: err}
	}

	return Value{Kind: ValueConstant, Constant: ptr.Elem()}, nil
}
