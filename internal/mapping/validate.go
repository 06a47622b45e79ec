package mapping

import (
	"fmt"
	"strings"

	"shape-mapper/internal/analyze"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/node"
)

// Validate checks the structure of a rule file: type and transform names,
// intents, path syntax and value forms. Member existence and conflicts are
// checked when the rules are applied to a registry.
func Validate(mf *MappingFile, catalog *analyze.Catalog, transforms *TransformRegistry) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("mapping_is_nil", "rule file is nil", "", "")
		return res
	}

	seenTransforms := map[string]struct{}{}

	for _, def := range mf.Transforms {
		if _, ok := seenTransforms[def.Name]; ok {
			res.AddError("duplicate_transform", fmt.Sprintf("duplicate transform %q", def.Name), "", def.Name)
			continue
		}

		seenTransforms[def.Name] = struct{}{}

		if !transforms.Has(def.Name) {
			res.AddWarning("unregistered_transform", fmt.Sprintf("transform %q has no registered function", def.Name), "", def.Name)
		}
	}

	for i := range mf.TypeMappings {
		tm := &mf.TypeMappings[i]
		pair := tm.String()

		if _, err := node.ParseIntent(tm.Intent); err != nil {
			res.AddError("invalid_intent", err.Error(), pair, "")
		}

		for _, name := range []string{tm.Source, tm.Target} {
			if name == "" {
				continue
			}

			if _, ok := ResolveTypeID(name, catalog); !ok {
				res.AddError("type_not_found", fmt.Sprintf("type %q not found", name), pair, name)
			}
		}

		if tm.Source == "" && tm.Target == "" && tm.Intent == "" {
			res.AddInfo("global_scope", "rules apply to every type pair", pair, "")
		}

		for sp, tp := range tm.OneToOne {
			validatePath(res, pair, "invalid_source_path", sp)
			validateMember(res, pair, tp)
		}

		for j := range tm.Fields {
			validateField(res, pair, &tm.Fields[j], transforms)
		}

		for _, ig := range tm.Ignore {
			validateMember(res, pair, ig)
		}

		for _, ig := range tm.IgnoreSource {
			validatePath(res, pair, "invalid_ignore_path", ig)
		}

		for _, d := range tm.Derived {
			for _, name := range []string{d.Source, d.Target} {
				if _, ok := ResolveTypeID(name, catalog); !ok {
					res.AddError("type_not_found", fmt.Sprintf("derived type %q not found", name), pair, name)
				}
			}
		}
	}

	return res
}

func validateField(res *diagnostic.Diagnostics, pair string, fm *FieldMapping, transforms *TransformRegistry) {
	if len(fm.Target) == 0 {
		res.AddError("missing_target", "field mapping has no target", pair, "")
	}

	for _, t := range fm.Target {
		validateMember(res, pair, t)
	}

	field := fm.Target.First()

	if forms := fm.ValueForms(); forms != 1 {
		res.AddError("value_forms", fmt.Sprintf("expected one of source, value, expr or transform, got %d", forms), pair, field)
	}

	if fm.Source != "" {
		validatePath(res, pair, "invalid_source_path", fm.Source)
	}

	if fm.Transform != "" && !transforms.Has(fm.Transform) {
		res.AddError("unknown_transform", fmt.Sprintf("transform %q not registered", fm.Transform), pair, field)
	}

	for _, text := range []string{fm.Expr, fm.When} {
		if text == "" {
			continue
		}

		if _, err := node.CompileExpression(text, nil, nil); err != nil {
			res.AddError("invalid_expression", err.Error(), pair, field)
		}
	}
}

func validatePath(res *diagnostic.Diagnostics, pair, code, path string) {
	if _, err := analyze.ParsePath(path); err != nil {
		res.AddError(code, fmt.Sprintf("invalid path %q: %v", path, err), pair, path)
	}
}

func validateMember(res *diagnostic.Diagnostics, pair, member string) {
	if member == "" || strings.ContainsAny(member, ".[]") {
		res.AddError("invalid_target_member", fmt.Sprintf("%q is not a direct member name", member), pair, member)
	}
}
