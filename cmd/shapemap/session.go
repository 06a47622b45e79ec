package main

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"

	"shape-mapper/internal/demo"
	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/mapping"
	"shape-mapper/mapper"
	"shape-mapper/node"
	"shape-mapper/options"
)

// session is a mapper loaded with the demo catalog and a rule file.
type session struct {
	m          *mapper.Mapper
	rules      *mapping.MappingFile
	transforms *mapping.TransformRegistry
	source     string
}

// openSession builds the mapper and parses the rule file without applying
// it, so that callers can validate first.
func openSession(flags *globalFlags) (*session, error) {
	var opts []options.Option

	if flags.verbose {
		opts = append(opts, options.WithLogger(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	m := mapper.New(opts...)

	if err := demo.Register(m.Catalog()); err != nil {
		return nil, fmt.Errorf("registering demo shapes: %w", err)
	}

	transforms, err := demo.Transforms()
	if err != nil {
		return nil, fmt.Errorf("registering transforms: %w", err)
	}

	s := &session{m: m, transforms: transforms, source: "built-in demo rules"}

	if flags.rules == "" {
		s.rules, err = demo.Rules()
	} else {
		s.rules, err = mapping.LoadFile(flags.rules)
		s.source = flags.rules
	}

	if err != nil {
		return nil, err
	}

	return s, nil
}

// validate checks the rule file structure and its transform declarations.
func (s *session) validate() *diagnostic.Diagnostics {
	res := mapping.Validate(s.rules, s.m.Catalog(), s.transforms)

	if err := s.transforms.Check(s.rules.Transforms, s.m.Catalog()); err != nil {
		res.AddError("transform_mismatch", err.Error(), "", "")
	}

	return res
}

// apply registers the rules with the mapper.
func (s *session) apply() error {
	return s.m.Load(s.rules, s.transforms)
}

// pairs returns the signatures of the type mappings naming both types.
func (s *session) pairs() []node.Signature {
	var out []node.Signature

	for _, tm := range s.rules.TypeMappings {
		if tm.Source == "" || tm.Target == "" {
			continue
		}

		src, okSrc := mapping.ResolveTypeID(tm.Source, s.m.Catalog())
		dst, okDst := mapping.ResolveTypeID(tm.Target, s.m.Catalog())

		if !okSrc || !okDst {
			continue
		}

		intent, err := node.ParseIntent(tm.Intent)
		if err != nil || intent == node.IntentAll {
			intent = node.IntentCreateNew
		}

		out = append(out, node.NewSignature(intent, src, dst))
	}

	return out
}

// resolveType resolves a type name given on the command line.
func (s *session) resolveType(name string) (reflect.Type, error) {
	t, ok := mapping.ResolveTypeID(name, s.m.Catalog())
	if !ok {
		return nil, fmt.Errorf("type %q not found; run `shapemap types` for the known shapes", name)
	}

	return t, nil
}
