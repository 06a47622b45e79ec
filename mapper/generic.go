package mapper

import (
	"fmt"
	"reflect"

	"shape-mapper/internal/diagnostic"
	"shape-mapper/internal/gen"
	"shape-mapper/node"
)

// Map creates a new T from source. The source shape is its runtime type;
// a nil source yields the zero T.
func Map[T any](m *Mapper, source any) (T, error) {
	return invoke[T](m, node.IntentCreateNew, reflect.TypeOf(source), source, nil)
}

// MapAs creates a new T from source declared as an S. Interface types for
// S dispatch on the runtime type of source.
func MapAs[S, T any](m *Mapper, source S) (T, error) {
	return invoke[T](m, node.IntentCreateNew, reflect.TypeFor[S](), source, nil)
}

// MapOnto assigns every mapped member of existing from source and returns
// it. A pointer T is updated in place.
func MapOnto[T any](m *Mapper, source any, existing T) (T, error) {
	return invoke[T](m, node.IntentOverwrite, reflect.TypeOf(source), source, existing)
}

// Merge fills the zero members of existing from source and returns it.
// A pointer T is updated in place.
func Merge[T any](m *Mapper, source any, existing T) (T, error) {
	return invoke[T](m, node.IntentMerge, reflect.TypeOf(source), source, existing)
}

func invoke[T any](m *Mapper, intent node.Intent, src reflect.Type, source, existing any) (T, error) {
	var zero T

	if src == nil {
		return zero, nil
	}

	dst := reflect.TypeFor[T]()

	compiled, err := m.Compile(src, dst, intent)
	if err != nil {
		return zero, err
	}

	out, err := compiled.Invoke(source, existing, nil)
	if err != nil {
		return zero, err
	}

	v, ok := gen.Fit(reflect.ValueOf(out), dst)
	if !ok {
		return zero, fmt.Errorf("%s: %w", compiled.Signature(), &diagnostic.UnconvertibleTypeError{
			Path: "result", SourceType: reflect.TypeOf(out), TargetType: dst,
		})
	}

	typed, _ := v.Interface().(T)

	return typed, nil
}
