package mapping

import (
	"reflect"
	"strings"
	"time"

	"shape-mapper/internal/analyze"
)

var basicTypes = map[string]reflect.Type{
	"bool":           reflect.TypeFor[bool](),
	"string":         reflect.TypeFor[string](),
	"int":            reflect.TypeFor[int](),
	"int8":           reflect.TypeFor[int8](),
	"int16":          reflect.TypeFor[int16](),
	"int32":          reflect.TypeFor[int32](),
	"int64":          reflect.TypeFor[int64](),
	"uint":           reflect.TypeFor[uint](),
	"uint8":          reflect.TypeFor[uint8](),
	"uint16":         reflect.TypeFor[uint16](),
	"uint32":         reflect.TypeFor[uint32](),
	"uint64":         reflect.TypeFor[uint64](),
	"byte":           reflect.TypeFor[byte](),
	"rune":           reflect.TypeFor[rune](),
	"float32":        reflect.TypeFor[float32](),
	"float64":        reflect.TypeFor[float64](),
	"any":            reflect.TypeFor[any](),
	"interface{}":    reflect.TypeFor[any](),
	"time.Time":      reflect.TypeFor[time.Time](),
	"time.Duration":  reflect.TypeFor[time.Duration](),
	"map[string]any": reflect.TypeFor[map[string]any](),
}

// ResolveTypeID resolves a type name like:
// - "Order" (name only)
// - "store.Order" (package alias)
// - "shape-mapper/store.Order" (full package path)
// - "*store.Order", "[]store.Order" (composites of the above)
// - basic types such as "int" or "time.Time".
func ResolveTypeID(id string, catalog *analyze.Catalog) (reflect.Type, bool) {
	id = strings.TrimSpace(id)

	switch {
	case id == "":
		return nil, false
	case strings.HasPrefix(id, "*"):
		t, ok := ResolveTypeID(id[1:], catalog)
		if !ok {
			return nil, false
		}

		return reflect.PointerTo(t), true
	case strings.HasPrefix(id, "[]"):
		t, ok := ResolveTypeID(id[2:], catalog)
		if !ok {
			return nil, false
		}

		return reflect.SliceOf(t), true
	}

	if t, ok := basicTypes[id]; ok {
		return t, true
	}

	if catalog == nil {
		return nil, false
	}

	// name only or alias.Name
	if t, ok := catalog.Lookup(id); ok {
		return t, true
	}

	lastDot := strings.LastIndex(id, ".")
	if lastDot <= 0 || lastDot == len(id)-1 {
		return nil, false
	}

	pkg, name := id[:lastDot], id[lastDot+1:]

	// full import path, or its suffix
	for _, t := range catalog.Types() {
		if t.Name() != name {
			continue
		}

		if t.PkgPath() == pkg || strings.HasSuffix(t.PkgPath(), "/"+pkg) {
			return t, true
		}
	}

	return nil, false
}
