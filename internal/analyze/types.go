package analyze

import (
	"reflect"
	"strings"

	"shape-mapper/internal/common"
	"shape-mapper/primitive"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "shape-mapper/store"
	Name    string // e.g., "Order"
}

// IDOf returns the TypeID of t with pointers stripped.
// Unnamed types such as []T yield an ID with an empty package path.
func IDOf(t reflect.Type) TypeID {
	t = common.Deref(t)
	if t == nil {
		return TypeID{}
	}

	if t.Name() == "" {
		return TypeID{Name: t.String()}
	}

	return TypeID{PkgPath: t.PkgPath(), Name: t.Name()}
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind classifies how values of a type are mapped.
type TypeKind int

const (
	TypeKindUnknown    TypeKind = iota
	TypeKindSimple              // copied or converted directly: numbers, strings, enums, time, []byte
	TypeKindComplex             // struct, mapped member by member
	TypeKindEnumerable          // slice or array, mapped element by element
	TypeKindDictionary          // map, mapped entry by entry
	TypeKindInterface           // polymorphic complex, resolved from the runtime type
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindSimple:
		return "simple"
	case TypeKindComplex:
		return "complex"
	case TypeKindEnumerable:
		return "enumerable"
	case TypeKindDictionary:
		return "dictionary"
	case TypeKindInterface:
		return "interface"
	default:
		return common.UnknownStr
	}
}

// Classify returns the kind of t. Pointers are transparent.
func Classify(t reflect.Type) TypeKind {
	t = common.Deref(t)
	if t == nil {
		return TypeKindUnknown
	}

	if primitive.IsSimple(t) {
		return TypeKindSimple
	}

	switch t.Kind() {
	case reflect.Struct:
		return TypeKindComplex
	case reflect.Slice, reflect.Array:
		return TypeKindEnumerable
	case reflect.Map:
		return TypeKindDictionary
	case reflect.Interface:
		return TypeKindInterface
	case reflect.Float32, reflect.Float64, reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		// named non-enum scalars such as `type Money float64`
		return TypeKindSimple
	default:
		return TypeKindUnknown
	}
}

// TypeInfo describes a type as seen by the mapper.
type TypeInfo struct {
	ID       TypeID       // Identifier of the base type
	Type     reflect.Type // Base type, pointers stripped
	Nullable bool         // The analysed type was a pointer
	Kind     TypeKind
	Elem     *TypeInfo    // For enumerables and dictionaries, the element (value) type
	Key      reflect.Type // For dictionaries, the key type
	Members  []*Member    // For complex types, readable and writable members in declaration order
	Embeds   []reflect.Type
}

// IsNamed returns true if this type has a declared name.
func (t *TypeInfo) IsNamed() bool {
	return t.Type != nil && t.Type.Name() != ""
}

// Member returns the member with the exact name, or nil.
func (t *TypeInfo) Member(name string) *Member {
	for _, m := range t.Members {
		if m.Name == name {
			return m
		}
	}

	return nil
}

// MemberFold returns the member whose name matches case-insensitively, or nil.
// An exact match wins over a folded one.
func (t *TypeInfo) MemberFold(name string) *Member {
	if m := t.Member(name); m != nil {
		return m
	}

	for _, m := range t.Members {
		if strings.EqualFold(m.Name, name) {
			return m
		}
	}

	return nil
}

// Readable returns the members that can be used as data sources.
func (t *TypeInfo) Readable() []*Member {
	return common.Filter(t.Members, (*Member).Readable)
}

// Writable returns the members that can be assigned after construction.
func (t *TypeInfo) Writable() []*Member {
	return common.Filter(t.Members, (*Member).Writable)
}
