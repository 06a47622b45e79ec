package analyze

import (
	"reflect"
	"strings"

	"shape-mapper/internal/common"
)

// TypePath builds a readable path string for a member.
// Examples:
//   - "Items" for a direct member
//   - "Customer.Name" for a nested member
//   - "Items[]" for collection elements
//   - "Items[].ProductID" for a member within collection elements
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from a root name; an empty root starts
// an empty path.
func NewTypePath(root string) *TypePath {
	if root == "" {
		return &TypePath{}
	}

	return &TypePath{parts: []string{root}}
}

// Field appends a member name to the path.
func (p *TypePath) Field(name string) *TypePath {
	return &TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// Slice appends an element indicator "[]" to the path.
func (p *TypePath) Slice() *TypePath {
	if len(p.parts) == 0 {
		return &TypePath{parts: []string{"[]"}}
	}

	newParts := make([]string, len(p.parts))
	copy(newParts, p.parts)
	newParts[len(newParts)-1] += "[]"

	return &TypePath{parts: newParts}
}

// String returns the full path string.
func (p *TypePath) String() string {
	return strings.Join(p.parts, ".")
}

// Flat returns the path with separators and element markers removed,
// "Customer.Name" becomes "CustomerName".
func (p *TypePath) Flat() string {
	return strings.ReplaceAll(strings.Join(p.parts, ""), "[]", "")
}

// TypeString returns a short human-readable representation of t,
// package aliases kept: "*store.Order", "[]store.OrderItem".
func TypeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + TypeString(t.Elem())
	case reflect.Slice:
		if t.Name() == "" {
			return "[]" + TypeString(t.Elem())
		}
	case reflect.Map:
		if t.Name() == "" {
			return "map[" + TypeString(t.Key()) + "]" + TypeString(t.Elem())
		}
	}

	if alias := common.PkgAlias(t.PkgPath()); alias != "" && t.Name() != "" {
		return alias + "." + t.Name()
	}

	return t.String()
}
