package analyze

import (
	"reflect"
	"slices"
	"strings"

	"shape-mapper/internal/common"
)

// QualifiedMember describes a member reachable from a root type by a path.
// It owns no data. Two qualified members are equal iff their roots and paths match.
type QualifiedMember struct {
	Root    reflect.Type     // Owning root type, pointers stripped
	Parent  *QualifiedMember // nil for the root
	Member  *Member          // nil for the root and for collection elements
	Element bool             // Describes the elements of the parent collection
	Type    reflect.Type     // Declared type

	path string
}

// NewRoot returns the qualified member describing root itself.
func NewRoot(root reflect.Type) *QualifiedMember {
	return &QualifiedMember{Root: common.Deref(root), Type: root}
}

// NewParameter returns a qualified member for a constructor parameter of root.
func NewParameter(root reflect.Type, param *Member) *QualifiedMember {
	return NewRoot(root).Child(param)
}

// Child returns the qualified member of m within q.
func (q *QualifiedMember) Child(m *Member) *QualifiedMember {
	return &QualifiedMember{
		Root:   q.Root,
		Parent: q,
		Member: m,
		Type:   m.Type,
		path:   q.typePath().Field(m.Name).String(),
	}
}

// Elem returns the qualified member of the elements of collection q.
func (q *QualifiedMember) Elem() *QualifiedMember {
	return &QualifiedMember{
		Root:    q.Root,
		Parent:  q,
		Element: true,
		Type:    common.Deref(q.Type).Elem(),
		path:    q.typePath().Slice().String(),
	}
}

func (q *QualifiedMember) typePath() *TypePath {
	if q.path == "" {
		return NewTypePath("")
	}

	return &TypePath{parts: strings.Split(q.path, ".")}
}

// Path returns the member path from the root, "" for the root itself.
func (q *QualifiedMember) Path() string {
	return q.path
}

// Flat returns the path with separators removed, used for flattening matches.
func (q *QualifiedMember) Flat() string {
	return q.typePath().Flat()
}

// String returns the root type name followed by the path.
func (q *QualifiedMember) String() string {
	if q.path == "" {
		return TypeString(q.Root)
	}

	return TypeString(q.Root) + "." + q.path
}

// Name returns the last member name, or "" for the root and elements.
func (q *QualifiedMember) Name() string {
	if q.Member == nil {
		return ""
	}

	return q.Member.Name
}

// Kind classifies the declared type.
func (q *QualifiedMember) Kind() TypeKind {
	return Classify(q.Type)
}

// IsRoot reports whether q is the root itself.
func (q *QualifiedMember) IsRoot() bool {
	return q.Parent == nil
}

// Readable reports whether every member on the path can be read.
func (q *QualifiedMember) Readable() bool {
	for cur := q; cur != nil; cur = cur.Parent {
		if cur.Member != nil && !cur.Member.Readable() {
			return false
		}
	}

	return true
}

// Writable reports whether the last member can be assigned.
func (q *QualifiedMember) Writable() bool {
	return q.Member != nil && q.Member.Writable()
}

// ConstructorOnly reports whether the last member can only be supplied through a constructor.
func (q *QualifiedMember) ConstructorOnly() bool {
	return q.Member != nil && q.Member.ConstructorOnly()
}

// Equal reports whether q and other describe the same member.
func (q *QualifiedMember) Equal(other *QualifiedMember) bool {
	if q == nil || other == nil {
		return q == other
	}

	return q.Root == other.Root && q.path == other.path
}

// Depth returns the number of path steps from the root.
func (q *QualifiedMember) Depth() int {
	depth := 0
	for cur := q; cur.Parent != nil; cur = cur.Parent {
		depth++
	}

	return depth
}

// Members returns the members along the path, root first. Element steps are skipped.
func (q *QualifiedMember) Members() []*Member {
	var out []*Member

	for cur := q; cur != nil; cur = cur.Parent {
		if cur.Member != nil {
			out = append(out, cur.Member)
		}
	}

	slices.Reverse(out)

	return out
}

// HasElementStep reports whether the path steps into collection elements.
func (q *QualifiedMember) HasElementStep() bool {
	for cur := q; cur != nil; cur = cur.Parent {
		if cur.Element {
			return true
		}
	}

	return false
}

// Get reads the member from root, a value of the root type or a pointer to it.
// ok is false when a nil value lies on the path.
func (q *QualifiedMember) Get(root reflect.Value) (reflect.Value, bool) {
	v := root

	for _, m := range q.Members() {
		next, ok := m.Get(v)
		if !ok {
			return reflect.Value{}, false
		}

		v = next
	}

	return v, v.IsValid()
}
