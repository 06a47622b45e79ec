package analyze

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"shape-mapper/internal/common"
	"shape-mapper/internal/diagnostic"
)

var (
	// ErrNoMember is wrapped by ConfigurationError for a path naming no member.
	ErrNoMember = errors.New("no such member")
	// ErrNotAccessible is wrapped by ConfigurationError for a member that
	// exists but cannot be read or written as requested.
	ErrNotAccessible = errors.New("member is not accessible")
)

// Analyzer builds and caches TypeInfo for runtime types.
// It is safe for concurrent use.
type Analyzer struct {
	mu        sync.Mutex
	types     map[reflect.Type]*TypeInfo
	recursive map[reflect.Type]bool
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		types:     make(map[reflect.Type]*TypeInfo),
		recursive: make(map[reflect.Type]bool),
	}
}

// Analyze returns the description of t. Pointer types share the
// description of their base type except for Nullable.
func (a *Analyzer) Analyze(t reflect.Type) *TypeInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.analyzeLocked(t)
}

func (a *Analyzer) analyzeLocked(t reflect.Type) *TypeInfo {
	if info, ok := a.types[t]; ok {
		return info
	}

	base := common.Deref(t)
	if base != t {
		info := *a.analyzeLocked(base)
		info.Nullable = true
		a.types[t] = &info

		return &info
	}

	info := &TypeInfo{
		ID:   IDOf(t),
		Type: t,
		Kind: Classify(t),
	}
	// registered before the walk so element types referring back resolve
	a.types[t] = info

	switch info.Kind {
	case TypeKindComplex:
		info.Members, info.Embeds = collectMembers(t)
	case TypeKindInterface:
		info.Members = interfaceMembers(t)
	case TypeKindEnumerable:
		info.Elem = a.analyzeLocked(t.Elem())
	case TypeKindDictionary:
		info.Key = t.Key()
		info.Elem = a.analyzeLocked(t.Elem())
	case TypeKindSimple, TypeKindUnknown:
		// Terminal types - nothing to recurse into
	}

	return info
}

// IsRecursive reports whether a value of t can contain another value of t
// through its members, collection elements or dictionary values.
func (a *Analyzer) IsRecursive(t reflect.Type) bool {
	t = common.Deref(t)

	a.mu.Lock()
	defer a.mu.Unlock()

	if r, ok := a.recursive[t]; ok {
		return r
	}

	visited := map[reflect.Type]bool{}

	var reaches func(reflect.Type) bool

	reaches = func(cur reflect.Type) bool {
		for _, next := range a.children(cur) {
			if next == t {
				return true
			}

			if visited[next] {
				continue
			}

			visited[next] = true

			if reaches(next) {
				return true
			}
		}

		return false
	}

	r := reaches(t)
	a.recursive[t] = r

	return r
}

// children lists the base types directly reachable from a value of t.
func (a *Analyzer) children(t reflect.Type) []reflect.Type {
	info := a.analyzeLocked(t)

	switch info.Kind {
	case TypeKindComplex, TypeKindInterface:
		out := make([]reflect.Type, 0, len(info.Members))
		for _, m := range info.Members {
			out = append(out, common.Deref(m.Type))
		}

		return out
	case TypeKindEnumerable, TypeKindDictionary:
		return []reflect.Type{info.Elem.Type}
	default:
		return nil
	}
}

// Resolve walks path from root and returns the qualified member it names.
// Every segment but the last must be readable; the last one must be writable
// when write is set and readable otherwise. Element segments ("Items[]")
// step into collection elements.
func (a *Analyzer) Resolve(root reflect.Type, path string, write bool) (*QualifiedMember, error) {
	fp, err := ParsePath(path)
	if err != nil {
		return nil, &diagnostic.ConfigurationError{Type: root, Member: path, Err: err}
	}

	q := NewRoot(root)

	for i, seg := range fp.Segments {
		last := i == len(fp.Segments)-1

		info := a.Analyze(q.Type)
		if info.Kind != TypeKindComplex && info.Kind != TypeKindInterface {
			return nil, &diagnostic.ConfigurationError{
				Type: root, Member: path,
				Err: fmt.Errorf("%w: %s is %s, not complex", ErrNoMember, q.Path(), info.Kind),
			}
		}

		m := info.Member(seg.Name)
		if m == nil {
			return nil, &diagnostic.ConfigurationError{
				Type: root, Member: path,
				Err: fmt.Errorf("%w: %s has no member %s", ErrNoMember, common.TypeName(info.Type), seg.Name),
			}
		}

		accessible := m.Readable()
		if last && write {
			accessible = m.Writable()
		}

		if !accessible {
			return nil, &diagnostic.ConfigurationError{
				Type: root, Member: path,
				Err: fmt.Errorf("%w: %s is a %s", ErrNotAccessible, m.Name, m.Role),
			}
		}

		q = q.Child(m)

		if seg.IsSlice {
			if q.Kind() != TypeKindEnumerable && q.Kind() != TypeKindDictionary {
				return nil, &diagnostic.ConfigurationError{
					Type: root, Member: path,
					Err: fmt.Errorf("%w: %s is not a collection", ErrNoMember, m.Name),
				}
			}

			if !last {
				q = q.Elem()
			}
		}
	}

	return q, nil
}

// ReadablePaths lists every readable member path of root up to maxDepth
// levels, collections excluded. Recursive types stop at maxDepth.
func (a *Analyzer) ReadablePaths(root reflect.Type, maxDepth int) []*QualifiedMember {
	var out []*QualifiedMember

	var walk func(q *QualifiedMember, depth int)

	walk = func(q *QualifiedMember, depth int) {
		if depth > maxDepth {
			return
		}

		info := a.Analyze(q.Type)
		if info.Kind != TypeKindComplex {
			return
		}

		for _, m := range info.Readable() {
			child := q.Child(m)
			out = append(out, child)
			walk(child, depth+1)
		}
	}

	walk(NewRoot(root), 1)

	return out
}
