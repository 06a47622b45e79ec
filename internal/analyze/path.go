package analyze

import (
	"errors"
	"fmt"
	"strings"
)

// PathSegment represents a parsed segment of a member path.
type PathSegment struct {
	// Name is the member name.
	Name string

	// IsSlice indicates this segment accesses collection elements (e.g., "Items[]").
	IsSlice bool
}

// FieldPath represents a parsed member path like "Items[].ProductID".
type FieldPath struct {
	Segments []PathSegment
}

// String returns the path as a string.
func (p FieldPath) String() string {
	var sb strings.Builder

	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteString(".")
		}

		sb.WriteString(seg.Name)

		if seg.IsSlice {
			sb.WriteString("[]")
		}
	}

	return sb.String()
}

// IsSimple returns true if this is a single-member path (no nesting, no elements).
func (p FieldPath) IsSimple() bool {
	return len(p.Segments) == 1 && !p.Segments[0].IsSlice
}

// Root returns the first segment's member name.
func (p FieldPath) Root() string {
	if len(p.Segments) == 0 {
		return ""
	}

	return p.Segments[0].Name
}

// IsEmpty returns true if the path has no segments.
func (p FieldPath) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Equals returns true if two paths are equal.
func (p FieldPath) Equals(other FieldPath) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}

	for i, seg := range p.Segments {
		if seg != other.Segments[i] {
			return false
		}
	}

	return true
}

// ParsePath parses a member path string into a FieldPath.
// Supports: "Field", "Nested.Field", "Items[]", "Items[].ProductID".
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []PathSegment

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		isSlice := false
		name := part

		if strings.HasSuffix(part, "[]") {
			isSlice = true
			name = strings.TrimSuffix(part, "[]")

			if name == "" {
				return FieldPath{}, fmt.Errorf("invalid path %q: element access without member name", path)
			}
		}

		if !isValidIdent(name) {
			return FieldPath{}, fmt.Errorf("invalid path %q: invalid identifier %q", path, name)
		}

		segments = append(segments, PathSegment{
			Name:    name,
			IsSlice: isSlice,
		})
	}

	return FieldPath{Segments: segments}, nil
}

// isValidIdent checks if a string is a valid Go identifier.
func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case isLetter(r) || r == '_':
		case i > 0 && isDigit(r):
		default:
			return false
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
