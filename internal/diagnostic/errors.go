package diagnostic

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrIncompatibleRoot is wrapped by errors returned for root type pairs that
// have neither a coercion path nor a structural mapping.
var ErrIncompatibleRoot = errors.New("incompatible root types")

// ConflictError is returned when a rule conflicts with an already registered one.
//
// The message depends only on the member and the pair of rule descriptions, so
// registering two conflicting rules in either order yields the same content.
type ConflictError struct {
	// Member is the target member path, or the filter description.
	Member string
	// Reason names the conflict class.
	Reason string
	// Existing describes the rule that was registered first.
	Existing string
	// Conflicting describes the rule being registered.
	Conflicting string
}

func (e *ConflictError) Error() string {
	first, second := e.Existing, e.Conflicting
	if second < first {
		first, second = second, first
	}

	return fmt.Sprintf("configuration conflict on %s: %s [%s] [%s]", e.Member, e.Reason, first, second)
}

// UnconvertibleTypeError reports a member whose only data source has no
// coercion path and no structural compatibility with the member type.
type UnconvertibleTypeError struct {
	Path       string
	SourceType reflect.Type
	TargetType reflect.Type
}

func (e *UnconvertibleTypeError) Error() string {
	return fmt.Sprintf("cannot convert %s: no conversion from %v to %v", e.Path, e.SourceType, e.TargetType)
}

// ConstructionImpossibleError reports a target type with no usable
// construction candidate. It is only returned in strict construction mode.
type ConstructionImpossibleError struct {
	Type   reflect.Type
	Reason string
}

func (e *ConstructionImpossibleError) Error() string {
	return fmt.Sprintf("cannot construct %v: %s", e.Type, e.Reason)
}

// CyclicConfigurationError reports rules that would require infinite expansion.
type CyclicConfigurationError struct {
	// Cycle lists the types or members forming the loop, first element repeated last.
	Cycle []string
}

func (e *CyclicConfigurationError) Error() string {
	return "cyclic configuration: " + strings.Join(e.Cycle, " -> ")
}

// ConfigurationError reports a rule that refers to a non-existent or
// non-accessible member, or carries an invalid function or expression.
type ConfigurationError struct {
	Type   reflect.Type
	Member string
	Err    error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Type != nil && e.Member != "":
		return fmt.Sprintf("invalid configuration for %v.%s: %v", e.Type, e.Member, e.Err)
	case e.Type != nil:
		return fmt.Sprintf("invalid configuration for %v: %v", e.Type, e.Err)
	default:
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
