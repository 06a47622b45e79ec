package node

import (
	"fmt"
	"strings"

	"shape-mapper/internal/common"
)

// Intent tells what a mapping does with the target.
type Intent int

const (
	IntentAll       Intent = iota // wildcard, matches every intent
	IntentCreateNew               // construct a new target
	IntentMerge                   // fill zero members of an existing target
	IntentOverwrite               // assign every mapped member of an existing target
)

// String returns a human-readable representation of the Intent.
func (i Intent) String() string {
	switch i {
	case IntentAll:
		return "all"
	case IntentCreateNew:
		return "create"
	case IntentMerge:
		return "merge"
	case IntentOverwrite:
		return "overwrite"
	default:
		return common.UnknownStr
	}
}

// Matches reports whether a scope with intent i applies to a request with intent other.
func (i Intent) Matches(other Intent) bool {
	return i == IntentAll || i == other
}

// UsesExisting reports whether the mapping starts from an existing target.
func (i Intent) UsesExisting() bool {
	return i == IntentMerge || i == IntentOverwrite
}

// ParseIntent parses the String form of an intent, "" yields IntentAll.
func ParseIntent(s string) (Intent, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return IntentAll, nil
	case "create", "new", "create_new":
		return IntentCreateNew, nil
	case "merge":
		return IntentMerge, nil
	case "overwrite":
		return IntentOverwrite, nil
	default:
		return IntentAll, fmt.Errorf("unknown intent %q", s)
	}
}
