package mapping

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"shape-mapper/internal/common"
)

// StringOrArray is a list of names written as one string or a sequence.
// Blank entries are dropped.
type StringOrArray []string

// UnmarshalYAML accepts `Name` as well as `[Name, Other]`.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	var items []string

	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		items = []string{str}

	case yaml.SequenceNode:
		if err := node.Decode(&items); err != nil {
			return err
		}

	default:
		return fmt.Errorf("line %d: expected a name or a list of names", node.Line)
	}

	*s = common.Filter(items, func(item string) bool { return strings.TrimSpace(item) != "" })

	return nil
}

// MarshalYAML writes a single entry as a plain string.
func (s StringOrArray) MarshalYAML() (any, error) {
	if common.IsSingle(s) {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first entry or "".
func (s StringOrArray) First() string {
	v, _ := common.First(s)
	return v
}
