package node

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"

	"github.com/expr-lang/expr"
)

var ErrConditionNotBool = errors.New("condition did not evaluate to a bool")

// Condition guards a rule, a data source or a construction candidate.
// It is either a Go function or an expression; the two never mix.
type Condition struct {
	text string
	fn   func(*Context) bool
	expr *Expression
}

// NewCondition wraps fn. Its text is the function name.
func NewCondition(fn func(*Context) bool) *Condition {
	return &Condition{
		text: runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name(),
		fn:   fn,
	}
}

// CompileCondition compiles a boolean expression, e.g. `Source.Age >= 18`.
func CompileCondition(text string, source, target reflect.Type) (*Condition, error) {
	e, err := CompileExpression(text, source, target, expr.AsBool())
	if err != nil {
		return nil, err
	}

	return &Condition{text: text, expr: e}, nil
}

// Eval reports whether the condition holds in ctx. A nil condition always holds.
func (c *Condition) Eval(ctx *Context) (bool, error) {
	if c == nil {
		return true, nil
	}

	if c.fn != nil {
		return c.fn(ctx), nil
	}

	out, err := c.expr.Eval(ctx)
	if err != nil {
		return false, err
	}

	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("%w: %q gave %T", ErrConditionNotBool, c.text, out)
	}

	return ok, nil
}

// Equal reports whether both conditions have the same text. Two nil
// conditions are equal.
func (c *Condition) Equal(other *Condition) bool {
	if c == nil || other == nil {
		return c == other
	}

	return c.text == other.text
}

// Targets returns the Target members an expression condition reads.
func (c *Condition) Targets() []string {
	if c == nil || c.expr == nil {
		return nil
	}

	return c.expr.Targets()
}

// String returns the condition text.
func (c *Condition) String() string {
	if c == nil {
		return ""
	}

	return c.text
}
