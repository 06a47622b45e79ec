package node

// Context is passed to user functions and conditions while a mapper runs.
// Source is the value being mapped, Target the instance being populated
// (nil before construction). Index and Key are set while mapping
// collection elements: Index is -1 and Key nil otherwise.
type Context struct {
	Intent Intent
	Source any
	Target any
	Parent *Context
	Index  int
	Key    any

	registry *Registry
}

// NewContext returns the root context of one top-level invocation.
// A new instance registry is attached; it lives as long as the call.
func NewContext(intent Intent) *Context {
	return &Context{Intent: intent, Index: -1, registry: NewRegistry()}
}

// Child returns a context for a nested mapping sharing the registry of c.
func (c *Context) Child(source, target any) *Context {
	return &Context{
		Intent:   c.Intent,
		Source:   source,
		Target:   target,
		Parent:   c,
		Index:    -1,
		registry: c.registry,
	}
}

// Element returns a child context for the element at index i.
func (c *Context) Element(i int, source any) *Context {
	child := c.Child(source, nil)
	child.Index = i

	return child
}

// Entry returns a child context for the dictionary entry under key.
func (c *Context) Entry(key, source any) *Context {
	child := c.Child(source, nil)
	child.Key = key

	return child
}

// Registry returns the per-call instance registry.
func (c *Context) Registry() *Registry {
	if c.registry == nil {
		c.registry = NewRegistry()
	}

	return c.registry
}

// Env returns the variables visible to expressions.
func (c *Context) Env() map[string]any {
	env := map[string]any{
		"Source": c.Source,
		"Target": c.Target,
		"Parent": nil,
		"Index":  c.Index,
		"Key":    c.Key,
		"Intent": c.Intent.String(),
	}

	if c.Parent != nil {
		env["Parent"] = c.Parent.Source
	}

	return env
}
