package node

import (
	"reflect"
	"sync"
)

type instanceKey struct {
	ptr      uintptr
	src, dst reflect.Type
}

// Registry remembers the targets created for source instances during one
// call, so that a source reached twice maps to the same target and cyclic
// graphs terminate.
type Registry struct {
	mu        sync.Mutex
	instances map[instanceKey]reflect.Value
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{instances: make(map[instanceKey]reflect.Value)}
}

// tracked reports whether src has an identity to register.
func tracked(src reflect.Value) bool {
	switch src.Kind() {
	case reflect.Pointer, reflect.Map:
		return !src.IsNil()
	default:
		return false
	}
}

// Lookup returns the target registered for src as a dst, if any.
func (r *Registry) Lookup(src reflect.Value, dst reflect.Type) (reflect.Value, bool) {
	if !tracked(src) {
		return reflect.Value{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.instances[instanceKey{src.Pointer(), src.Type(), dst}]

	return v, ok
}

// Register records target as the dst created for src. Registering must
// happen right after construction, before members are populated.
func (r *Registry) Register(src reflect.Value, dst reflect.Type, target reflect.Value) {
	if !tracked(src) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.instances[instanceKey{src.Pointer(), src.Type(), dst}] = target
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.instances)
}
