package node

import (
	"fmt"
	"reflect"

	"shape-mapper/internal/analyze"
)

// Signature identifies a compiled mapper: one per (intent, source, target).
// RuntimeCheck switches on the per-call instance registry; it is derived from
// the source type and never set by callers.
type Signature struct {
	Intent       Intent
	Source       reflect.Type
	Target       reflect.Type
	RuntimeCheck bool
}

// NewSignature returns the signature of mapping src onto dst.
func NewSignature(intent Intent, src, dst reflect.Type) Signature {
	return Signature{Intent: intent, Source: src, Target: dst}
}

// With returns s for another pair with the same intent.
func (s Signature) With(src, dst reflect.Type) Signature {
	return Signature{Intent: s.Intent, Source: src, Target: dst}
}

// Reversed swaps source and target.
func (s Signature) Reversed() Signature {
	return Signature{Intent: s.Intent, Source: s.Target, Target: s.Source}
}

// String returns "intent: Source -> Target".
func (s Signature) String() string {
	return fmt.Sprintf("%s: %s -> %s", s.Intent, analyze.TypeString(s.Source), analyze.TypeString(s.Target))
}
