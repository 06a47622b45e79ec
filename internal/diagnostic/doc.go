// Package diagnostic provides structured warnings and errors produced while
// planning a mapping, plus the typed errors returned to callers.
//
// Diagnostics collect the non-fatal findings of a plan (unmatched members,
// dropped derived branches, construction fallbacks). The error types describe
// the failures that abort a registration or a compilation:
//   - ConflictError: two rules decide the same member
//   - UnconvertibleTypeError: no coercion path between two member types
//   - ConstructionImpossibleError: no way to obtain a target instance
//   - CyclicConfigurationError: rules that would expand forever
//   - ConfigurationError: a rule names something that does not exist
package diagnostic
