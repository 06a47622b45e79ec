// Package analyze describes runtime types as mapping shapes.
//
// It uses reflect to build a canonical in-memory model of the members a
// mapper can read from and write to.
//
// Key types:
//   - TypeInfo: classification (simple/complex/enumerable/dictionary/interface) and members
//   - Member: field, getter, setter, property or constructor parameter
//   - QualifiedMember: a member reachable from a root type by a path like "Items[].Name"
//   - Catalog: registered constructors, factory methods and interface implementations
package analyze
