// Package gen lowers mapping plans into executable mappers.
//
// Every IR node becomes a closure over reflect values, built once per
// signature. Nested pairs are linked by signature on first use, which keeps
// self-referential plans finite.
//
// Lowering patterns:
//   - Member assignment in dependency order (Target.X readers last)
//   - Data source sets tried in order until one yields a value
//   - Construction candidates tried in rank order, then the zero value
//   - Per-call instance registry for self-referential sources
//   - Element-wise and entry-wise collection mapping
//   - Runtime-type dispatch over derived branches
package gen
