// Package plan resolves a mapping signature into a MappingPlan.
//
// Resolution pipeline for a complex target, per writable member:
//  1. Configured data sources, in relevance order
//  2. Keys of a string-keyed dictionary source
//  3. Simple-type factories over the matched source member
//  4. The source member matched by tag, name, flattening or fuzzy ranking
//  5. The existing member value or the type default
//
// An unconditional source ends the list. Construction candidates are ranked
// separately: configured factories, then registered functions with the most
// parameters, then the zero value.
//
// Interface pairs become a derived-type dispatch over the configured derived
// pairs, most derived source first. Nested pairs are referenced by
// signature; their plans are built on demand.
package plan
