// Package coerce decides whether and how a value of one type becomes another.
//
// A Chain tries user converters first, then identity and pointer steps, then
// the built-in primitive conversions in a fixed order: string conversion,
// numeric (with range and whole-number checks), boolean tokens, enum names
// and numbers, bytes, time. A converter that reports !ok falls through to the
// next one. Collections are not converted as a whole; Structural tells the
// planner to map them element by element.
package coerce
