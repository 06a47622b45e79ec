// Package match finds the source member that supplies a target member when
// no rule names one.
//
// Key functions:
//   - Matcher.Match: map tag, json tag, exact and folded names, flattening
//   - Matcher.Fuzzy: ranked candidates by name similarity and type compatibility
//   - NormalizeIdent, Levenshtein: identifier comparison
//   - ScoreTypeCompatibility: reflect-based compatibility verdicts
package match
