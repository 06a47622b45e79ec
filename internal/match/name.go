package match

import (
	"strings"
	"unicode"
)

// affixes stripped by StripAffixes, longer first so "ids" wins over "id".
var affixes = []string{"timestamp", "ids", "utc", "id", "at"}

// TokenizeIdent splits an identifier into lowercase tokens at separators
// (_, -, space), lower-to-upper transitions and acronym ends.
// Examples:
//   - "OrderID" -> ["order", "id"]
//   - "customer_name" -> ["customer", "name"]
//   - "XMLParser" -> ["xml", "parser"]
//   - "getHTTPResponse" -> ["get", "http", "response"]
func TokenizeIdent(s string) []string {
	var (
		tokens  []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current = append(current, r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// startsToken reports whether runes[i] opens a new token.
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	// "orderID": split before 'I'
	if !unicode.IsUpper(prev) {
		return true
	}

	// "XMLParser": split before 'P'
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// NormalizeIdent case-folds an identifier and removes separators, so that
// "OrderID", "order_id" and "orderId" all become "orderid".
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// StripAffixes normalizes s and drops one common suffix token
// (id, ids, at, utc, timestamp) unless nothing would remain.
func StripAffixes(s string) string {
	normalized := NormalizeIdent(s)

	for _, suffix := range affixes {
		if trimmed, ok := strings.CutSuffix(normalized, suffix); ok && trimmed != "" {
			return trimmed
		}
	}

	return normalized
}

// Levenshtein returns the edit distance between a and b counted in runes.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	if len(ra) == 0 {
		return len(rb)
	}

	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		diag := row[0]
		row[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			next := min(row[i]+1, row[i-1]+1, diag+cost)
			diag, row[i] = row[i], next
		}
	}

	return row[len(ra)]
}

// Similarity scores two strings between 0 (nothing shared) and 1 (equal)
// as 1 - distance / longer length.
func Similarity(a, b string) float64 {
	longer := max(len([]rune(a)), len([]rune(b)))
	if longer == 0 {
		return 1
	}

	return 1 - float64(Levenshtein(a, b))/float64(longer)
}

// NameScore compares two identifiers after normalization, with and without
// their common suffixes, and returns the better score.
func NameScore(a, b string) float64 {
	return max(
		Similarity(NormalizeIdent(a), NormalizeIdent(b)),
		Similarity(StripAffixes(a), StripAffixes(b)),
	)
}
