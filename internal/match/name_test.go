package match

import (
	"slices"
	"testing"
)

func TestTokenizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"OrderID", []string{"order", "id"}},
		{"customer_name", []string{"customer", "name"}},
		{"XMLParser", []string{"xml", "parser"}},
		{"getHTTPResponse", []string{"get", "http", "response"}},
		{"order_item-ID", []string{"order", "item", "id"}},
		{"Customer.Name", []string{"customer", "name"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := TokenizeIdent(tt.input); !slices.Equal(got, tt.expected) {
				t.Errorf("TokenizeIdent(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"OrderID", "orderid"},
		{"order_id", "orderid"},
		{"orderId", "orderid"},
		{"ORDERID", "orderid"},
		{"PRICE_CENTS", "pricecents"},
		{"a", "a"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeIdent(tt.input); got != tt.expected {
				t.Errorf("NormalizeIdent(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripAffixes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"OrderID", "order"},
		{"ItemIDs", "item"},
		{"CreatedAtUTC", "createdat"},
		{"UpdatedTimestamp", "updated"},
		{"ID", "id"},
		{"Name", "name"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := StripAffixes(tt.input); got != tt.expected {
				t.Errorf("StripAffixes(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := Levenshtein(tt.a, tt.b); got != tt.expected {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}

			if got := Levenshtein(tt.b, tt.a); got != tt.expected {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.b, tt.a, got, tt.expected)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("", ""); got != 1 {
		t.Errorf("Similarity of empty strings = %v, want 1", got)
	}

	if got := Similarity("abcd", "abcx"); got != 0.75 {
		t.Errorf("Similarity(abcd, abcx) = %v, want 0.75", got)
	}

	if got := Similarity("abc", "xyz"); got != 0 {
		t.Errorf("Similarity(abc, xyz) = %v, want 0", got)
	}
}

func TestNameScore(t *testing.T) {
	if got := NameScore("CustomerID", "customer_id"); got != 1 {
		t.Errorf("NameScore = %v, want 1", got)
	}

	if got := NameScore("OrderID", "Order"); got != 1 {
		t.Errorf("NameScore with stripped suffix = %v, want 1", got)
	}

	if NameScore("Total", "Quantity") >= NameScore("Total", "Totals") {
		t.Error("unrelated names should score below near matches")
	}
}
