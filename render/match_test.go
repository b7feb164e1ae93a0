package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindMatches(t *testing.T) {
	tests := []struct {
		name          string
		line          string
		query         string
		caseSensitive bool
		want          []Range
	}{
		{name: "empty line", line: "", query: "x", caseSensitive: true, want: nil},
		{name: "empty query", line: "abc", query: "", caseSensitive: true, want: nil},
		{name: "empty query insensitive", line: "abc", query: "", caseSensitive: false, want: nil},
		{name: "no match", line: "hello", query: "xyz", caseSensitive: true, want: nil},
		{
			name: "greedy non-overlapping", line: "abcabc", query: "abc", caseSensitive: true,
			want: []Range{{0, 3}, {3, 6}},
		},
		{
			name: "overlapping candidates", line: "aaaa", query: "aa", caseSensitive: true,
			want: []Range{{0, 2}, {2, 4}},
		},
		{
			name: "odd overlap leaves tail", line: "aaa", query: "aa", caseSensitive: true,
			want: []Range{{0, 2}},
		},
		{
			name: "case sensitive skips other casing", line: "ABCabc", query: "abc", caseSensitive: true,
			want: []Range{{3, 6}},
		},
		{
			name: "case insensitive covers both casings", line: "ABCabc", query: "abc", caseSensitive: false,
			want: []Range{{0, 3}, {3, 6}},
		},
		{
			name: "uppercase query", line: "const useState = React.useState", query: "USESTATE", caseSensitive: false,
			want: []Range{{6, 14}, {23, 31}},
		},
		{
			name: "multibyte prefix keeps byte offsets", line: "héllo wörld", query: "wör", caseSensitive: true,
			want: []Range{{7, 11}},
		},
		{
			name: "accented insensitive", line: "ÉCOLE école", query: "école", caseSensitive: false,
			want: []Range{{0, 6}, {7, 13}},
		},
		{
			// U+212A KELVIN SIGN is 3 bytes and lowers to the 1-byte "k"
			name: "fold shrinks byte length", line: "x\u212Ay k", query: "k", caseSensitive: false,
			want: []Range{{1, 4}, {6, 7}},
		},
		{
			// U+023A is 2 bytes and lowers to the 3-byte U+2C65
			name: "fold grows byte length", line: "a\u023Ab\u023A", query: "\u2C65b", caseSensitive: false,
			want: []Range{{1, 4}},
		},
		{
			name: "offsets after shrinking fold", line: "\u212A\u212Aabc", query: "ABC", caseSensitive: false,
			want: []Range{{6, 9}},
		},
		{
			// lowercasing keeps ß, unlike full case folding which maps it to "ss"
			name: "sharp s is not expanded", line: "straße", query: "STRASSE", caseSensitive: false,
			want: nil,
		},
		{
			name: "sharp s matches itself", line: "STRAßE straße", query: "straße", caseSensitive: false,
			want: []Range{{0, 7}, {8, 15}},
		},
		{
			name: "per-rune lowering ignores final sigma context", line: "ΟΔΟΣ οδος", query: "οδοσ", caseSensitive: false,
			want: []Range{{0, 8}},
		},
		{
			name: "invalid utf8 passes through", line: "a\xffbAB", query: "ab", caseSensitive: false,
			want: []Range{{3, 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindMatches(tt.line, tt.query, tt.caseSensitive)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindMatchesRangesAreOrderedAndDisjoint(t *testing.T) {
	lines := []string{
		"abcabcABCaBc",
		"KKkK",
		"ßßß STRASSE",
		"日本語のテキスト日本",
	}
	queries := []string{"abc", "k", "ss", "日本", "x"}

	for _, line := range lines {
		for _, q := range queries {
			for _, cs := range []bool{true, false} {
				prevEnd := 0
				for _, r := range FindMatches(line, q, cs) {
					assert.GreaterOrEqual(t, r.Start, prevEnd, "line %q query %q", line, q)
					assert.Greater(t, r.End, r.Start, "line %q query %q", line, q)
					assert.LessOrEqual(t, r.End, len(line), "line %q query %q", line, q)
					prevEnd = r.End
				}
			}
		}
	}
}
