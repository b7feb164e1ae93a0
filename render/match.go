package render

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Range is a half-open byte interval [Start, End) within a line
type Range struct {
	Start int
	End   int
}

// FindMatches returns the non-overlapping byte ranges of query in line,
// scanning left to right. Case-insensitive mode compares the lowercase
// forms of line and query. Offsets always refer to line, also when
// lowercasing changes the byte length of a character.
func FindMatches(line, query string, caseSensitive bool) []Range {
	if query == "" || line == "" {
		return nil
	}
	if caseSensitive {
		return findExact(line, query)
	}
	return findFolded(line, query)
}

func findExact(line, query string) []Range {
	var ranges []Range
	start := 0
	for {
		idx := strings.Index(line[start:], query)
		if idx < 0 {
			return ranges
		}
		abs := start + idx
		ranges = append(ranges, Range{Start: abs, End: abs + len(query)})
		start = abs + len(query)
	}
}

// foldedLine is the lowercased form of a line plus, for every lowered byte,
// the bounds of the original rune it came from.
type foldedLine struct {
	text      string
	origStart []int
	origEnd   []int
}

// foldLine lowers line one rune at a time. Per-rune lowering keeps query and
// line mapped identically, with no context rules such as final sigma.
func foldLine(lower cases.Caser, line string) foldedLine {
	var b strings.Builder
	b.Grow(len(line))
	origStart := make([]int, 0, len(line))
	origEnd := make([]int, 0, len(line))

	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		var piece string
		if r == utf8.RuneError && size <= 1 {
			size = 1
			piece = line[i : i+1]
		} else {
			piece = lower.String(line[i : i+size])
		}
		b.WriteString(piece)
		for range len(piece) {
			origStart = append(origStart, i)
			origEnd = append(origEnd, i+size)
		}
		i += size
	}

	return foldedLine{text: b.String(), origStart: origStart, origEnd: origEnd}
}

func findFolded(line, query string) []Range {
	// a Caser keeps state, so each call gets its own
	lower := cases.Lower(language.Und)
	q := foldLine(lower, query).text
	if q == "" {
		return nil
	}
	fl := foldLine(lower, line)

	var ranges []Range
	pos := 0
	for pos < len(fl.text) {
		idx := strings.Index(fl.text[pos:], q)
		if idx < 0 {
			break
		}
		ls := pos + idx
		le := ls + len(q)
		r := Range{Start: fl.origStart[ls], End: fl.origEnd[le-1]}
		ranges = append(ranges, r)

		// resume after the original rune the match ended in
		pos = le
		for pos < len(fl.text) && fl.origStart[pos] < r.End {
			pos++
		}
	}
	return ranges
}
