package render

import (
	"strings"

	"github.com/muesli/termenv"
)

// Span is one syntax token of a line: its resolved foreground colour
// ("#rrggbb", or "" for the terminal default) and its text.
// The texts of a line's spans concatenate to the line.
type Span struct {
	Fg   string
	Text string
}

// run is a piece of one span whose bytes share the same match status.
// Offsets are absolute within the line.
type run struct {
	span  int
	start int
	end   int
	match bool
}

// overlay intersects the span partition of a line with its match ranges.
func overlay(spans []Span, matches []Range) []run {
	runs := make([]run, 0, len(spans))
	pos := 0
	for i, s := range spans {
		spanStart, spanEnd := pos, pos+len(s.Text)
		pos = spanEnd
		if spanStart == spanEnd {
			continue
		}

		if !overlaps(matches, spanStart, spanEnd) {
			runs = append(runs, run{span: i, start: spanStart, end: spanEnd})
			continue
		}

		for at := spanStart; at < spanEnd; {
			end, inMatch := nextBoundary(matches, at, spanEnd)
			runs = append(runs, run{span: i, start: at, end: end, match: inMatch})
			at = end
		}
	}
	return runs
}

func overlaps(matches []Range, start, end int) bool {
	for _, m := range matches {
		if m.Start < end && m.End > start {
			return true
		}
	}
	return false
}

// nextBoundary returns where the run beginning at pos ends, never past limit,
// and whether pos is inside a match. Inside, the run ends at the nearest end
// among the ranges covering pos; outside, at the nearest range start after pos.
func nextBoundary(matches []Range, pos, limit int) (int, bool) {
	end := limit
	inMatch := false
	for _, m := range matches {
		if pos >= m.Start && pos < m.End {
			if !inMatch || m.End < end {
				end = m.End
			}
			inMatch = true
		}
	}
	if inMatch {
		return min(end, limit), true
	}

	for _, m := range matches {
		if m.Start > pos && m.Start < end {
			end = m.Start
		}
	}
	return end, false
}

const (
	defaultFgSeq = "39"
)

// Compositor writes a line's syntax colours and match highlighting as one
// ANSI-styled string
type Compositor struct {
	profile termenv.Profile
	matchBg string
}

// NewCompositor creates a Compositor emitting colours for profile.
// matchBg is the "#rrggbb" background of matched text.
func NewCompositor(profile termenv.Profile, matchBg string) *Compositor {
	return &Compositor{profile: profile, matchBg: matchBg}
}

// Plain renders spans with syntax colours only.
func (c *Compositor) Plain(spans []Span) string {
	return c.Line(spans, nil)
}

// Line renders spans with matched bytes highlighted. Unmatched runs set
// their own foreground; matched runs add background and bold and are reset
// immediately so nothing leaks into the next run.
func (c *Compositor) Line(spans []Span, matches []Range) string {
	if c.profile == termenv.Ascii {
		var b strings.Builder
		for _, s := range spans {
			b.WriteString(s.Text)
		}
		return b.String()
	}

	line := joinSpans(spans)
	bg := c.profile.Color(c.matchBg)

	var b strings.Builder
	b.Grow(len(line) * 2)
	reset := false
	for _, r := range overlay(spans, matches) {
		fg := c.fgSequence(spans[r.span].Fg)
		if r.match {
			b.WriteString(termenv.CSI)
			if bg != nil {
				if seq := bg.Sequence(true); seq != "" {
					b.WriteString(seq)
					b.WriteByte(';')
				}
			}
			b.WriteString(termenv.BoldSeq)
			b.WriteByte(';')
			b.WriteString(fg)
			b.WriteByte('m')
			b.WriteString(line[r.start:r.end])
			b.WriteString(termenv.CSI + termenv.ResetSeq + "m")
			reset = true
			continue
		}
		reset = false
		b.WriteString(termenv.CSI)
		b.WriteString(fg)
		b.WriteByte('m')
		b.WriteString(line[r.start:r.end])
	}
	// a trailing matched run already reset
	if !reset {
		b.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	}
	return b.String()
}

func (c *Compositor) fgSequence(hex string) string {
	if hex == "" {
		return defaultFgSeq
	}
	col := c.profile.Color(hex)
	if col == nil {
		return defaultFgSeq
	}
	if seq := col.Sequence(false); seq != "" {
		return seq
	}
	return defaultFgSeq
}

func joinSpans(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
