package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/takaishi/grepapp/search"
)

const (
	gutterWidth    = 5
	gapMarker      = "⋮"
	separatorWidth = 60
	pathIndent     = "        " // lines up with the code column
)

type printerStyles struct {
	heading   lipgloss.Style
	repo      lipgloss.Style
	info      lipgloss.Style
	url       lipgloss.Style
	path      lipgloss.Style
	gutter    lipgloss.Style
	separator lipgloss.Style
}

// Printer renders parsed search results for the terminal
type Printer struct {
	theme       *Theme
	compositor  *Compositor
	highlighter *Highlighter
	styles      printerStyles
}

// NewPrinter creates a Printer emitting colours for profile.
// termenv.Ascii produces plain text.
func NewPrinter(theme *Theme, profile termenv.Profile) *Printer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(theme.Dark)

	p := theme.Palette
	return &Printer{
		theme:       theme,
		compositor:  NewCompositor(profile, p.MatchBg),
		highlighter: NewHighlighter(theme),
		styles: printerStyles{
			heading:   r.NewStyle().Foreground(lipgloss.Color(p.Heading)).Bold(true),
			repo:      r.NewStyle().Foreground(lipgloss.Color(p.Repo)).Bold(true),
			info:      r.NewStyle().Foreground(lipgloss.Color(p.Info)),
			url:       r.NewStyle().Foreground(lipgloss.Color(p.Info)).Underline(true),
			path:      r.NewStyle().Bold(true),
			gutter:    r.NewStyle().Faint(true),
			separator: r.NewStyle().Foreground(lipgloss.Color(p.Separator)),
		},
	}
}

// Fprint writes the rendered results to w
func (p *Printer) Fprint(w io.Writer, results []search.SearchResult, query string, caseSensitive bool) error {
	_, err := io.WriteString(w, p.Render(results, query, caseSensitive))
	return err
}

// Render renders a summary line followed by every result
func (p *Printer) Render(results []search.SearchResult, query string, caseSensitive bool) string {
	if len(results) == 0 {
		return p.styles.info.Render("No results found.") + "\n"
	}

	var b strings.Builder
	b.WriteString(p.styles.heading.Render(fmt.Sprintf("Found %d result(s):", len(results))))
	b.WriteString("\n\n")

	for i, result := range results {
		b.WriteString(p.RenderResult(result, query, caseSensitive))
		if i < len(results)-1 {
			b.WriteString(p.styles.separator.Render(strings.Repeat("─", separatorWidth)))
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// RenderResult renders one result: header, URL, path and its snippets
func (p *Printer) RenderResult(result search.SearchResult, query string, caseSensitive bool) string {
	var b strings.Builder

	b.WriteString(p.styles.repo.Render("● " + result.Repository))
	if result.HasLicense() {
		b.WriteString(" ")
		b.WriteString(p.styles.info.Render(result.License))
	}
	b.WriteString("\n")

	b.WriteString("  ")
	b.WriteString(p.styles.url.Render(result.URL))
	b.WriteString("\n\n")

	b.WriteString(pathIndent + "File: ")
	b.WriteString(p.styles.path.Render(result.Path))
	b.WriteString("\n")

	for i, snippet := range result.Snippets {
		// gap when at least one line lies between the snippets
		if i > 0 && snippet.StartLine > 0 && snippet.StartLine-1 > result.Snippets[i-1].EndLine() {
			b.WriteString("  ")
			b.WriteString(p.styles.gutter.Render(runewidth.FillLeft(gapMarker, gutterWidth)))
			b.WriteString("\n")
		}
		p.writeSnippet(&b, result.Path, snippet, query, caseSensitive)
	}
	if len(result.Snippets) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func (p *Printer) writeSnippet(b *strings.Builder, filePath string, snippet search.Snippet, query string, caseSensitive bool) {
	for i, spans := range p.highlighter.Spans(filePath, snippet.Lines) {
		lineNum := snippet.StartLine + uint64(i)
		b.WriteString("  ")
		b.WriteString(p.styles.gutter.Render(fmt.Sprintf("%*d", gutterWidth, lineNum)))
		b.WriteString(" ")
		b.WriteString(p.compositor.Line(spans, FindMatches(snippet.Lines[i], query, caseSensitive)))
		b.WriteString("\n")
	}
}
