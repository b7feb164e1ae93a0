package render

import (
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// grammarAliases maps extensions without a grammar of their own to the
// closest one available. Keys are lower case, without the dot.
var grammarAliases = map[string]string{
	"mjs":           "javascript",
	"cjs":           "javascript",
	"jsm":           "javascript",
	"mts":           "typescript",
	"cts":           "typescript",
	"kts":           "kotlin",
	"gradle":        "groovy",
	"svelte":        "html",
	"vue":           "html",
	"astro":         "html",
	"jsonc":         "json",
	"json5":         "json",
	"mdx":           "markdown",
	"zsh":           "bash",
	"envrc":         "bash",
	"dockerfile":    "docker",
	"containerfile": "docker",
	"tmpl":          "go-text-template",
}

// LexerFor picks the grammar for a file path: an exact match on the file
// name, then the alias table, then plain text.
func LexerFor(filePath string) chroma.Lexer {
	base := path.Base(filePath)
	if l := lexers.Match(base); l != nil {
		return l
	}

	key := strings.TrimPrefix(path.Ext(base), ".")
	if key == "" {
		key = base
	}
	if name, ok := grammarAliases[strings.ToLower(key)]; ok {
		if l := lexers.Get(name); l != nil {
			return l
		}
	}
	return lexers.Fallback
}

// GrammarName returns the name of the grammar used for a file path
func GrammarName(filePath string) string {
	return LexerFor(filePath).Config().Name
}

// Highlighter splits source lines into coloured spans
type Highlighter struct {
	theme *Theme
}

// NewHighlighter creates a new Highlighter instance
func NewHighlighter(theme *Theme) *Highlighter {
	return &Highlighter{theme: theme}
}

// Spans tokenises the lines of one snippet together so constructs spanning
// lines keep their state, and returns the spans of each line. A line whose
// tokens do not reproduce it exactly is returned as a single plain span.
func (h *Highlighter) Spans(filePath string, lines []string) [][]Span {
	out := make([][]Span, len(lines))
	if len(lines) == 0 {
		return out
	}

	var tokenLines [][]chroma.Token
	lexer := chroma.Coalesce(LexerFor(filePath))
	if it, err := lexer.Tokenise(nil, strings.Join(lines, "\n")+"\n"); err == nil {
		tokenLines = chroma.SplitTokensIntoLines(it.Tokens())
	}

	for i, line := range lines {
		if i < len(tokenLines) {
			spans := h.toSpans(tokenLines[i])
			if joinSpans(spans) == line {
				out[i] = spans
				continue
			}
		}
		out[i] = h.plain(line)
	}
	return out
}

func (h *Highlighter) toSpans(tokens []chroma.Token) []Span {
	spans := make([]Span, 0, len(tokens))
	for _, tok := range tokens {
		text := strings.TrimSuffix(tok.Value, "\n")
		if text == "" {
			continue
		}
		spans = append(spans, Span{Fg: h.theme.Foreground(tok.Type), Text: text})
	}
	return spans
}

func (h *Highlighter) plain(line string) []Span {
	if line == "" {
		return nil
	}
	return []Span{{Fg: h.theme.Foreground(chroma.Text), Text: line}}
}
