package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// Mode selects the dark or light palette
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
)

// ParseMode validates a theme mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeAuto, ModeDark, ModeLight:
		return m, nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("invalid theme mode %q, must be one of: auto, dark, light", s)
	}
}

// IsDark resolves the mode, asking detect only in auto mode.
func (m Mode) IsDark(detect func() bool) bool {
	switch m {
	case ModeDark:
		return true
	case ModeLight:
		return false
	}
	if detect == nil {
		return true
	}
	return detect()
}

// Palette holds the non-syntax colours of the output
type Palette struct {
	Heading   string
	Repo      string
	MatchBg   string
	Info      string
	Separator string
}

var (
	darkPalette = Palette{
		Heading:   "#3fb950",
		Repo:      "#58a6ff",
		MatchBg:   "#78460a",
		Info:      "#8b949e",
		Separator: "#6e7681",
	}
	lightPalette = Palette{
		Heading:   "#1a7f37",
		Repo:      "#0969da",
		MatchBg:   "#ffdca0",
		Info:      "#656d76",
		Separator: "#d0d7de",
	}
)

// Theme pairs a syntax colour scheme with the output palette
type Theme struct {
	Style   *chroma.Style
	Palette Palette
	Dark    bool
}

// LoadTheme looks up a syntax style by name.
func LoadTheme(name string, dark bool) (*Theme, error) {
	style, ok := styles.Registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q, available: %s", name, strings.Join(StyleNames(), ", "))
	}

	palette := lightPalette
	if dark {
		palette = darkPalette
	}
	return &Theme{Style: style, Palette: palette, Dark: dark}, nil
}

// StyleNames lists the registered syntax styles
func StyleNames() []string {
	names := make([]string, 0, len(styles.Registry))
	for name := range styles.Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Foreground resolves the "#rrggbb" colour of a token type, or "" when the
// style leaves it to the terminal.
func (t *Theme) Foreground(tt chroma.TokenType) string {
	entry := t.Style.Get(tt)
	if !entry.Colour.IsSet() {
		return ""
	}
	return entry.Colour.String()
}
