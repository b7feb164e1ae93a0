package search

import "math"

// UnknownLicense is reported by the search service when a repository has no
// detectable license.
const UnknownLicense = "Unknown"

// SearchResult represents one matching file returned by the search service
type SearchResult struct {
	Repository string    `json:"repository"` // owner/name
	Path       string    `json:"path"`
	URL        string    `json:"url"`
	License    string    `json:"license"`
	Snippets   []Snippet `json:"snippets"`
}

// HasLicense reports whether the result carries a displayable license.
func (r SearchResult) HasLicense() bool {
	return r.License != "" && r.License != UnknownLicense
}

// Snippet is a block of matched source lines within a file
type Snippet struct {
	StartLine uint64   `json:"start_line"` // 1-based
	Lines     []string `json:"lines"`
}

// EndLine returns the number of the last line in the snippet, saturating
// at math.MaxUint64. An empty snippet ends where it starts.
func (s Snippet) EndLine() uint64 {
	if len(s.Lines) == 0 {
		return s.StartLine
	}
	n := uint64(len(s.Lines) - 1)
	if s.StartLine > math.MaxUint64-n {
		return math.MaxUint64
	}
	return s.StartLine + n
}
