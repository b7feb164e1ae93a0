package search

// Request describes one call to the remote code search tool
type Request struct {
	Query           string
	MatchCase       bool
	MatchWholeWords bool
	UseRegexp       bool
	Repo            string   // owner/name filter, optional
	Path            string   // file path filter, optional
	Languages       []string // language filters, optional
}

// Arguments builds the tool call arguments. Optional filters are omitted
// when unset.
func (r Request) Arguments() map[string]any {
	args := map[string]any{
		"query":           r.Query,
		"matchCase":       r.MatchCase,
		"matchWholeWords": r.MatchWholeWords,
		"useRegexp":       r.UseRegexp,
	}
	if r.Repo != "" {
		args["repo"] = r.Repo
	}
	if r.Path != "" {
		args["path"] = r.Path
	}
	if len(r.Languages) > 0 {
		langs := make([]string, len(r.Languages))
		copy(langs, r.Languages)
		args["language"] = langs
	}
	return args
}
