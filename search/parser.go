package search

import (
	"strconv"
	"strings"
)

const (
	repositoryPrefix = "Repository: "
	pathPrefix       = "Path: "
	urlPrefix        = "URL: "
	licensePrefix    = "License: "
	snippetsHeader   = "Snippets:"
	snippetPrefix    = "--- Snippet "
	snippetSuffix    = "---"
	lineMarker       = "(Line "
	lineMarkerEnd    = ") ---"
)

type parseState int

const (
	stateIdle parseState = iota
	stateInResult
	stateInSnippet
)

// parser accumulates results while scanning the response line by line.
// cur is nil until the first Repository line; a snippet seen while cur is
// nil has nowhere to go and is dropped on the next flush.
type parser struct {
	state   parseState
	results []SearchResult
	cur     *SearchResult
	snippet *Snippet
}

// Parse converts the plain-text search response into results.
// Malformed input never fails: unrecognised lines are skipped.
func Parse(text string) []SearchResult {
	p := &parser{results: make([]SearchResult, 0)}
	for line := range strings.Lines(text) {
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		p.feed(line)
	}
	return p.finish()
}

func (p *parser) feed(line string) {
	if repo, ok := strings.CutPrefix(line, repositoryPrefix); ok {
		p.flushResult()
		p.cur = &SearchResult{
			Repository: repo,
			Snippets:   make([]Snippet, 0),
		}
		p.state = stateInResult
		return
	}

	if v, ok := strings.CutPrefix(line, pathPrefix); ok {
		if p.cur != nil {
			p.cur.Path = v
		}
		return
	}
	if v, ok := strings.CutPrefix(line, urlPrefix); ok {
		if p.cur != nil {
			p.cur.URL = v
		}
		return
	}
	if v, ok := strings.CutPrefix(line, licensePrefix); ok {
		if p.cur != nil {
			p.cur.License = v
		}
		return
	}

	if strings.HasPrefix(line, snippetPrefix) && strings.HasSuffix(line, snippetSuffix) {
		p.flushSnippet()
		p.snippet = &Snippet{
			StartLine: parseStartLine(line),
			Lines:     make([]string, 0),
		}
		p.state = stateInSnippet
		return
	}

	if line == snippetsHeader {
		return
	}

	if p.state == stateInSnippet && p.snippet != nil {
		p.snippet.Lines = append(p.snippet.Lines, line)
	}
}

// flushSnippet attaches the open snippet to the open result, if both exist.
func (p *parser) flushSnippet() {
	if p.snippet != nil && p.cur != nil {
		p.cur.Snippets = append(p.cur.Snippets, *p.snippet)
	}
	p.snippet = nil
}

func (p *parser) flushResult() {
	p.flushSnippet()
	if p.cur != nil {
		p.results = append(p.results, *p.cur)
	}
	p.cur = nil
	p.state = stateIdle
}

func (p *parser) finish() []SearchResult {
	p.flushResult()

	// The service pads every snippet block with blank lines
	for i := range p.results {
		for j := range p.results[i].Snippets {
			s := &p.results[i].Snippets[j]
			for len(s.Lines) > 0 && s.Lines[len(s.Lines)-1] == "" {
				s.Lines = s.Lines[:len(s.Lines)-1]
			}
		}
	}
	return p.results
}

// parseStartLine extracts N from a "--- Snippet k (Line N) ---" header,
// defaulting to 1.
func parseStartLine(header string) uint64 {
	_, rest, ok := strings.Cut(header, lineMarker)
	if !ok {
		return 1
	}
	if i := strings.Index(rest, lineMarker); i >= 0 {
		rest = rest[:i]
	}
	num, ok := strings.CutSuffix(rest, lineMarkerEnd)
	if !ok {
		return 1
	}
	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 1
	}
	return n
}
