package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/takaishi/grepapp/config"
	"github.com/takaishi/grepapp/search"
	"github.com/takaishi/grepapp/tui"
)

const sampleResponse = "Repository: foo/bar\nPath: a.js\nURL: http://x/a.js\nLicense: MIT\nSnippets:\n--- Snippet 1 (Line 10) ---\nconst x = 1;\n\n"

type fakeSearcher struct {
	requests []search.Request
	results  []search.SearchResult
	err      error
}

func (f *fakeSearcher) Find(_ context.Context, req search.Request) ([]search.SearchResult, error) {
	f.requests = append(f.requests, req)
	return f.results, f.err
}

type harness struct {
	opts     *rootOptions
	searcher *fakeSearcher
	cfg      *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "")

	h := &harness{searcher: &fakeSearcher{results: search.Parse(sampleResponse)}}
	h.opts = defaultOptions()
	h.opts.newSearcher = func(cfg *config.Config, _ *zap.Logger) tui.Searcher {
		h.cfg = cfg
		return h.searcher
	}
	h.opts.isTerminal = func() bool { return false }
	h.opts.getwd = func() (string, error) { return dir, nil }
	return h
}

func (h *harness) run(args ...string) (string, error) {
	cmd := newRootCmd(h.opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootPrettyOutput(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("const", "x", "--no-color")
	require.NoError(t, err)

	want := "Found 1 result(s):\n" +
		"\n" +
		"● foo/bar MIT\n" +
		"  http://x/a.js\n" +
		"\n" +
		"        File: a.js\n" +
		"     10 const x = 1;\n" +
		"\n"
	assert.Equal(t, want, out)
}

func TestRootNoResults(t *testing.T) {
	h := newHarness(t)
	h.searcher.results = []search.SearchResult{}

	out, err := h.run("nothing-matches-this", "--no-color")
	require.NoError(t, err)
	assert.Equal(t, "No results found.\n", out)
}

func TestRootJSONOutput(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("const x", "--json")
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "foo/bar", decoded[0]["repository"])
	assert.Equal(t, "MIT", decoded[0]["license"])
	snippets := decoded[0]["snippets"].([]any)
	require.Len(t, snippets, 1)
	assert.EqualValues(t, 10, snippets[0].(map[string]any)["start_line"])
	assert.Contains(t, out, "\n  {\n    \"repository\"")
}

func TestRootJSONEmptyResults(t *testing.T) {
	h := newHarness(t)
	h.searcher.results = []search.SearchResult{}

	out, err := h.run("x", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestRootJSONFromConfig(t *testing.T) {
	h := newHarness(t)
	t.Setenv("GREPAPP_OUTPUT_FORMAT", "json")

	out, err := h.run("x")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "["))
}

func TestRootForwardsRequestFlags(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("useState(", "--match-case", "--match-whole-words", "--use-regexp",
		"--repo", "facebook/react", "--path", "src/", "--language", "TypeScript", "--language", "JavaScript",
		"--no-color")
	require.NoError(t, err)

	require.Len(t, h.searcher.requests, 1)
	assert.Equal(t, search.Request{
		Query:           "useState(",
		MatchCase:       true,
		MatchWholeWords: true,
		UseRegexp:       true,
		Repo:            "facebook/react",
		Path:            "src/",
		Languages:       []string{"TypeScript", "JavaScript"},
	}, h.searcher.requests[0])
}

func TestRootEndpointAndTimeoutFlags(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("x", "--endpoint", "http://localhost:9000/mcp", "--timeout", "4", "--no-color")
	require.NoError(t, err)

	require.NotNil(t, h.cfg)
	assert.Equal(t, "http://localhost:9000/mcp", h.cfg.Server.Endpoint)
	assert.Equal(t, 4, h.cfg.Server.Timeout)
}

func TestRootAcceptsPositionalQuery(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "single word", args: []string{"useState("}, want: "useState("},
		{name: "words joined", args: []string{"import", "React", "from"}, want: "import React from"},
		{name: "flags after query", args: []string{"async function", "--match-case"}, want: "async function"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			_, err := h.run(append(tt.args, "--no-color")...)
			require.NoError(t, err)
			require.Len(t, h.searcher.requests, 1)
			assert.Equal(t, tt.want, h.searcher.requests[0].Query)
		})
	}
}

func TestRootRequiresQuery(t *testing.T) {
	h := newHarness(t)

	_, err := h.run()
	assert.ErrorContains(t, err, "query is required")
	assert.Empty(t, h.searcher.requests)
}

func TestRootSearchError(t *testing.T) {
	h := newHarness(t)
	h.searcher.err = errors.New("connect to https://mcp.grep.app: refused")

	_, err := h.run("x", "--no-color")
	assert.ErrorContains(t, err, "refused")
}

func TestRootSearchTimeout(t *testing.T) {
	h := newHarness(t)
	h.searcher.err = context.DeadlineExceeded

	_, err := h.run("x", "--no-color")
	assert.ErrorContains(t, err, "timed out")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRootConfigErrorsBeforeSearch(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "unknown theme", env: map[string]string{"GREPAPP_THEME_DARK": "no-such-style"}, args: []string{"x", "--no-color"}},
		{name: "bad color mode", env: map[string]string{"GREPAPP_OUTPUT_COLOR": "rainbow"}, args: []string{"x"}},
		{name: "bad endpoint", args: []string{"x", "--endpoint", "ftp://example.com"}},
		{name: "negative timeout", args: []string{"x", "--timeout", "-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := h.run(tt.args...)
			assert.Error(t, err)
			assert.Empty(t, h.searcher.requests)
		})
	}
}

func TestRootHereAndRepoConflict(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("x", "--here", "--repo", "a/b")
	assert.Error(t, err)
	assert.Empty(t, h.searcher.requests)
}

func TestRootHereOutsideRepository(t *testing.T) {
	h := newHarness(t)
	if _, ok := search.FindGitRoot(os.TempDir()); ok {
		t.Skip("temp dir is inside a git repository")
	}

	_, err := h.run("x", "--here", "--no-color")
	assert.ErrorContains(t, err, "--here")
	assert.Empty(t, h.searcher.requests)
}

func TestRootHereUsesOriginRemote(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	h := newHarness(t)
	repoDir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q"},
		{"remote", "add", "origin", "git@github.com:takaishi/grepapp.git"},
	} {
		out, err := exec.Command("git", append([]string{"-C", repoDir}, args...)...).CombinedOutput()
		require.NoError(t, err, string(out))
	}
	sub := filepath.Join(repoDir, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	h.opts.getwd = func() (string, error) { return sub, nil }

	_, err := h.run("x", "--here", "--no-color")
	require.NoError(t, err)

	require.Len(t, h.searcher.requests, 1)
	assert.Equal(t, "takaishi/grepapp", h.searcher.requests[0].Repo)
}

func TestRootTUIRequiresTerminal(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("x", "--tui")
	assert.ErrorContains(t, err, "interactive terminal")
	assert.Empty(t, h.searcher.requests)
}

func TestRootHelpShowsTips(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--match-whole-words")
	assert.Contains(t, out, "Search for actual code patterns")

	out, err = h.run("config", "--help")
	require.NoError(t, err)
	assert.NotContains(t, out, "Search for actual code patterns")
}

func TestColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "")
	var buf bytes.Buffer

	assert.Equal(t, termenv.Ascii, colorProfile(config.ColorNever, &buf))
	assert.Equal(t, termenv.TrueColor, colorProfile(config.ColorAlways, &buf))
	assert.Equal(t, termenv.Ascii, colorProfile(config.ColorAuto, &buf), "buffers are not terminals")
}

func TestRootColorAlways(t *testing.T) {
	h := newHarness(t)
	t.Setenv("GREPAPP_OUTPUT_COLOR", "always")
	t.Setenv("GREPAPP_THEME_MODE", "light")

	out, err := h.run("x")
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
}
