// Package tui is an interactive browser over grep.app results.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/takaishi/grepapp/opener"
	"github.com/takaishi/grepapp/render"
	"github.com/takaishi/grepapp/search"
)

// Searcher runs a query against the search service
type Searcher interface {
	Find(ctx context.Context, req search.Request) ([]search.SearchResult, error)
}

// SearchResultMsg carries the outcome of one search. Messages whose ID is
// not the latest issued are dropped.
type SearchResultMsg struct {
	SearchID int
	Results  []search.SearchResult
	Err      error
}

type keyMap struct {
	up     key.Binding
	down   key.Binding
	open   key.Binding
	edit   key.Binding
	submit key.Binding
	cancel key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		open:   key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "open in browser")),
		edit:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "new query")),
		submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// previewKeys limits the viewport to paging so j/k stay with the list
func previewKeys() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+f"), key.WithHelp("pgdn", "page down")),
		PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup", "page up")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
	}
}

// Model represents the browser state
type Model struct {
	request  search.Request
	searcher Searcher
	printer  *render.Printer
	open     func(string) error
	logger   *zap.Logger

	keys       keyMap
	help       help.Model
	queryInput textinput.Model
	editing    bool

	searchID      int
	searchCancel  context.CancelFunc
	isSearching   bool
	searchError   error
	results       []search.SearchResult
	selectedIndex int
	resultsOffset int
	notice        string

	preview viewport.Model

	width  int
	height int
}

// New creates a Model that starts by running req
func New(searcher Searcher, printer *render.Printer, req search.Request, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Prompt = "grep.app> "
	ti.Placeholder = "search public GitHub code"
	ti.CharLimit = 512
	ti.SetValue(req.Query)

	vp := viewport.New(0, 0)
	vp.KeyMap = previewKeys()

	return &Model{
		request:       req,
		searcher:      searcher,
		printer:       printer,
		open:          opener.Open,
		logger:        logger,
		keys:          newKeyMap(),
		help:          help.New(),
		queryInput:    ti,
		preview:       vp,
		selectedIndex: -1,
	}
}

// SetOpener replaces the function used to open result URLs
func (m *Model) SetOpener(open func(string) error) {
	m.open = open
}

// Init runs the initial query, or starts in edit mode when there is none
func (m *Model) Init() tea.Cmd {
	if m.request.Query == "" {
		m.editing = true
		return m.queryInput.Focus()
	}
	return m.triggerSearch()
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelSearch()
			return m, tea.Quit
		}
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)

	case SearchResultMsg:
		return m.handleSearchResult(msg)

	default:
		return m, nil
	}
}

// View renders the UI
func (m *Model) View() string {
	return renderView(m)
}

// Start runs the Bubble Tea program until the user quits
func (m *Model) Start() error {
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	m.cancelSearch()
	return err
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancelSearch()
		return m, tea.Quit

	case key.Matches(msg, m.keys.up):
		if m.selectedIndex > 0 {
			m.selectedIndex--
			m.adjustScroll()
			m.loadPreview()
		}
		return m, nil

	case key.Matches(msg, m.keys.down):
		if m.selectedIndex < len(m.results)-1 {
			m.selectedIndex++
			m.adjustScroll()
			m.loadPreview()
		}
		return m, nil

	case key.Matches(msg, m.keys.edit):
		m.editing = true
		m.queryInput.SetValue(m.request.Query)
		m.queryInput.CursorEnd()
		return m, m.queryInput.Focus()

	case key.Matches(msg, m.keys.open):
		m.openSelected()
		return m, nil
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		m.editing = false
		m.queryInput.Blur()
		m.request.Query = m.queryInput.Value()
		return m, m.triggerSearch()

	case key.Matches(msg, m.keys.cancel):
		m.editing = false
		m.queryInput.Blur()
		m.queryInput.SetValue(m.request.Query)
		return m, nil
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

func (m *Model) openSelected() {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.results) {
		return
	}
	url := m.results[m.selectedIndex].URL
	if err := m.open(url); err != nil {
		m.logger.Warn("open url failed", zap.String("url", url), zap.Error(err))
		m.notice = fmt.Sprintf("Cannot open %s: %v", url, err)
		return
	}
	m.notice = "Opened " + url
}

// triggerSearch cancels any running search and issues a new one
func (m *Model) triggerSearch() tea.Cmd {
	m.cancelSearch()

	m.selectedIndex = -1
	m.resultsOffset = 0
	m.notice = ""
	m.preview.SetContent("")

	if m.request.Query == "" {
		m.results = nil
		m.isSearching = false
		m.searchError = nil
		return nil
	}

	m.searchID++
	m.isSearching = true
	m.searchError = nil

	ctx, cancel := context.WithCancel(context.Background())
	m.searchCancel = cancel

	id := m.searchID
	req := m.request
	searcher := m.searcher
	logger := m.logger
	return func() tea.Msg {
		logger.Debug("tui search", zap.Int("id", id), zap.String("query", req.Query))
		results, err := searcher.Find(ctx, req)
		return SearchResultMsg{SearchID: id, Results: results, Err: err}
	}
}

func (m *Model) cancelSearch() {
	if m.searchCancel != nil {
		m.searchCancel()
		m.searchCancel = nil
	}
}

func (m *Model) handleSearchResult(msg SearchResultMsg) (tea.Model, tea.Cmd) {
	if msg.SearchID != m.searchID {
		m.logger.Debug("dropping stale search result", zap.Int("id", msg.SearchID))
		return m, nil
	}

	m.isSearching = false
	m.cancelSearch()

	if msg.Err != nil {
		m.searchError = msg.Err
		m.results = nil
		return m, nil
	}

	m.results = msg.Results
	m.searchError = nil

	if len(m.results) > 0 {
		m.selectedIndex = 0
		m.resultsOffset = 0
		m.loadPreview()
	}
	return m, nil
}

// visibleResults is the height of the result list
func (m *Model) visibleResults() int {
	n := m.height / 3
	if n < 3 {
		n = 3
	}
	return n
}

// adjustScroll keeps the selected row inside the list window
func (m *Model) adjustScroll() {
	visible := m.visibleResults()

	if len(m.results) <= visible {
		m.resultsOffset = 0
		return
	}
	if m.selectedIndex < m.resultsOffset {
		m.resultsOffset = m.selectedIndex
	}
	if m.selectedIndex >= m.resultsOffset+visible {
		m.resultsOffset = m.selectedIndex - visible + 1
	}
	m.resultsOffset = max(0, min(m.resultsOffset, len(m.results)-visible))
}

// loadPreview renders the selected result into the preview pane
func (m *Model) loadPreview() {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.results) {
		m.preview.SetContent("")
		return
	}
	result := m.results[m.selectedIndex]
	m.preview.SetContent(m.printer.RenderResult(result, m.request.Query, m.request.MatchCase))
	m.preview.GotoTop()
}

// layout sizes the preview pane to the space left by the other sections
func (m *Model) layout() {
	m.preview.Width = m.width
	m.preview.Height = max(3, m.height-headerHeight-m.visibleResults()-footerHeight)
	m.queryInput.Width = max(10, m.width-len(m.queryInput.Prompt)-2)
	m.help.Width = m.width
	m.adjustScroll()
}
