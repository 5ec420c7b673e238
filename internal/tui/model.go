package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chess-rag/internal/domain"
)

// SearchPort is the TUI-facing subset of the search service.
type SearchPort interface {
	Search(query string, k int, datasetID string) ([]domain.SearchHit, error)
}

// PredefinedQueries seeds the menu with example searches; pressing the
// matching number key runs one.
var PredefinedQueries = []string{
	"Shabalov's victories as White in major tournaments",
	"Games from World Senior Championships with tactical combinations",
	"Interesting games from Jurmala tournament in 1985",
	"Games where Shabalov defeated higher-rated opponents",
	"Quick victories in less than 25 moves",
	"Notable games with the Sicilian Defense",
	"Tournament games that ended in dramatic draws",
	"Games featuring interesting endgame techniques",
}

// Model is the Bubble Tea model for the interactive search screen.
type Model struct {
	service   SearchPort
	datasetID string
	topK      int
	input     textinput.Model
	viewport  viewport.Model
	hits      []domain.SearchHit
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(service SearchPort, datasetID string, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a query (or 1-8 for a preset) and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	if topK <= 0 {
		topK = 5
	}
	return Model{
		service:   service,
		datasetID: datasetID,
		topK:      topK,
		input:     ti,
		viewport:  vp,
		status:    "Index loaded. Type to search.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := len(PredefinedQueries) + 2 + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentHit())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if n, ok := presetNumber(q); ok {
				q = PredefinedQueries[n]
			}
			if q != "" {
				m.runSearch(q)
				m.viewport.SetContent(m.renderCurrentHit())
				return m, nil
			}
		case "down":
			if len(m.hits) > 0 {
				m.cursor = (m.cursor + 1) % len(m.hits)
				m.viewport.SetContent(m.renderCurrentHit())
				return m, nil
			}
		case "up":
			if len(m.hits) > 0 {
				m.cursor = (m.cursor - 1 + len(m.hits)) % len(m.hits)
				m.viewport.SetContent(m.renderCurrentHit())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) runSearch(query string) {
	hits, err := m.service.Search(query, m.topK, m.datasetID)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.hits = nil
		return
	}
	m.status = fmt.Sprintf("Results for %q", query)
	m.hits = hits
	m.cursor = 0
	m.lastQuery = query
}

// View renders the menu, current result, query box, and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Chess Game Search")
	var menu strings.Builder
	for i, q := range PredefinedQueries {
		fmt.Fprintf(&menu, "%d. %s\n", i+1, q)
	}
	menuView := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(strings.TrimRight(menu.String(), "\n"))
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + menuView + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentHit() string {
	if len(m.hits) == 0 {
		return "No results yet."
	}
	h := m.hits[m.cursor]
	title := fmt.Sprintf("Game %d/%d  distance=%.4f  source=%s", m.cursor+1, len(m.hits), h.Distance, h.Chunk.Source)
	return title + "\n\n" + highlightQueryTokens(h.Chunk.Text, m.lastQuery)
}

func presetNumber(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	n := int(s[0] - '1')
	if n >= len(PredefinedQueries) {
		return 0, false
	}
	return n, true
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// highlightQueryTokens marks words from the query inside the game text.
func highlightQueryTokens(text, query string) string {
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return text
	}
	words := strings.Fields(text)
	for i, w := range words {
		token := strings.ToLower(strings.Trim(w, ".,:;!?"))
		if _, ok := qTokens[token]; ok {
			words[i] = highlightStyle.Render(w)
		}
	}
	return strings.Join(words, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
