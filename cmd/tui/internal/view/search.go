package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/barkeep/internal/search"
)

type SearchModel struct {
	CommonModel
	live *search.Live
	done chan struct{}

	input   textinput.Model
	results search.Results
	cursor  int
	status  string
}

// NewSearchModel starts a live search session. Results arrive once typing
// has paused for debounce.
func NewSearchModel(searcher search.Searcher, debounce time.Duration) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "products, orders, users, expenses..."
	ti.Prompt = "Search: "
	ti.Width = 50
	ti.Focus()

	return SearchModel{
		live:  search.NewLive(context.Background(), searcher, debounce),
		done:  make(chan struct{}),
		input: ti,
	}
}

func (m SearchModel) Title() string { return "Search" }

func (m SearchModel) ShortHelp() string {
	return "Type to search | ↑/↓: move | Enter: open | Esc: back"
}

func (m SearchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForResults())
}

type searchResultsMsg search.Results

// waitForResults blocks until the live session publishes or the view closes.
func (m SearchModel) waitForResults() tea.Cmd {
	results, done := m.live.Results(), m.done

	return func() tea.Msg {
		select {
		case res := <-results:
			return searchResultsMsg(res)
		case <-done:
			return nil
		}
	}
}

func (m SearchModel) close() {
	m.live.Close()
	close(m.done)
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultsMsg:
		m.results = search.Results(msg)
		m.cursor = 0

		return m, m.waitForResults()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			m.close()
			return m, Back
		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}

			return m, nil
		case tea.KeyDown:
			if m.cursor < len(m.results.Items)-1 {
				m.cursor++
			}

			return m, nil
		case tea.KeyEnter:
			if m.cursor >= len(m.results.Items) {
				return m, nil
			}

			picked := m.results.Items[m.cursor]
			m.status = fmt.Sprintf("%s %q → %s", picked.Table, picked.Label, m.live.Select(picked))
			m.input.SetValue("")
			m.results = search.Results{}

			return m, nil
		}
	}

	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != before {
		m.live.Type(m.input.Value())
	}

	return m, cmd
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.results.Query == "":
	case len(m.results.Items) == 0:
		fmt.Fprintf(&b, "No matches for %q\n", m.results.Query)
	default:
		for i, r := range m.results.Items {
			cursor := "  "
			if i == m.cursor {
				cursor = "> "
			}

			table := lipgloss.NewStyle().Faint(true).Width(10).Render(r.Table)
			fmt.Fprintf(&b, "%s%s %s\n", cursor, table, r.Label)
		}
	}

	if len(m.results.Failed) > 0 {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Unavailable: " + strings.Join(m.results.Failed, ", ")))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(successStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}
