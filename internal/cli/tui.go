package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/sotflame/pkg/trace"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// EventListModel - Interactive event browser
// =============================================================================

// EventListModel is the bubbletea model for browsing the events of a trace.
// Events are listed in pre-order (the order of the rendered frames) or, after
// pressing "s", by self time.
type EventListModel struct {
	Events   []*trace.Event
	Span     float64
	Cursor   int
	Height   int
	Offset   int
	BySelf   bool
	Expanded bool

	tree *trace.Tree
}

// NewEventListModel creates a new event list model.
func NewEventListModel(t *trace.Tree) EventListModel {
	m := EventListModel{
		Span:   t.Root.Lasted,
		Height: 15,
		tree:   t,
	}
	m.Events = m.ordered()
	return m
}

func (m EventListModel) ordered() []*trace.Event {
	if m.BySelf {
		return trace.Hottest(m.tree, 0)
	}
	events := make([]*trace.Event, 0, m.tree.Count)
	m.tree.Walk(func(e *trace.Event) bool {
		events = append(events, e)
		return true
	})
	return events
}

// Current returns the event under the cursor.
func (m EventListModel) Current() *trace.Event {
	if len(m.Events) == 0 {
		return nil
	}
	return m.Events[m.Cursor]
}

func (m EventListModel) Init() tea.Cmd {
	return nil
}

func (m EventListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Events)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Expanded = !m.Expanded
		case "s":
			m.BySelf = !m.BySelf
			m.Events = m.ordered()
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m EventListModel) View() string {
	var b strings.Builder

	order := "tree order"
	if m.BySelf {
		order = "by self time"
	}
	b.WriteString(StyleTitle.Render("Events"))
	b.WriteString(listDimStyle.Render("  " + order))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  s sort  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Events) {
		end = len(m.Events)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Events[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := e.Name
		if !m.BySelf {
			name = strings.Repeat("  ", e.Level) + name
		}
		self := trace.SelfTime(e)
		rows = append(rows, []string{cursor, name, formatTime(e.Lasted), formatTime(self), formatShare(self, m.Span)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Event", "Total", "Self", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			isCurrent := m.Offset+row == m.Cursor
			switch {
			case isCurrent && col <= 1:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case isCurrent:
				return lipgloss.NewStyle().Bold(true)
			case col <= 1:
				return StyleValue
			}
			return StyleDim
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Events))))

	if e := m.Current(); m.Expanded && e != nil {
		b.WriteString("\n\n")
		b.WriteString(eventDetails(e))
	}

	return b.String()
}

func eventDetails(e *trace.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n", StyleTitle.Render(e.Name))
	fmt.Fprintf(&b, "  %-10s %s\n", "Start", StyleValue.Render(formatTime(e.StartTime)))
	fmt.Fprintf(&b, "  %-10s %s\n", "End", StyleValue.Render(formatTime(e.EndTime)))
	fmt.Fprintf(&b, "  %-10s %s\n", "Level", StyleValue.Render(fmt.Sprint(e.Level)))
	fmt.Fprintf(&b, "  %-10s %s", "Sub-events", StyleValue.Render(fmt.Sprint(len(e.Children))))
	return b.String()
}
