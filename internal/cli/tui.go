package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// nodeRow is one surface node shown in the watch view.
type nodeRow struct {
	ID     string
	Title  string
	X, Y   float64
	Placed bool
}

// watchUpdateMsg carries a fresh surface snapshot into the model.
type watchUpdateMsg struct {
	rows  []nodeRow
	event string
}

// watchErrMsg aborts the view with an error.
type watchErrMsg struct {
	err error
}

// =============================================================================
// watchModel - Live surface view
// =============================================================================

// watchModel is the bubbletea model behind `canopy watch --tui`.
type watchModel struct {
	Workspace string
	Rows      []nodeRow
	LastEvent string
	Err       error
	Cursor    int
	Height    int
	Offset    int
}

// newWatchModel creates the initial watch view for a workspace.
func newWatchModel(workspace string) watchModel {
	return watchModel{
		Workspace: workspace,
		LastEvent: "waiting for first snapshot",
		Height:    15,
	}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	case watchUpdateMsg:
		m.Rows = msg.rows
		m.LastEvent = msg.event
		if m.Cursor >= len(m.Rows) {
			m.Cursor = max(0, len(m.Rows)-1)
		}
	case watchErrMsg:
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Canopy · " + m.Workspace))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(StyleWarning.Render("error: " + m.Err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		pos := "—"
		if r.Placed {
			pos = fmt.Sprintf("%.0f, %.0f", r.X, r.Y)
		}

		rows = append(rows, []string{cursor, r.ID, r.Title, pos})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Title", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.Offset + row
			if actualIdx == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col == 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d nodes · %s", len(m.Rows), m.LastEvent)))

	return b.String()
}
