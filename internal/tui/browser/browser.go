// ABOUTME: Interactive browser for alternate geometry search results
// ABOUTME: Bubbletea table model; selecting a row yields that geometry

package browser

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hpcutil/pestr/internal/geometry"
	"github.com/hpcutil/pestr/internal/tui/styles"
)

const maxVisibleRows = 12

// Model browses a list of alternates in a scrollable table.
type Model struct {
	table      table.Model
	alternates []geometry.Alternate
	choice     *geometry.Alternate
	quitting   bool
}

// New builds a browser over the given alternates. The slice must be
// non-empty.
func New(alternates []geometry.Alternate) Model {
	columns := []table.Column{
		{Title: "PEs", Width: 8},
		{Title: "Threads", Width: 8},
		{Title: "Nodes", Width: 8},
		{Title: "CPU cores", Width: 10},
	}

	rows := make([]table.Row, len(alternates))
	for i, alt := range alternates {
		rows[i] = table.Row{
			strconv.Itoa(alt.Geometry.PEs),
			strconv.Itoa(alt.Geometry.ThreadsPerPE),
			strconv.Itoa(alt.Reservation.Nodes),
			strconv.Itoa(alt.Reservation.TotalCPUs),
		}
	}

	height := len(rows)
	if height > maxVisibleRows {
		height = maxVisibleRows
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).Foreground(styles.Primary)
	s.Selected = s.Selected.Foreground(styles.Text).Background(styles.Primary).Bold(true)
	t.SetStyles(s)

	return Model{table: t, alternates: alternates}
}

// Choice returns the alternate selected with enter, nil if the browser was
// dismissed without selecting.
func (m Model) Choice() *geometry.Alternate {
	return m.choice
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if i := m.table.Cursor(); i >= 0 && i < len(m.alternates) {
				m.choice = &m.alternates[i]
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting || m.choice != nil {
		return ""
	}

	title := styles.Title.Render("Alternate geometries")
	subtitle := styles.Subtitle.Render(fmt.Sprintf("%d candidates fill their reservation", len(m.alternates)))
	help := styles.Help.Render("enter: select • q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "", m.table.View(), "", help)
}
