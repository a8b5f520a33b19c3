package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type agentsModel struct {
	items  []AgentRow
	cursor int
}

func newAgents(agents []AgentRow) agentsModel {
	return agentsModel{items: agents}
}

func (a *agentsModel) update(agents []AgentRow) {
	a.items = agents
	if a.cursor >= len(a.items) {
		a.cursor = max(0, len(a.items)-1)
	}
}

func (a agentsModel) Update(msg tea.Msg) (agentsModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "j", "down":
			if a.cursor < len(a.items)-1 {
				a.cursor++
			}
		case "k", "up":
			if a.cursor > 0 {
				a.cursor--
			}
		case "G":
			a.cursor = max(0, len(a.items)-1)
		case "g":
			a.cursor = 0
		}
	}
	return a, nil
}

func (a agentsModel) View() string {
	if len(a.items) == 0 {
		return Dimmed.Render("  no agents")
	}

	headerStyle := lipgloss.NewStyle().Foreground(ColorSubtle).Bold(true)
	header := fmt.Sprintf("  %-12s %-18s %-10s %s",
		headerStyle.Render("ID"),
		headerStyle.Render("DEFINITION"),
		headerStyle.Render("STATUS"),
		headerStyle.Render("STREAM"),
	)

	rows := header + "\n"
	for i, row := range a.items {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == a.cursor {
			cursor = Selected.Render("> ")
			style = style.Bold(true)
		}

		id := row.ID
		if len(id) > 10 {
			id = id[:10]
		}
		stream := row.StreamID
		if len(stream) > 10 {
			stream = stream[:10]
		}

		line := fmt.Sprintf("%-12s %-18s %-10s %s",
			style.Render(id),
			style.Render(row.DefName),
			StatusStyle(row.Status).Render(row.Status),
			style.Render(stream),
		)
		rows += cursor + line + "\n"
	}
	return rows
}

func (a agentsModel) height() int {
	return min(len(a.items)+2, 12)
}
