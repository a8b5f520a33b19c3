package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type header struct {
	status StatusMsg
}

func newHeader(status StatusMsg) header {
	return header{status: status}
}

func (h *header) update(status StatusMsg) {
	h.status = status
}

func (h header) View(width int) string {
	left := Title.Render("streamkit")
	right := fmt.Sprintf("streams %d  agents %d  uptime %s",
		h.status.StreamCount, h.status.AgentCount, h.status.Uptime)

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Width(width - 2).
		Padding(0, 1)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 6
	if gap < 1 {
		gap = 1
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		left,
		lipgloss.NewStyle().Width(gap).Render(""),
		Description.Render(right),
	)
	return style.Render(row)
}
