package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Panel identifies which dashboard panel is focused.
type Panel int

const (
	PanelAgents Panel = iota
	PanelEvents
)

// Model is the root dashboard TUI model.
type Model struct {
	header header
	agents agentsModel
	events eventsModel
	help   helpModel

	activePanel Panel
	width       int
	height      int
	quitting    bool
}

// NewModel builds a dashboard model from an initial snapshot. Agent rows
// and hub counters are refreshed by sending AgentsMsg/StatusMsg; the
// event log is fed by forwarding observer.Event values as EventMsg.
func NewModel(status StatusMsg, agents []AgentRow) Model {
	return Model{
		header: newHeader(status),
		agents: newAgents(agents),
		events: newEvents(),
		help:   newHelp(),
	}
}

// StatusMsg carries a fresh hub summary (stream/agent counts, uptime).
type StatusMsg struct {
	StreamCount int
	AgentCount  int
	Uptime      string
}

// AgentRow is one row of the agent table.
type AgentRow struct {
	ID       string
	DefName  string
	Status   string
	StreamID string
}

// AgentsMsg carries a fresh agent table snapshot.
type AgentsMsg struct {
	Agents []AgentRow
}

// EventMsg wraps one observer.Event already rendered to a display line by
// the caller; Run renders each event with formatEvent.
type EventMsg struct {
	Line string
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.events.SetSize(msg.Width-4, m.eventsHeight())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c", "q"))):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, key.NewBinding(key.WithKeys("tab"))):
			if m.activePanel == PanelAgents {
				m.activePanel = PanelEvents
			} else {
				m.activePanel = PanelAgents
			}
			return m, nil
		case key.Matches(msg, key.NewBinding(key.WithKeys("?"))):
			m.help.toggle()
			return m, nil
		}

	case StatusMsg:
		m.header.update(msg)
		return m, nil

	case AgentsMsg:
		m.agents.update(msg.Agents)
		return m, nil

	case EventMsg:
		m.events.addLine(msg.Line)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.activePanel {
	case PanelAgents:
		m.agents, cmd = m.agents.Update(msg)
	case PanelEvents:
		m.events, cmd = m.events.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	if m.help.visible {
		return m.help.View()
	}

	headerView := m.header.View(m.width)

	agentsStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMuted).
		Width(m.width - 2)

	eventsStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMuted).
		Width(m.width - 2)

	if m.activePanel == PanelAgents {
		agentsStyle = agentsStyle.BorderForeground(ColorPrimary)
	} else {
		eventsStyle = eventsStyle.BorderForeground(ColorPrimary)
	}

	agentsView := agentsStyle.Render(Subtitle.Render(" Agents") + "\n" + m.agents.View())
	eventsView := eventsStyle.Render(Subtitle.Render(" Events") + "\n" + m.events.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		headerView,
		agentsView,
		eventsView,
		m.help.bar(),
	)
}

// Quitting reports whether the user quit the dashboard.
func (m Model) Quitting() bool { return m.quitting }

func (m Model) eventsHeight() int {
	used := 6 + m.agents.height() + 4
	h := m.height - used
	if h < 5 {
		h = 5
	}
	return h
}
