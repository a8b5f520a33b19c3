package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const maxEventLines = 1000

type eventsModel struct {
	viewport   viewport.Model
	lines      []string
	autoScroll bool
}

func newEvents() eventsModel {
	return eventsModel{
		viewport:   viewport.New(80, 10),
		autoScroll: true,
	}
}

func (e *eventsModel) SetSize(width, height int) {
	e.viewport.Width = width
	e.viewport.Height = height
}

func (e *eventsModel) addLine(line string) {
	e.lines = append(e.lines, line)
	if len(e.lines) > maxEventLines {
		e.lines = e.lines[len(e.lines)-maxEventLines:]
	}
	e.viewport.SetContent(strings.Join(e.lines, "\n"))
	if e.autoScroll {
		e.viewport.GotoBottom()
	}
}

func (e eventsModel) Update(msg tea.Msg) (eventsModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "G":
			e.autoScroll = true
			e.viewport.GotoBottom()
			return e, nil
		case "g":
			e.autoScroll = false
			e.viewport.GotoTop()
			return e, nil
		case "j", "down", "k", "up":
			e.autoScroll = false
		}
	}
	var cmd tea.Cmd
	e.viewport, cmd = e.viewport.Update(msg)
	return e, cmd
}

func (e eventsModel) View() string {
	return e.viewport.View()
}
