package tui

import (
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amurg-ai/streamkit/hub"
	"github.com/amurg-ai/streamkit/observer"
)

// Run drives the dashboard against a live Hub until the user quits. It
// subscribes directly to the Hub's observer bus (in-process, no IPC
// layer) and polls agent/stream counts on a short interval since the hub
// has no push notification for topology changes.
func Run(h *hub.Hub) error {
	status, agents := snapshot(h)
	m := NewModel(status, agents)

	p := tea.NewProgram(m, tea.WithAltScreen())
	startedAt := time.Now()

	ch := h.Observer().Subscribe()
	defer h.Observer().Unsubscribe(ch)
	go func() {
		for e := range ch {
			p.Send(EventMsg{Line: formatEvent(e)})
		}
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				status, agents := snapshot(h)
				status.Uptime = time.Since(startedAt).Truncate(time.Second).String()
				p.Send(status)
				p.Send(AgentsMsg{Agents: agents})
			}
		}
	}()

	_, err := p.Run()
	return err
}

func snapshot(h *hub.Hub) (StatusMsg, []AgentRow) {
	ids := h.AgentIDs()
	agents := make([]AgentRow, 0, len(ids))
	for _, id := range ids {
		inst, ok := h.Agent(id)
		if !ok {
			continue
		}
		agents = append(agents, AgentRow{
			ID:       inst.ID(),
			DefName:  inst.DefName(),
			Status:   inst.Status().String(),
			StreamID: inst.StreamID(),
		})
	}
	return StatusMsg{StreamCount: len(h.Streams()), AgentCount: len(ids)}, agents
}

func formatEvent(e observer.Event) string {
	ts := e.Timestamp.Format("15:04:05")
	style := EventKindStyle(string(e.Kind))
	kind := style.Render(fmt.Sprintf("%-22s", e.Kind))

	line := fmt.Sprintf("  %s %s agent=%s", ts, kind, e.AgentID)
	if e.Pin != "" {
		line += " pin=" + e.Pin
	}
	if e.Key != "" {
		line += " key=" + e.Key
	}
	if e.Message != "" {
		line += " " + e.Message
	}
	if raw, err := json.Marshal(e.Value); err == nil && string(raw) != "null" {
		line += " value=" + string(raw)
	}
	return line
}
