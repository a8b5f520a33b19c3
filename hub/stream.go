package hub

import (
	"strconv"
	"strings"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/internal/errs"
	"github.com/amurg-ai/streamkit/internal/idgen"
)

// Stream is a named subgraph: a stream spec plus the runtime state
// needed to start/stop it as a unit. Carrying both id and name allows
// renaming without breaking references held elsewhere.
type Stream struct {
	ID      string
	Name    string
	Running bool
	AgentIDs   []string
	Channels   []agent.ChannelSpec
}

// invalidStreamNameChars are individually disallowed anywhere in a
// stream name.
const invalidStreamNameChars = `\:*?"<>|`

// validateStreamName checks the rules from the spec: non-empty after
// trim; if it contains '/', no leading/trailing/consecutive '/', no
// '.'/'..' segments; no character from invalidStreamNameChars.
func validateStreamName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errs.New(errs.InvalidStreamName, "stream name must be non-empty")
	}
	for _, c := range invalidStreamNameChars {
		if strings.ContainsRune(trimmed, c) {
			return errs.New(errs.InvalidStreamName, "stream name %q contains disallowed character %q", trimmed, c)
		}
	}
	if strings.Contains(trimmed, "/") {
		if strings.HasPrefix(trimmed, "/") || strings.HasSuffix(trimmed, "/") || strings.Contains(trimmed, "//") {
			return errs.New(errs.InvalidStreamName, "stream name %q has leading, trailing, or consecutive slashes", trimmed)
		}
		for _, seg := range strings.Split(trimmed, "/") {
			if seg == "." || seg == ".." {
				return errs.New(errs.InvalidStreamName, "stream name %q contains a %q segment", trimmed, seg)
			}
		}
	}
	return nil
}

// dedupeStreamName appends 2, 3, … until name doesn't collide with an
// existing stream name.
func (h *Hub) dedupeStreamName(name string) string {
	candidate := name
	for n := 2; ; n++ {
		collides := false
		for _, s := range h.streams {
			if s.Name == candidate {
				collides = true
				break
			}
		}
		if !collides {
			return candidate
		}
		candidate = name + strconv.Itoa(n)
	}
}

// NewAgentStream validates name, de-duplicates it against existing
// stream names, and installs a new empty stream.
func (h *Hub) NewAgentStream(name string) (*Stream, error) {
	if err := validateStreamName(name); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(name)

	h.mu.Lock()
	defer h.mu.Unlock()
	final := h.dedupeStreamName(trimmed)
	s := &Stream{ID: idgen.New(), Name: final}
	h.streams[s.ID] = s
	return s, nil
}

// AddAgentStream installs spec as a new stream, rewriting every agent
// id and channel endpoint inside it to freshly minted ids so the spec
// stays reusable.
func (h *Hub) AddAgentStream(name string, spec agent.AgentStreamSpec) (*Stream, error) {
	s, err := h.NewAgentStream(name)
	if err != nil {
		return nil, err
	}

	idMap := make(map[string]string, len(spec.Agents))
	for _, a := range spec.Agents {
		idMap[a.ID] = idgen.New()
	}
	agents, channels := cloneSubgraph(spec.Agents, spec.Channels, idMap)

	for i := range agents {
		as := agents[i]
		if _, err := h.AddAgent(s.ID, as); err != nil {
			return nil, err
		}
		s.AgentIDs = append(s.AgentIDs, as.ID)
	}
	for _, c := range channels {
		if err := h.AddChannel(c.SourceAgentID, c.SourcePin, c.TargetAgentID, c.TargetPin); err != nil {
			return nil, err
		}
	}
	h.mu.Lock()
	s.Channels = channels
	h.mu.Unlock()
	return s, nil
}

// cloneSubgraph produces a fresh-id copy of agents/channels using
// idMap; channels whose endpoints are not in idMap (external agents)
// are dropped.
func cloneSubgraph(agents []agent.AgentSpec, channels []agent.ChannelSpec, idMap map[string]string) ([]agent.AgentSpec, []agent.ChannelSpec) {
	outAgents := make([]agent.AgentSpec, len(agents))
	for i, a := range agents {
		cp := a
		cp.ID = idMap[a.ID]
		outAgents[i] = cp
	}
	var outChannels []agent.ChannelSpec
	for _, c := range channels {
		src, srcOK := idMap[c.SourceAgentID]
		tgt, tgtOK := idMap[c.TargetAgentID]
		if !srcOK || !tgtOK {
			continue
		}
		outChannels = append(outChannels, agent.ChannelSpec{
			SourceAgentID: src, SourcePin: c.SourcePin,
			TargetAgentID: tgt, TargetPin: c.TargetPin,
		})
	}
	return outAgents, outChannels
}

// RemoveAgentStream stops the stream, then removes all of its agents
// and channels.
func (h *Hub) RemoveAgentStream(id string) error {
	if err := h.StopAgentStream(id); err != nil {
		return err
	}
	h.mu.Lock()
	s, ok := h.streams[id]
	if ok {
		delete(h.streams, id)
	}
	h.mu.Unlock()
	if !ok {
		return errs.New(errs.StreamNotFound, "remove_agent_stream: unknown stream %q", id)
	}
	for _, aid := range s.AgentIDs {
		_ = h.RemoveAgent(aid)
	}
	return nil
}

// StartAgentStream starts each non-disabled agent, in order. Starting a
// stream twice is a no-op.
func (h *Hub) StartAgentStream(id string) error {
	h.mu.Lock()
	s, ok := h.streams[id]
	if !ok {
		h.mu.Unlock()
		return errs.New(errs.StreamNotFound, "start_agent_stream: unknown stream %q", id)
	}
	if s.Running {
		h.mu.Unlock()
		return nil
	}
	s.Running = true
	agentIDs := append([]string(nil), s.AgentIDs...)
	h.mu.Unlock()

	for _, aid := range agentIDs {
		h.mu.RLock()
		ra, present := h.agents[aid]
		h.mu.RUnlock()
		if !present || ra.instance.Spec().Disabled {
			continue
		}
		if err := h.StartAgent(aid); err != nil {
			return err
		}
	}
	return nil
}

// StopAgentStream stops every agent in the stream.
func (h *Hub) StopAgentStream(id string) error {
	h.mu.Lock()
	s, ok := h.streams[id]
	if !ok {
		h.mu.Unlock()
		return errs.New(errs.StreamNotFound, "stop_agent_stream: unknown stream %q", id)
	}
	s.Running = false
	agentIDs := append([]string(nil), s.AgentIDs...)
	h.mu.Unlock()

	for _, aid := range agentIDs {
		if err := h.StopAgent(aid); err != nil {
			return err
		}
	}
	return nil
}

// RenameAgentStream replaces the stream's display name.
func (h *Hub) RenameAgentStream(id, newName string) error {
	if err := validateStreamName(newName); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.streams[id]
	if !ok {
		return errs.New(errs.StreamNotFound, "rename_agent_stream: unknown stream %q", id)
	}
	s.Name = strings.TrimSpace(newName)
	return nil
}

// Stream returns the stream by id.
func (h *Hub) Stream(id string) (*Stream, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.streams[id]
	return s, ok
}
