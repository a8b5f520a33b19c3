package hub

import (
	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/internal/errs"
)

// UpdateAgentSpec merges jsonPatch into an agent's spec and notifies
// observers with AgentSpecUpdated.
func (h *Hub) UpdateAgentSpec(id string, patch map[string]any) error {
	h.mu.RLock()
	ra, ok := h.agents[id]
	h.mu.RUnlock()
	if !ok {
		return errs.New(errs.AgentNotFound, "update_agent_spec: unknown agent %q", id)
	}
	if err := ra.instance.UpdateSpec(patch); err != nil {
		return err
	}
	h.observer.AgentSpecUpdated(id)
	return nil
}

// AgentConfigSpecs returns the declared config specs for a registered
// definition, the read accessor behind the inspector's
// /api/definitions/{name}/config-specs endpoint.
func (h *Hub) AgentConfigSpecs(defName string) (agent.ConfigSpecs, error) {
	def, err := h.registry.Get(defName)
	if err != nil {
		return agent.ConfigSpecs{}, err
	}
	return def.ConfigSpecs, nil
}

// StreamInfo reconstructs id's current AgentStreamSpec from live agent
// and channel state, the read half of update_agent_stream_spec /
// get_agent_stream_info(s).
func (h *Hub) StreamInfo(id string) (agent.AgentStreamSpec, error) {
	s, ok := h.Stream(id)
	if !ok {
		return agent.AgentStreamSpec{}, errs.New(errs.StreamNotFound, "get_agent_stream_info: unknown stream %q", id)
	}

	spec := agent.AgentStreamSpec{RunOnStart: s.Running}
	for _, aid := range s.AgentIDs {
		inst, ok := h.Agent(aid)
		if !ok {
			continue
		}
		spec.Agents = append(spec.Agents, inst.Spec())
	}
	spec.Channels = append(spec.Channels, s.Channels...)
	return spec, nil
}

// UpdateStreamSpec patches a running stream's metadata: "name" renames it,
// "running" starts or stops it. Unlike UpdateAgentSpec this does not
// reshape the agent/channel graph in place — structural changes go
// through AddAgent/AddChannel/RemoveAgent/RemoveChannel, the same as a
// freshly loaded stream would use.
func (h *Hub) UpdateStreamSpec(id string, patch map[string]any) error {
	if name, ok := patch["name"].(string); ok {
		if err := h.RenameAgentStream(id, name); err != nil {
			return err
		}
	}
	if running, ok := patch["running"].(bool); ok {
		if running {
			if err := h.StartAgentStream(id); err != nil {
				return err
			}
		} else {
			if err := h.StopAgentStream(id); err != nil {
				return err
			}
		}
	}
	return nil
}
