package hub

import "github.com/amurg-ai/streamkit/internal/errs"

// AddChannel inserts (targetID, sourcePin, targetPin) under sourceID.
// Rejects empty pins, an unknown source agent, and duplicate
// quadruples.
func (h *Hub) AddChannel(sourceID, sourcePin, targetID, targetPin string) error {
	if sourcePin == "" {
		return errs.New(errs.EmptySourceHandle, "channel source pin must be non-empty")
	}
	if targetPin == "" {
		return errs.New(errs.EmptyTargetHandle, "channel target pin must be non-empty")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.agents[sourceID]; !ok {
		return errs.New(errs.SourceAgentNotFound, "add_channel: unknown source agent %q", sourceID)
	}
	for _, e := range h.channels[sourceID] {
		if e.targetID == targetID && e.sourcePin == sourcePin && e.targetPin == targetPin {
			return errs.New(errs.ChannelAlreadyExists, "channel %s:%s -> %s:%s already exists", sourceID, sourcePin, targetID, targetPin)
		}
	}
	h.channels[sourceID] = append(h.channels[sourceID], channelEntry{targetID: targetID, sourcePin: sourcePin, targetPin: targetPin})
	return nil
}

// RemoveChannel prunes (targetID, sourcePin, targetPin) from sourceID's
// entry list, removing the key entirely once empty.
func (h *Hub) RemoveChannel(sourceID, sourcePin, targetID, targetPin string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries, ok := h.channels[sourceID]
	if !ok {
		return errs.New(errs.ChannelNotFound, "remove_channel: no channels for source %q", sourceID)
	}
	kept := entries[:0]
	found := false
	for _, e := range entries {
		if !found && e.targetID == targetID && e.sourcePin == sourcePin && e.targetPin == targetPin {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return errs.New(errs.ChannelNotFound, "channel %s:%s -> %s:%s not found", sourceID, sourcePin, targetID, targetPin)
	}
	if len(kept) == 0 {
		delete(h.channels, sourceID)
	} else {
		h.channels[sourceID] = kept
	}
	return nil
}

// ChannelSpecs returns a snapshot of sourceID's outgoing channels as
// (target, source_pin, target_pin) triples.
func (h *Hub) ChannelSpecs(sourceID string) []ChannelTriple {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entries := h.channels[sourceID]
	out := make([]ChannelTriple, len(entries))
	for i, e := range entries {
		out[i] = ChannelTriple{TargetID: e.targetID, SourcePin: e.sourcePin, TargetPin: e.targetPin}
	}
	return out
}

// ChannelTriple is the public view of one channel entry.
type ChannelTriple struct {
	TargetID  string
	SourcePin string
	TargetPin string
}
