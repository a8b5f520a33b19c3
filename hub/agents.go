package hub

import (
	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/internal/errs"
	"github.com/amurg-ai/streamkit/streamctx"
	"github.com/amurg-ai/streamkit/value"
)

// errPin is the synthetic output pin a failing agent's error is
// delivered on, for any channel that subscribes to it.
const errPin = "err"

// streamIDSetter is implemented by *agent.AsAgent; agent authors never
// need to know about it, the hub uses it to stamp an instance with the
// stream it was added as part of.
type streamIDSetter interface {
	SetStreamID(string)
}

// AddAgent constructs and registers a new agent instance from spec,
// using the factory on spec.DefName's definition. The instance starts
// in Init status; call StartAgent to run it. streamID is empty for
// agents added outside of a stream.
func (h *Hub) AddAgent(streamID string, spec agent.AgentSpec) (agent.Agent, error) {
	def, err := h.registry.Get(spec.DefName)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	if _, exists := h.agents[spec.ID]; exists {
		h.mu.Unlock()
		return nil, errs.New(errs.AgentAlreadyExists, "agent %q already exists", spec.ID)
	}
	h.mu.Unlock()

	// spec.ConfigSpecs may carry per-instance entries the caller declared
	// alongside the definition's own; merge rather than overwrite so
	// neither set is lost.
	spec.ConfigSpecs = def.ConfigSpecs.Merge(spec.ConfigSpecs)
	spec.Configs = spec.ConfigSpecs.Defaults().Merge(spec.Configs)

	instance, err := def.New(h, spec.ID, spec)
	if err != nil {
		return nil, err
	}
	if setter, ok := instance.(streamIDSetter); ok {
		setter.SetStreamID(streamID)
	}

	h.mu.Lock()
	if _, exists := h.agents[spec.ID]; exists {
		h.mu.Unlock()
		return nil, errs.New(errs.AgentAlreadyExists, "agent %q already exists", spec.ID)
	}
	h.agents[spec.ID] = &runningAgent{instance: instance}
	h.mu.Unlock()
	return instance, nil
}

// RemoveAgent destroys an agent instance, enforcing a prior stop.
func (h *Hub) RemoveAgent(id string) error {
	h.mu.RLock()
	ra, ok := h.agents[id]
	h.mu.RUnlock()
	if !ok {
		return errs.New(errs.AgentNotFound, "remove_agent: unknown agent %q", id)
	}
	if ra.mailbox != nil {
		if err := h.StopAgent(id); err != nil {
			return err
		}
	}

	h.mu.Lock()
	delete(h.agents, id)
	for src, entries := range h.channels {
		kept := entries[:0]
		for _, e := range entries {
			if e.targetID != id {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(h.channels, src)
		} else {
			h.channels[src] = kept
		}
	}
	delete(h.channels, id)
	h.mu.Unlock()
	return nil
}

// Agent returns the live agent instance for id.
func (h *Hub) Agent(id string) (agent.Agent, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ra, ok := h.agents[id]
	if !ok {
		return nil, false
	}
	return ra.instance, true
}

// StartAgent transitions an agent from Init to Start: it creates a
// bounded mailbox, registers its sender, and spawns a worker goroutine.
func (h *Hub) StartAgent(id string) error {
	h.mu.Lock()
	ra, ok := h.agents[id]
	if !ok {
		h.mu.Unlock()
		return errs.New(errs.AgentNotFound, "start_agent: unknown agent %q", id)
	}
	if ra.mailbox != nil {
		h.mu.Unlock()
		return nil // already running
	}
	mailbox := make(chan mailboxMessage, MessageLimit)
	ra.mailbox = mailbox
	instance := ra.instance
	h.mu.Unlock()

	if err := instance.Start(); err != nil {
		h.mu.Lock()
		ra.mailbox = nil
		h.mu.Unlock()
		h.NotifyError(id, err)
		return err
	}

	h.agentsWg.Add(1)
	go h.runAgentWorker(id, instance, mailbox)
	return nil
}

// StopAgent atomically removes the mailbox sender, best-effort sends a
// Stop message and closes the mailbox. The agent's Stop callback runs on
// its worker goroutine as the worker exits; StopAgent returns without
// waiting for it. Idempotent.
func (h *Hub) StopAgent(id string) error {
	h.mu.Lock()
	ra, ok := h.agents[id]
	if !ok {
		h.mu.Unlock()
		return nil
	}
	mailbox := ra.mailbox
	ra.mailbox = nil
	h.mu.Unlock()

	if mailbox == nil {
		return nil // not running
	}

	select {
	case mailbox <- mailboxMessage{kind: mailboxStop}:
	default:
		// best-effort: mailbox full, the worker will still observe closure below
	}
	close(mailbox)
	return nil
}

// runAgentWorker drains an agent's mailbox until Stop or channel
// closure, dispatching Input to Process and Config(s) to the setters.
// On exit it calls the agent's Stop callback.
func (h *Hub) runAgentWorker(id string, instance agent.Agent, mailbox chan mailboxMessage) {
	defer h.agentsWg.Done()
	defer func() {
		if err := instance.Stop(); err != nil {
			h.NotifyError(id, err)
		}
	}()

	for msg := range mailbox {
		switch msg.kind {
		case mailboxStop:
			return
		case mailboxInput:
			h.dispatchProcess(id, instance, msg.ctx, msg.pin, msg.val)
		case mailboxConfig:
			if err := instance.SetConfig(msg.configKey, msg.val); err != nil {
				h.NotifyError(id, err)
			} else {
				h.observer.AgentConfigUpdated(id, msg.configKey, msg.val)
			}
		case mailboxConfigs:
			if err := instance.SetConfigs(msg.configs); err != nil {
				h.NotifyError(id, err)
			}
		}
	}
}

// dispatchProcess invokes Process, and on failure synthesizes both an
// observer AgentError event and a delivery on the agent's "err" pin (if
// any channel subscribes to it).
func (h *Hub) dispatchProcess(id string, instance agent.Agent, ctx streamctx.Context, pin string, v value.Value) {
	if err := instance.Process(ctx, pin, v); err != nil {
		h.NotifyError(id, err)
		_ = h.Emit(id, ctx, errPin, value.String(err.Error()))
	}
}
