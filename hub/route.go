package hub

import (
	"context"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/internal/errs"
	"github.com/amurg-ai/streamkit/streamctx"
	"github.com/amurg-ai/streamkit/value"
)

// Emit is the primitive an agent's Process callback uses to send a
// value from one of its own output pins. It queues an AgentOut event on
// the event loop, which resolves the channel table and calls AgentInput
// for each target.
func (h *Hub) Emit(sourceID string, ctx streamctx.Context, pin string, v value.Value) error {
	tx, err := h.txOrErr()
	if err != nil {
		return err
	}
	tx <- agentOutEvent(sourceID, ctx, pin, v)
	return nil
}

// BoardWrite synthesizes a BoardOut event with the given context,
// exactly as write_board_value/write_var_value do.
func (h *Hub) BoardWrite(name string, ctx streamctx.Context, v value.Value) error {
	tx, err := h.txOrErr()
	if err != nil {
		return err
	}
	tx <- boardOutEvent(name, ctx, v)
	return nil
}

// BoardRead returns the last value published to the named board.
func (h *Hub) BoardRead(name string) (value.Value, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.boards[name]
	return v, ok
}

// SubscribeBoard registers agentID as a subscriber of board name.
func (h *Hub) SubscribeBoard(name, agentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range h.boardSubs[name] {
		if id == agentID {
			return
		}
	}
	h.boardSubs[name] = append(h.boardSubs[name], agentID)
}

// UnsubscribeBoard removes agentID from board name's subscriber list.
func (h *Hub) UnsubscribeBoard(name, agentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.boardSubs[name]
	for i, id := range subs {
		if id == agentID {
			h.boardSubs[name] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(h.boardSubs[name]) == 0 {
		delete(h.boardSubs, name)
	}
}

// NotifyError publishes an AgentError observer event.
func (h *Hub) NotifyError(id string, err error) {
	h.observer.AgentError(id, err.Error())
}

// AgentInput is the mailbox enqueue primitive. If pin begins with
// "config:" the suffix is routed as a Config message instead of Input.
// Config messages take effect synchronously when the agent has no
// mailbox (not running); Input messages are dropped silently in that
// case.
func (h *Hub) AgentInput(id string, ctx streamctx.Context, pin string, v value.Value) error {
	if key, ok := stripConfigPrefix(pin); ok {
		return h.routeConfig(id, key, v)
	}

	h.mu.RLock()
	ra, ok := h.agents[id]
	h.mu.RUnlock()
	if !ok || ra.mailbox == nil {
		return nil // not running: Input is dropped silently
	}

	h.observer.AgentIn(id, pin)
	ra.mailbox <- mailboxMessage{kind: mailboxInput, ctx: ctx, pin: pin, val: v}
	return nil
}

const configPinPrefix = "config:"

func stripConfigPrefix(pin string) (string, bool) {
	if len(pin) <= len(configPinPrefix) || pin[:len(configPinPrefix)] != configPinPrefix {
		return "", false
	}
	return pin[len(configPinPrefix):], true
}

func (h *Hub) routeConfig(id, key string, v value.Value) error {
	h.mu.RLock()
	ra, ok := h.agents[id]
	h.mu.RUnlock()
	if !ok {
		return errs.New(errs.AgentNotFound, "agent_input: unknown agent %q", id)
	}
	if ra.mailbox == nil {
		err := ra.instance.SetConfig(key, v)
		if err == nil {
			h.observer.AgentConfigUpdated(id, key, v)
		}
		return err
	}
	ra.mailbox <- mailboxMessage{kind: mailboxConfig, configKey: key, val: v}
	return nil
}

// runEventLoop is the hub's single event-loop task: it consumes
// AgentOut/BoardOut events and fans them out through the channel table
// and board subscriber list.
func (h *Hub) runEventLoop(ctx context.Context, rx <-chan agentEvent) {
	defer h.loopWg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-rx:
			if e.isBoardOut {
				h.dispatchBoardOut(e)
			} else {
				h.dispatchAgentOut(e)
			}
		}
	}
}

func (h *Hub) dispatchAgentOut(e agentEvent) {
	h.mu.RLock()
	entries := append([]channelEntry(nil), h.channels[e.sourceID]...)
	h.mu.RUnlock()

	for _, entry := range entries {
		if entry.sourcePin != e.pin && entry.sourcePin != agent.WildcardPin {
			continue
		}
		h.mu.RLock()
		_, present := h.agents[entry.targetID]
		h.mu.RUnlock()
		if !present {
			continue
		}
		effectivePin := entry.targetPin
		if effectivePin == agent.WildcardPin {
			effectivePin = e.pin
		}
		_ = h.AgentInput(entry.targetID, e.ctx, effectivePin, e.val)
	}
}

func (h *Hub) dispatchBoardOut(e agentEvent) {
	h.mu.Lock()
	h.boards[e.boardName] = e.val
	subs := append([]string(nil), h.boardSubs[e.boardName]...)
	h.mu.Unlock()

	for _, sourceID := range subs {
		h.mu.RLock()
		entries := append([]channelEntry(nil), h.channels[sourceID]...)
		h.mu.RUnlock()
		for _, entry := range entries {
			h.mu.RLock()
			_, present := h.agents[entry.targetID]
			h.mu.RUnlock()
			if !present {
				continue
			}
			effectivePin := entry.targetPin
			if effectivePin == agent.WildcardPin {
				effectivePin = e.boardName
			}
			_ = h.AgentInput(entry.targetID, e.ctx, effectivePin, e.val)
		}
	}

	h.observer.Board(e.boardName, e.val)
}

var _ agent.HubHandle = (*Hub)(nil)
