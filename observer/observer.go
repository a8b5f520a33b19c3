// Package observer implements the hub's broadcast bus: a fan-out
// publisher of runtime lifecycle/data events for UI or logging
// subscribers. It is grounded directly on the teacher's eventbus.Bus
// (buffered per-subscriber channel, non-blocking publish, drop-on-full),
// generalized from string event types to the closed Event kinds the
// runtime spec defines.
package observer

import (
	"sync"
	"time"

	"github.com/amurg-ai/streamkit/value"
)

// Kind is the closed set of observer event kinds.
type Kind string

const (
	KindAgentConfigUpdated Kind = "agent_config_updated"
	KindAgentError         Kind = "agent_error"
	KindAgentIn            Kind = "agent_in"
	KindAgentSpecUpdated   Kind = "agent_spec_updated"
	KindBoard              Kind = "board"
)

// Event is a single message on the observer bus.
type Event struct {
	Kind      Kind
	Timestamp time.Time
	AgentID   string
	Pin       string
	Key       string
	Message   string
	Value     value.Value
}

// subscriberCapacity is the per-subscriber buffered channel size; a slow
// subscriber drops events rather than blocking the event loop.
const subscriberCapacity = 256

// Bus is a fan-out pub/sub broadcaster of observer Events.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Subscribe returns a new buffered channel receiving every published
// Event until Unsubscribe or Close.
func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, subscriberCapacity)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a subscriber channel. Safe to call more
// than once.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish broadcasts e to every subscriber, stamping Timestamp if unset.
// Non-blocking: subscribers whose buffer is full drop the event.
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close unsubscribes and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}

// AgentError publishes a KindAgentError event.
func (b *Bus) AgentError(agentID, message string) {
	b.Publish(Event{Kind: KindAgentError, AgentID: agentID, Message: message})
}

// AgentIn publishes a KindAgentIn event.
func (b *Bus) AgentIn(agentID, pin string) {
	b.Publish(Event{Kind: KindAgentIn, AgentID: agentID, Pin: pin})
}

// AgentConfigUpdated publishes a KindAgentConfigUpdated event.
func (b *Bus) AgentConfigUpdated(agentID, key string, v value.Value) {
	b.Publish(Event{Kind: KindAgentConfigUpdated, AgentID: agentID, Key: key, Value: v})
}

// AgentSpecUpdated publishes a KindAgentSpecUpdated event.
func (b *Bus) AgentSpecUpdated(agentID string) {
	b.Publish(Event{Kind: KindAgentSpecUpdated, AgentID: agentID})
}

// Board publishes a KindBoard event.
func (b *Bus) Board(name string, v value.Value) {
	b.Publish(Event{Kind: KindBoard, Key: name, Value: v})
}
