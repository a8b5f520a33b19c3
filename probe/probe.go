// Package probe implements TestProbe: a built-in agent that buffers
// every value it receives, for integration tests to assert against.
// Grounded on the teacher's eventbus subscriber pattern (a buffered
// channel plus a blocking-with-timeout receive helper).
package probe

import (
	"sync"
	"time"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/streamctx"
	"github.com/amurg-ai/streamkit/value"
)

// DefaultTimeout is how long Recv waits for a value before failing,
// absent an explicit override.
const DefaultTimeout = time.Second

// Def is the AgentDefinition for the test probe. It accepts any pin;
// every (pin, value) it is handed is appended to its buffer.
var Def = agent.Definition{
	Name:   "test_probe",
	Kind:   "test",
	Title:  "Test Probe",
	Inputs: []string{agent.WildcardPin},
	New:    newProbe,
}

// Received is one buffered (pin, value) delivery.
type Received struct {
	Pin   string
	Value value.Value
}

// Probe is the concrete TestProbe implementation, recoverable from an
// agent.Agent via As().
type Probe struct {
	*agent.AsAgent

	mu   sync.Mutex
	buf  []Received
	wake chan struct{}
}

func newProbe(hub agent.HubHandle, id string, spec agent.AgentSpec) (agent.Agent, error) {
	p := &Probe{wake: make(chan struct{}, 1)}
	p.AsAgent = agent.NewAsAgent(hub, id, "test_probe", "", spec, p, agent.Impl{
		OnProcess: func(ctx streamctx.Context, pin string, v value.Value) error {
			p.push(Received{Pin: pin, Value: v})
			return nil
		},
	})
	return p, nil
}

func (p *Probe) push(r Received) {
	p.mu.Lock()
	p.buf = append(p.buf, r)
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of values currently buffered.
func (p *Probe) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

// All returns a copy of every value received so far.
func (p *Probe) All() []Received {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Received(nil), p.buf...)
}

// Recv blocks until at least n values have been received or timeout
// elapses, then returns a copy of the buffer. A zero timeout uses
// DefaultTimeout.
func (p *Probe) Recv(n int, timeout time.Duration) ([]Received, bool) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	deadline := time.After(timeout)
	for {
		if p.Len() >= n {
			return p.All(), true
		}
		select {
		case <-p.wake:
		case <-deadline:
			return p.All(), p.Len() >= n
		}
	}
}

// Reset clears the buffer.
func (p *Probe) Reset() {
	p.mu.Lock()
	p.buf = nil
	p.mu.Unlock()
}
