package probe

import (
	"sync"
	"testing"
	"time"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/streamctx"
	"github.com/amurg-ai/streamkit/value"
)

type fakeHub struct{ mu sync.Mutex }

func (f *fakeHub) Emit(sourceID string, ctx streamctx.Context, pin string, v value.Value) error {
	return nil
}
func (f *fakeHub) AgentInput(targetID string, ctx streamctx.Context, pin string, v value.Value) error {
	return nil
}
func (f *fakeHub) NotifyError(id string, err error) {}
func (f *fakeHub) BoardWrite(name string, ctx streamctx.Context, v value.Value) error {
	return nil
}
func (f *fakeHub) BoardRead(name string) (value.Value, bool)   { return value.Value{}, false }
func (f *fakeHub) SubscribeBoard(name, agentID string)         {}
func (f *fakeHub) UnsubscribeBoard(name, agentID string)       {}

func TestProbeBuffersEveryDelivery(t *testing.T) {
	inst, err := newProbe(&fakeHub{}, "p1", agent.AgentSpec{ID: "p1", DefName: Def.Name})
	if err != nil {
		t.Fatalf("new probe: %v", err)
	}
	p := inst.As().(*Probe)
	ctx := streamctx.New()
	if err := p.Process(ctx, "a", value.Integer(1)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Process(ctx, "b", value.Integer(2)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("expected len 2, got %d", p.Len())
	}
	all := p.All()
	if all[0].Pin != "a" || all[1].Pin != "b" {
		t.Fatalf("expected pins preserved in order, got %+v", all)
	}
}

func TestProbeRecvTimesOutWhenShortOfCount(t *testing.T) {
	inst, _ := newProbe(&fakeHub{}, "p1", agent.AgentSpec{ID: "p1", DefName: Def.Name})
	p := inst.As().(*Probe)
	_, ok := p.Recv(3, 30*time.Millisecond)
	if ok {
		t.Fatalf("expected Recv to time out with no values buffered")
	}
}

func TestProbeRecvUnblocksOnDelivery(t *testing.T) {
	inst, _ := newProbe(&fakeHub{}, "p1", agent.AgentSpec{ID: "p1", DefName: Def.Name})
	p := inst.As().(*Probe)
	ctx := streamctx.New()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = p.Process(ctx, "x", value.Boolean(true))
	}()

	received, ok := p.Recv(1, time.Second)
	if !ok {
		t.Fatalf("expected a delivery before timeout")
	}
	if b, _ := received[0].Value.AsBool(); !b {
		t.Fatalf("expected true")
	}
}

func TestProbeReset(t *testing.T) {
	inst, _ := newProbe(&fakeHub{}, "p1", agent.AgentSpec{ID: "p1", DefName: Def.Name})
	p := inst.As().(*Probe)
	_ = p.Process(streamctx.New(), "a", value.Integer(1))
	p.Reset()
	if p.Len() != 0 {
		t.Fatalf("expected buffer cleared, got len %d", p.Len())
	}
}
