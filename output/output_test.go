package output

import (
	"errors"
	"testing"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/streamctx"
	"github.com/amurg-ai/streamkit/value"
)

type fakeHub struct {
	emitted    []value.Value
	notifiedID string
	notifiedErr error
}

func (f *fakeHub) Emit(sourceID string, ctx streamctx.Context, pin string, v value.Value) error {
	f.emitted = append(f.emitted, v)
	return nil
}
func (f *fakeHub) AgentInput(targetID string, ctx streamctx.Context, pin string, v value.Value) error {
	return nil
}
func (f *fakeHub) NotifyError(id string, err error) {
	f.notifiedID = id
	f.notifiedErr = err
}
func (f *fakeHub) BoardWrite(name string, ctx streamctx.Context, v value.Value) error {
	return nil
}
func (f *fakeHub) BoardRead(name string) (value.Value, bool) { return value.Value{}, false }
func (f *fakeHub) SubscribeBoard(name, agentID string)       {}
func (f *fakeHub) UnsubscribeBoard(name, agentID string)     {}

type dummy struct{ *agent.AsAgent }

func newDummy(hub agent.HubHandle) *dummy {
	d := &dummy{}
	d.AsAgent = agent.NewAsAgent(hub, "d1", "dummy", "", agent.AgentSpec{ID: "d1", DefName: "dummy"}, d, agent.Impl{})
	return d
}

func TestEmitForwardsToHub(t *testing.T) {
	hub := &fakeHub{}
	d := newDummy(hub)
	if err := Emit(d.AsAgent, streamctx.New(), "out", value.Integer(42)); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(hub.emitted) != 1 {
		t.Fatalf("expected one emit")
	}
	if i, _ := hub.emitted[0].AsInt64(); i != 42 {
		t.Fatalf("expected 42, got %d", i)
	}
}

func TestEmitErrorNotifiesAndEmitsOnErrPin(t *testing.T) {
	hub := &fakeHub{}
	d := newDummy(hub)
	boom := errors.New("boom")
	if err := EmitError(d.AsAgent, streamctx.New(), boom); err != nil {
		t.Fatalf("emit error: %v", err)
	}
	if hub.notifiedID != "d1" || hub.notifiedErr != boom {
		t.Fatalf("expected NotifyError called with d1/boom, got %q %v", hub.notifiedID, hub.notifiedErr)
	}
	if len(hub.emitted) != 1 {
		t.Fatalf("expected emit on err pin")
	}
	if s, _ := hub.emitted[0].AsString(); s != "boom" {
		t.Fatalf("expected boom, got %q", s)
	}
}

func TestUpdateSpecPatchesExtensions(t *testing.T) {
	hub := &fakeHub{}
	d := newDummy(hub)
	if err := UpdateSpec(d.AsAgent, map[string]any{"label": "x"}); err != nil {
		t.Fatalf("update spec: %v", err)
	}
	raw, ok := d.Spec().Extensions["label"]
	if !ok || string(raw) != `"x"` {
		t.Fatalf("expected label extension, got %q ok=%v", raw, ok)
	}
}
