package hub

import (
	"testing"
	"time"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/boardagent"
	"github.com/amurg-ai/streamkit/probe"
	"github.com/amurg-ai/streamkit/streamctx"
	"github.com/amurg-ai/streamkit/value"
)

type counter struct {
	*agent.AsAgent
	count int64
}

var defCounter = agent.Definition{
	Name:    "counter",
	Inputs:  []string{"in", "reset"},
	Outputs: []string{"count"},
	New: func(hub agent.HubHandle, id string, spec agent.AgentSpec) (agent.Agent, error) {
		c := &counter{}
		c.AsAgent = agent.NewAsAgent(hub, id, "counter", "", spec, c, agent.Impl{
			OnProcess: func(ctx streamctx.Context, pin string, v value.Value) error {
				switch pin {
				case "in":
					c.count++
					return c.Emit(ctx, "count", value.Integer(c.count))
				case "reset":
					c.count = 0
				}
				return nil
			},
		})
		return c, nil
	},
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := New(nil)
	h.Init(defCounter, probe.Def, boardagent.DefBoardIn, boardagent.DefBoardOut, boardagent.DefVarIn, boardagent.DefVarOut)
	h.Ready()
	t.Cleanup(h.Quit)
	return h
}

func TestCounterAndProbe(t *testing.T) {
	h := newTestHub(t)

	if _, err := h.AddAgent("", agent.AgentSpec{ID: "c1", DefName: "counter"}); err != nil {
		t.Fatalf("add counter: %v", err)
	}
	pAgent, err := h.AddAgent("", agent.AgentSpec{ID: "p1", DefName: probe.Def.Name})
	if err != nil {
		t.Fatalf("add probe: %v", err)
	}
	if err := h.AddChannel("c1", "count", "p1", "in"); err != nil {
		t.Fatalf("add channel: %v", err)
	}
	if err := h.StartAgent("c1"); err != nil {
		t.Fatalf("start counter: %v", err)
	}
	if err := h.StartAgent("p1"); err != nil {
		t.Fatalf("start probe: %v", err)
	}

	ctx := streamctx.New()
	if err := h.AgentInput("c1", ctx, "in", value.Unit()); err != nil {
		t.Fatalf("agent input: %v", err)
	}
	if err := h.AgentInput("c1", ctx, "in", value.Unit()); err != nil {
		t.Fatalf("agent input: %v", err)
	}

	tp := pAgent.As().(*probe.Probe)
	received, ok := tp.Recv(2, 2*time.Second)
	if !ok {
		t.Fatalf("expected 2 values, got %d", len(received))
	}
	got0, _ := received[0].Value.AsInt64()
	got1, _ := received[1].Value.AsInt64()
	if got0 != 1 || got1 != 2 {
		t.Fatalf("expected [1,2], got [%d,%d]", got0, got1)
	}
}

func TestWildcardFanIn(t *testing.T) {
	h := newTestHub(t)

	if _, err := h.AddAgent("", agent.AgentSpec{ID: "c1", DefName: "counter"}); err != nil {
		t.Fatalf("add counter: %v", err)
	}
	pAgent, err := h.AddAgent("", agent.AgentSpec{ID: "p1", DefName: probe.Def.Name})
	if err != nil {
		t.Fatalf("add probe: %v", err)
	}
	if err := h.AddChannel("c1", agent.WildcardPin, "p1", agent.WildcardPin); err != nil {
		t.Fatalf("add channel: %v", err)
	}
	if err := h.StartAgent("c1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.StartAgent("p1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	ctx := streamctx.New()
	_ = h.AgentInput("c1", ctx, "in", value.Unit())

	tp := pAgent.As().(*probe.Probe)
	received, ok := tp.Recv(1, 2*time.Second)
	if !ok || received[0].Pin != "count" {
		t.Fatalf("expected pin name preserved, got %+v ok=%v", received, ok)
	}
}

func TestDisabledAgentDoesNotStart(t *testing.T) {
	h := newTestHub(t)

	stream, err := h.AddAgentStream("disabled-test", agent.AgentStreamSpec{
		Agents: []agent.AgentSpec{
			{ID: "a", DefName: "counter"},
			{ID: "b", DefName: "counter", Disabled: true},
		},
	})
	if err != nil {
		t.Fatalf("add stream: %v", err)
	}
	// AddAgentStream rewrites ids; recover the new ones in order.
	if len(stream.AgentIDs) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(stream.AgentIDs))
	}

	if err := h.StartAgentStream(stream.ID); err != nil {
		t.Fatalf("start stream: %v", err)
	}

	enabled, _ := h.Agent(stream.AgentIDs[0])
	disabled, _ := h.Agent(stream.AgentIDs[1])
	if enabled.Status() != agent.StatusStart {
		t.Fatalf("expected enabled agent to be started")
	}
	if disabled.Status() != agent.StatusInit {
		t.Fatalf("expected disabled agent to stay Init")
	}
}

func TestBoardRouting(t *testing.T) {
	h := newTestHub(t)

	if _, err := h.AddAgent("", agent.AgentSpec{
		ID: "bin", DefName: boardagent.DefBoardIn.Name,
		Configs: agent.NewConfigs().With("name", value.String("b")),
	}); err != nil {
		t.Fatalf("add board_in: %v", err)
	}
	if _, err := h.AddAgent("", agent.AgentSpec{
		ID: "bout", DefName: boardagent.DefBoardOut.Name,
		Configs: agent.NewConfigs().With("name", value.String("b")),
	}); err != nil {
		t.Fatalf("add board_out: %v", err)
	}
	probeAgent, err := h.AddAgent("", agent.AgentSpec{ID: "p1", DefName: probe.Def.Name})
	if err != nil {
		t.Fatalf("add probe: %v", err)
	}
	if err := h.AddChannel("bout", "value", "p1", "in"); err != nil {
		t.Fatalf("add channel: %v", err)
	}

	if err := h.StartAgent("bin"); err != nil {
		t.Fatalf("start board_in: %v", err)
	}
	if err := h.StartAgent("bout"); err != nil {
		t.Fatalf("start board_out: %v", err)
	}
	if err := h.StartAgent("p1"); err != nil {
		t.Fatalf("start probe: %v", err)
	}

	ctx := streamctx.New()
	if err := h.AgentInput("bin", ctx, "value", value.String("hello")); err != nil {
		t.Fatalf("agent input: %v", err)
	}

	tp := probeAgent.As().(*probe.Probe)
	received, ok := tp.Recv(1, 2*time.Second)
	if !ok {
		t.Fatalf("expected a value")
	}
	got, _ := received[0].Value.AsString()
	if got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
}

func TestConfigLiveUpdate(t *testing.T) {
	h := newTestHub(t)

	if _, err := h.AddAgent("", agent.AgentSpec{
		ID: "bin", DefName: boardagent.DefBoardIn.Name,
		Configs: agent.NewConfigs().With("name", value.String("")),
	}); err != nil {
		t.Fatalf("add board_in: %v", err)
	}
	if err := h.StartAgent("bin"); err != nil {
		t.Fatalf("start: %v", err)
	}

	ctx := streamctx.New()
	if err := h.AgentInput("bin", ctx, "config:name", value.String("b")); err != nil {
		t.Fatalf("set config: %v", err)
	}

	biAgent, _ := h.Agent("bin")
	got, ok := biAgent.Spec().Configs.Get("name")
	if !ok {
		t.Fatalf("expected name config set")
	}
	if s, _ := got.AsString(); s != "b" {
		t.Fatalf("expected name=b, got %q", s)
	}
}

func TestAddAgentMergesInstanceConfigSpecs(t *testing.T) {
	h := newTestHub(t)

	instanceSpecs := agent.NewConfigSpecs(agent.ConfigSpec{
		Name: "threshold", Kind: agent.ConfigInteger, Default: value.Integer(7),
	})
	inst, err := h.AddAgent("", agent.AgentSpec{
		ID: "c1", DefName: "counter", ConfigSpecs: instanceSpecs,
	})
	if err != nil {
		t.Fatalf("add counter: %v", err)
	}

	spec := inst.Spec()
	if _, ok := spec.ConfigSpecs.Get("threshold"); !ok {
		t.Fatalf("expected instance-declared config_specs entry %q to survive AddAgent, got %+v", "threshold", spec.ConfigSpecs.Order)
	}

	v, ok := spec.Configs.Get("threshold")
	if !ok {
		t.Fatalf("expected threshold default to be materialized into Configs")
	}
	if n, _ := v.AsInt64(); n != 7 {
		t.Fatalf("expected threshold default 7, got %d", n)
	}
}

func TestChannelDuplicateRejected(t *testing.T) {
	h := newTestHub(t)
	if _, err := h.AddAgent("", agent.AgentSpec{ID: "c1", DefName: "counter"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := h.AddAgent("", agent.AgentSpec{ID: "p1", DefName: probe.Def.Name}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := h.AddChannel("c1", "count", "p1", "in"); err != nil {
		t.Fatalf("add channel: %v", err)
	}
	if err := h.AddChannel("c1", "count", "p1", "in"); err == nil {
		t.Fatalf("expected duplicate channel rejected")
	}
}

func TestStreamNameValidationAndDedup(t *testing.T) {
	h := newTestHub(t)
	s1, err := h.NewAgentStream("main")
	if err != nil {
		t.Fatalf("new stream: %v", err)
	}
	s2, err := h.NewAgentStream("main")
	if err != nil {
		t.Fatalf("new stream: %v", err)
	}
	if s2.Name != "main2" {
		t.Fatalf("expected dedup to main2, got %q", s2.Name)
	}
	_ = s1

	if _, err := h.NewAgentStream("bad/name/"); err == nil {
		t.Fatalf("expected error for trailing slash")
	}
	if _, err := h.NewAgentStream("../escape"); err == nil {
		t.Fatalf("expected error for .. segment")
	}
	if _, err := h.NewAgentStream("has:colon"); err == nil {
		t.Fatalf("expected error for disallowed character")
	}
}

func TestStartStreamTwiceIsNoop(t *testing.T) {
	h := newTestHub(t)
	s, err := h.AddAgentStream("s", agent.AgentStreamSpec{
		Agents: []agent.AgentSpec{{ID: "a", DefName: "counter"}},
	})
	if err != nil {
		t.Fatalf("add stream: %v", err)
	}
	if err := h.StartAgentStream(s.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.StartAgentStream(s.ID); err != nil {
		t.Fatalf("start again: %v", err)
	}
}
