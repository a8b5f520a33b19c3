package boardagent

import (
	"sync"
	"testing"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/streamctx"
	"github.com/amurg-ai/streamkit/value"
)

// fakeHub is a minimal HubHandle recording board subscriptions and
// writes, enough to exercise board_in/board_out/var_in/var_out without
// a real hub event loop.
type fakeHub struct {
	mu    sync.Mutex
	subs  map[string][]string
	board map[string]value.Value
}

func newFakeHub() *fakeHub {
	return &fakeHub{subs: make(map[string][]string), board: make(map[string]value.Value)}
}

func (f *fakeHub) Emit(sourceID string, ctx streamctx.Context, pin string, v value.Value) error {
	return nil
}
func (f *fakeHub) AgentInput(targetID string, ctx streamctx.Context, pin string, v value.Value) error {
	return nil
}
func (f *fakeHub) NotifyError(id string, err error) {}
func (f *fakeHub) BoardWrite(name string, ctx streamctx.Context, v value.Value) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.board[name] = v
	return nil
}
func (f *fakeHub) BoardRead(name string) (value.Value, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.board[name]
	return v, ok
}
func (f *fakeHub) SubscribeBoard(name, agentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[name] = append(f.subs[name], agentID)
}
func (f *fakeHub) UnsubscribeBoard(name, agentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := f.subs[name]
	for i, id := range subs {
		if id == agentID {
			f.subs[name] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func newSpecWithName(id, name string) agent.AgentSpec {
	return agent.AgentSpec{
		ID:          id,
		DefName:     "whatever",
		ConfigSpecs: agent.NewConfigSpecs(agent.ConfigSpec{Name: configName, Kind: agent.ConfigString, Default: value.String("")}),
		Configs:     agent.NewConfigs().With(configName, value.String(name)),
	}
}

func TestBoardInWritesToBoard(t *testing.T) {
	hub := newFakeHub()
	inst, err := newBoardIn(hub, "bin", newSpecWithName("bin", "temp"))
	if err != nil {
		t.Fatalf("new board_in: %v", err)
	}
	ctx := streamctx.New()
	if err := inst.Process(ctx, pinValue, value.Number(21.5)); err != nil {
		t.Fatalf("process: %v", err)
	}
	got, ok := hub.BoardRead("temp")
	if !ok {
		t.Fatalf("expected board value written")
	}
	if f, _ := got.AsFloat64(); f != 21.5 {
		t.Fatalf("expected 21.5, got %v", f)
	}
}

func TestBoardInIgnoresEmptyName(t *testing.T) {
	hub := newFakeHub()
	inst, _ := newBoardIn(hub, "bin", newSpecWithName("bin", ""))
	if err := inst.Process(streamctx.New(), pinValue, value.Integer(1)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(hub.board) != 0 {
		t.Fatalf("expected no board write for empty name")
	}
}

func TestBoardOutSubscribesOnStartAndUnsubscribesOnStop(t *testing.T) {
	hub := newFakeHub()
	inst, err := newBoardOut(hub, "bout", newSpecWithName("bout", "temp"))
	if err != nil {
		t.Fatalf("new board_out: %v", err)
	}
	if err := inst.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if subs := hub.subs["temp"]; len(subs) != 1 || subs[0] != "bout" {
		t.Fatalf("expected bout subscribed to temp, got %v", subs)
	}
	if err := inst.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if subs := hub.subs["temp"]; len(subs) != 0 {
		t.Fatalf("expected unsubscribed after stop, got %v", subs)
	}
}

func TestBoardOutResubscribesOnConfigChange(t *testing.T) {
	hub := newFakeHub()
	inst, _ := newBoardOut(hub, "bout", newSpecWithName("bout", "temp"))
	if err := inst.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := inst.SetConfig(configName, value.String("humidity")); err != nil {
		t.Fatalf("set config: %v", err)
	}
	if subs := hub.subs["temp"]; len(subs) != 0 {
		t.Fatalf("expected unsubscribed from old board, got %v", subs)
	}
	if subs := hub.subs["humidity"]; len(subs) != 1 {
		t.Fatalf("expected subscribed to new board, got %v", subs)
	}
}

func TestVarInNamespacesUnderStream(t *testing.T) {
	hub := newFakeHub()
	spec := newSpecWithName("vin", "count")
	inst, err := newVarIn(hub, "vin", spec)
	if err != nil {
		t.Fatalf("new var_in: %v", err)
	}
	inst.(*varIn).SetStreamID("s1")
	if err := inst.Process(streamctx.New(), pinValue, value.Integer(3)); err != nil {
		t.Fatalf("process: %v", err)
	}
	got, ok := hub.BoardRead("%s1/count")
	if !ok {
		t.Fatalf("expected namespaced board write")
	}
	if i, _ := got.AsInt64(); i != 3 {
		t.Fatalf("expected 3, got %d", i)
	}
}

func TestVarOutSubscribesUnderNamespace(t *testing.T) {
	hub := newFakeHub()
	spec := newSpecWithName("vout", "count")
	instAgent, err := newVarOut(hub, "vout", spec)
	if err != nil {
		t.Fatalf("new var_out: %v", err)
	}
	as, ok := instAgent.As().(*varOut)
	if !ok {
		t.Fatalf("downcast failed")
	}
	as.SetStreamID("s1")
	if err := instAgent.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if subs := hub.subs["%s1/count"]; len(subs) != 1 {
		t.Fatalf("expected subscribed under namespaced board, got %v", subs)
	}
}

func TestWriteBoardAndVarValueHelpers(t *testing.T) {
	hub := newFakeHub()
	if err := WriteBoardValue(hub, "shared", value.String("hi")); err != nil {
		t.Fatalf("write board value: %v", err)
	}
	got, _ := hub.BoardRead("shared")
	if s, _ := got.AsString(); s != "hi" {
		t.Fatalf("expected hi, got %q", s)
	}

	if err := WriteVarValue(hub, "s1", "note", value.String("scoped")); err != nil {
		t.Fatalf("write var value: %v", err)
	}
	got, _ = hub.BoardRead("%s1/note")
	if s, _ := got.AsString(); s != "scoped" {
		t.Fatalf("expected scoped, got %q", s)
	}
}
