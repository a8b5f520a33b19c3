// Package boardagent implements the four built-in agent types that
// close the hub's board layer over itself: BoardIn/BoardOut publish
// and subscribe on user-visible board names; VarIn/VarOut do the same
// under a stream-private namespace. Grounded on the teacher's
// session.Session (config-driven behavior swapped live via SetConfig,
// logger.With-scoped identity) generalized to the board-agent contract.
package boardagent

import (
	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/streamctx"
	"github.com/amurg-ai/streamkit/value"
)

const (
	configName = "name"
	pinValue   = "value"
)

// varBoardName returns the namespaced board name stream variables use,
// so each stream gets a private scope over the shared board layer.
func varBoardName(streamID, name string) string {
	return "%" + streamID + "/" + name
}

// DefBoardIn is the AgentDefinition for BoardIn: consumes a value input
// and, when its "name" config is non-empty, republishes it to that
// board.
var DefBoardIn = agent.Definition{
	Name:   "board_in",
	Kind:   "board",
	Title:  "Board In",
	Inputs: []string{pinValue},
	ConfigSpecs: agent.NewConfigSpecs(agent.ConfigSpec{
		Name: configName, Kind: agent.ConfigString, Default: value.String(""),
	}),
	New: newBoardIn,
}

type boardIn struct {
	*agent.AsAgent
}

func newBoardIn(hub agent.HubHandle, id string, spec agent.AgentSpec) (agent.Agent, error) {
	b := &boardIn{}
	b.AsAgent = agent.NewAsAgent(hub, id, "board_in", "", spec, b, agent.Impl{
		OnProcess: func(ctx streamctx.Context, pin string, v value.Value) error {
			if pin != pinValue {
				return nil
			}
			name, _ := b.Spec().Configs.Get(configName)
			n, _ := name.AsString()
			if n == "" {
				return nil
			}
			return b.Hub().BoardWrite(n, ctx, v)
		},
	})
	return b, nil
}

// DefBoardOut is the AgentDefinition for BoardOut: registers as a
// board subscriber on start, re-registering whenever its "name" config
// changes, and emits every value written to that board.
var DefBoardOut = agent.Definition{
	Name:    "board_out",
	Kind:    "board",
	Title:   "Board Out",
	Outputs: []string{pinValue},
	ConfigSpecs: agent.NewConfigSpecs(agent.ConfigSpec{
		Name: configName, Kind: agent.ConfigString, Default: value.String(""),
	}),
	New: newBoardOut,
}

type boardOut struct {
	*agent.AsAgent
	currentName string
}

func newBoardOut(hub agent.HubHandle, id string, spec agent.AgentSpec) (agent.Agent, error) {
	b := &boardOut{}
	b.AsAgent = agent.NewAsAgent(hub, id, "board_out", "", spec, b, agent.Impl{
		OnStart: func() error {
			b.subscribe()
			return nil
		},
		OnStop: func() error {
			b.unsubscribe()
			return nil
		},
		OnConfigsChanged: func() {
			b.unsubscribe()
			b.subscribe()
		},
	})
	return b, nil
}

func (b *boardOut) boardName() string {
	v, _ := b.Spec().Configs.Get(configName)
	n, _ := v.AsString()
	return n
}

func (b *boardOut) subscribe() {
	b.currentName = b.boardName()
	if b.currentName != "" {
		b.Hub().SubscribeBoard(b.currentName, b.ID())
	}
}

func (b *boardOut) unsubscribe() {
	if b.currentName != "" {
		b.Hub().UnsubscribeBoard(b.currentName, b.ID())
	}
	b.currentName = ""
}

// DefVarIn is VarIn: like BoardIn but scoped to the owning stream's
// private variable namespace.
var DefVarIn = agent.Definition{
	Name:   "var_in",
	Kind:   "var",
	Title:  "Var In",
	Inputs: []string{pinValue},
	ConfigSpecs: agent.NewConfigSpecs(agent.ConfigSpec{
		Name: configName, Kind: agent.ConfigString, Default: value.String(""),
	}),
	New: newVarIn,
}

type varIn struct {
	*agent.AsAgent
}

func newVarIn(hub agent.HubHandle, id string, spec agent.AgentSpec) (agent.Agent, error) {
	v := &varIn{}
	v.AsAgent = agent.NewAsAgent(hub, id, "var_in", "", spec, v, agent.Impl{
		OnProcess: func(ctx streamctx.Context, pin string, val value.Value) error {
			if pin != pinValue {
				return nil
			}
			name, _ := v.Spec().Configs.Get(configName)
			n, _ := name.AsString()
			if n == "" {
				return nil
			}
			return v.Hub().BoardWrite(varBoardName(v.StreamID(), n), ctx, val)
		},
	})
	return v, nil
}

// DefVarOut is VarOut: like BoardOut but scoped to the owning stream's
// private variable namespace.
var DefVarOut = agent.Definition{
	Name:    "var_out",
	Kind:    "var",
	Title:   "Var Out",
	Outputs: []string{pinValue},
	ConfigSpecs: agent.NewConfigSpecs(agent.ConfigSpec{
		Name: configName, Kind: agent.ConfigString, Default: value.String(""),
	}),
	New: newVarOut,
}

type varOut struct {
	*agent.AsAgent
	currentName string
}

func newVarOut(hub agent.HubHandle, id string, spec agent.AgentSpec) (agent.Agent, error) {
	v := &varOut{}
	v.AsAgent = agent.NewAsAgent(hub, id, "var_out", "", spec, v, agent.Impl{
		OnStart: func() error {
			v.subscribe()
			return nil
		},
		OnStop: func() error {
			v.unsubscribe()
			return nil
		},
		OnConfigsChanged: func() {
			v.unsubscribe()
			v.subscribe()
		},
	})
	return v, nil
}

func (v *varOut) boardName() string {
	cfg, _ := v.Spec().Configs.Get(configName)
	n, _ := cfg.AsString()
	if n == "" {
		return ""
	}
	return varBoardName(v.StreamID(), n)
}

func (v *varOut) subscribe() {
	v.currentName = v.boardName()
	if v.currentName != "" {
		v.Hub().SubscribeBoard(v.currentName, v.ID())
	}
}

func (v *varOut) unsubscribe() {
	if v.currentName != "" {
		v.Hub().UnsubscribeBoard(v.currentName, v.ID())
	}
	v.currentName = ""
}

// WriteBoardValue synthesizes a BoardOut event on the named board with
// a fresh context, the convenience entry point for external callers.
func WriteBoardValue(hub agent.HubHandle, name string, v value.Value) error {
	return hub.BoardWrite(name, streamctx.New(), v)
}

// WriteVarValue synthesizes a BoardOut event on a stream's private
// variable namespace with a fresh context.
func WriteVarValue(hub agent.HubHandle, streamID, name string, v value.Value) error {
	return hub.BoardWrite(varBoardName(streamID, name), streamctx.New(), v)
}
