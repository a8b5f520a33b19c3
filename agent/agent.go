package agent

import (
	"encoding/json"

	"github.com/amurg-ai/streamkit/internal/errs"
	"github.com/amurg-ai/streamkit/streamctx"
	"github.com/amurg-ai/streamkit/value"
)

// Status is an agent's lifecycle state.
type Status int

const (
	StatusInit Status = iota
	StatusStart
)

func (s Status) String() string {
	if s == StatusStart {
		return "start"
	}
	return "init"
}

// HubHandle is the capability surface a running agent needs from the
// router, kept minimal and defined here (rather than imported from the
// hub package) so that agent implementations never need to import the
// hub package that implements it; hub imports agent, not the reverse.
type HubHandle interface {
	// Emit delivers a value on pin from the agent identified by
	// sourceID, queueing it on the event loop, which fans it out
	// through the channel table to each target's AgentInput.
	Emit(sourceID string, ctx streamctx.Context, pin string, v value.Value) error

	// AgentInput is the mailbox enqueue primitive; it is also how an
	// agent reaches its own siblings (e.g. board agents read/write the
	// board layer via the hub handle).
	AgentInput(targetID string, ctx streamctx.Context, pin string, v value.Value) error

	// NotifyError reports a process/start/stop failure for id to the
	// observer bus as an AgentError event.
	NotifyError(id string, err error)

	// BoardWrite publishes a value to the named board, running it
	// through the same fan-out as a BoardOut emission.
	BoardWrite(name string, ctx streamctx.Context, v value.Value) error

	// BoardRead returns the last value published to the named board.
	BoardRead(name string) (value.Value, bool)

	// SubscribeBoard/UnsubscribeBoard register and remove an agent id
	// from a board's subscriber list.
	SubscribeBoard(name, agentID string)
	UnsubscribeBoard(name, agentID string)
}

// Agent is the contract every agent type implements. Implementations
// normally embed *AsAgent rather than satisfying this from scratch.
type Agent interface {
	ID() string
	DefName() string
	Status() Status
	Spec() AgentSpec
	StreamID() string

	Start() error
	Stop() error
	Process(ctx streamctx.Context, pin string, v value.Value) error
	SetConfig(key string, v value.Value) error
	SetConfigs(configs Configs) error
	UpdateSpec(patch map[string]any) error

	// As exposes the concrete implementation behind this Agent so test
	// probes and tool bridges can downcast without reflection.
	As() any
}

// Impl is what a concrete agent type supplies to *AsAgent; every method
// is optional, AsAgent substitutes a no-op when the field is nil.
type Impl struct {
	OnStart   func() error
	OnStop    func() error
	OnProcess func(ctx streamctx.Context, pin string, v value.Value) error
	// OnConfigsChanged is invoked after SetConfig/SetConfigs update Spec.Configs.
	OnConfigsChanged func()
}

// AsAgent provides the default lifecycle, config bookkeeping, and
// downcasting every agent needs, matching the teacher's adapter-wraps-
// implementation shape (runtime/internal/adapter.Adapter/AgentSession)
// generalized from a single capability interface to the full Agent
// contract described by the runtime spec.
type AsAgent struct {
	hub      HubHandle
	id       string
	defName  string
	streamID string
	status   Status
	spec     AgentSpec
	impl     Impl
	self     any
}

// NewAsAgent builds the adapter. self is the concrete agent value (used
// for As()); impl supplies the overridable lifecycle hooks.
func NewAsAgent(hub HubHandle, id, defName, streamID string, spec AgentSpec, self any, impl Impl) *AsAgent {
	return &AsAgent{hub: hub, id: id, defName: defName, streamID: streamID, spec: spec, self: self, impl: impl}
}

func (a *AsAgent) ID() string       { return a.id }
func (a *AsAgent) DefName() string  { return a.defName }
func (a *AsAgent) Status() Status   { return a.status }
func (a *AsAgent) Spec() AgentSpec  { return a.spec }
func (a *AsAgent) StreamID() string { return a.streamID }
func (a *AsAgent) As() any          { return a.self }

// SetStreamID assigns the stream this agent instance belongs to. Called
// by the hub once when an agent is added as part of a stream; agents
// created outside a stream keep the zero value.
func (a *AsAgent) SetStreamID(id string) { a.streamID = id }

// Hub returns the hub handle the agent was constructed with, for
// implementations that need to emit or touch boards directly.
func (a *AsAgent) Hub() HubHandle { return a.hub }

// Emit is a convenience forwarding to hub.Emit with this agent's id as
// source, the shape agent authors call from Process.
func (a *AsAgent) Emit(ctx streamctx.Context, pin string, v value.Value) error {
	return a.hub.Emit(a.id, ctx, pin, v)
}

// Start transitions Init -> Start, invoking the implementation's OnStart
// if provided. Status only advances on success.
func (a *AsAgent) Start() error {
	if a.impl.OnStart != nil {
		if err := a.impl.OnStart(); err != nil {
			return err
		}
	}
	a.status = StatusStart
	return nil
}

// Stop invokes OnStop and unconditionally normalizes status back to
// Init, even on error, per the contract's "status still normalized"
// requirement.
func (a *AsAgent) Stop() error {
	var err error
	if a.impl.OnStop != nil {
		err = a.impl.OnStop()
	}
	a.status = StatusInit
	return err
}

// Process delegates to OnProcess. Callers (the agent worker) are
// responsible for the err-pin + observer-event synthesis on failure, as
// described in the contract.
func (a *AsAgent) Process(ctx streamctx.Context, pin string, v value.Value) error {
	if a.impl.OnProcess == nil {
		return nil
	}
	return a.impl.OnProcess(ctx, pin, v)
}

// SetConfig updates one entry of the instance's configs and calls
// ConfigsChanged.
func (a *AsAgent) SetConfig(key string, v value.Value) error {
	if _, ok := a.spec.ConfigSpecs.Get(key); !ok {
		return errs.New(errs.NoConfig, "no such config %q on agent %s", key, a.id)
	}
	a.spec.Configs = a.spec.Configs.With(key, v)
	a.configsChanged()
	return nil
}

// SetConfigs replaces the instance's configs wholesale and calls
// ConfigsChanged.
func (a *AsAgent) SetConfigs(configs Configs) error {
	a.spec.Configs = configs
	a.configsChanged()
	return nil
}

// recognizedSpecFields merge into their typed AgentSpec counterparts;
// everything else is stored verbatim in Extensions.
var recognizedSpecFields = map[string]bool{
	"id": true, "def_name": true, "inputs": true, "outputs": true,
	"configs": true, "disabled": true,
}

// UpdateSpec merges patch into the agent's spec: id/def_name/inputs/
// outputs/configs/disabled update their typed fields, every other key
// is preserved verbatim in Extensions, the generic escape hatch for
// DSL-level metadata that isn't a typed field.
func (a *AsAgent) UpdateSpec(patch map[string]any) error {
	for k, v := range patch {
		if !recognizedSpecFields[k] {
			continue
		}
		switch k {
		case "id":
			if s, ok := v.(string); ok {
				a.id = s
				a.spec.ID = s
			}
		case "def_name":
			if s, ok := v.(string); ok {
				a.defName = s
				a.spec.DefName = s
			}
		case "inputs":
			a.spec.Inputs = toStringSlice(v)
		case "outputs":
			a.spec.Outputs = toStringSlice(v)
		case "disabled":
			if b, ok := v.(bool); ok {
				a.spec.Disabled = b
			}
		case "configs":
			if m, ok := v.(map[string]any); ok {
				for ck, cv := range m {
					raw, err := json.Marshal(cv)
					if err != nil {
						return errs.Wrap(errs.SerializationError, err, "update_spec: marshal config %q", ck)
					}
					val, err := value.FromJSONBytes(raw)
					if err != nil {
						return errs.Wrap(errs.SerializationError, err, "update_spec: decode config %q", ck)
					}
					a.spec.Configs = a.spec.Configs.With(ck, val)
				}
			}
		}
	}

	if a.spec.Extensions == nil {
		a.spec.Extensions = make(map[string]json.RawMessage)
	}
	for k, v := range patch {
		if recognizedSpecFields[k] {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return errs.Wrap(errs.SerializationError, err, "update_spec: marshal %q", k)
		}
		a.spec.Extensions[k] = raw
	}
	return nil
}

func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (a *AsAgent) configsChanged() {
	if a.impl.OnConfigsChanged != nil {
		a.impl.OnConfigsChanged()
	}
}
