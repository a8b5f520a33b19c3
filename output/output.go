// Package output is the thin, ergonomic surface agent authors use from
// inside a Process/Start/Stop callback: emit a value, report an error,
// or patch their own spec, without reaching into the hub handle
// directly. Grounded on the teacher's adapter.Output shape (a small,
// deliberately narrow struct agents hand back to the runtime) adapted
// to the emit-oriented contract this runtime uses instead.
package output

import (
	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/streamctx"
	"github.com/amurg-ai/streamkit/value"
)

// Emit sends v on pin from the given agent, through its hub handle.
func Emit(a *agent.AsAgent, ctx streamctx.Context, pin string, v value.Value) error {
	return a.Emit(ctx, pin, v)
}

// EmitError reports err to observers and, if any channel subscribes to
// the agent's "err" pin, delivers it there too. Agent implementations
// call this directly when they want to signal a non-fatal problem
// without returning it from Process (which would additionally log).
func EmitError(a *agent.AsAgent, ctx streamctx.Context, err error) error {
	a.Hub().NotifyError(a.ID(), err)
	return a.Emit(ctx, "err", value.String(err.Error()))
}

// UpdateSpec patches the agent's own spec, the same path update_agent_spec
// uses externally.
func UpdateSpec(a *agent.AsAgent, patch map[string]any) error {
	return a.UpdateSpec(patch)
}
