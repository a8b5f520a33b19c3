package hub

import (
	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/streamctx"
	"github.com/amurg-ai/streamkit/value"
)

// agentEvent is the sum type flowing through the hub's central event
// queue. Exactly one of the two kinds below is populated; isBoardOut
// distinguishes them.
type agentEvent struct {
	isBoardOut bool

	// AgentOut fields.
	sourceID string
	pin      string

	// BoardOut fields.
	boardName string

	ctx streamctx.Context
	val value.Value
}

func agentOutEvent(sourceID string, ctx streamctx.Context, pin string, v value.Value) agentEvent {
	return agentEvent{sourceID: sourceID, ctx: ctx, pin: pin, val: v}
}

func boardOutEvent(name string, ctx streamctx.Context, v value.Value) agentEvent {
	return agentEvent{isBoardOut: true, boardName: name, ctx: ctx, val: v}
}

// mailboxKind tags a mailboxMessage's variant.
type mailboxKind int

const (
	mailboxInput mailboxKind = iota
	mailboxConfig
	mailboxConfigs
	mailboxStop
)

// mailboxMessage is what an agent's worker goroutine dequeues. Exactly
// the fields relevant to kind are populated.
type mailboxMessage struct {
	kind mailboxKind

	ctx streamctx.Context
	pin string
	val value.Value

	configKey string

	configs agent.Configs
}
