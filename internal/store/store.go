// Package store persists stream specs and observer events so a host can
// survive a restart without losing a stream's agent/channel graph, and
// so past events can be replayed for debugging. It is grounded on the
// teacher's store package: a driver-selected Store interface, with
// sqlite (modernc.org/sqlite, pure Go) as the default backend and
// postgres (jackc/pgx/v5) as an alternate for multi-host deployments.
package store

import (
	"context"
	"time"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/observer"
)

// StoredEvent is an observer.Event durably logged with its assigned
// sequence number.
type StoredEvent struct {
	Seq       int64
	Kind      observer.Kind
	AgentID   string
	Pin       string
	Key       string
	Message   string
	ValueJSON []byte
	CreatedAt time.Time
}

// Store persists stream specs (for restart recovery) and an append-only
// event log (for replay/debugging).
type Store interface {
	// SaveStream upserts id's current spec.
	SaveStream(ctx context.Context, id string, spec agent.AgentStreamSpec) error
	// LoadStream returns a previously saved stream spec.
	LoadStream(ctx context.Context, id string) (agent.AgentStreamSpec, error)
	// ListStreamIDs returns every stream id with a saved spec.
	ListStreamIDs(ctx context.Context) ([]string, error)
	// DeleteStream removes a stream's saved spec.
	DeleteStream(ctx context.Context, id string) error

	// AppendEvent logs one observer event, assigning it the next sequence
	// number.
	AppendEvent(ctx context.Context, e observer.Event) error
	// ListEvents returns events with seq > afterSeq, oldest first,
	// capped at limit.
	ListEvents(ctx context.Context, afterSeq int64, limit int) ([]StoredEvent, error)

	Ping(ctx context.Context) error
	Close() error
}
