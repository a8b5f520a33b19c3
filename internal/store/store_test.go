package store

import (
	"context"
	"testing"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/internal/config"
	"github.com/amurg-ai/streamkit/observer"
	"github.com/amurg-ai/streamkit/value"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoadStream(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	spec := agent.AgentStreamSpec{
		Agents: []agent.AgentSpec{{ID: "a", DefName: "counter"}},
		Channels: []agent.ChannelSpec{
			{SourceAgentID: "a", SourcePin: "out", TargetAgentID: "b", TargetPin: "in"},
		},
		RunOnStart: true,
	}
	if err := s.SaveStream(ctx, "s1", spec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadStream(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Agents) != 1 || got.Agents[0].ID != "a" {
		t.Fatalf("expected agent a, got %+v", got.Agents)
	}
	if !got.RunOnStart {
		t.Fatalf("expected RunOnStart true")
	}

	// Overwrite on second save.
	spec.RunOnStart = false
	if err := s.SaveStream(ctx, "s1", spec); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, err = s.LoadStream(ctx, "s1")
	if err != nil {
		t.Fatalf("load after overwrite: %v", err)
	}
	if got.RunOnStart {
		t.Fatalf("expected RunOnStart false after overwrite")
	}
}

func TestListAndDeleteStream(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveStream(ctx, "a", agent.AgentStreamSpec{}); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := s.SaveStream(ctx, "b", agent.AgentStreamSpec{}); err != nil {
		t.Fatalf("save b: %v", err)
	}

	ids, err := s.ListStreamIDs(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}

	if err := s.DeleteStream(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ids, err = s.ListStreamIDs(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("expected only b left, got %v", ids)
	}
}

func TestAppendAndListEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	events := []observer.Event{
		{Kind: observer.KindAgentIn, AgentID: "a", Pin: "in"},
		{Kind: observer.KindBoard, Key: "counter", Value: value.Integer(5)},
		{Kind: observer.KindAgentError, AgentID: "a", Message: "boom"},
	}
	for _, e := range events {
		if err := s.AppendEvent(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.ListEvents(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Kind != observer.KindAgentIn || got[2].Message != "boom" {
		t.Fatalf("unexpected ordering/content: %+v", got)
	}

	tail, err := s.ListEvents(ctx, got[0].Seq, 10)
	if err != nil {
		t.Fatalf("list tail: %v", err)
	}
	if len(tail) != 2 {
		t.Fatalf("expected 2 events after first seq, got %d", len(tail))
	}
}

func TestFactorySelectsDriver(t *testing.T) {
	if _, err := New(config.StoreConfig{Driver: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
