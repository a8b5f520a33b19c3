package observer

import (
	"testing"
	"time"

	"github.com/amurg-ai/streamkit/value"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	bus.AgentError("a1", "boom")

	select {
	case e := <-ch:
		if e.Kind != KindAgentError || e.AgentID != "a1" || e.Message != "boom" {
			t.Fatalf("unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	_, ok := <-ch
	if ok {
		t.Fatalf("expected channel closed after unsubscribe")
	}
	// idempotent
	bus.Unsubscribe(ch)
}

func TestPublishNonBlockingOnFullBuffer(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	for i := 0; i < subscriberCapacity+10; i++ {
		bus.Board("b", value.Integer(int64(i)))
	}
	// must not deadlock; drain what's there
	drained := 0
	for {
		select {
		case <-ch:
			drained++
		default:
			if drained == 0 {
				t.Fatalf("expected at least some events delivered")
			}
			return
		}
	}
}

func TestSubscribeFilterAndTransform(t *testing.T) {
	bus := New()
	out, cancel := Subscribe(bus, func(e Event) bool {
		return e.Kind == KindBoard
	}, func(e Event) string {
		return e.Key
	})
	defer cancel()

	bus.AgentError("a1", "ignored")
	bus.Board("b1", value.String("hello"))

	select {
	case name := <-out:
		if name != "b1" {
			t.Fatalf("expected b1, got %q", name)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for filtered event")
	}
}

func TestCloseUnsubscribesEveryone(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()

	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
}
