package events

import (
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/interfaces"
)

// TestPublishConsumeOrder verifies events come out in publish order
func TestPublishConsumeOrder(t *testing.T) {
	bus := NewBus(8, arbor.NewLogger())

	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		bus.Publish(interfaces.Event{Type: interfaces.EventJobSubmitted, JobID: id})
	}
	bus.Close()

	var got []string
	for event := range bus.Events() {
		got = append(got, event.JobID)
	}

	if len(got) != len(ids) {
		t.Fatalf("consumed %d events, want %d", len(got), len(ids))
	}
	for i, id := range ids {
		if got[i] != id {
			t.Errorf("event %d = %q, want %q", i, got[i], id)
		}
	}
}

// TestCloseIsIdempotent verifies repeated Close calls do not panic
func TestCloseIsIdempotent(t *testing.T) {
	bus := NewBus(0, arbor.NewLogger())
	bus.Close()
	bus.Close()

	if _, open := <-bus.Events(); open {
		t.Error("channel still open after Close")
	}
}

// TestDefaultBuffer verifies a non-positive size falls back to the
// default and publishing does not block within it.
func TestDefaultBuffer(t *testing.T) {
	bus := NewBus(-1, arbor.NewLogger())

	for i := 0; i < defaultBuffer; i++ {
		bus.Publish(interfaces.Event{Type: interfaces.EventJobExecuted, JobID: "x"})
	}
	bus.Close()

	count := 0
	for range bus.Events() {
		count++
	}
	if count != defaultBuffer {
		t.Errorf("consumed %d events, want %d", count, defaultBuffer)
	}
}
