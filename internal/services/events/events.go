// Package events carries engine events from trigger dispatches to the
// scheduler's orchestrator loop. A single buffered channel with one
// consumer keeps hook bookkeeping and the termination gate
// single-writer.
package events

import (
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/interfaces"
)

// defaultBuffer sizes the event channel; dispatches block when full
const defaultBuffer = 64

// Bus implements the EventBus interface on one buffered channel
type Bus struct {
	ch        chan interfaces.Event
	closeOnce sync.Once
	logger    arbor.ILogger
}

// NewBus creates a new event bus. A buffer size of zero or less uses
// the default.
func NewBus(buffer int, logger arbor.ILogger) *Bus {
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	return &Bus{
		ch:     make(chan interfaces.Event, buffer),
		logger: logger,
	}
}

// Publish enqueues one event; it blocks when the buffer is full
func (b *Bus) Publish(event interfaces.Event) {
	b.logger.Debug().
		Str("event_type", string(event.Type)).
		Str("job_id", event.JobID).
		Str("scheduler_id", event.SchedulerID).
		Msg("Publishing engine event")

	b.ch <- event
}

// Events returns the consumer channel
func (b *Bus) Events() <-chan interfaces.Event {
	return b.ch
}

// Close closes the consumer channel. The caller must guarantee that
// publishing has stopped.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.ch)
		b.logger.Debug().Msg("Event bus closed")
	})
}

// Ensure Bus implements the EventBus interface
var _ interfaces.EventBus = (*Bus)(nil)
