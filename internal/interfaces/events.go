package interfaces

// EventType represents the engine events the scheduler reacts to
type EventType string

// EventType constants
const (
	EventJobSubmitted EventType = "job_submitted" // A trigger fired and a job is about to run
	EventJobExecuted  EventType = "job_executed"  // A job drive finished with an outcome
	EventJobError     EventType = "job_error"     // A trigger dispatch failed outside RunJob
)

// Event is one engine event. Events flow through a single channel
// consumed by one orchestrator goroutine, which keeps hook bookkeeping
// and the termination gate single-writer.
type Event struct {
	Type        EventType
	JobID       string
	SchedulerID string // Trigger identity; hook runs carry the Hook(…) synthetic id
	Outcome     Outcome
	Err         error
	Cron        bool          // Whether the originating trigger recurs
	Ack         chan struct{} // Closed by the orchestrator once submission handling is done
}

// EventBus carries engine events to the orchestrator loop
type EventBus interface {
	// Publish enqueues one event; it blocks when the buffer is full
	Publish(event Event)

	// Events returns the consumer channel
	Events() <-chan Event

	// Close closes the consumer channel once publishing has stopped
	Close()
}
