package interfaces

import "github.com/ternarybob/ordino/internal/models"

// OutcomeKind tags the result of one RunJob drive
type OutcomeKind string

// OutcomeKind constants
const (
	OutcomeSuccess OutcomeKind = "success" // Job reached SUCCESS
	OutcomePending OutcomeKind = "pending" // Job is waiting on a dependency (or was skipped)
	OutcomeFailed  OutcomeKind = "failed"  // Job reached ERROR after exhausting retries
	OutcomeKilled  OutcomeKind = "killed"  // The kill pill fired; the run must terminate
)

// Outcome is the tagged result of driving one job. The scheduler
// branches on Kind instead of unwinding errors through the call chain.
type Outcome struct {
	Kind OutcomeKind
	Job  *models.Job // Set when Kind is OutcomeSuccess
	Err  error       // Set when Kind is OutcomeFailed or OutcomeKilled
}

// JobRunner owns the job collection and drives jobs to completion
type JobRunner interface {
	// RunJob drives one job: dependency gating, input resolution,
	// templating, dispatch, retries, transition fan-out, result
	// recording. The stack carries the driving call chain and acts
	// as the runtime cycle guard; force overrides the enabled flag.
	RunJob(job *models.Job, stack []string, force bool) Outcome

	// Get returns the job with the given id
	Get(id string) (*models.Job, error)

	// Jobs returns the full job collection
	Jobs() []*models.Job

	// Executed returns copies of every terminated run in order
	Executed() []*models.Job

	// InProgress counts enabled jobs whose status is neither
	// SUCCESS nor ERROR; zero triggers AFTER_ALL evaluation
	InProgress() int
}

// HookManager owns the hooks loaded from the job document
type HookManager interface {
	// GetByType returns the hook registered for a lifecycle point
	GetByType(t models.HookType) (*models.Hook, error)

	// Has reports whether a hook is registered for a lifecycle point
	Has(t models.HookType) bool
}
