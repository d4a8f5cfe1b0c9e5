package builtin

import (
	"context"

	"github.com/ternarybob/ordino/internal/models"
)

// Exit is the kill pill. Dispatching it raises the kill signal, which
// records the job as ERROR and trips the scheduler's termination gate.
type Exit struct{}

// Name returns the plugin registration name
func (p *Exit) Name() string { return "exit" }

// Description returns the catalog summary
func (p *Exit) Description() string { return "Kill pill; terminates the scheduler run" }

// Docs returns the plugin documentation page
func (p *Exit) Docs() string {
	return `exit - the kill pill.

Takes no params. The dispatching job is recorded as ERROR and the
scheduler's main loop terminates; jobs not yet triggered stay
unscheduled.`
}

// Run raises the kill signal
func (p *Exit) Run(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	return nil, models.ErrJobKill
}
