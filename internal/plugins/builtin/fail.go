package builtin

import (
	"context"
	"errors"
	"fmt"
)

// Fail always returns an error; it exercises retries and on_failure
// transitions in job documents.
type Fail struct{}

// Name returns the plugin registration name
func (p *Fail) Name() string { return "fail" }

// Description returns the catalog summary
func (p *Fail) Description() string { return "Always fails; exercises retries and on_failure" }

// Docs returns the plugin documentation page
func (p *Fail) Docs() string {
	return `fail - always returns an error.

Params:
  message   (optional) the failure text, default "forced failure"

The failure text is written to the job's stderr cache for every
attempt; retries and on_failure transitions fire as configured.`
}

// Run fails
func (p *Fail) Run(_ context.Context, params map[string]interface{}) (interface{}, error) {
	if message, ok := params["message"]; ok {
		return nil, errors.New(fmt.Sprint(message))
	}
	return nil, errors.New("forced failure")
}
