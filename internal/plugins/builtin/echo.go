// Package builtin ships the compile-time plugin catalog: echo,
// delayed-echo, binary, http-get, fail, and the exit kill pill.
package builtin

import (
	"context"
	"fmt"
)

// Echo returns its message param unchanged
type Echo struct{}

// Name returns the plugin registration name
func (p *Echo) Name() string { return "echo" }

// Description returns the catalog summary
func (p *Echo) Description() string { return "Returns the message param as the job output" }

// Docs returns the plugin documentation page
func (p *Echo) Docs() string {
	return `echo - returns the message param as the job output.

Params:
  message   (required) the value to return; non-strings are stringified

Output:
  the message, written to the job's stdout cache`
}

// Run echoes the message param
func (p *Echo) Run(_ context.Context, params map[string]interface{}) (interface{}, error) {
	message, ok := params["message"]
	if !ok {
		return nil, fmt.Errorf("echo requires a message param")
	}
	return fmt.Sprint(message), nil
}
