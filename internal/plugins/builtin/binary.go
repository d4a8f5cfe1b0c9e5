package builtin

import (
	"context"
	"fmt"
	"os/exec"
)

// Binary runs a host executable and captures its combined output
type Binary struct{}

// Name returns the plugin registration name
func (p *Binary) Name() string { return "binary" }

// Description returns the catalog summary
func (p *Binary) Description() string { return "Runs a host executable and captures its output" }

// Docs returns the plugin documentation page
func (p *Binary) Docs() string {
	return `binary - runs a host executable and captures combined stdout/stderr.

Params:
  path    (required) executable path or name resolved on PATH
  args    (optional) list of arguments

Output:
  the combined output; a non-zero exit fails the job with the output
  attached to the error`
}

// Run executes the binary; cancellation kills the child process
func (p *Binary) Run(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	raw, ok := params["path"]
	if !ok {
		return nil, fmt.Errorf("binary requires a path param")
	}
	path := fmt.Sprint(raw)

	var args []string
	switch v := params["args"].(type) {
	case nil:
	case []interface{}:
		for _, a := range v {
			args = append(args, fmt.Sprint(a))
		}
	case []string:
		args = v
	case string:
		args = []string{v}
	default:
		return nil, fmt.Errorf("binary args param must be a list, got %T", v)
	}

	output, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("binary %s failed: %v: %s", path, err, output)
	}

	return string(output), nil
}
