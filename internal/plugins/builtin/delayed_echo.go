package builtin

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// DelayedEcho sleeps for the delay param then echoes the message.
// Useful for exercising timeouts and concurrency in job documents.
type DelayedEcho struct{}

// Name returns the plugin registration name
func (p *DelayedEcho) Name() string { return "delayed-echo" }

// Description returns the catalog summary
func (p *DelayedEcho) Description() string { return "Sleeps for delay seconds, then echoes the message" }

// Docs returns the plugin documentation page
func (p *DelayedEcho) Docs() string {
	return `delayed-echo - sleeps for the delay param, then returns the message.

Params:
  message   (required) the value to return after the delay
  delay     (optional) seconds to sleep, default 1; fractions allowed

Output:
  the message, written to the job's stdout cache after the delay`
}

// Run sleeps then echoes; cancellation cuts the sleep short
func (p *DelayedEcho) Run(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	message, ok := params["message"]
	if !ok {
		return nil, fmt.Errorf("delayed-echo requires a message param")
	}

	delay := 1.0
	if raw, exists := params["delay"]; exists {
		parsed, err := toSeconds(raw)
		if err != nil {
			return nil, fmt.Errorf("delayed-echo delay param: %w", err)
		}
		delay = parsed
	}

	timer := time.NewTimer(time.Duration(delay * float64(time.Second)))
	defer timer.Stop()

	select {
	case <-timer.C:
		return fmt.Sprint(message), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("delayed-echo interrupted: %w", ctx.Err())
	}
}

// toSeconds coerces the YAML value shapes a delay param can take
func toSeconds(value interface{}) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("not a number: %v", value)
	}
}
