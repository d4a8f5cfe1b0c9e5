package plugins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/common"
	"github.com/ternarybob/ordino/internal/interfaces"
	"github.com/ternarybob/ordino/internal/models"
)

// Executor dispatches plugins to isolated workers. One worker runs per
// dispatch; workers share no state with the caller and report exactly
// one result through a single-use sink channel. A worker that outlives
// the job timeout is abandoned and the dispatch fails.
type Executor struct {
	registry *Registry
	logger   arbor.ILogger
}

// NewExecutor creates a new plugin executor
func NewExecutor(registry *Registry, logger arbor.ILogger) *Executor {
	return &Executor{
		registry: registry,
		logger:   logger,
	}
}

// Run dispatches one plugin and waits up to timeoutSeconds for its
// result (zero means no timeout). The kill pill - the plugin name
// `exit` or a kill error in the sink - surfaces as ErrJobKill; worker
// failures surface as ErrPluginExecution; an expired timeout as
// ErrPluginTimeout. The worker runs under a context that expires with
// the timeout, so blocking plugin work is cancelled rather than left
// running after the dispatch has failed.
func (e *Executor) Run(jobID, pluginName string, params map[string]interface{}, timeoutSeconds int) (interface{}, error) {
	resolved := e.registry.ResolveName(pluginName)

	ctx := context.Background()
	var cancel context.CancelFunc
	if timeoutSeconds > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	sink := make(chan Result, 1)
	started := time.Now()

	common.SafeGo(e.logger, "plugin-worker:"+jobID, func() {
		e.registry.Execute(ctx, resolved, params, sink)
	})

	select {
	case res := <-sink:
		return e.finish(jobID, resolved, started, res)
	case <-ctx.Done():
		// The expired context unwinds the worker; the buffered sink
		// absorbs its late result so it can never be delivered twice.
		e.logger.Warn().
			Str("job_id", jobID).
			Str("plugin", resolved).
			Int("timeout_seconds", timeoutSeconds).
			Msg("Plugin worker timed out")
		return nil, fmt.Errorf("%w: plugin %q exceeded %d second(s)", models.ErrPluginTimeout, resolved, timeoutSeconds)
	}
}

// finish classifies one worker result
func (e *Executor) finish(jobID, plugin string, started time.Time, res Result) (interface{}, error) {
	if res.Err != nil {
		if errors.Is(res.Err, models.ErrJobKill) {
			e.logger.Warn().
				Str("job_id", jobID).
				Str("plugin", plugin).
				Msg("Kill pill dispatched")
			return nil, res.Err
		}
		if errors.Is(res.Err, models.ErrPluginNotFound) {
			return nil, res.Err
		}
		if errors.Is(res.Err, models.ErrPluginExecution) {
			return nil, res.Err
		}
		if errors.Is(res.Err, context.DeadlineExceeded) {
			// The worker observed the expiring context and raced the
			// timeout branch to the sink; classify it the same way.
			return nil, fmt.Errorf("%w: plugin %q: %v", models.ErrPluginTimeout, plugin, res.Err)
		}
		return nil, fmt.Errorf("%w: plugin %q: %v", models.ErrPluginExecution, plugin, res.Err)
	}

	e.logger.Debug().
		Str("job_id", jobID).
		Str("plugin", plugin).
		Dur("duration", time.Since(started)).
		Msg("Plugin dispatch completed")

	return res.Value, nil
}

// Ensure Executor implements the PluginRunner interface
var _ interfaces.PluginRunner = (*Executor)(nil)
