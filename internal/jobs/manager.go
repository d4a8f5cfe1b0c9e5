// Package jobs owns the job collection and drives jobs to completion:
// dependency gating, input resolution, templating, dispatch to plugin
// or container, retries, transition fan-out, and result recording.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/interfaces"
	"github.com/ternarybob/ordino/internal/models"
)

// Manager implements the JobRunner interface. All job status reads
// and writes go through the manager lock so concurrent RunJob calls
// and the dependant sweep observe consistent snapshots.
type Manager struct {
	jobs      []*models.Job
	index     map[string]*models.Job
	executed  []*models.Job
	mu        sync.Mutex
	cache     interfaces.OutputCache
	resolver  interfaces.InputResolver
	templater interfaces.Templater
	plugins   interfaces.PluginRunner
	container interfaces.ContainerRunner
	logger    arbor.ILogger
}

// NewManager creates the job manager over the document's job list
func NewManager(
	jobList []*models.Job,
	cache interfaces.OutputCache,
	resolver interfaces.InputResolver,
	templater interfaces.Templater,
	plugins interfaces.PluginRunner,
	container interfaces.ContainerRunner,
	logger arbor.ILogger,
) *Manager {
	index := make(map[string]*models.Job, len(jobList))
	for _, job := range jobList {
		index[job.ID] = job
	}

	return &Manager{
		jobs:      jobList,
		index:     index,
		cache:     cache,
		resolver:  resolver,
		templater: templater,
		plugins:   plugins,
		container: container,
		logger:    logger,
	}
}

// Get returns the job with the given id
func (m *Manager) Get(id string) (*models.Job, error) {
	if job, ok := m.index[id]; ok {
		return job, nil
	}
	return nil, fmt.Errorf("%w: %q", models.ErrJobNotFound, id)
}

// Jobs returns the full job collection
func (m *Manager) Jobs() []*models.Job {
	return m.jobs
}

// Executed returns copies of every terminated run in completion order
func (m *Manager) Executed() []*models.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Job, len(m.executed))
	copy(out, m.executed)
	return out
}

// InProgress counts enabled jobs whose status is neither SUCCESS nor
// ERROR. Zero triggers the scheduler's AFTER_ALL evaluation.
func (m *Manager) InProgress() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, job := range m.jobs {
		if job.Enabled && !job.Result.Status.Terminal() {
			count++
		}
	}
	return count
}

// RunJob drives one job to completion. The stack carries the driving
// call chain and doubles as the runtime cycle guard; force overrides
// the enabled flag (used by transitions and hooks).
func (m *Manager) RunJob(job *models.Job, stack []string, force bool) interfaces.Outcome {
	if job == nil {
		return interfaces.Outcome{Kind: interfaces.OutcomePending}
	}

	if !job.Enabled && !force {
		m.logger.Debug().
			Str("job_id", job.ID).
			Msg("Job disabled, skipping")
		return interfaces.Outcome{Kind: interfaces.OutcomePending}
	}

	for _, id := range stack {
		if id == job.ID {
			m.logger.Warn().
				Str("job_id", job.ID).
				Strs("stack", stack).
				Msg("Job already on the execution stack, refusing to recurse")
			return interfaces.Outcome{Kind: interfaces.OutcomePending}
		}
	}

	stack = append(copyStack(stack), job.ID)

	m.mu.Lock()
	job.Result.ExecutionStack = copyStack(stack)
	job.Result.Start()
	m.mu.Unlock()

	m.logger.Info().
		Str("job_id", job.ID).
		Str("job_name", job.Name).
		Msg("Job started")

	if waiting := m.unmetDependency(job); waiting != "" {
		m.setStatus(job, models.JobStatusPending)
		m.logger.Debug().
			Str("job_id", job.ID).
			Str("waiting_on", waiting).
			Msg("Dependency not yet satisfied, job parked as pending")
		return interfaces.Outcome{Kind: interfaces.OutcomePending}
	}

	m.mergeInputs(job)

	outcome := m.attemptLoop(job, stack)
	if outcome.Kind == interfaces.OutcomeKilled {
		// The kill pill short-circuits: record and raise, no fan-out
		m.recordExecuted(job)
		return outcome
	}

	if m.status(job) == models.JobStatusSuccess {
		m.sweepDependants(job, stack)
	}

	for _, id := range job.OnFinish {
		m.runTransition(id, stack, false, "on_finish")
	}

	m.recordExecuted(job)

	switch m.status(job) {
	case models.JobStatusSuccess, models.JobStatusRunning:
		return interfaces.Outcome{Kind: interfaces.OutcomeSuccess, Job: job}
	case models.JobStatusError:
		return interfaces.Outcome{
			Kind: interfaces.OutcomeFailed,
			Err:  fmt.Errorf("%w: %q", models.ErrJobFailed, job.ID),
		}
	default:
		return interfaces.Outcome{Kind: interfaces.OutcomePending}
	}
}

// attemptLoop runs the retry loop: templating, dispatch, failure
// handling, and the success path with on_success/on_failure fan-out.
func (m *Manager) attemptLoop(job *models.Job, stack []string) interfaces.Outcome {
	for attempt := 0; attempt <= job.Retries.Count; attempt++ {
		if attempt > 0 {
			m.logger.Info().
				Str("job_id", job.ID).
				Int("attempt", attempt+1).
				Int("max_attempts", job.Retries.Count+1).
				Int("interval_seconds", job.Retries.Interval).
				Msg("Retrying job")
			time.Sleep(time.Duration(job.Retries.Interval) * time.Second)
		}

		value, err := m.dispatch(job)
		if err == nil {
			return m.finishSuccess(job, stack, attempt, value)
		}

		switch {
		case errors.Is(err, models.ErrJobKill):
			m.setStatus(job, models.JobStatusError)
			m.logger.Warn().
				Str("job_id", job.ID).
				Msg("Kill signal received, terminating run")
			return interfaces.Outcome{Kind: interfaces.OutcomeKilled, Err: err}

		case errors.Is(err, models.ErrPluginTimeout):
			m.setStatus(job, models.JobStatusError)
			m.logger.Error().
				Str("job_id", job.ID).
				Err(err).
				Msg("Job timed out")
			return interfaces.Outcome{Kind: interfaces.OutcomeFailed, Err: err}

		default:
			m.mu.Lock()
			job.Result.Retries = attempt
			m.mu.Unlock()

			if cacheErr := m.cache.WriteOutput(job.ID, err.Error(), attempt+1, "", true); cacheErr != nil {
				m.logger.Warn().
					Err(cacheErr).
					Str("job_id", job.ID).
					Msg("Failed to cache job failure output")
			}

			m.logger.Error().
				Str("job_id", job.ID).
				Int("attempt", attempt+1).
				Err(err).
				Msg("Job attempt failed")

			if attempt == job.Retries.Count {
				for _, id := range job.OnFailure {
					m.runTransition(id, stack, true, "on_failure")
				}
				m.setStatus(job, models.JobStatusError)
				return interfaces.Outcome{Kind: interfaces.OutcomeFailed, Err: err}
			}
		}
	}

	// Unreachable: the loop always returns on the final attempt
	return interfaces.Outcome{Kind: interfaces.OutcomeFailed, Err: models.ErrJobFailed}
}

// finishSuccess caches the return value, fans out on_success, and
// settles the post-success status: a scheduled job stays RUNNING for
// its next trigger, a one-shot job becomes SUCCESS.
func (m *Manager) finishSuccess(job *models.Job, stack []string, attempt int, value interface{}) interfaces.Outcome {
	if err := m.cache.WriteOutput(job.ID, value, attempt+1, "", false); err != nil {
		m.logger.Warn().
			Err(err).
			Str("job_id", job.ID).
			Msg("Failed to cache job output")
	}

	for _, id := range job.OnSuccess {
		m.runTransition(id, stack, true, "on_success")
	}

	m.mu.Lock()
	if job.Schedule != "" {
		// Scheduled jobs stay eligible for their next trigger
		job.Result.Status = models.JobStatusRunning
		job.Result.Retries++
	} else {
		job.Result.Status = models.JobStatusSuccess
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("job_id", job.ID).
		Int("attempt", attempt+1).
		Msg("Job succeeded")

	return interfaces.Outcome{Kind: interfaces.OutcomeSuccess, Job: job}
}

// dispatch runs one attempt body: templating plus plugin or container
// execution.
func (m *Manager) dispatch(job *models.Job) (interface{}, error) {
	templateContext := m.templater.BuildContext(job)

	m.mu.Lock()
	params := m.templater.ApplyMap(job.Params, templateContext)
	m.mu.Unlock()

	if job.Container != nil {
		return m.dispatchContainer(job, params)
	}
	return m.plugins.Run(job.ID, job.Plugin, params, job.Timeout)
}

// dispatchContainer runs the job's container with the declared env
// overlaid by the stringified resolved params.
func (m *Manager) dispatchContainer(job *models.Job, params map[string]interface{}) (interface{}, error) {
	env := make(map[string]string, len(job.Container.Env)+len(params))
	for k, v := range job.Container.Env {
		env[k] = v
	}
	for k, v := range params {
		env[k] = fmt.Sprint(v)
	}

	ctx := context.Background()
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(job.Timeout)*time.Second)
		defer cancel()
	}

	_, logs, err := m.container.Run(ctx, job.Container, env)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// unmetDependency returns the first dependency that has not reached
// SUCCESS, or "" when the job may run.
func (m *Manager) unmetDependency(job *models.Job) string {
	for _, depID := range job.DependsOn {
		dep, err := m.Get(depID)
		if err != nil {
			m.logger.Warn().
				Str("job_id", job.ID).
				Str("dependency", depID).
				Msg("Dependency does not exist, ignoring")
			continue
		}
		if m.status(dep) != models.JobStatusSuccess {
			return depID
		}
	}
	return ""
}

// mergeInputs resolves each input token and merges the resolved
// values into params under the same keys. Values that resolve to
// nothing are logged and skipped.
func (m *Manager) mergeInputs(job *models.Job) {
	if len(job.Input) == 0 {
		return
	}

	for key, raw := range job.Input {
		resolved, ok := m.resolver.Resolve(raw)
		if !ok {
			m.logger.Warn().
				Str("job_id", job.ID).
				Str("input", key).
				Msg("Input did not resolve, skipping merge")
			continue
		}

		m.mu.Lock()
		if job.Params == nil {
			job.Params = make(map[string]interface{})
		}
		job.Params[key] = resolved
		m.mu.Unlock()
	}
}

// sweepDependants re-drives every pending job that was waiting on this
// one. Runs before the on_finish fan-out.
func (m *Manager) sweepDependants(job *models.Job, stack []string) {
	m.mu.Lock()
	var waiting []*models.Job
	for _, candidate := range m.jobs {
		if candidate.Result.Status != models.JobStatusPending {
			continue
		}
		for _, depID := range candidate.DependsOn {
			if depID == job.ID {
				waiting = append(waiting, candidate)
				break
			}
		}
	}
	m.mu.Unlock()

	for _, dependant := range waiting {
		if !dependant.Enabled {
			continue
		}
		m.logger.Debug().
			Str("job_id", job.ID).
			Str("dependant", dependant.ID).
			Msg("Re-driving pending dependant")
		m.RunJob(dependant, copyStack(stack), false)
	}
}

// runTransition drives one transition target with a copy of the stack
func (m *Manager) runTransition(id string, stack []string, force bool, field string) {
	target, err := m.Get(id)
	if err != nil {
		m.logger.Warn().
			Str("transition", field).
			Str("job_id", id).
			Msg("Transition references unknown job, skipping")
		return
	}

	m.logger.Debug().
		Str("transition", field).
		Str("job_id", id).
		Msg("Firing transition")

	m.RunJob(target, copyStack(stack), force)
}

// recordExecuted stamps the end time and appends a deep copy of the
// job to the executed record.
func (m *Manager) recordExecuted(job *models.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Result.Stop()
	m.executed = append(m.executed, job.DeepCopy())
}

// status reads a job's status under the manager lock
func (m *Manager) status(job *models.Job) models.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return job.Result.Status
}

// setStatus writes a job's status under the manager lock
func (m *Manager) setStatus(job *models.Job, status models.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Result.Status = status
}

func copyStack(stack []string) []string {
	out := make([]string, len(stack))
	copy(out, stack)
	return out
}

// Ensure Manager implements the JobRunner interface
var _ interfaces.JobRunner = (*Manager)(nil)
