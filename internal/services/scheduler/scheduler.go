// Package scheduler owns the orchestration loop: cron and run-now
// triggers, the typed event loop, lifecycle hook firing, and the
// termination gate.
package scheduler

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/common"
	"github.com/ternarybob/ordino/internal/interfaces"
	"github.com/ternarybob/ordino/internal/models"
)

// Service drives registered jobs through their triggers and reacts to
// engine events. One orchestrator goroutine is the only writer of the
// hook bookkeeping and the termination gate.
type Service struct {
	manager interfaces.JobRunner
	hooks   interfaces.HookManager
	bus     interfaces.EventBus
	cron    *cron.Cron
	logger  arbor.ILogger

	pollInterval time.Duration
	sem          chan struct{} // Bounds concurrent trigger dispatches

	gate     chan struct{}
	gateOnce sync.Once
	gateMu   sync.Mutex
	gateErr  error

	dispatches sync.WaitGroup
	loopDone   chan struct{}

	// Orchestrator-owned state, never touched outside the event loop
	firedOnce     map[models.HookType]bool
	executedHooks []string
	cronJobs      int

	runID string
}

// NewService creates the scheduler over its collaborators
func NewService(
	manager interfaces.JobRunner,
	hooks interfaces.HookManager,
	bus interfaces.EventBus,
	cfg common.SchedulerConfig,
	logger arbor.ILogger,
) *Service {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Service{
		manager:      manager,
		hooks:        hooks,
		bus:          bus,
		cron:         cron.New(),
		logger:       logger,
		pollInterval: cfg.PollIntervalDuration(),
		sem:          make(chan struct{}, maxConcurrent),
		gate:         make(chan struct{}),
		loopDone:     make(chan struct{}),
		firedOnce:    make(map[models.HookType]bool),
		runID:        common.NewRunID(),
	}
}

// Start runs the scheduler to completion: BEFORE_ALL, trigger
// registration, the orchestrator loop, and the termination wait. When
// only ids are given just those jobs are triggered, with force set.
// The returned error is the kill signal or nil on a clean run.
func (s *Service) Start(only ...string) error {
	s.logger.Info().
		Str("run_id", s.runID).
		Msg("Scheduler starting")

	// BEFORE_ALL strictly precedes any user job
	s.fireHook(models.HookBeforeAll, "")

	common.SafeGo(s.logger, "scheduler-orchestrator", s.orchestrate)

	registered, err := s.registerTriggers(only)
	if err != nil {
		s.setGate(err)
		s.shutdown()
		return err
	}
	if registered == 0 {
		s.logger.Warn().Msg("No jobs to schedule")
		s.handleCompletion()
	}

	s.cron.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

wait:
	for {
		select {
		case <-s.gate:
			break wait
		case sig := <-sigCh:
			s.logger.Warn().
				Str("signal", sig.String()).
				Msg("Interrupt received, shutting down")
			s.setGate(nil)
		case <-ticker.C:
			// Poll tick; the gate cases above decide termination
		}
	}

	s.shutdown()

	s.gateMu.Lock()
	gateErr := s.gateErr
	s.gateMu.Unlock()

	s.logger.Info().
		Str("run_id", s.runID).
		Msg("Scheduler stopped")

	return gateErr
}

// Stop shuts the scheduler down without waiting for the gate
func (s *Service) Stop() {
	s.setGate(nil)
}

// ExecutedHooks returns the provenance ids of every hook job run so
// far, in firing order.
func (s *Service) ExecutedHooks() []string {
	return s.executedHooks
}

// registerTriggers wires every target job to its trigger: a cron entry
// for scheduled jobs, an immediate one-shot dispatch otherwise.
func (s *Service) registerTriggers(only []string) (int, error) {
	var targets []*models.Job
	force := false

	if len(only) > 0 {
		// Explicitly named jobs run even when disabled
		force = true
		for _, id := range only {
			job, err := s.manager.Get(id)
			if err != nil {
				return 0, err
			}
			targets = append(targets, job)
		}
	} else {
		for _, job := range s.manager.Jobs() {
			if job.Enabled {
				targets = append(targets, job)
			}
		}
	}

	registered := 0
	for _, job := range targets {
		job := job
		dispatchForce := force

		if job.Schedule != "" {
			schedulerID := fmt.Sprintf("cron__%s", job.ID)
			_, err := s.cron.AddFunc(job.Schedule, func() {
				s.dispatch(job, schedulerID, true, dispatchForce)
			})
			if err != nil {
				return registered, fmt.Errorf("%w: job %q schedule %q: %v", models.ErrJobValidation, job.ID, job.Schedule, err)
			}
			s.cronJobs++
			s.logger.Info().
				Str("job_id", job.ID).
				Str("schedule", job.Schedule).
				Msg("Cron trigger registered")
		} else {
			schedulerID := fmt.Sprintf("now__%s", job.ID)
			s.dispatches.Add(1)
			common.SafeGo(s.logger, "dispatch:"+job.ID, func() {
				defer s.dispatches.Done()
				s.dispatch(job, schedulerID, false, dispatchForce)
			})
			s.logger.Debug().
				Str("job_id", job.ID).
				Msg("Run-now trigger registered")
		}
		registered++
	}

	return registered, nil
}

// dispatch runs one trigger fire: submission event, the job body, and
// the execution event carrying the outcome.
func (s *Service) dispatch(job *models.Job, schedulerID string, isCron, force bool) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	if s.gateSet() {
		s.logger.Debug().
			Str("job_id", job.ID).
			Msg("Termination gate set, dropping trigger fire")
		return
	}

	ack := make(chan struct{})
	s.bus.Publish(interfaces.Event{
		Type:        interfaces.EventJobSubmitted,
		JobID:       job.ID,
		SchedulerID: schedulerID,
		Cron:        isCron,
		Ack:         ack,
	})
	<-ack

	outcome := s.manager.RunJob(job, nil, force)

	s.bus.Publish(interfaces.Event{
		Type:        interfaces.EventJobExecuted,
		JobID:       job.ID,
		SchedulerID: schedulerID,
		Outcome:     outcome,
		Err:         outcome.Err,
		Cron:        isCron,
	})
}

// orchestrate is the single consumer of the event bus. It fires
// lifecycle hooks and decides termination; running it alone keeps the
// hook state and the gate single-writer.
func (s *Service) orchestrate() {
	defer close(s.loopDone)

	for event := range s.bus.Events() {
		switch event.Type {
		case interfaces.EventJobSubmitted:
			s.handleSubmitted(event)
		case interfaces.EventJobExecuted:
			s.handleExecuted(event)
		case interfaces.EventJobError:
			s.handleDispatchError(event)
		}
	}
}

// handleSubmitted fires BEFORE_JOB ahead of the job body. The ack
// orders the hook strictly before the dispatch continues.
func (s *Service) handleSubmitted(event interfaces.Event) {
	defer close(event.Ack)

	if s.gateSet() || models.IsHookID(event.SchedulerID) {
		return
	}

	s.fireHook(models.HookBeforeJob, event.JobID)
}

// handleExecuted reacts to one finished job drive
func (s *Service) handleExecuted(event interfaces.Event) {
	if event.Outcome.Kind == interfaces.OutcomeKilled {
		s.logger.Warn().
			Str("job_id", event.JobID).
			Msg("Kill signal reached the scheduler, terminating")
		s.setGate(event.Outcome.Err)
		return
	}

	if s.gateSet() {
		return
	}

	isHook := models.IsHookID(event.SchedulerID)

	if event.Outcome.Kind == interfaces.OutcomeFailed && !isHook {
		s.fireHook(models.HookOnError, event.JobID)
	}

	// A recurring trigger keeps its job in progress: no AFTER_JOB,
	// no AFTER_ALL, and the gate stays open.
	if event.Cron {
		return
	}

	if !isHook {
		s.fireHook(models.HookAfterJob, event.JobID)
	}

	if s.manager.InProgress() == 0 {
		s.handleCompletion()
	}
}

// handleDispatchError covers trigger failures outside RunJob
func (s *Service) handleDispatchError(event interfaces.Event) {
	s.logger.Error().
		Str("job_id", event.JobID).
		Err(event.Err).
		Msg("Trigger dispatch failed")

	if errors.Is(event.Err, models.ErrJobKill) {
		s.setGate(event.Err)
		return
	}

	if !models.IsHookID(event.SchedulerID) {
		s.fireHook(models.HookOnError, event.JobID)
	}
}

// handleCompletion runs AFTER_ALL at most once, then sets the gate
func (s *Service) handleCompletion() {
	if s.hooks.Has(models.HookAfterAll) && !s.firedOnce[models.HookAfterAll] {
		s.fireHook(models.HookAfterAll, "")
	}
	s.setGate(nil)
}

// fireHook runs every job of a lifecycle hook inline, seeded with the
// hook provenance stack so hook execution can never recurse into
// further hooks.
func (s *Service) fireHook(hookType models.HookType, parentJob string) {
	if s.firedOnce[hookType] && (hookType == models.HookBeforeAll || hookType == models.HookAfterAll) {
		return
	}

	hook, err := s.hooks.GetByType(hookType)
	if err != nil {
		return
	}
	s.firedOnce[hookType] = true

	for _, hookJob := range hook.Jobs {
		schedulerID := models.HookSchedulerID(hookType, parentJob, hookJob.ID)
		seed := []string{models.HookStackSeed(hookType, parentJob)}

		s.logger.Info().
			Str("hook_type", string(hookType)).
			Str("job_id", hookJob.ID).
			Str("scheduler_id", schedulerID).
			Msg("Hook firing")

		outcome := s.manager.RunJob(hookJob, seed, true)
		s.executedHooks = append(s.executedHooks, schedulerID)

		if outcome.Kind == interfaces.OutcomeFailed {
			s.logger.Warn().
				Str("hook_type", string(hookType)).
				Str("job_id", hookJob.ID).
				Err(outcome.Err).
				Msg("Hook job failed")
		}
		if outcome.Kind == interfaces.OutcomeKilled {
			s.setGate(outcome.Err)
			return
		}
	}
}

// shutdown stops the cron runner, waits for in-flight dispatches, and
// drains the event loop.
func (s *Service) shutdown() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.dispatches.Wait()
	s.bus.Close()
	<-s.loopDone
}

// setGate trips the termination gate exactly once
func (s *Service) setGate(err error) {
	s.gateOnce.Do(func() {
		s.gateMu.Lock()
		s.gateErr = err
		s.gateMu.Unlock()
		close(s.gate)
	})
}

// gateSet reports whether the termination gate has been tripped
func (s *Service) gateSet() bool {
	select {
	case <-s.gate:
		return true
	default:
		return false
	}
}
