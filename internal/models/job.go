// -----------------------------------------------------------------------
// Last Modified: Tuesday, 14th July 2026 9:40:00 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package models

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// JobStatus represents the lifecycle status of a job
type JobStatus string

// JobStatus constants
const (
	JobStatusUnstarted JobStatus = "UNSTARTED"
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSuccess   JobStatus = "SUCCESS"
	JobStatusError     JobStatus = "ERROR"
)

// Terminal reports whether the status is a terminal state
func (s JobStatus) Terminal() bool {
	return s == JobStatusSuccess || s == JobStatusError
}

// JobRetry configures the retry behaviour of a job
type JobRetry struct {
	Count    int `yaml:"count" json:"count" validate:"gte=0"`       // Additional attempts after the first failure
	Interval int `yaml:"interval" json:"interval" validate:"gte=0"` // Seconds to sleep between attempts
}

// JobResult tracks the mutable execution state of a job.
// It is mutated in place by the job manager and never serialized
// back into the job document.
type JobResult struct {
	Status         JobStatus  `json:"status"`
	Retries        int        `json:"retries"` // Retries used (also bumped on cron re-arm)
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	ExecutionStack []string   `json:"execution_stack,omitempty"` // Call-chain provenance for the last run
}

// Start marks the result as running and records the start time
func (r *JobResult) Start() {
	r.StartTime = time.Now()
	r.Status = JobStatusRunning
}

// Stop records the end time without touching the status
func (r *JobResult) Stop() {
	now := time.Now()
	r.EndTime = &now
}

// Duration returns the elapsed wall time of the last run, or zero
// when the job has not finished.
func (r *JobResult) Duration() time.Duration {
	if r.EndTime == nil || r.StartTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// Job is one unit of work in the job document. A job executes either
// through a named in-process plugin or as a containerized command;
// validation guarantees at least one of the two is set.
type Job struct {
	ID        string                 `yaml:"id" json:"id" validate:"required"`
	Name      string                 `yaml:"name" json:"name"`
	Plugin    string                 `yaml:"plugin,omitempty" json:"plugin,omitempty"`
	Container *JobContainer          `yaml:"container,omitempty" json:"container,omitempty"`
	Params    map[string]interface{} `yaml:"params,omitempty" json:"params,omitempty"`
	Input     map[string]string      `yaml:"input,omitempty" json:"input,omitempty"`
	Schedule  string                 `yaml:"schedule,omitempty" json:"schedule,omitempty"` // Cron expression; empty means one-shot
	OnSuccess []string               `yaml:"on_success,omitempty" json:"on_success,omitempty"`
	OnFailure []string               `yaml:"on_failure,omitempty" json:"on_failure,omitempty"`
	OnFinish  []string               `yaml:"on_finish,omitempty" json:"on_finish,omitempty"`
	DependsOn []string               `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Enabled   bool                   `yaml:"enabled" json:"enabled"`
	Retries   JobRetry               `yaml:"retries,omitempty" json:"retries,omitempty"`
	Timeout   int                    `yaml:"timeout,omitempty" json:"timeout,omitempty" validate:"gte=0"` // Seconds; zero means no timeout

	// Result is engine-owned runtime state, never part of the document.
	Result JobResult `yaml:"-" json:"result"`
}

// jobFields is the declared yaml key set of a job object
var jobFields = map[string]bool{
	"id": true, "name": true, "plugin": true, "container": true,
	"params": true, "input": true, "schedule": true,
	"on_success": true, "on_failure": true, "on_finish": true,
	"depends_on": true, "enabled": true, "retries": true, "timeout": true,
}

// retryFields is the declared yaml key set of a retries object
var retryFields = map[string]bool{"count": true, "interval": true}

// rejectUnknownFields fails on mapping keys outside the declared set.
// Custom unmarshalers decode through a fresh decoder, so the loader's
// strict-field mode does not reach them; this check restores it.
func rejectUnknownFields(node *yaml.Node, known map[string]bool, kind string) error {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := node.Content[i].Value; !known[key] {
			return fmt.Errorf("unknown %s field %q", kind, key)
		}
	}
	return nil
}

// UnmarshalYAML decodes a job, rejecting unknown fields and applying
// document defaults (enabled defaults to true when omitted).
func (j *Job) UnmarshalYAML(value *yaml.Node) error {
	if err := rejectUnknownFields(value, jobFields, "job"); err != nil {
		return err
	}
	type jobAlias Job
	alias := jobAlias{Enabled: true}
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*j = Job(alias)
	return nil
}

// UnmarshalYAML decodes a retries section, rejecting unknown fields
func (r *JobRetry) UnmarshalYAML(value *yaml.Node) error {
	if err := rejectUnknownFields(value, retryFields, "retries"); err != nil {
		return err
	}
	type retryAlias JobRetry
	var alias retryAlias
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*r = JobRetry(alias)
	return nil
}

// TransitionFields returns the transition relations of the job keyed
// by field name, in declaration order.
func (j *Job) TransitionFields() map[string][]string {
	return map[string][]string{
		"on_success": j.OnSuccess,
		"on_failure": j.OnFailure,
		"on_finish":  j.OnFinish,
	}
}

// DeepCopy returns an independent copy of the job, including params,
// inputs, transition lists, container settings, and result state.
// Hook execution relies on copies so hook jobs can be mutated without
// affecting the main graph.
func (j *Job) DeepCopy() *Job {
	if j == nil {
		return nil
	}
	c := *j
	c.Params = copyValueMap(j.Params)
	c.Input = copyStringMap(j.Input)
	c.OnSuccess = copyStrings(j.OnSuccess)
	c.OnFailure = copyStrings(j.OnFailure)
	c.OnFinish = copyStrings(j.OnFinish)
	c.DependsOn = copyStrings(j.DependsOn)
	c.Container = j.Container.DeepCopy()
	c.Result.ExecutionStack = copyStrings(j.Result.ExecutionStack)
	if j.Result.EndTime != nil {
		end := *j.Result.EndTime
		c.Result.EndTime = &end
	}
	return &c
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyValueMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

// copyValue deep-copies the YAML value shapes (maps, slices, scalars)
func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return copyValueMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
