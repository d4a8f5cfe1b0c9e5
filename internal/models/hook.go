package models

import (
	"fmt"
	"strings"
)

// HookType identifies a lifecycle point at which a hook's jobs run
type HookType string

// HookType constants mirror the hook-type names of the job document
const (
	HookBeforeAll HookType = "before_all"
	HookAfterAll  HookType = "after_all"
	HookBeforeJob HookType = "before_job"
	HookAfterJob  HookType = "after_job"
	HookOnError   HookType = "on_error"
)

// HookTypes returns all recognized hook types in document order
func HookTypes() []HookType {
	return []HookType{HookBeforeAll, HookAfterAll, HookBeforeJob, HookAfterJob, HookOnError}
}

// ParseHookType maps a document hook-type name to its constant.
// Unknown names report ok=false; the hook loader logs and drops them.
func ParseHookType(s string) (HookType, bool) {
	switch HookType(strings.ToLower(strings.TrimSpace(s))) {
	case HookBeforeAll:
		return HookBeforeAll, true
	case HookAfterAll:
		return HookAfterAll, true
	case HookBeforeJob:
		return HookBeforeJob, true
	case HookAfterJob:
		return HookAfterJob, true
	case HookOnError:
		return HookOnError, true
	default:
		return "", false
	}
}

// Hook binds a lifecycle point to an ordered list of jobs. The jobs
// are deep copies of the referenced document jobs so hook execution
// state never leaks into the main graph.
type Hook struct {
	Type      HookType `json:"type"`
	Jobs      []*Job   `json:"jobs"`
	ParentJob string   `json:"parent_job,omitempty"` // Job id the hook fired for, when job-scoped
}

// hookIDPrefix marks execution-stack entries and scheduler ids that
// originate from hook execution.
const hookIDPrefix = "Hook("

// HookStackSeed builds the execution-stack seed entry carried by every
// job a hook runs: Hook(<type>;parent=<job_id>).
func HookStackSeed(t HookType, parentJob string) string {
	return fmt.Sprintf("%s%s;parent=%s)", hookIDPrefix, t, parentJob)
}

// HookSchedulerID builds the synthetic scheduler id for one job run by
// a hook so results carry provenance without recursing into hooks.
func HookSchedulerID(t HookType, parentJob, jobID string) string {
	return fmt.Sprintf("%s__%s", HookStackSeed(t, parentJob), jobID)
}

// IsHookID reports whether a scheduler id or stack entry originates
// from hook execution.
func IsHookID(id string) bool {
	return strings.HasPrefix(id, hookIDPrefix)
}
