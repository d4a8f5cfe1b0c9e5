package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/models"
	"github.com/ternarybob/ordino/internal/plugins"
	"github.com/ternarybob/ordino/internal/plugins/builtin"
)

func newTestValidator(t *testing.T) *Service {
	t.Helper()
	logger := arbor.NewLogger()
	registry := plugins.NewRegistry(logger)
	if err := builtin.RegisterAll(registry); err != nil {
		t.Fatalf("builtins: %v", err)
	}
	return NewService(registry, logger)
}

func enabledJob(id, plugin string) *models.Job {
	return &models.Job{ID: id, Plugin: plugin, Enabled: true}
}

// TestValidateJobsAccepts verifies a well-formed job set passes with
// OK findings.
func TestValidateJobsAccepts(t *testing.T) {
	s := newTestValidator(t)
	report := NewReport()

	a := enabledJob("a", "echo")
	b := enabledJob("b", "echo")
	b.DependsOn = []string{"a"}
	b.Input = map[string]string{"data": "${result:a}"}
	b.OnSuccess = []string{"a"} // acyclic per-field: a has no on_success edge

	cronJob := enabledJob("tick", "echo")
	cronJob.Schedule = "*/5 * * * *"

	if err := s.ValidateJobs([]*models.Job{a, b, cronJob}, report); err != nil {
		t.Fatalf("ValidateJobs: %v", err)
	}
	if report.HasErrors() {
		t.Errorf("report has errors:\n%s", report.String())
	}
}

// TestValidateJobsRejections covers the job-level rejection cases
func TestValidateJobsRejections(t *testing.T) {
	s := newTestValidator(t)

	dup := enabledJob("a", "echo")

	noTarget := enabledJob("empty", "")

	badPlugin := enabledJob("bad", "does-not-exist")

	badRef := enabledJob("ref", "echo")
	badRef.OnSuccess = []string{"ghost"}

	badToken := enabledJob("tok", "echo")
	badToken.Input = map[string]string{"data": "${result:}"}

	badCron := enabledJob("cron", "echo")
	badCron.Schedule = "not a schedule"

	tests := []struct {
		name string
		jobs []*models.Job
		want string
	}{
		{"duplicate id", []*models.Job{dup, dup}, "duplicate job id"},
		{"no plugin or container", []*models.Job{noTarget}, "neither plugin nor container"},
		{"unknown plugin", []*models.Job{badPlugin}, "unknown plugin"},
		{"unknown reference", []*models.Job{badRef}, "unknown job"},
		{"malformed result token", []*models.Job{badToken}, "malformed result token"},
		{"invalid schedule", []*models.Job{badCron}, "invalid cron schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateJobs(tt.jobs, NewReport())
			if !errors.Is(err, models.ErrJobValidation) {
				t.Fatalf("err = %v, want ErrJobValidation", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

// TestCircularDependency verifies mutual depends_on is rejected with
// the cycle path in the message.
func TestCircularDependency(t *testing.T) {
	s := newTestValidator(t)

	a := enabledJob("a", "echo")
	a.DependsOn = []string{"b"}
	b := enabledJob("b", "echo")
	b.DependsOn = []string{"a"}

	err := s.ValidateJobs([]*models.Job{a, b}, NewReport())
	if !errors.Is(err, models.ErrJobValidation) {
		t.Fatalf("err = %v, want ErrJobValidation", err)
	}
	if !strings.Contains(err.Error(), "circular dependency") {
		t.Errorf("err = %q, want circular dependency", err)
	}
	if !strings.Contains(err.Error(), "a") || !strings.Contains(err.Error(), "b") {
		t.Errorf("cycle path missing from %q", err)
	}
}

// TestTransitionCycle verifies per-field transition cycles are rejected
// while cross-field chains are allowed.
func TestTransitionCycle(t *testing.T) {
	s := newTestValidator(t)

	a := enabledJob("a", "echo")
	a.OnSuccess = []string{"b"}
	b := enabledJob("b", "echo")
	b.OnSuccess = []string{"a"}

	err := s.ValidateJobs([]*models.Job{a, b}, NewReport())
	if !errors.Is(err, models.ErrJobValidation) || !strings.Contains(err.Error(), "on_success") {
		t.Fatalf("err = %v, want on_success transition cycle", err)
	}

	// The same shape across different fields is not a cycle
	c := enabledJob("c", "echo")
	c.OnSuccess = []string{"d"}
	d := enabledJob("d", "echo")
	d.OnFailure = []string{"c"}

	if err := s.ValidateJobs([]*models.Job{c, d}, NewReport()); err != nil {
		t.Errorf("cross-field chain rejected: %v", err)
	}
}

// TestValidateHooks covers hook acceptance and the rejection cases
func TestValidateHooks(t *testing.T) {
	s := newTestValidator(t)
	jobs := []*models.Job{enabledJob("a", "echo"), enabledJob("b", "echo")}

	if err := s.ValidateHooks(map[string][]string{"before_all": {"a", "b"}}, jobs, NewReport()); err != nil {
		t.Fatalf("valid hooks rejected: %v", err)
	}

	tests := []struct {
		name  string
		hooks map[string][]string
	}{
		{"unrecognized type", map[string][]string{"sometimes": {"a"}}},
		{"empty job list", map[string][]string{"after_all": {}}},
		{"duplicate job", map[string][]string{"after_all": {"a", "a"}}},
		{"unknown job", map[string][]string{"after_all": {"ghost"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateHooks(tt.hooks, jobs, NewReport())
			if !errors.Is(err, models.ErrHookValidation) {
				t.Errorf("err = %v, want ErrHookValidation", err)
			}
		})
	}
}

// TestValidateSchema covers the typed-shape checks
func TestValidateSchema(t *testing.T) {
	s := newTestValidator(t)

	if err := s.ValidateSchema(&models.JobDocument{}); !errors.Is(err, models.ErrNoData) {
		t.Errorf("empty doc err = %v, want ErrNoData", err)
	}

	missing := &models.JobDocument{Jobs: []*models.Job{{Plugin: "echo"}}}
	if err := s.ValidateSchema(missing); !errors.Is(err, models.ErrSchema) {
		t.Errorf("missing id err = %v, want ErrSchema", err)
	}

	negative := &models.JobDocument{Jobs: []*models.Job{{ID: "a", Plugin: "echo", Timeout: -1}}}
	if err := s.ValidateSchema(negative); !errors.Is(err, models.ErrSchema) {
		t.Errorf("negative timeout err = %v, want ErrSchema", err)
	}

	ok := &models.JobDocument{Jobs: []*models.Job{enabledJob("a", "echo")}}
	if err := s.ValidateSchema(ok); err != nil {
		t.Errorf("valid doc rejected: %v", err)
	}
}

// TestReport verifies finding accumulation and rendering
func TestReport(t *testing.T) {
	r := NewReport()
	r.AddOK("jobs", "3 unique job ids")
	r.AddError("a", "plugin missing")

	if !r.HasErrors() {
		t.Error("HasErrors = false")
	}

	text := r.String()
	if !strings.Contains(text, "jobs") || !strings.Contains(text, "plugin missing") {
		t.Errorf("rendered report = %q", text)
	}

	// Nil reports are tolerated by the validators
	var nilReport *Report
	nilReport.AddOK("x", "y")
	nilReport.AddError("x", "y")
	if nilReport.HasErrors() {
		t.Error("nil report claims errors")
	}
}
