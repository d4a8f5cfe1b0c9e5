// -----------------------------------------------------------------------
// Package validation enforces the job document contract: schema,
// references, duplicate ids, plugin existence, cycles, and hook
// well-formedness.
// -----------------------------------------------------------------------

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/interfaces"
	"github.com/ternarybob/ordino/internal/models"
)

// resultTokenPattern matches a well-formed ${result:<job_id>[:<key>]} token
var resultTokenPattern = regexp.MustCompile(`\$\{result:([A-Za-z0-9_.-]+)(:[A-Za-z0-9_.-]+)?\}`)

// resultTokenStart finds any ${result: usage, well-formed or not
var resultTokenStart = regexp.MustCompile(`\$\{result:[^}]*\}`)

// transitionFieldOrder fixes the per-field cycle check order
var transitionFieldOrder = []string{"on_success", "on_failure", "on_finish"}

// Service validates job documents against the engine contract
type Service struct {
	validate *validator.Validate
	catalog  interfaces.PluginCatalog
	logger   arbor.ILogger
}

// NewService creates a new validation service. The catalog is consulted
// for plugin existence checks and may be nil when plugins are not
// discovered yet (the check is then skipped).
func NewService(catalog interfaces.PluginCatalog, logger arbor.ILogger) *Service {
	return &Service{
		validate: validator.New(),
		catalog:  catalog,
		logger:   logger,
	}
}

// ValidateSchema enforces the document schema over the typed model:
// tag-driven field constraints plus the structural rules that do not
// fit tags. Violations wrap ErrSchema.
func (s *Service) ValidateSchema(doc *models.JobDocument) error {
	if doc == nil || doc.IsEmpty() {
		return fmt.Errorf("%w: document declares no jobs and no hooks", models.ErrNoData)
	}

	for i, job := range doc.Jobs {
		if job == nil {
			return fmt.Errorf("%w: jobs[%d] is empty", models.ErrSchema, i)
		}
		if err := s.validate.Struct(job); err != nil {
			return fmt.Errorf("%w: jobs[%d]: %v", models.ErrSchema, i, err)
		}
		if job.Container != nil {
			if err := s.validate.Struct(job.Container); err != nil {
				return fmt.Errorf("%w: jobs[%d].container: %v", models.ErrSchema, i, err)
			}
		}
	}

	for name := range doc.Hooks {
		if _, ok := models.ParseHookType(name); !ok {
			// Unknown hook type names are dropped by the hook loader,
			// not rejected here. Logged so the operator sees them.
			s.logger.Warn().
				Str("hook_type", name).
				Msg("Unknown hook type in document")
		}
	}

	s.logger.Debug().
		Int("jobs", len(doc.Jobs)).
		Int("hooks", len(doc.Hooks)).
		Msg("Document schema accepted")

	return nil
}

// ValidateJobs enforces the job-level rules: ids present and unique,
// references resolve, plugin or container set, plugins registered,
// result tokens well-formed, schedules parse, and the depends_on and
// per-field transition graphs are acyclic. Violations wrap
// ErrJobValidation. A nil report is tolerated.
func (s *Service) ValidateJobs(jobs []*models.Job, report *Report) error {
	byID := make(map[string]*models.Job, len(jobs))

	for _, job := range jobs {
		if job.ID == "" {
			report.AddError("jobs", "a job is missing its id")
			return fmt.Errorf("%w: job with empty id", models.ErrJobValidation)
		}
		if _, exists := byID[job.ID]; exists {
			report.AddError(job.ID, "duplicate job id")
			return fmt.Errorf("%w: duplicate job id %q", models.ErrJobValidation, job.ID)
		}
		byID[job.ID] = job
	}
	report.AddOK("jobs", fmt.Sprintf("%d unique job ids", len(byID)))

	for _, job := range jobs {
		if err := s.validateJob(job, byID, report); err != nil {
			return err
		}
	}

	if err := s.validateGraphs(jobs, byID, report); err != nil {
		return err
	}

	s.logger.Debug().Int("jobs", len(jobs)).Msg("Jobs validated")
	return nil
}

// validateJob checks one job's executable target, references, tokens,
// and schedule.
func (s *Service) validateJob(job *models.Job, byID map[string]*models.Job, report *Report) error {
	if job.Plugin == "" && job.Container == nil {
		report.AddError(job.ID, "neither plugin nor container is set")
		return fmt.Errorf("%w: job %q declares neither plugin nor container", models.ErrJobValidation, job.ID)
	}

	if job.Plugin != "" && s.catalog != nil {
		if _, ok := s.catalog.Lookup(job.Plugin); !ok {
			report.AddError(job.ID, fmt.Sprintf("plugin %q is not registered", job.Plugin))
			return fmt.Errorf("%w: job %q references unknown plugin %q", models.ErrJobValidation, job.ID, job.Plugin)
		}
	}

	for field, refs := range map[string][]string{
		"depends_on": job.DependsOn,
		"on_success": job.OnSuccess,
		"on_failure": job.OnFailure,
		"on_finish":  job.OnFinish,
	} {
		for _, ref := range refs {
			if _, exists := byID[ref]; !exists {
				report.AddError(job.ID, fmt.Sprintf("%s references unknown job %q", field, ref))
				return fmt.Errorf("%w: job %q %s references unknown job %q", models.ErrJobValidation, job.ID, field, ref)
			}
		}
	}

	for key, value := range job.Input {
		for _, token := range resultTokenStart.FindAllString(value, -1) {
			if !resultTokenPattern.MatchString(token) {
				report.AddError(job.ID, fmt.Sprintf("input %q carries malformed result token %q", key, token))
				return fmt.Errorf("%w: job %q input %q has malformed result token %q", models.ErrJobValidation, job.ID, key, token)
			}
		}
	}

	if job.Schedule != "" {
		if _, err := cron.ParseStandard(job.Schedule); err != nil {
			report.AddError(job.ID, fmt.Sprintf("invalid cron schedule %q", job.Schedule))
			return fmt.Errorf("%w: job %q has invalid cron schedule %q: %v", models.ErrJobValidation, job.ID, job.Schedule, err)
		}
	}

	report.AddOK(job.ID, "references, tokens, and schedule are valid")
	return nil
}

// validateGraphs runs cycle detection separately over depends_on and
// each transition field.
func (s *Service) validateGraphs(jobs []*models.Job, byID map[string]*models.Job, report *Report) error {
	if cycle := detectCycle(jobs, byID, func(j *models.Job) []string { return j.DependsOn }); cycle != nil {
		report.AddError("depends_on", "circular dependency: "+strings.Join(cycle, " -> "))
		return fmt.Errorf("%w: circular dependency detected: %s", models.ErrJobValidation, strings.Join(cycle, " -> "))
	}
	report.AddOK("depends_on", "dependency graph is acyclic")

	for _, field := range transitionFieldOrder {
		edges := transitionEdges(field)
		if cycle := detectCycle(jobs, byID, edges); cycle != nil {
			report.AddError(field, "transition cycle: "+strings.Join(cycle, " -> "))
			return fmt.Errorf("%w: %s transition cycle detected: %s", models.ErrJobValidation, field, strings.Join(cycle, " -> "))
		}
	}
	report.AddOK("transitions", "transition graphs are acyclic")

	return nil
}

// ValidateHooks enforces hook well-formedness: recognized type names,
// non-empty job lists, no duplicate ids within a hook, references
// resolve, and no transition cycles inside a hook's job set.
// Violations wrap ErrHookValidation.
func (s *Service) ValidateHooks(hooks map[string][]string, jobs []*models.Job, report *Report) error {
	byID := make(map[string]*models.Job, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
	}

	for name, ids := range hooks {
		hookType, recognized := models.ParseHookType(name)
		if !recognized {
			report.AddError(name, "unrecognized hook type")
			return fmt.Errorf("%w: unrecognized hook type %q", models.ErrHookValidation, name)
		}

		if len(ids) == 0 {
			report.AddError(name, "hook job list is empty")
			return fmt.Errorf("%w: hook %q has an empty job list", models.ErrHookValidation, name)
		}

		seen := make(map[string]bool, len(ids))
		var hookJobs []*models.Job
		for _, id := range ids {
			if seen[id] {
				report.AddError(name, fmt.Sprintf("duplicate job %q within hook", id))
				return fmt.Errorf("%w: hook %q lists job %q more than once", models.ErrHookValidation, name, id)
			}
			seen[id] = true

			job, exists := byID[id]
			if !exists {
				report.AddError(name, fmt.Sprintf("references unknown job %q", id))
				return fmt.Errorf("%w: hook %q references unknown job %q", models.ErrHookValidation, name, id)
			}
			hookJobs = append(hookJobs, job)
		}

		for _, field := range transitionFieldOrder {
			if cycle := detectCycle(hookJobs, byID, transitionEdges(field)); cycle != nil {
				report.AddError(name, fmt.Sprintf("%s cycle within hook: %s", field, strings.Join(cycle, " -> ")))
				return fmt.Errorf("%w: hook %q has a %s transition cycle: %s", models.ErrHookValidation, name, field, strings.Join(cycle, " -> "))
			}
		}

		report.AddOK(name, fmt.Sprintf("hook %s with %d job(s) is well-formed", hookType, len(ids)))
	}

	s.logger.Debug().Int("hooks", len(hooks)).Msg("Hooks validated")
	return nil
}

// transitionEdges returns the edge accessor for one transition field
func transitionEdges(field string) func(*models.Job) []string {
	switch field {
	case "on_success":
		return func(j *models.Job) []string { return j.OnSuccess }
	case "on_failure":
		return func(j *models.Job) []string { return j.OnFailure }
	default:
		return func(j *models.Job) []string { return j.OnFinish }
	}
}

// detectCycle runs DFS with an active-path set over the given edge
// relation and returns the first cycle found as an id path, or nil.
func detectCycle(jobs []*models.Job, byID map[string]*models.Job, edges func(*models.Job) []string) []string {
	visited := make(map[string]bool)
	active := make(map[string]bool)
	var path []string

	var visit func(job *models.Job) []string
	visit = func(job *models.Job) []string {
		if active[job.ID] {
			// Close the loop for the reported path
			return append(append([]string{}, path...), job.ID)
		}
		if visited[job.ID] {
			return nil
		}

		visited[job.ID] = true
		active[job.ID] = true
		path = append(path, job.ID)

		for _, ref := range edges(job) {
			next, exists := byID[ref]
			if !exists {
				continue // Unresolvable references are reported elsewhere
			}
			if cycle := visit(next); cycle != nil {
				return cycle
			}
		}

		active[job.ID] = false
		path = path[:len(path)-1]
		return nil
	}

	for _, job := range jobs {
		if cycle := visit(job); cycle != nil {
			return cycle
		}
	}
	return nil
}
