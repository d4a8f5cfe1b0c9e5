package jobs

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/interfaces"
	"github.com/ternarybob/ordino/internal/models"
)

// Hooks owns the lifecycle hooks loaded from the job document. Each
// hook holds deep copies of the referenced jobs so hook execution
// state never leaks into the main graph; copies are forced enabled.
type Hooks struct {
	hooks  map[models.HookType]*models.Hook
	logger arbor.ILogger
}

// NewHooks builds the hook index from the document's hook mapping.
// Unknown hook type names and unknown job ids are logged and dropped.
func NewHooks(doc *models.JobDocument, logger arbor.ILogger) *Hooks {
	hooks := make(map[models.HookType]*models.Hook)

	for name, ids := range doc.Hooks {
		hookType, recognized := models.ParseHookType(name)
		if !recognized {
			logger.Warn().
				Str("hook_type", name).
				Msg("Unknown hook type, dropping")
			continue
		}

		var hookJobs []*models.Job
		for _, id := range ids {
			job, exists := doc.GetJob(id)
			if !exists {
				logger.Warn().
					Str("hook_type", name).
					Str("job_id", id).
					Msg("Hook references unknown job, skipping")
				continue
			}

			jobCopy := job.DeepCopy()
			jobCopy.Enabled = true
			jobCopy.Result = models.JobResult{}
			hookJobs = append(hookJobs, jobCopy)
		}

		hooks[hookType] = &models.Hook{
			Type: hookType,
			Jobs: hookJobs,
		}

		logger.Debug().
			Str("hook_type", string(hookType)).
			Int("jobs", len(hookJobs)).
			Msg("Hook loaded")
	}

	return &Hooks{
		hooks:  hooks,
		logger: logger,
	}
}

// GetByType returns the hook registered for a lifecycle point
func (h *Hooks) GetByType(t models.HookType) (*models.Hook, error) {
	hook, exists := h.hooks[t]
	if !exists {
		return nil, fmt.Errorf("%w: %s", models.ErrHookNotFound, t)
	}
	return hook, nil
}

// Has reports whether a hook is registered for a lifecycle point
func (h *Hooks) Has(t models.HookType) bool {
	_, exists := h.hooks[t]
	return exists
}

// Ensure Hooks implements the HookManager interface
var _ interfaces.HookManager = (*Hooks)(nil)
