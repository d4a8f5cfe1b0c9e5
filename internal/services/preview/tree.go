// Package preview renders job documents and run results as plain text
// for the CLI surfaces.
package preview

import (
	"fmt"
	"strings"

	"github.com/ternarybob/ordino/internal/models"
)

// JobTree renders the job document as an indented tree: one section
// per job with its executor, schedule, relations, and an appendix of
// the declared hooks.
func JobTree(doc *models.JobDocument) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Jobs (%d)\n", len(doc.Jobs)))
	for _, job := range doc.Jobs {
		writeJobNode(&b, job)
	}

	if len(doc.Hooks) > 0 {
		b.WriteString("\nHooks\n")
		for _, hookType := range models.HookTypes() {
			ids, declared := doc.Hooks[string(hookType)]
			if !declared {
				continue
			}
			b.WriteString(fmt.Sprintf("  %s: %s\n", hookType, strings.Join(ids, ", ")))
		}
	}

	return b.String()
}

func writeJobNode(b *strings.Builder, job *models.Job) {
	marker := "●"
	if !job.Enabled {
		marker = "○"
	}

	title := job.ID
	if job.Name != "" && job.Name != job.ID {
		title = fmt.Sprintf("%s (%s)", job.ID, job.Name)
	}
	b.WriteString(fmt.Sprintf("  %s %s\n", marker, title))

	switch {
	case job.Plugin != "":
		b.WriteString(fmt.Sprintf("      plugin: %s\n", job.Plugin))
	case job.Container != nil:
		b.WriteString(fmt.Sprintf("      container: %s (%s)\n", job.Container.Image, job.Container.Engine))
	}

	if job.Schedule != "" {
		b.WriteString(fmt.Sprintf("      schedule: %s\n", job.Schedule))
	}
	if job.Timeout > 0 {
		b.WriteString(fmt.Sprintf("      timeout: %ds\n", job.Timeout))
	}
	if job.Retries.Count > 0 {
		b.WriteString(fmt.Sprintf("      retries: %d every %ds\n", job.Retries.Count, job.Retries.Interval))
	}

	writeRelation(b, "depends_on", job.DependsOn)
	writeRelation(b, "on_success", job.OnSuccess)
	writeRelation(b, "on_failure", job.OnFailure)
	writeRelation(b, "on_finish", job.OnFinish)
}

func writeRelation(b *strings.Builder, name string, ids []string) {
	if len(ids) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("      %s: %s\n", name, strings.Join(ids, ", ")))
}
