package preview

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ternarybob/ordino/internal/interfaces"
	"github.com/ternarybob/ordino/internal/models"
)

// PluginTable renders the plugin catalog as a two-column table
func PluginTable(entries []interfaces.PluginEntry) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "NAME\tKIND\tDESCRIPTION")
	for _, entry := range entries {
		kind := "builtin"
		if entry.External {
			kind = "external"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Name, kind, entry.Description)
	}

	w.Flush()
	return b.String()
}

// PluginInfo renders the long-form documentation page for one plugin
func PluginInfo(entry interfaces.PluginEntry) string {
	var b strings.Builder

	b.WriteString(entry.Name + "\n")
	b.WriteString(strings.Repeat("=", len(entry.Name)) + "\n\n")
	b.WriteString(entry.Description + "\n")

	if entry.External {
		b.WriteString("\nLoaded from a shared-object file.\n")
	}
	if entry.Docs != "" {
		b.WriteString("\n" + strings.TrimSpace(entry.Docs) + "\n")
	}

	return b.String()
}

// ResultsTable renders the post-run summary of every executed job
// record, in execution order.
func ResultsTable(executed []*models.Job) string {
	if len(executed) == 0 {
		return "No jobs executed.\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "JOB\tSTATUS\tRETRIES\tDURATION\tSTACK")
	for _, job := range executed {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			job.ID,
			job.Result.Status,
			job.Result.Retries,
			formatDuration(job),
			strings.Join(job.Result.ExecutionStack, " > "),
		)
	}

	w.Flush()
	return b.String()
}

func formatDuration(job *models.Job) string {
	d := job.Result.Duration()
	if d == 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
