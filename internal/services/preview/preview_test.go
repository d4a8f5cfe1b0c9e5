package preview

import (
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/ordino/internal/interfaces"
	"github.com/ternarybob/ordino/internal/models"
)

// TestJobTree verifies the document rendering: markers, executor and
// relation lines, and the hooks appendix.
func TestJobTree(t *testing.T) {
	doc := &models.JobDocument{
		Jobs: []*models.Job{
			{
				ID:       "fetch",
				Name:     "Fetch data",
				Plugin:   "http-get",
				Enabled:  true,
				Schedule: "*/5 * * * *",
				Timeout:  30,
				Retries:  models.JobRetry{Count: 2, Interval: 5},
			},
			{
				ID:        "report",
				Container: &models.JobContainer{Image: "alpine:3.20", Engine: "docker"},
				Enabled:   false,
				DependsOn: []string{"fetch"},
			},
		},
		Hooks: map[string][]string{"before_all": {"fetch"}},
	}

	text := JobTree(doc)

	for _, want := range []string{
		"Jobs (2)",
		"● fetch (Fetch data)",
		"plugin: http-get",
		"schedule: */5 * * * *",
		"timeout: 30s",
		"retries: 2 every 5s",
		"○ report",
		"container: alpine:3.20 (docker)",
		"depends_on: fetch",
		"Hooks",
		"before_all: fetch",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("tree missing %q:\n%s", want, text)
		}
	}
}

// TestPluginTable verifies the catalog table and the kind column
func TestPluginTable(t *testing.T) {
	text := PluginTable([]interfaces.PluginEntry{
		{Name: "echo", Description: "Returns the message"},
		{Name: "custom", Description: "From disk", External: true},
	})

	if !strings.Contains(text, "NAME") || !strings.Contains(text, "DESCRIPTION") {
		t.Errorf("header missing:\n%s", text)
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), text)
	}
	if !strings.Contains(lines[1], "builtin") || !strings.Contains(lines[2], "external") {
		t.Errorf("kind column wrong:\n%s", text)
	}
}

// TestPluginInfo verifies the long-form page layout
func TestPluginInfo(t *testing.T) {
	text := PluginInfo(interfaces.PluginEntry{
		Name:        "echo",
		Description: "Returns the message",
		Docs:        "echo docs body",
		External:    true,
	})

	for _, want := range []string{"echo\n====", "Returns the message", "shared-object", "echo docs body"} {
		if !strings.Contains(text, want) {
			t.Errorf("info missing %q:\n%s", want, text)
		}
	}
}

// TestResultsTable verifies the post-run summary rows
func TestResultsTable(t *testing.T) {
	if got := ResultsTable(nil); got != "No jobs executed.\n" {
		t.Errorf("empty table = %q", got)
	}

	start := time.Now()
	end := start.Add(1250 * time.Millisecond)

	done := &models.Job{ID: "a", Enabled: true}
	done.Result.Status = models.JobStatusSuccess
	done.Result.StartTime = start
	done.Result.EndTime = &end
	done.Result.ExecutionStack = []string{"root", "a"}

	failed := &models.Job{ID: "b", Enabled: true}
	failed.Result.Status = models.JobStatusError
	failed.Result.Retries = 2

	text := ResultsTable([]*models.Job{done, failed})

	for _, want := range []string{"JOB", "SUCCESS", "ERROR", "1.25s", "root > a"} {
		if !strings.Contains(text, want) {
			t.Errorf("table missing %q:\n%s", want, text)
		}
	}

	// A job that never finished renders a dash for duration
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "b") && !strings.Contains(line, "-") {
			t.Errorf("unfinished row missing dash: %q", line)
		}
	}
}
