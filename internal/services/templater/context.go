package templater

import (
	"os"
	"strings"
	"time"

	"github.com/ternarybob/ordino/internal/models"
)

// BuildContext assembles the substitution context for one job: job
// metadata, params under JOB_PARAMS_<K>, resolved inputs under
// JOB_INPUT_<K>, host info, clocks, and the working directory.
func (s *Service) BuildContext(job *models.Job) map[string]interface{} {
	now := time.Now()

	context := map[string]interface{}{
		"JOB_ID":               job.ID,
		"JOB_NAME":             job.Name,
		"JOB_PLUGIN":           job.Plugin,
		"JOB_SCHEDULE":         job.Schedule,
		"JOB_ENABLED":          job.Enabled,
		"JOB_TIMEOUT":          job.Timeout,
		"JOB_RETRIES_COUNT":    job.Retries.Count,
		"JOB_RETRIES_INTERVAL": job.Retries.Interval,
		"JOB_ON_SUCCESS":       strings.Join(job.OnSuccess, ","),
		"JOB_ON_FAILURE":       strings.Join(job.OnFailure, ","),
		"JOB_ON_FINISH":        strings.Join(job.OnFinish, ","),
		"JOB_DEPENDS_ON":       strings.Join(job.DependsOn, ","),

		"OS_NAME":    s.host.OSName,
		"OS_VERSION": s.host.OSVersion,
		"OS_RELEASE": s.host.OSRelease,
		"OS_ARCH":    s.host.Arch,
		"HOSTNAME":   s.host.Hostname,
		"USERNAME":   s.host.Username,

		"CURRENT_TIME": now.Format(time.RFC3339),
		"DATE":         now.Format("2006-01-02"),
		"TIME":         now.Format("15:04:05"),
		"DATETIME":     now.Format("2006-01-02 15:04:05"),
		"TIMESTAMP":    now.Unix(),
	}

	if cwd, err := os.Getwd(); err == nil {
		context["CWD"] = cwd
	}

	for k, v := range job.Params {
		context["JOB_PARAMS_"+contextKey(k)] = v
	}
	for k, v := range job.Input {
		context["JOB_INPUT_"+contextKey(k)] = v
	}

	return context
}

// contextKey normalizes a param name into a template key segment
func contextKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	return key
}
