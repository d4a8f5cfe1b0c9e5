package interfaces

import "github.com/ternarybob/ordino/internal/models"

// InputResolver substitutes ${result:…}, ${env:…}, and ${file:…}
// tokens in job input strings.
type InputResolver interface {
	// Resolve returns the input with every token substituted. ok is
	// false when the string contained tokens and none of them
	// resolved; the caller skips merging such values.
	Resolve(value string) (result string, ok bool)
}

// Templater applies ${UPPERCASE_KEY} substitutions from a per-job context
type Templater interface {
	// BuildContext assembles the substitution context for one job:
	// job metadata, params, inputs, host info, clocks, and cwd.
	BuildContext(job *models.Job) map[string]interface{}

	// ApplyMap substitutes placeholders recursively through maps and
	// slices; non-string values pass through unchanged.
	ApplyMap(values map[string]interface{}, context map[string]interface{}) map[string]interface{}
}
