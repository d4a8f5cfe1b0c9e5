// Package templater substitutes ${UPPERCASE_KEY} placeholders in job
// params from a per-job context of job metadata, params, inputs, host
// info, and clocks.
package templater

import (
	"fmt"
	"regexp"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/common"
	"github.com/ternarybob/ordino/internal/interfaces"
)

// placeholderPattern matches ${UPPERCASE_KEY} template placeholders.
// The leading uppercase letter separates template keys from the
// lowercase resolver token grammar (${result:…} etc.).
var placeholderPattern = regexp.MustCompile(`\$\{([A-Z][A-Z0-9_]*)\}`)

// Service applies template substitution to job params
type Service struct {
	host   common.HostInfo
	logger arbor.ILogger
}

// NewService creates a new templater. Host facts are collected once
// and reused for every job context.
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		host:   common.CollectHostInfo(),
		logger: logger,
	}
}

// Apply substitutes placeholders in one string. Unknown keys are left
// intact and logged; a string without placeholders is the identity.
func (s *Service) Apply(value string, context map[string]interface{}) string {
	if value == "" {
		return value
	}

	return placeholderPattern.ReplaceAllStringFunc(value, func(match string) string {
		key := match[2 : len(match)-1]

		if resolved, exists := context[key]; exists {
			return stringify(resolved)
		}

		s.logger.Debug().
			Str("placeholder", match).
			Msg("Template placeholder not in context, leaving intact")
		return match
	})
}

// ApplyMap substitutes placeholders recursively through maps and
// slices, returning a new map. Non-string values pass through
// unchanged; the input map is never mutated.
func (s *Service) ApplyMap(values map[string]interface{}, context map[string]interface{}) map[string]interface{} {
	if values == nil {
		return nil
	}

	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = s.applyValue(v, context)
	}
	return out
}

func (s *Service) applyValue(value interface{}, context map[string]interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return s.Apply(v, context)
	case map[string]interface{}:
		return s.ApplyMap(v, context)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			out[i] = s.applyValue(elem, context)
		}
		return out
	default:
		return v
	}
}

// stringify renders a context value for substitution
func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Ensure Service implements the Templater interface
var _ interfaces.Templater = (*Service)(nil)
