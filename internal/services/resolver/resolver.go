// Package resolver substitutes ${result:…}, ${env:…}, and ${file:…}
// tokens in job input strings before they merge into job params.
//
// Token grammar:
//
//	${result:<job_id>}        cached stdout of the named job
//	${result:<job_id>:<key>}  one named output of the job
//	${env:<NAME>}             environment variable
//	${file:<path>}            file contents
//
// Missing resolutions collapse to an empty string and are logged,
// allowing graceful degradation.
package resolver

import (
	"os"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/interfaces"
)

// tokenPattern matches ${result:…}, ${env:…}, and ${file:…} tokens
var tokenPattern = regexp.MustCompile(`\$\{(result|env|file):([^}]*)\}`)

// Service resolves input tokens against the output cache, the
// environment, and the filesystem.
type Service struct {
	cache  interfaces.OutputCache
	logger arbor.ILogger
}

// NewService creates a new input resolver
func NewService(cache interfaces.OutputCache, logger arbor.ILogger) *Service {
	return &Service{
		cache:  cache,
		logger: logger,
	}
}

// Resolve substitutes every token in the input. A string without
// tokens is returned unchanged with ok=true. ok is false when the
// string contained tokens and none of them resolved; the caller skips
// merging such values.
func (s *Service) Resolve(value string) (string, bool) {
	matches := tokenPattern.FindAllStringSubmatch(value, -1)
	if len(matches) == 0 {
		return value, true
	}

	resolvedAny := false

	result := tokenPattern.ReplaceAllStringFunc(value, func(match string) string {
		parts := tokenPattern.FindStringSubmatch(match)
		kind, arg := parts[1], parts[2]

		resolved, ok := s.resolveToken(kind, arg)
		if !ok {
			s.logger.Warn().
				Str("token", match).
				Msg("Input token did not resolve, substituting empty string")
			return ""
		}

		resolvedAny = true
		return resolved
	})

	return result, resolvedAny
}

// resolveToken resolves a single token by kind
func (s *Service) resolveToken(kind, arg string) (string, bool) {
	switch kind {
	case "result":
		return s.resolveResult(arg)
	case "env":
		value, ok := os.LookupEnv(arg)
		return value, ok
	case "file":
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", false
		}
		return string(data), true
	default:
		return "", false
	}
}

// resolveResult reads cached stdout for `<job_id>[:<key>]`
func (s *Service) resolveResult(arg string) (string, bool) {
	jobID := arg
	key := ""
	if idx := strings.Index(arg, ":"); idx >= 0 {
		jobID = arg[:idx]
		key = arg[idx+1:]
	}
	if jobID == "" {
		return "", false
	}

	value, err := s.cache.ReadOutput(jobID, key, 0, false)
	if err != nil {
		return "", false
	}
	return value, true
}

// Ensure Service implements the InputResolver interface
var _ interfaces.InputResolver = (*Service)(nil)
