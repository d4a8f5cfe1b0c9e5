// Package cache stores per-attempt job output under the cache
// directory. File names follow `.<job_id>.<attempt>[.<key>].(stdout|stderr)`
// so concurrent writers keyed by (job, attempt, key) never collide.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/interfaces"
)

// attemptFilePattern matches cache attempt files: .<job>.<attempt>[.<key>].(stdout|stderr)
var attemptFilePattern = regexp.MustCompile(`^\..+\.\d+(\..+)?\.(stdout|stderr)$`)

// Service implements the output cache on a filesystem directory
type Service struct {
	dir    string
	logger arbor.ILogger
}

// NewService creates the cache service and ensures the directory exists
func NewService(dir string, logger arbor.ILogger) (*Service, error) {
	if dir == "" {
		dir = "./.cache"
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	return &Service{
		dir:    dir,
		logger: logger,
	}, nil
}

// Dir returns the cache directory path
func (s *Service) Dir() string {
	return s.dir
}

// Clean removes stale attempt files left behind by previous runs
func (s *Service) Clean() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory %s: %w", s.dir, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !attemptFilePattern.MatchString(entry.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warn().
				Err(err).
				Str("file", entry.Name()).
				Msg("Failed to remove stale cache file")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Debug().
			Int("count", removed).
			Str("dir", s.dir).
			Msg("Stale cache files removed")
	}

	return nil
}

// WriteOutput stores one attempt's output. A map value fans out to one
// file per key; any other value is stringified into a single file.
func (s *Service) WriteOutput(jobID string, value interface{}, attempt int, key string, isError bool) error {
	switch v := value.(type) {
	case map[string]string:
		for k, entry := range v {
			if err := s.writeFile(jobID, entry, attempt, k, isError); err != nil {
				return err
			}
		}
		return nil
	case map[string]interface{}:
		for k, entry := range v {
			if err := s.writeFile(jobID, fmt.Sprint(entry), attempt, k, isError); err != nil {
				return err
			}
		}
		return nil
	default:
		return s.writeFile(jobID, fmt.Sprint(value), attempt, key, isError)
	}
}

// ReadOutput returns stored output for a job. A positive attempt reads
// that attempt's file first; when it is missing (or attempt <= 0) the
// most recently modified matching file is returned instead.
func (s *Service) ReadOutput(jobID, key string, attempt int, isError bool) (string, error) {
	if attempt > 0 {
		path := filepath.Join(s.dir, s.fileName(jobID, attempt, key, isError))
		if data, err := os.ReadFile(path); err == nil {
			return string(data), nil
		}
	}

	path, err := s.latestFile(jobID, key, isError)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read cache file %s: %w", path, err)
	}
	return string(data), nil
}

func (s *Service) writeFile(jobID, content string, attempt int, key string, isError bool) error {
	path := filepath.Join(s.dir, s.fileName(jobID, attempt, key, isError))

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}

	s.logger.Debug().
		Str("job_id", jobID).
		Int("attempt", attempt).
		Str("file", filepath.Base(path)).
		Msg("Job output cached")

	return nil
}

// fileName builds `.<job_id>.<attempt>[.<key>].(stdout|stderr)`
func (s *Service) fileName(jobID string, attempt int, key string, isError bool) string {
	stream := "stdout"
	if isError {
		stream = "stderr"
	}
	if key != "" {
		return fmt.Sprintf(".%s.%d.%s.%s", jobID, attempt, key, stream)
	}
	return fmt.Sprintf(".%s.%d.%s", jobID, attempt, stream)
}

// latestFile finds the most recently modified attempt file for a job.
// Without a key only the unkeyed `.<job>.<attempt>.<stream>` shape
// matches; keyed files and jobs whose id extends the requested one are
// never candidates.
func (s *Service) latestFile(jobID, key string, isError bool) (string, error) {
	stream := "stdout"
	if isError {
		stream = "stderr"
	}

	shape := `^\.` + regexp.QuoteMeta(jobID) + `\.\d+\.` + stream + `$`
	if key != "" {
		shape = `^\.` + regexp.QuoteMeta(jobID) + `\.\d+\.` + regexp.QuoteMeta(key) + `\.` + stream + `$`
	}
	pattern, err := regexp.Compile(shape)
	if err != nil {
		return "", fmt.Errorf("failed to match cache files for job %s: %w", jobID, err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read cache directory %s: %w", s.dir, err)
	}

	type candidate struct {
		path    string
		modTime int64
	}
	var candidates []candidate

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !pattern.MatchString(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(s.dir, name),
			modTime: info.ModTime().UnixNano(),
		})
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("no cached output for job %s", jobID)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})

	return candidates[0].path, nil
}

// Ensure Service implements the OutputCache interface
var _ interfaces.OutputCache = (*Service)(nil)
