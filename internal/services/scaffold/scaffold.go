// Package scaffold writes starter job documents for `jobs init` and
// the missing-file prompt path.
package scaffold

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
)

// Service writes template documents to disk
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new scaffold service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// Write renders the named template to path. An existing file is left
// untouched and reported as an error.
func (s *Service) Write(path, templateName string) error {
	template, exists := Find(templateName)
	if !exists {
		return fmt.Errorf("unknown template %q", templateName)
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing file %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, []byte(template.Content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Info().
		Str("path", path).
		Str("template", template.Name).
		Msg("Job document created")

	return nil
}

// Prompt offers the template catalog on out and reads a selection
// from in, returning the chosen template name. An empty line or an
// out-of-range number aborts.
func (s *Service) Prompt(in io.Reader, out io.Writer) (string, error) {
	templates := Templates()

	fmt.Fprintln(out, "Available templates:")
	for i, t := range templates {
		fmt.Fprintf(out, "  %d) %-10s %s\n", i+1, t.Name, t.Description)
	}
	fmt.Fprintf(out, "Select a template [1-%d]: ", len(templates))

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read selection: %w", err)
	}

	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(templates) {
		return "", fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
	}

	return templates[choice-1].Name, nil
}
