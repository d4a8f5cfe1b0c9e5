// -----------------------------------------------------------------------
// Package loader parses the declarative job document into typed models
// -----------------------------------------------------------------------

package loader

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/ordino/internal/models"
)

// Service loads job documents from disk or raw bytes
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new document loader
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// Load reads and parses the job document at the given path
func (s *Service) Load(path string) (*models.JobDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job document %s: %w", path, err)
	}

	doc, err := s.Parse(data)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("path", path).
		Int("jobs", len(doc.Jobs)).
		Int("hooks", len(doc.Hooks)).
		Msg("Job document loaded")

	return doc, nil
}

// Parse decodes document bytes into the typed model. Malformed YAML
// wraps ErrYamlParse; a document that parses as YAML but does not fit
// the typed shape, or that carries unknown fields, wraps ErrSchema;
// an empty document wraps ErrNoData. Defaults (enabled, container
// engine) apply during decode.
func (s *Service) Parse(data []byte) (*models.JobDocument, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrYamlParse, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: document is empty", models.ErrNoData)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc models.JobDocument
	if err := decoder.Decode(&doc); err != nil {
		// The document is valid YAML but its values do not fit the
		// declared field shape.
		return nil, fmt.Errorf("%w: %v", models.ErrSchema, err)
	}

	if doc.IsEmpty() {
		return nil, fmt.Errorf("%w: document declares no jobs and no hooks", models.ErrNoData)
	}

	doc.Raw = raw
	return &doc, nil
}

// Serialize renders a document back to YAML. Loading the serialized
// form yields an equivalent model.
func (s *Service) Serialize(doc *models.JobDocument) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize job document: %w", err)
	}
	return data, nil
}
