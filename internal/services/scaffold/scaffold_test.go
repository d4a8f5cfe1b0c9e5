package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/services/loader"
)

// TestTemplatesParse verifies every starter document loads cleanly
func TestTemplatesParse(t *testing.T) {
	l := loader.NewService(arbor.NewLogger())

	for _, template := range Templates() {
		t.Run(template.Name, func(t *testing.T) {
			doc, err := l.Parse([]byte(template.Content))
			if err != nil {
				t.Fatalf("template does not parse: %v", err)
			}
			if len(doc.Jobs) == 0 {
				t.Error("template declares no jobs")
			}
		})
	}
}

// TestFind covers the catalog lookup
func TestFind(t *testing.T) {
	if _, ok := Find("hello"); !ok {
		t.Error("hello template missing")
	}
	if _, ok := Find("nope"); ok {
		t.Error("unknown template found")
	}
}

// TestWrite verifies rendering, parent creation, and the overwrite guard
func TestWrite(t *testing.T) {
	s := NewService(arbor.NewLogger())
	path := filepath.Join(t.TempDir(), "jobs", "jobs.yaml")

	if err := s.Write(path, "hello"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("rendered file missing: %v", err)
	}
	if !strings.Contains(string(data), "plugin: echo") {
		t.Errorf("rendered content = %q", data)
	}

	if err := s.Write(path, "hello"); err == nil {
		t.Error("existing file overwritten")
	}
	if err := s.Write(filepath.Join(t.TempDir(), "x.yaml"), "nope"); err == nil {
		t.Error("unknown template accepted")
	}
}

// TestPrompt covers selection parsing
func TestPrompt(t *testing.T) {
	s := NewService(arbor.NewLogger())

	var out bytes.Buffer
	name, err := s.Prompt(strings.NewReader("2\n"), &out)
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if name != Templates()[1].Name {
		t.Errorf("selection = %q, want %q", name, Templates()[1].Name)
	}
	if !strings.Contains(out.String(), "Available templates:") {
		t.Errorf("catalog not offered:\n%s", out.String())
	}

	for _, input := range []string{"\n", "0\n", "99\n", "abc\n"} {
		if _, err := s.Prompt(strings.NewReader(input), &out); err == nil {
			t.Errorf("input %q accepted", strings.TrimSpace(input))
		}
	}
}
