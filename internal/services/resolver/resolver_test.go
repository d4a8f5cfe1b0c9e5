package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/services/cache"
)

func newTestResolver(t *testing.T) (*Service, *cache.Service) {
	t.Helper()
	logger := arbor.NewLogger()
	cacheService, err := cache.NewService(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	return NewService(cacheService, logger), cacheService
}

// TestResolvePlainString verifies token-free strings pass through
func TestResolvePlainString(t *testing.T) {
	r, _ := newTestResolver(t)

	got, ok := r.Resolve("just a value")
	if !ok || got != "just a value" {
		t.Errorf("Resolve = %q, %v", got, ok)
	}
}

// TestResolveEnvToken verifies environment substitution
func TestResolveEnvToken(t *testing.T) {
	r, _ := newTestResolver(t)
	t.Setenv("ORDINO_TEST_TOKEN", "from-env")

	got, ok := r.Resolve("value=${env:ORDINO_TEST_TOKEN}")
	if !ok || got != "value=from-env" {
		t.Errorf("Resolve = %q, %v", got, ok)
	}
}

// TestResolveFileToken verifies file substitution
func TestResolveFileToken(t *testing.T) {
	r, _ := newTestResolver(t)

	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("file body"), 0644); err != nil {
		t.Fatal(err)
	}

	got, ok := r.Resolve("${file:" + path + "}")
	if !ok || got != "file body" {
		t.Errorf("Resolve = %q, %v", got, ok)
	}
}

// TestResolveResultToken verifies cache substitution with and without
// a key selector.
func TestResolveResultToken(t *testing.T) {
	r, c := newTestResolver(t)

	if err := c.WriteOutput("a", "42", 1, "", false); err != nil {
		t.Fatal(err)
	}
	if err := c.WriteOutput("fetch", map[string]string{"status": "200"}, 1, "", false); err != nil {
		t.Fatal(err)
	}

	got, ok := r.Resolve("${result:a}")
	if !ok || got != "42" {
		t.Errorf("result = %q, %v", got, ok)
	}

	got, ok = r.Resolve("${result:fetch:status}")
	if !ok || got != "200" {
		t.Errorf("keyed result = %q, %v", got, ok)
	}
}

// TestResolveMissingTokens verifies empty-string degradation and the
// ok flag semantics.
func TestResolveMissingTokens(t *testing.T) {
	r, c := newTestResolver(t)

	// Only unresolvable tokens: ok is false
	got, ok := r.Resolve("${result:ghost}")
	if ok {
		t.Error("ok = true for a fully unresolved input")
	}
	if got != "" {
		t.Errorf("unresolved value = %q, want empty", got)
	}

	// A mix keeps ok true and blanks only the missing token
	if err := c.WriteOutput("a", "42", 1, "", false); err != nil {
		t.Fatal(err)
	}
	got, ok = r.Resolve("${result:a}/${result:ghost}")
	if !ok || got != "42/" {
		t.Errorf("mixed = %q, %v", got, ok)
	}
}
