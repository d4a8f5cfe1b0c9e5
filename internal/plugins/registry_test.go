package plugins

import (
	"context"
	"errors"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/models"
)

// stubPlugin is a minimal in-test plugin
type stubPlugin struct {
	name string
	run  func(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

func (p *stubPlugin) Name() string        { return p.name }
func (p *stubPlugin) Description() string { return "stub plugin" }
func (p *stubPlugin) Docs() string        { return "stub plugin docs" }

func (p *stubPlugin) Run(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	if p.run == nil {
		return "ok", nil
	}
	return p.run(ctx, params)
}

func newTestRegistry(t *testing.T, plugins ...Plugin) *Registry {
	t.Helper()
	r := NewRegistry(arbor.NewLogger())
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			t.Fatalf("Register(%s): %v", p.Name(), err)
		}
	}
	return r
}

// TestRegisterRejectsDuplicates verifies the first registration wins
func TestRegisterRejectsDuplicates(t *testing.T) {
	r := newTestRegistry(t, &stubPlugin{name: "a"})

	if err := r.Register(&stubPlugin{name: "a"}); err == nil {
		t.Error("duplicate registration accepted")
	}
	if len(r.List()) != 1 {
		t.Errorf("catalog size = %d, want 1", len(r.List()))
	}
}

// TestRegisterRejectsBrokenContracts covers nil and unnamed plugins
func TestRegisterRejectsBrokenContracts(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Register(nil); !errors.Is(err, models.ErrPluginWrongInterface) {
		t.Errorf("nil plugin err = %v", err)
	}
	if err := r.Register(&stubPlugin{name: ""}); !errors.Is(err, models.ErrPluginWrongInterface) {
		t.Errorf("unnamed plugin err = %v", err)
	}
}

// TestLookupAndList verifies catalog views and name ordering
func TestLookupAndList(t *testing.T) {
	r := newTestRegistry(t, &stubPlugin{name: "zeta"}, &stubPlugin{name: "alpha"})

	entry, ok := r.Lookup("alpha")
	if !ok || entry.Name != "alpha" || entry.External {
		t.Errorf("Lookup = %+v, %v", entry, ok)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup found an unregistered plugin")
	}

	entries := r.List()
	if len(entries) != 2 || entries[0].Name != "alpha" || entries[1].Name != "zeta" {
		t.Errorf("List = %+v", entries)
	}
}

// TestExecuteRecoversPanics verifies a panicking plugin surfaces as an
// execution failure instead of crashing the worker.
func TestExecuteRecoversPanics(t *testing.T) {
	r := newTestRegistry(t, &stubPlugin{
		name: "bomb",
		run: func(context.Context, map[string]interface{}) (interface{}, error) {
			panic("kaboom")
		},
	})

	sink := make(chan Result, 1)
	r.Execute(context.Background(), "bomb", nil, sink)

	res := <-sink
	if !errors.Is(res.Err, models.ErrPluginExecution) {
		t.Errorf("err = %v, want ErrPluginExecution", res.Err)
	}
}

// TestExecuteUnknownPlugin verifies the not-found sentinel
func TestExecuteUnknownPlugin(t *testing.T) {
	r := newTestRegistry(t)

	sink := make(chan Result, 1)
	r.Execute(context.Background(), "ghost", nil, sink)

	if res := <-sink; !errors.Is(res.Err, models.ErrPluginNotFound) {
		t.Errorf("err = %v, want ErrPluginNotFound", res.Err)
	}
}
