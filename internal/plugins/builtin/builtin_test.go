package builtin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordino/internal/models"
	"github.com/ternarybob/ordino/internal/plugins"
)

// TestRegisterAll verifies the full catalog registers without clashes
func TestRegisterAll(t *testing.T) {
	registry := plugins.NewRegistry(arbor.NewLogger())
	if err := RegisterAll(registry); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	for _, name := range []string{"echo", "delayed-echo", "binary", "http-get", "fail", "exit"} {
		if _, ok := registry.Get(name); !ok {
			t.Errorf("builtin %q not registered", name)
		}
	}
}

// TestEcho covers the message requirement and stringification
func TestEcho(t *testing.T) {
	p := &Echo{}

	if _, err := p.Run(context.Background(), map[string]interface{}{}); err == nil {
		t.Error("missing message accepted")
	}

	value, err := p.Run(context.Background(), map[string]interface{}{"message": 42})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if value != "42" {
		t.Errorf("value = %v, want stringified 42", value)
	}
}

// TestFail covers the default and custom failure text
func TestFail(t *testing.T) {
	p := &Fail{}

	_, err := p.Run(context.Background(), map[string]interface{}{})
	if err == nil || err.Error() != "forced failure" {
		t.Errorf("default err = %v", err)
	}

	_, err = p.Run(context.Background(), map[string]interface{}{"message": "custom"})
	if err == nil || err.Error() != "custom" {
		t.Errorf("custom err = %v", err)
	}
}

// TestExit verifies the kill pill raises the kill signal
func TestExit(t *testing.T) {
	p := &Exit{}

	_, err := p.Run(context.Background(), nil)
	if !errors.Is(err, models.ErrJobKill) {
		t.Errorf("err = %v, want ErrJobKill", err)
	}
}

// TestDelayedEchoDelayCoercion covers the delay param value shapes
func TestDelayedEchoDelayCoercion(t *testing.T) {
	p := &DelayedEcho{}

	tests := []struct {
		name  string
		delay interface{}
	}{
		{"int", 0},
		{"float", 0.01},
		{"string", "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := p.Run(context.Background(), map[string]interface{}{"message": "hi", "delay": tt.delay})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if value != "hi" {
				t.Errorf("value = %v", value)
			}
		})
	}

	if _, err := p.Run(context.Background(), map[string]interface{}{"message": "hi", "delay": "soon"}); err == nil {
		t.Error("non-numeric delay accepted")
	}
	if _, err := p.Run(context.Background(), map[string]interface{}{"delay": 0}); err == nil {
		t.Error("missing message accepted")
	}
}

// TestDelayedEchoSleeps verifies the delay is honoured
func TestDelayedEchoSleeps(t *testing.T) {
	p := &DelayedEcho{}

	started := time.Now()
	if _, err := p.Run(context.Background(), map[string]interface{}{"message": "hi", "delay": 0.05}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(started); elapsed < 50*time.Millisecond {
		t.Errorf("returned after %v, want at least 50ms", elapsed)
	}
}

// TestDelayedEchoCancellation verifies cancellation cuts the sleep short
func TestDelayedEchoCancellation(t *testing.T) {
	p := &DelayedEcho{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := p.Run(ctx, map[string]interface{}{"message": "hi", "delay": 5})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(started); elapsed >= time.Second {
		t.Errorf("sleep survived cancellation for %v", elapsed)
	}
}

// TestBinaryCancellationKillsChild verifies an expired context kills
// the spawned process instead of leaving it running.
func TestBinaryCancellationKillsChild(t *testing.T) {
	p := &Binary{}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := p.Run(ctx, map[string]interface{}{"path": "sleep", "args": "5"})
	if err == nil {
		t.Fatal("cancelled binary reported success")
	}
	if elapsed := time.Since(started); elapsed >= 3*time.Second {
		t.Errorf("child survived cancellation for %v", elapsed)
	}
}
