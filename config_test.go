package eventing

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/zoobzio/clockz"
)

func TestDefaultConfig(t *testing.T) {
	cfg := currentConfig()

	if !cfg.validate {
		t.Error("Validation should be enabled by default")
	}
	if cfg.clock == nil {
		t.Error("Default clock should not be nil")
	}
	if cfg.logger == nil {
		t.Error("Default logger should not be nil")
	}
}

func TestWithValidationOptionOnEvent(t *testing.T) {
	owner := &testOwner{}
	ev, raise, err := New(owner, TypeOf[string](), WithValidation(false))
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	// Arity checks are elided.
	if _, err := ev.Register(func() {}); err != nil {
		t.Errorf("Registration should skip arity validation: %v", err)
	}
	ev.Clear()

	// Signature checks are elided; the argument reaches the listener.
	var got any
	if _, err := ev.Register(func(o, v any) { got = v }); err != nil {
		t.Fatalf("Failed to register listener: %v", err)
	}
	if err := raise.Raise(123); err != nil {
		t.Fatalf("Unvalidated raise failed: %v", err)
	}
	if got != 123 {
		t.Errorf("Expected 123 delivered, got %v", got)
	}
}

func TestValidationStillGatesOwnership(t *testing.T) {
	// Disabling validation never disables the ownership gate.
	var raise Raiser
	if err := raise.Raise(); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}
}

func TestConfigureSetsPackageDefaults(t *testing.T) {
	Configure(WithValidation(false))
	defer Configure()

	cfg := currentConfig()
	if cfg.validate {
		t.Error("Configure should apply to subsequent configs")
	}

	// Per-instance options win over package defaults.
	cfg = currentConfig(WithValidation(true))
	if !cfg.validate {
		t.Error("Per-instance options should override package defaults")
	}
}

func TestNilOptionValuesFallBack(t *testing.T) {
	cfg := currentConfig(WithLogger(nil), WithClock(nil))
	if cfg.logger == nil {
		t.Error("Nil logger should fall back to slog.Default")
	}
	if cfg.clock == nil {
		t.Error("Nil clock should fall back to clockz.RealClock")
	}
}

func TestWithClockOption(t *testing.T) {
	cfg := currentConfig(WithClock(clockz.RealClock))
	if cfg.clock != clockz.RealClock {
		t.Error("WithClock should set the clock")
	}
}

func TestWithLoggerOption(t *testing.T) {
	logger := slog.New(&capturingHandler{})
	cfg := currentConfig(WithLogger(logger))
	if cfg.logger != logger {
		t.Error("WithLogger should set the logger")
	}
}
