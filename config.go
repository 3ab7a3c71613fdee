package eventing

import (
	"log/slog"
	"sync"

	"github.com/zoobzio/clockz"
)

var (
	defaultOptions []Option
	defaultOptMu   sync.Mutex
)

// Option configures an event, an emitter, or the package defaults.
type Option func(*config)

// config holds internal configuration shared by events and emitters.
type config struct {
	clock    clockz.Clock // Time abstraction for deterministic testing
	logger   *slog.Logger
	validate bool
}

// Configure sets package-level defaults applied to subsequently created
// events, emitters, and type definitions. Per-instance options passed to
// New or NewEmitter take precedence.
func Configure(opts ...Option) {
	defaultOptMu.Lock()
	defaultOptions = opts
	defaultOptMu.Unlock()
}

// currentConfig builds a config from the package defaults plus any
// per-instance options.
func currentConfig(opts ...Option) config {
	cfg := config{
		clock:    clockz.RealClock,
		logger:   slog.Default(),
		validate: true,
	}

	defaultOptMu.Lock()
	defaults := defaultOptions
	defaultOptMu.Unlock()

	for _, opt := range defaults {
		opt(&cfg)
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.clock == nil {
		cfg.clock = clockz.RealClock
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg
}

// WithValidation enables or disables runtime argument and listener
// checks. Validation is on by default; disabling it elides the
// signature check on every raise and the arity check on every
// registration, trading safety for dispatch throughput. With validation
// off, a mismatched raise reaches reflect.Call directly and panics.
func WithValidation(enabled bool) Option {
	return func(c *config) {
		c.validate = enabled
	}
}

// WithLogger sets the logger used for non-fatal diagnostics, currently
// only the conflicting-declaration warning emitted during Define.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithClock sets the clock implementation for time operations.
// Default is clockz.RealClock for production use.
// Use clockz.FakeClock for deterministic testing.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}
