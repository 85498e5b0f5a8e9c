package bridge

import (
	"github.com/GriffinCanCode/terp/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/terp/internal/logging"
)

// Option configures a Bridge.
type Option func(*config)

type config struct {
	logger        *logging.Logger
	metrics       *monitoring.Metrics
	suspendPrefix string
}

// WithLogger sets the logger for the bridge.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics records init and load outcomes.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(c *config) {
		c.metrics = metrics
	}
}

// WithSuspendPrefix overrides the message prefix that marks a runtime's
// deliberate yield. An empty prefix is replaced with DefaultSuspendPrefix.
func WithSuspendPrefix(prefix string) Option {
	return func(c *config) {
		c.suspendPrefix = prefix
	}
}
