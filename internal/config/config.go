package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/terp/internal/logging"
	"github.com/GriffinCanCode/terp/internal/sandbox"
)

// Config holds all application configuration.
type Config struct {
	Sandbox SandboxConfig
	Bridge  BridgeConfig
	Logging LogConfig
	Metrics MetricsConfig
}

// SandboxConfig holds module and VM configuration.
type SandboxConfig struct {
	Module         string        `envconfig:"TERP_MODULE"`
	MaxCallStack   int           `envconfig:"TERP_MAX_CALL_STACK" default:"1024"`
	Console        bool          `envconfig:"TERP_CONSOLE" default:"true"`
	StartupTimeout time.Duration `envconfig:"TERP_STARTUP_TIMEOUT" default:"0s"`
}

// BridgeConfig holds bridge configuration.
type BridgeConfig struct {
	Mode          string `envconfig:"TERP_MODE" default:"terp"`
	SuspendPrefix string `envconfig:"TERP_SUSPEND_PREFIX"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds the metrics endpoint configuration. An empty address
// disables the endpoint.
type MetricsConfig struct {
	Address string `envconfig:"METRICS_ADDR"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Sandbox: SandboxConfig{
			MaxCallStack: 1024,
			Console:      true,
		},
		Bridge: BridgeConfig{
			Mode: string(sandbox.ModeDefault),
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// SandboxSettings converts the sandbox section into a sandbox.Config.
func (c *Config) SandboxSettings() sandbox.Config {
	return sandbox.Config{
		MaxCallStackSize: c.Sandbox.MaxCallStack,
		StartupTimeout:   c.Sandbox.StartupTimeout,
		EnableConsole:    c.Sandbox.Console,
	}
}

// LoggerSettings converts the logging section into a logging.Config.
func (c *Config) LoggerSettings() logging.Config {
	cfg := logging.DefaultConfig()
	if c.Logging.Development {
		cfg = logging.DevelopmentConfig()
	}
	if c.Logging.Level != "" {
		cfg.Level = c.Logging.Level
	}
	return cfg
}
