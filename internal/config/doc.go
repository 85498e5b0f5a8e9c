// Package config provides 12-factor configuration management for terp.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Sandbox: Module path, call stack bound, console routing, startup timeout
//   - Bridge: Runtime mode and suspend signal prefix
//   - Logging: Log level and output format
//   - Metrics: Prometheus endpoint address
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	factory := sandbox.NewFactory(sandbox.Embedded(), sandbox.WithConfig(cfg.SandboxSettings()))
//
// Environment Variables:
//   - TERP_MODE, TERP_MODULE, TERP_SUSPEND_PREFIX
//   - TERP_MAX_CALL_STACK, TERP_CONSOLE, TERP_STARTUP_TIMEOUT
//   - LOG_LEVEL, LOG_DEV, METRICS_ADDR
package config
