package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"TERP_MODE", "TERP_MODULE", "TERP_SUSPEND_PREFIX",
	"TERP_MAX_CALL_STACK", "TERP_CONSOLE", "TERP_STARTUP_TIMEOUT",
	"LOG_LEVEL", "LOG_DEV", "METRICS_ADDR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allVars {
		os.Unsetenv(key)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	// Sandbox config
	assert.Empty(t, cfg.Sandbox.Module)
	assert.Equal(t, 1024, cfg.Sandbox.MaxCallStack)
	assert.True(t, cfg.Sandbox.Console)
	assert.Zero(t, cfg.Sandbox.StartupTimeout)

	// Bridge config
	assert.Equal(t, "terp", cfg.Bridge.Mode)
	assert.Empty(t, cfg.Bridge.SuspendPrefix)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Metrics config
	assert.Empty(t, cfg.Metrics.Address)
}

func TestLoadMatchesDefault(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	clearEnv(t)

	envVars := map[string]string{
		"TERP_MODE":            "player",
		"TERP_MODULE":          "/opt/terp/terp.js",
		"TERP_SUSPEND_PREFIX":  "yield:",
		"TERP_MAX_CALL_STACK":  "256",
		"TERP_CONSOLE":         "false",
		"TERP_STARTUP_TIMEOUT": "5s",
		"LOG_LEVEL":            "debug",
		"LOG_DEV":              "true",
		"METRICS_ADDR":         ":9090",
	}

	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "player", cfg.Bridge.Mode)
	assert.Equal(t, "yield:", cfg.Bridge.SuspendPrefix)
	assert.Equal(t, "/opt/terp/terp.js", cfg.Sandbox.Module)
	assert.Equal(t, 256, cfg.Sandbox.MaxCallStack)
	assert.False(t, cfg.Sandbox.Console)
	assert.Equal(t, 5*time.Second, cfg.Sandbox.StartupTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
}

func TestLoadInvalidValue(t *testing.T) {
	clearEnv(t)

	require.NoError(t, os.Setenv("TERP_MAX_CALL_STACK", "deep"))
	defer os.Unsetenv("TERP_MAX_CALL_STACK")

	_, err := Load()
	assert.Error(t, err)

	// Falls back to defaults
	cfg := LoadOrDefault()
	assert.Equal(t, 1024, cfg.Sandbox.MaxCallStack)
}

func TestSandboxSettings(t *testing.T) {
	cfg := Default()
	cfg.Sandbox.MaxCallStack = 64
	cfg.Sandbox.StartupTimeout = time.Second
	cfg.Sandbox.Console = false

	settings := cfg.SandboxSettings()

	assert.Equal(t, 64, settings.MaxCallStackSize)
	assert.Equal(t, time.Second, settings.StartupTimeout)
	assert.False(t, settings.EnableConsole)
}

func TestLoggerSettings(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		dev       bool
		wantLevel string
		wantDev   bool
	}{
		{
			name:      "production default",
			level:     "info",
			wantLevel: "info",
		},
		{
			name:      "development keeps explicit level",
			level:     "warn",
			dev:       true,
			wantLevel: "warn",
			wantDev:   true,
		},
		{
			name:      "development without level",
			level:     "",
			dev:       true,
			wantLevel: "debug",
			wantDev:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Logging.Level = tt.level
			cfg.Logging.Development = tt.dev

			settings := cfg.LoggerSettings()

			assert.Equal(t, tt.wantLevel, settings.Level)
			assert.Equal(t, tt.wantDev, settings.Development)
		})
	}
}
