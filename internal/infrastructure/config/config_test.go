package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "HOST", "FILES_ROOT", "FILES_MAX_UPLOAD_BYTES", "FILES_SEARCH_LIMIT",
	"FILES_OPERATION_TIMEOUT_SECONDS", "SYSTEM_ENABLED", "SYSTEM_COMMAND_TIMEOUT_SECONDS",
	"LOG_LEVEL", "LOG_DEV", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_ENABLED",
	"CONFIG_FILE",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())

	assert.Equal(t, "/opt", cfg.Files.Root)
	assert.Equal(t, int64(104857600), cfg.Files.MaxUploadBytes)
	assert.Equal(t, 500, cfg.Files.SearchLimit)
	assert.Equal(t, 10*time.Minute, cfg.Files.OperationTimeout())

	assert.True(t, cfg.System.Enabled)
	assert.Equal(t, 30*time.Second, cfg.System.CommandTimeout())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 50, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 100, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadOrDefault(t *testing.T) {
	clearEnv(t)

	cfg := LoadOrDefault()
	assert.NotNil(t, cfg)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	clearEnv(t)
	envVars := map[string]string{
		"PORT":                            "9000",
		"HOST":                            "127.0.0.1",
		"FILES_ROOT":                      "/mnt/data",
		"FILES_MAX_UPLOAD_BYTES":          "1024",
		"FILES_SEARCH_LIMIT":              "20",
		"FILES_OPERATION_TIMEOUT_SECONDS": "5",
		"SYSTEM_ENABLED":                  "false",
		"LOG_LEVEL":                       "debug",
		"LOG_DEV":                         "true",
		"RATE_LIMIT_RPS":                  "500",
		"RATE_LIMIT_BURST":                "1000",
		"RATE_LIMIT_ENABLED":              "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "/mnt/data", cfg.Files.Root)
	assert.Equal(t, int64(1024), cfg.Files.MaxUploadBytes)
	assert.Equal(t, 20, cfg.Files.SearchLimit)
	assert.Equal(t, 5*time.Second, cfg.Files.OperationTimeout())
	assert.False(t, cfg.System.Enabled)
	assert.Equal(t, 30, cfg.System.CommandTimeoutSeconds)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unparsable number", env: map[string]string{"FILES_SEARCH_LIMIT": "many"}},
		{name: "relative root", env: map[string]string{"FILES_ROOT": "opt"}},
		{name: "zero upload limit", env: map[string]string{"FILES_MAX_UPLOAD_BYTES": "0"}},
		{name: "bad port", env: map[string]string{"PORT": "http"}},
		{name: "negative timeout", env: map[string]string{"FILES_OPERATION_TIMEOUT_SECONDS": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadFileYAMLThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "panel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "8181"
files:
  root: /srv/files
  search_limit: 50
logging:
  level: warn
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("FILES_SEARCH_LIMIT", "75")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8181", cfg.Server.Port)
	assert.Equal(t, "/srv/files", cfg.Files.Root)
	assert.Equal(t, 75, cfg.Files.SearchLimit, "environment wins over the file")
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "defaults survive")
}

func TestLoadFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[files]
root = "/data"
operation_timeout_seconds = 60

[rate_limit]
enabled = false
`), 0o644))

	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, "/data", cfg.Files.Root)
	assert.Equal(t, time.Minute, cfg.Files.OperationTimeout())
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 500, cfg.Files.SearchLimit)
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "panel.ini")
	require.NoError(t, os.WriteFile(path, []byte("port=1"), 0o644))
	assert.ErrorContains(t, cfg.LoadFile(path), "unsupported")
}
