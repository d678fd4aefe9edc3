package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/dashboard/errors"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateXDG(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadFromBytesAppliesDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`api:
  base_url: http://localhost:8080
`))
	require.NoError(t, err)

	assert.Equal(t, "1.0", cfg.Version)
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, DefaultAPITimeout, cfg.API.TimeoutDuration())
	assert.Equal(t, DefaultScopeKey, cfg.Scope.Key)
	assert.Equal(t, DefaultPollInterval, cfg.Scope.PollDuration())
	assert.True(t, cfg.Scope.WatchEnabled())
	assert.Equal(t, DefaultToastDuration, cfg.Toasts.DurationFor(models.ToastInfo))
	assert.Equal(t, DefaultErrorToastDelay, cfg.Toasts.DurationFor(models.ToastError))
}

func TestLoadFromBytesOverrides(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
scope:
  key: active_scope
  poll_interval: 250ms
  watch: false
toasts:
  default_duration: 2s
  error_duration: 12s
`))
	require.NoError(t, err)

	assert.Equal(t, "active_scope", cfg.Scope.Key)
	assert.Equal(t, 250*time.Millisecond, cfg.Scope.PollDuration())
	assert.False(t, cfg.Scope.WatchEnabled())
	assert.Equal(t, 2*time.Second, cfg.Toasts.DurationFor(models.ToastSuccess))
	assert.Equal(t, 12*time.Second, cfg.Toasts.DurationFor(models.ToastError))
}

func TestLoadFromBytesExpandsEnv(t *testing.T) {
	t.Setenv("DASHBOARD_TEST_TOKEN", "secret")

	cfg, err := LoadFromBytes([]byte(`api:
  base_url: ${DASHBOARD_TEST_URL:-http://fallback:9000}
  token: ${DASHBOARD_TEST_TOKEN}
`))
	require.NoError(t, err)
	assert.Equal(t, "http://fallback:9000", cfg.API.BaseURL)
	assert.Equal(t, "secret", cfg.API.Token)
}

func TestLoadFromBytesRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		code errors.ErrorCode
	}{
		{"malformed yaml", "api: [", errors.ErrCodeConfigInvalid},
		{"schema type mismatch", "scope:\n  watch: sometimes\n", errors.ErrCodeConfigInvalid},
		{"unknown section field", "api:\n  endpoint: x\n", errors.ErrCodeConfigInvalid},
		{"bad duration", "scope:\n  poll_interval: soon\n", errors.ErrCodeConfigValidation},
		{"negative duration", "toasts:\n  error_duration: -1s\n", errors.ErrCodeConfigValidation},
		{"bad url scheme", "api:\n  base_url: ftp://example.com\n", errors.ErrCodeConfigValidation},
		{"bad key", "scope:\n  key: \"9 lives\"\n", errors.ErrCodeConfigValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

// TestExtensions verifies that unknown top-level sections are kept as extensions
func TestExtensions(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
version: "1.0"
logging:
  level: debug
  report_caller: true
monitoring:
  enabled: true
  interval: 30
`))
	require.NoError(t, err)
	require.Contains(t, cfg.Extensions, "logging")
	require.Contains(t, cfg.Extensions, "monitoring")

	type MonitoringConfig struct {
		Enabled  bool `yaml:"enabled"`
		Interval int  `yaml:"interval"`
	}
	var mon MonitoringConfig
	require.NoError(t, cfg.UnmarshalExtension("monitoring", &mon))
	assert.True(t, mon.Enabled)
	assert.Equal(t, 30, mon.Interval)

	// A missing extension leaves the target untouched.
	var missing MonitoringConfig
	require.NoError(t, cfg.UnmarshalExtension("absent", &missing))
	assert.False(t, missing.Enabled)
}

func TestLoadFromTOML(t *testing.T) {
	cfg, err := LoadFromTOML([]byte(`
version = "1.0"

[api]
base_url = "https://api.example.com"
timeout = "3s"

[monitoring]
enabled = true
`))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.TimeoutDuration())
	assert.Contains(t, cfg.Extensions, "monitoring")
	assert.NotContains(t, cfg.Extensions, "api")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "dashboard.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestFindConfigFileWalksUp(t *testing.T) {
	isolateXDG(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dashboard.yml"), "version: \"1.0\"\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	path, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "dashboard.yml"), path)
}

func TestLoadFromMergesLayers(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, "dashboard", "dashboard.yml"), `
api:
  base_url: http://global:8080
  token: global-token
toasts:
  default_duration: 6s
`)

	project := t.TempDir()
	writeFile(t, filepath.Join(project, "dashboard.yml"), `
api:
  base_url: http://project:8080
scope:
  key: project_scope
`)
	writeFile(t, filepath.Join(project, "dashboard.override.yml"), `
scope:
  poll_interval: 100ms
`)

	cfg, err := LoadFrom(project)
	require.NoError(t, err)

	assert.Equal(t, "http://project:8080", cfg.API.BaseURL)
	assert.Equal(t, "global-token", cfg.API.Token)
	assert.Equal(t, "project_scope", cfg.Scope.Key)
	assert.Equal(t, 100*time.Millisecond, cfg.Scope.PollDuration())
	assert.Equal(t, 6*time.Second, cfg.Toasts.DurationFor(models.ToastWarning))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultScopeKey, cfg.Scope.Key)
	assert.Empty(t, cfg.API.BaseURL)
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"poll_interval"`)
	assert.Contains(t, string(data), `"base_url"`)
	assert.NotContains(t, string(data), "Extensions")
}
