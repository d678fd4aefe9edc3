package config

import (
	"fmt"
	"time"

	"github.com/grovetools/dashboard/pkg/models"
	"github.com/mitchellh/mapstructure"
)

const (
	DefaultAPITimeout      = 10 * time.Second
	DefaultScopeKey        = "current_project"
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultToastDuration   = 4 * time.Second
	DefaultErrorToastDelay = 8 * time.Second
)

// APIConfig points the transport at the backend service.
type APIConfig struct {
	BaseURL string `yaml:"base_url,omitempty" toml:"base_url,omitempty" json:"base_url,omitempty" jsonschema:"description=Base URL of the dashboard API"`
	Token   string `yaml:"token,omitempty" toml:"token,omitempty" json:"token,omitempty" jsonschema:"description=Bearer token sent with every request"`
	Timeout string `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"description=Per-request timeout (e.g. 10s)"`
}

// TimeoutDuration returns the parsed timeout, or the default when unset.
func (a APIConfig) TimeoutDuration() time.Duration {
	return parseDurationOr(a.Timeout, DefaultAPITimeout)
}

// ScopeConfig controls where the shared scope lives and how surfaces observe it.
type ScopeConfig struct {
	StateFile    string `yaml:"state_file,omitempty" toml:"state_file,omitempty" json:"state_file,omitempty" jsonschema:"description=Path of the shared state file"`
	Key          string `yaml:"key,omitempty" toml:"key,omitempty" json:"key,omitempty" jsonschema:"description=Key holding the current scope"`
	PollInterval string `yaml:"poll_interval,omitempty" toml:"poll_interval,omitempty" json:"poll_interval,omitempty" jsonschema:"description=How often the state file is polled (e.g. 500ms)"`
	Watch        *bool  `yaml:"watch,omitempty" toml:"watch,omitempty" json:"watch,omitempty" jsonschema:"description=Use filesystem notifications in addition to polling (default: true)"`
}

// PollDuration returns the parsed poll interval, or the default when unset.
func (s ScopeConfig) PollDuration() time.Duration {
	return parseDurationOr(s.PollInterval, DefaultPollInterval)
}

// WatchEnabled reports whether filesystem notifications should be used.
func (s ScopeConfig) WatchEnabled() bool {
	return s.Watch == nil || *s.Watch
}

// ToastsConfig sets auto-dismiss durations for notifications.
type ToastsConfig struct {
	DefaultDuration string `yaml:"default_duration,omitempty" toml:"default_duration,omitempty" json:"default_duration,omitempty" jsonschema:"description=Auto-dismiss delay for info/success/warning toasts"`
	ErrorDuration   string `yaml:"error_duration,omitempty" toml:"error_duration,omitempty" json:"error_duration,omitempty" jsonschema:"description=Auto-dismiss delay for error toasts"`
}

// DurationFor returns the auto-dismiss delay for a toast kind.
func (t ToastsConfig) DurationFor(kind models.ToastKind) time.Duration {
	if kind == models.ToastError {
		return parseDurationOr(t.ErrorDuration, DefaultErrorToastDelay)
	}
	return parseDurationOr(t.DefaultDuration, DefaultToastDuration)
}

// Config is the dashboard configuration loaded from dashboard.yml.
type Config struct {
	Version string       `yaml:"version,omitempty" toml:"version,omitempty" json:"version,omitempty" jsonschema:"description=Configuration version (e.g. '1.0')"`
	API     APIConfig    `yaml:"api,omitempty" toml:"api,omitempty" json:"api,omitempty" jsonschema:"description=Backend API settings"`
	Scope   ScopeConfig  `yaml:"scope,omitempty" toml:"scope,omitempty" json:"scope,omitempty" jsonschema:"description=Shared scope settings"`
	Toasts  ToastsConfig `yaml:"toasts,omitempty" toml:"toasts,omitempty" json:"toasts,omitempty" jsonschema:"description=Notification settings"`

	// Extensions captures all other top-level keys for extensibility.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" json:"-" jsonschema:"-"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.API.Timeout == "" {
		c.API.Timeout = DefaultAPITimeout.String()
	}
	if c.Scope.Key == "" {
		c.Scope.Key = DefaultScopeKey
	}
	if c.Scope.PollInterval == "" {
		c.Scope.PollInterval = DefaultPollInterval.String()
	}
	if c.Toasts.DefaultDuration == "" {
		c.Toasts.DefaultDuration = DefaultToastDuration.String()
	}
	if c.Toasts.ErrorDuration == "" {
		c.Toasts.ErrorDuration = DefaultErrorToastDelay.String()
	}
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded dashboard.yml into the provided target struct. The target must be a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// A missing key leaves the target zero-valued.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
