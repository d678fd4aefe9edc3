package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/grovetools/dashboard/errors"
)

var stateKeyRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid api.base_url").
				WithDetail("base_url", c.API.BaseURL)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New(errors.ErrCodeConfigValidation, "api.base_url must use http or https").
				WithDetail("base_url", c.API.BaseURL)
		}
	}

	durations := map[string]string{
		"api.timeout":             c.API.Timeout,
		"scope.poll_interval":     c.Scope.PollInterval,
		"toasts.default_duration": c.Toasts.DefaultDuration,
		"toasts.error_duration":   c.Toasts.ErrorDuration,
	}
	for field, value := range durations {
		if err := validateDuration(value); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, fmt.Sprintf("invalid %s", field)).
				WithDetail("field", field).
				WithDetail("value", value)
		}
	}

	if c.Scope.Key != "" && !stateKeyRegex.MatchString(c.Scope.Key) {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("invalid scope.key '%s'", c.Scope.Key)).
			WithDetail("field", "scope.key")
	}

	return nil
}

func validateDuration(value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", value)
	}
	return nil
}
