package config

import (
	"fmt"
	"strings"

	"github.com/metageek-llc/ManagedWifi/internal/logging"
)

// ValidationErrors collects multiple validation errors
type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Add(err error) {
	if err != nil {
		ve.Errors = append(ve.Errors, err)
	}
}

func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		messages[i] = fmt.Sprintf("  - %s", err.Error())
	}

	return fmt.Sprintf("configuration validation failed:\n%s",
		strings.Join(messages, "\n"))
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Logging.Level != "" && !logging.ValidLevel(c.Logging.Level) {
		errs.Add(fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level))
	}
	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAge < 0 {
		errs.Add(fmt.Errorf("logging rotation limits must not be negative"))
	}

	switch c.Output.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		errs.Add(fmt.Errorf("output.format %q must be one of table, json, yaml", c.Output.Format))
	}

	if c.Watch.Interval <= 0 {
		errs.Add(fmt.Errorf("watch.interval must be positive, got %s", c.Watch.Interval))
	}

	if c.Metrics.Addr != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs.Add(fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}
