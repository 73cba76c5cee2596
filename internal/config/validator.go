package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "approval.poll_interval_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// packageNameRegex validates npm package identifiers, including scoped names.
var packageNameRegex = regexp.MustCompile(`^(@[a-z0-9][a-z0-9._-]*/)?[a-z0-9][a-z0-9._-]*$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	for _, pkg := range c.Npm.Packages {
		if !packageNameRegex.MatchString(pkg) {
			errors = append(errors, ValidationError{
				Field:   "npm.packages",
				Value:   pkg,
				Message: "not a valid npm package name",
			})
		}
	}

	if c.Npm.PublishRegistry != "" &&
		!strings.HasPrefix(c.Npm.PublishRegistry, "http://") &&
		!strings.HasPrefix(c.Npm.PublishRegistry, "https://") {
		errors = append(errors, ValidationError{
			Field:   "npm.publish_registry",
			Value:   c.Npm.PublishRegistry,
			Message: "must be an http(s) URL",
		})
	}

	if c.ReleaseNotes.ExtractPattern != "" {
		probe := strings.ReplaceAll(c.ReleaseNotes.ExtractPattern, "{version}", "0\\.0\\.0")
		if _, err := regexp.Compile(probe); err != nil {
			errors = append(errors, ValidationError{
				Field:   "release_notes.extract_pattern",
				Value:   c.ReleaseNotes.ExtractPattern,
				Message: "not a valid regular expression",
			})
		}
	}

	if c.Lts.WindowMonths <= 0 {
		errors = append(errors, ValidationError{
			Field:   "lts.window_months",
			Value:   c.Lts.WindowMonths,
			Message: "must be positive",
		})
	}

	if c.Approval.PollIntervalSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "approval.poll_interval_seconds",
			Value:   c.Approval.PollIntervalSeconds,
			Message: "must be positive",
		})
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
