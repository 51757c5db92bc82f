package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "lfs.timeout_ms")
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

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidSortKeys returns the list of valid sort.key values
func ValidSortKeys() []string {
	return []string{"path", "user", "id"}
}

// ValidPathStyles returns the list of valid sort.path_style values
func ValidPathStyles() []string {
	return []string{"", "windows", "posix"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLFS()...)
	errors = append(errors, c.validateRefresh()...)
	errors = append(errors, c.validateSort()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateLFS validates the LFSConfig
func (c *Config) validateLFS() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.LFS.ToolPath) == "" {
		errors = append(errors, ValidationError{
			Field:   "lfs.tool_path",
			Value:   c.LFS.ToolPath,
			Message: "must not be empty",
		})
	}

	const minTimeout = 100       // 100ms minimum
	const maxTimeout = 3_600_000 // 1 hour maximum

	if c.LFS.TimeoutMs < minTimeout {
		errors = append(errors, ValidationError{
			Field:   "lfs.timeout_ms",
			Value:   c.LFS.TimeoutMs,
			Message: fmt.Sprintf("must be at least %dms", minTimeout),
		})
	}
	if c.LFS.TimeoutMs > maxTimeout {
		errors = append(errors, ValidationError{
			Field:   "lfs.timeout_ms",
			Value:   c.LFS.TimeoutMs,
			Message: fmt.Sprintf("exceeds maximum of %dms (1 hour)", maxTimeout),
		})
	}

	return errors
}

// validateRefresh validates the RefreshConfig
func (c *Config) validateRefresh() []ValidationError {
	var errors []ValidationError

	const minInterval = 1
	const maxInterval = 86400 // one day

	if c.Refresh.IntervalSeconds < minInterval {
		errors = append(errors, ValidationError{
			Field:   "refresh.interval_seconds",
			Value:   c.Refresh.IntervalSeconds,
			Message: fmt.Sprintf("must be at least %ds", minInterval),
		})
	}
	if c.Refresh.IntervalSeconds > maxInterval {
		errors = append(errors, ValidationError{
			Field:   "refresh.interval_seconds",
			Value:   c.Refresh.IntervalSeconds,
			Message: fmt.Sprintf("exceeds maximum of %ds (1 day)", maxInterval),
		})
	}

	return errors
}

// validateSort validates the SortConfig
func (c *Config) validateSort() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidSortKeys(), c.Sort.Key) {
		errors = append(errors, ValidationError{
			Field:   "sort.key",
			Value:   c.Sort.Key,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidSortKeys(), ", ")),
		})
	}

	if !slices.Contains(ValidPathStyles(), c.Sort.PathStyle) {
		errors = append(errors, ValidationError{
			Field:   "sort.path_style",
			Value:   c.Sort.PathStyle,
			Message: "must be one of: windows, posix (or empty for the host OS)",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
