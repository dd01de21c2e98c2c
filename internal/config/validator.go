package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
)

// Flow values for chat.flow
const (
	FlowStaged = "staged"
	FlowDirect = "direct"
)

// Bounds enforced on chat settings
const (
	MinRounds   = 1
	MaxRounds   = 5
	MaxSlotsCap = 10
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "chat.rounds")
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

// ValidFlows returns the list of valid chat.flow values
func ValidFlows() []string {
	return []string{FlowStaged, FlowDirect}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateChat()...)
	errors = append(errors, c.validateAPI()...)
	errors = append(errors, c.validateCatalog()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateChat validates the ChatConfig
func (c *Config) validateChat() []ValidationError {
	var errors []ValidationError

	if c.Chat.Rounds < MinRounds || c.Chat.Rounds > MaxRounds {
		errors = append(errors, ValidationError{
			Field:   "chat.rounds",
			Value:   c.Chat.Rounds,
			Message: fmt.Sprintf("must be between %d and %d", MinRounds, MaxRounds),
		})
	}

	if c.Chat.MaxSlots < 1 || c.Chat.MaxSlots > MaxSlotsCap {
		errors = append(errors, ValidationError{
			Field:   "chat.max_slots",
			Value:   c.Chat.MaxSlots,
			Message: fmt.Sprintf("must be between 1 and %d", MaxSlotsCap),
		})
	}

	if c.Chat.Flow != "" && !slices.Contains(ValidFlows(), c.Chat.Flow) {
		errors = append(errors, ValidationError{
			Field:   "chat.flow",
			Value:   c.Chat.Flow,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidFlows(), ", ")),
		})
	}

	return errors
}

// validateAPI validates the APIConfig
func (c *Config) validateAPI() []ValidationError {
	var errors []ValidationError

	if c.API.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Value:   c.API.BaseURL,
			Message: "must not be empty",
		})
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Value:   c.API.BaseURL,
			Message: "must be an absolute URL",
		})
	}

	if c.API.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout_seconds",
			Value:   c.API.TimeoutSeconds,
			Message: "must be positive",
		})
	}

	if c.API.MaxRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "api.max_retries",
			Value:   c.API.MaxRetries,
			Message: "must be non-negative",
		})
	}

	if c.API.MaxTokens < 0 {
		errors = append(errors, ValidationError{
			Field:   "api.max_tokens",
			Value:   c.API.MaxTokens,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateCatalog validates the CatalogConfig
func (c *Config) validateCatalog() []ValidationError {
	var errors []ValidationError

	if c.Catalog.Path == "" {
		return errors
	}

	info, err := os.Stat(c.Catalog.Path)
	if err != nil {
		errors = append(errors, ValidationError{
			Field:   "catalog.path",
			Value:   c.Catalog.Path,
			Message: "file does not exist",
		})
	} else if info.IsDir() {
		errors = append(errors, ValidationError{
			Field:   "catalog.path",
			Value:   c.Catalog.Path,
			Message: "must be a file, not a directory",
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.WrapWidth < 0 {
		errors = append(errors, ValidationError{
			Field:   "tui.wrap_width",
			Value:   c.TUI.WrapWidth,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
