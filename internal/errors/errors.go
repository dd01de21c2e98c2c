// Package errors provides centralized error definitions and error handling utilities
// for superchat. It defines the sentinel errors of the chat core, typed errors that
// carry the context a user needs to retry a command, and classification helpers.
//
// # Error Types
//
// Command errors are produced by the debate controller:
//   - PhaseError: command not valid in the current phase (matches ErrInvalidPhase)
//   - CommandError: command name not recognized (matches ErrUnknownCommand)
//
// Resolution errors are produced while binding model queries:
//   - NotFoundError: no model matches a query (matches ErrNotFound)
//   - AmbiguousError: several models tie for a query (matches ErrAmbiguousMatch)
//   - DuplicateError: a model already occupies another slot (matches ErrDuplicateModel)
//
// Transport errors are produced by the dispatcher:
//   - DispatchError: a remote call failed for one slot (matches ErrDispatch)
//
// Input errors:
//   - ValidationError: invalid argument or configuration value (matches ErrInvalidInput)
//
// # Usage
//
//	err := errors.NewPhaseError("/promote", "setup")
//	if errors.Is(err, errors.ErrInvalidPhase) { ... }
//
//	var ambiguous *errors.AmbiguousError
//	if errors.As(err, &ambiguous) {
//	    fmt.Println(ambiguous.Candidates)
//	}
//
// # Error Classification
//
// Every typed error reports a Severity, whether a retry may succeed, and whether its
// message is safe to show in the chat window.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors the user can correct and retry.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for invariant violations.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Controller sentinel errors
var (
	// ErrInvalidPhase indicates a command that is not valid in the current phase.
	ErrInvalidPhase = New("command not valid in current phase")
	// ErrUnknownCommand indicates an unrecognized slash command.
	ErrUnknownCommand = New("unknown command")
	// ErrNoActiveAgents indicates a debate round with nobody left to answer.
	ErrNoActiveAgents = New("no active agents")
	// ErrEmptyContext indicates a context was requested before the original prompt was set.
	ErrEmptyContext = New("original prompt not set")
)

// Catalog sentinel errors
var (
	// ErrNotFound indicates that no model matched a query.
	ErrNotFound = New("model not found")
	// ErrAmbiguousMatch indicates that several models matched a query equally well.
	ErrAmbiguousMatch = New("ambiguous model query")
	// ErrDuplicateModel indicates that a model is already bound to another slot.
	ErrDuplicateModel = New("model already assigned")
	// ErrCatalogInvalid indicates a malformed catalog file.
	ErrCatalogInvalid = New("invalid model catalog")
)

// Dispatch sentinel errors
var (
	// ErrDispatch indicates that a remote model call failed.
	ErrDispatch = New("dispatch failed")
	// ErrEmptyReply indicates that the remote endpoint answered with no content.
	ErrEmptyReply = New("empty reply")
	// ErrMissingAPIKey indicates that no OpenRouter API key could be located.
	ErrMissingAPIKey = New("OPENROUTER_API_KEY not set")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// ChatError is the interface implemented by every typed error in this package.
type ChatError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if repeating the same command may succeed.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// in the chat window.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if the cause matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Command Errors
// -----------------------------------------------------------------------------

// PhaseError reports a command issued in a phase that does not accept it.
// State is left unchanged when it is returned.
//
// Example:
//
//	err := errors.NewPhaseError("/promote", "setup")
//	fmt.Println(err) // "/promote is not available during setup"
type PhaseError struct {
	baseError
	Command string
	Phase   string
	Hint    string
}

// NewPhaseError creates a new PhaseError.
func NewPhaseError(command, phase string) *PhaseError {
	return &PhaseError{
		baseError: baseError{
			message:    "command not valid in current phase",
			severity:   SeverityWarning,
			userFacing: true,
		},
		Command: command,
		Phase:   phase,
	}
}

// WithHint attaches a short instruction telling the user what to do instead.
func (e *PhaseError) WithHint(hint string) *PhaseError {
	e.Hint = hint
	return e
}

// Error returns the formatted error message.
func (e *PhaseError) Error() string {
	msg := fmt.Sprintf("%s is not available during %s", e.Command, e.Phase)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Is matches PhaseError values and ErrInvalidPhase.
func (e *PhaseError) Is(target error) bool {
	if _, ok := target.(*PhaseError); ok {
		return true
	}
	return target == ErrInvalidPhase || e.baseError.Is(target)
}

// CommandError reports an unrecognized slash command.
type CommandError struct {
	baseError
	Command string
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string) *CommandError {
	return &CommandError{
		baseError: baseError{
			message:    "unknown command",
			severity:   SeverityWarning,
			userFacing: true,
		},
		Command: command,
	}
}

// Error returns the formatted error message.
func (e *CommandError) Error() string {
	return fmt.Sprintf("unknown command: %s (type /help for a list)", e.Command)
}

// Is matches CommandError values and ErrUnknownCommand.
func (e *CommandError) Is(target error) bool {
	if _, ok := target.(*CommandError); ok {
		return true
	}
	return target == ErrUnknownCommand || e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Resolution Errors
// -----------------------------------------------------------------------------

// NotFoundError reports a model query with no match.
type NotFoundError struct {
	baseError
	ResourceType string
	Query        string
	Suggestions  []string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, query string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, query),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		Query:        query,
	}
}

// WithSuggestions attaches "did you mean" candidates.
func (e *NotFoundError) WithSuggestions(s []string) *NotFoundError {
	e.Suggestions = s
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s '%s' not found", e.ResourceType, e.Query)
	if len(e.Suggestions) > 0 {
		msg += "; did you mean " + strings.Join(e.Suggestions, ", ") + "?"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Is matches NotFoundError values and ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return target == ErrNotFound || e.baseError.Is(target)
}

// AmbiguousError reports a query matched by several models in the same tier.
// Candidates are sorted so the message is stable.
type AmbiguousError struct {
	baseError
	Query      string
	Candidates []string
}

// NewAmbiguousError creates a new AmbiguousError.
func NewAmbiguousError(query string, candidates []string) *AmbiguousError {
	return &AmbiguousError{
		baseError: baseError{
			message:    "ambiguous model query",
			severity:   SeverityWarning,
			userFacing: true,
		},
		Query:      query,
		Candidates: candidates,
	}
}

// Error returns the formatted error message.
func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("'%s' matches %d models: %s", e.Query, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// Is matches AmbiguousError values and ErrAmbiguousMatch.
func (e *AmbiguousError) Is(target error) bool {
	if _, ok := target.(*AmbiguousError); ok {
		return true
	}
	return target == ErrAmbiguousMatch || e.baseError.Is(target)
}

// DuplicateError reports a model that is already bound to a different slot.
type DuplicateError struct {
	baseError
	ModelID string
	Slot    int
}

// NewDuplicateError creates a new DuplicateError.
func NewDuplicateError(modelID string, slot int) *DuplicateError {
	return &DuplicateError{
		baseError: baseError{
			message:    "model already assigned",
			severity:   SeverityWarning,
			userFacing: true,
		},
		ModelID: modelID,
		Slot:    slot,
	}
}

// Error returns the formatted error message.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("model '%s' is already assigned to slot %d", e.ModelID, e.Slot)
}

// Is matches DuplicateError values and ErrDuplicateModel.
func (e *DuplicateError) Is(target error) bool {
	if _, ok := target.(*DuplicateError); ok {
		return true
	}
	return target == ErrDuplicateModel || e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Dispatch Errors
// -----------------------------------------------------------------------------

// DispatchError reports a failed remote call for a single slot.
//
// Example:
//
//	err := errors.NewDispatchError("status 502", cause).WithSlot(2, "gemini-flash")
//	fmt.Println(err) // "dispatch error [slot=2, model=gemini-flash]: status 502: ..."
type DispatchError struct {
	baseError
	Slot    int
	Model   string
	Timeout bool
}

// NewDispatchError creates a new DispatchError. Dispatch failures are retryable
// by repeating the command that triggered them.
func NewDispatchError(reason string, cause error) *DispatchError {
	return &DispatchError{
		baseError: baseError{
			message:    reason,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithSlot records which slot and model the call was made for.
func (e *DispatchError) WithSlot(slot int, model string) *DispatchError {
	e.Slot = slot
	e.Model = model
	return e
}

// WithTimeout marks the failure as a timeout.
func (e *DispatchError) WithTimeout(timeout bool) *DispatchError {
	e.Timeout = timeout
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *DispatchError) WithRetryable(r bool) *DispatchError {
	e.retryable = r
	return e
}

// Reason returns the short failure description without context.
func (e *DispatchError) Reason() string {
	return e.message
}

// Error returns the formatted error message.
func (e *DispatchError) Error() string {
	var parts []string
	if e.Slot > 0 {
		parts = append(parts, fmt.Sprintf("slot=%d", e.Slot))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}

	prefix := "dispatch error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("dispatch error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is matches DispatchError values, ErrDispatch, and ErrTimeout for timeouts.
func (e *DispatchError) Is(target error) bool {
	if _, ok := target.(*DispatchError); ok {
		return true
	}
	if target == ErrDispatch {
		return true
	}
	if e.Timeout && target == ErrTimeout {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Validation Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField sets the field that failed validation.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue sets the invalid value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.Field != "" {
		sb.WriteString(e.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(e.message)
	if e.Value != nil {
		fmt.Fprintf(&sb, " (got: %v)", e.Value)
	}
	if e.cause != nil {
		fmt.Fprintf(&sb, ": %v", e.cause)
	}
	return sb.String()
}

// Is matches ValidationError values and ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return target == ErrInvalidInput || e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error is transient and repeating the same
// command may succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var chatErr ChatError
	if As(err, &chatErr) {
		return chatErr.IsRetryable()
	}

	return Is(err, ErrTimeout)
}

// IsUserFacing returns true if the error message is safe to display in the chat.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    showInChat(err.Error())
//	} else {
//	    showInChat("An internal error occurred")
//	    log.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var chatErr ChatError
	if As(err, &chatErr) {
		return chatErr.IsUserFacing()
	}

	return Is(err, ErrNoActiveAgents) || Is(err, ErrMissingAPIKey) || Is(err, ErrCanceled)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement ChatError,
// SeverityWarning for ErrNoActiveAgents and ErrCanceled, and
// SeverityCritical for ErrEmptyContext, which signals a broken invariant.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var chatErr ChatError
	if As(err, &chatErr) {
		return chatErr.Severity()
	}
	if Is(err, ErrEmptyContext) {
		return SeverityCritical
	}
	if Is(err, ErrNoActiveAgents) || Is(err, ErrCanceled) {
		return SeverityWarning
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike a plain string concatenation, this preserves the ChatError interface.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to load catalog")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
