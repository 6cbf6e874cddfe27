// Package errors provides custom error types for the fcupdater system.
// These errors enable better error handling, programmatic error checking,
// and let callers tell apart failures such as "file missing", "format
// unrecognized" and "headers absent".
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As forward to the standard library so callers need one errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors for the fcupdater system
var (
	// ErrArgumentConflict indicates that mutually exclusive options were combined
	ErrArgumentConflict = errors.New("conflicting arguments")

	// ErrFormat indicates that a spreadsheet container could not be used
	ErrFormat = errors.New("format error")

	// ErrDecode indicates that legacy text could not be decoded
	ErrDecode = errors.New("decode error")

	// ErrIntegrity indicates that a written container failed verification
	ErrIntegrity = errors.New("integrity check failed")

	// ErrIO indicates a filesystem access failure
	ErrIO = errors.New("io error")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrToolUnavailable indicates that an external helper is not installed
	ErrToolUnavailable = errors.New("external tool unavailable")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ArgumentConflictError is returned when two mutually exclusive flags are set.
type ArgumentConflictError struct {
	Flags []string
}

// Error implements the error interface
func (e *ArgumentConflictError) Error() string {
	return fmt.Sprintf("arguments cannot be used together: %s", strings.Join(e.Flags, ", "))
}

// Is implements errors.Is support
func (e *ArgumentConflictError) Is(target error) bool {
	return target == ErrArgumentConflict
}

// NewArgumentConflictError creates a new ArgumentConflictError
func NewArgumentConflictError(flags ...string) *ArgumentConflictError {
	return &ArgumentConflictError{Flags: flags}
}

// FormatKind distinguishes the reasons a container is rejected.
type FormatKind string

// Format error kinds.
const (
	FormatMissing        FormatKind = "missing"
	FormatUnrecognized   FormatKind = "unrecognized"
	FormatCorrupt        FormatKind = "corrupt"
	FormatHeaderNotFound FormatKind = "header_not_found"
)

// FormatError represents a container that is missing, unreadable or has no
// recognizable header row.
type FormatError struct {
	Kind    FormatKind
	Path    string
	Sheet   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *FormatError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case FormatMissing:
		b.WriteString("file not found")
	case FormatUnrecognized:
		b.WriteString("unrecognized spreadsheet format")
	case FormatHeaderNotFound:
		b.WriteString("header row not found")
	default:
		b.WriteString("corrupt spreadsheet")
	}
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	if e.Sheet != "" {
		fmt.Fprintf(&b, " (sheet %s)", e.Sheet)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap implements errors.Unwrap
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// NewFormatError creates a new FormatError
func NewFormatError(kind FormatKind, path, message string, err error) *FormatError {
	return &FormatError{
		Kind:    kind,
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// DecodeError represents legacy text that could not be decoded in strict mode.
type DecodeError struct {
	CodePage int
	Len      int
	Sample   string
	Err      error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("cannot decode %d bytes from code page %d", e.Len, e.CodePage)
	if e.Sample != "" {
		msg += " (bytes " + e.Sample + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements errors.Unwrap
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// NewDecodeError creates a new DecodeError. At most the first 16 bytes are
// kept as a hex sample.
func NewDecodeError(codePage int, data []byte, err error) *DecodeError {
	sample := data
	if len(sample) > 16 {
		sample = sample[:16]
	}
	return &DecodeError{
		CodePage: codePage,
		Len:      len(data),
		Sample:   fmt.Sprintf("% x", sample),
		Err:      err,
	}
}

// IntegrityError represents a written container that is structurally incomplete.
type IntegrityError struct {
	Path    string
	Part    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *IntegrityError) Error() string {
	if e.Part != "" {
		return fmt.Sprintf("integrity check failed for %s: part %s: %s", e.Path, e.Part, e.Message)
	}
	return fmt.Sprintf("integrity check failed for %s: %s", e.Path, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// NewIntegrityError creates a new IntegrityError
func NewIntegrityError(path, part, message string, err error) *IntegrityError {
	return &IntegrityError{
		Path:    path,
		Part:    part,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, msg)
	}
	return fmt.Sprintf("configuration error: %s", msg)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// DependencyError indicates a required external dependency is missing
type DependencyError struct {
	Dependency string
	Message    string
}

// Error implements the error interface
func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s: %s", e.Dependency, e.Message)
}

// Is implements errors.Is support
func (e *DependencyError) Is(target error) bool {
	return target == ErrToolUnavailable
}

// NewDependencyError creates a new DependencyError
func NewDependencyError(dependency, message string) *DependencyError {
	return &DependencyError{Dependency: dependency, Message: message}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename", "backup", "sync"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{
		Operation: operation,
		Duration:  duration,
		Message:   message,
	}
}

// ProcessError represents an error from an external process or command
type ProcessError struct {
	Operation string // What operation was being performed
	Command   string // The command that was executed
	Output    string // Stderr output from the process
	ExitCode  int    // Exit code if available
	Err       error  // Underlying error
}

// Error implements the error interface
func (e *ProcessError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("process error during %s (command: %s): %v\nOutput: %s", e.Operation, e.Command, e.Err, e.Output)
	}
	return fmt.Sprintf("process error during %s (command: %s): %v", e.Operation, e.Command, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// NewProcessError creates a new ProcessError
func NewProcessError(operation, command, output string, err error) *ProcessError {
	return &ProcessError{
		Operation: operation,
		Command:   command,
		Output:    output,
		Err:       err,
	}
}

// Helper functions for error checking

// IsArgumentConflict checks if an error is an argument conflict
func IsArgumentConflict(err error) bool {
	return errors.Is(err, ErrArgumentConflict)
}

// IsFormat checks if an error is any format error
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsMissing checks if an error reports a missing container
func IsMissing(err error) bool {
	return formatKind(err) == FormatMissing
}

// IsUnrecognized checks if an error reports an unrecognized container
func IsUnrecognized(err error) bool {
	return formatKind(err) == FormatUnrecognized
}

// IsHeaderNotFound checks if an error reports an absent header row
func IsHeaderNotFound(err error) bool {
	return formatKind(err) == FormatHeaderNotFound
}

func formatKind(err error) FormatKind {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsDecode checks if an error is a decode error
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// IsIntegrity checks if an error is an integrity error
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

// IsIO checks if an error is an IO error
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsToolUnavailable checks if an error reports a missing external tool
func IsToolUnavailable(err error) bool {
	return errors.Is(err, ErrToolUnavailable)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapFormat wraps an error as a FormatError of the given kind
func WrapFormat(kind FormatKind, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewFormatError(kind, path, err.Error(), err)
}
