package tts

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for the speech system.
var (
	// Engine errors
	ErrEngineNotAvailable = errors.New("speech engine is not available")
	ErrInvalidEngine      = errors.New("invalid speech engine")
	ErrSynthesisFailed    = errors.New("audio synthesis failed")

	// Player errors
	ErrPlaybackFailed         = errors.New("audio playback failed")
	ErrNothingToPlay          = errors.New("no audio to play")
	ErrAudioDeviceUnavailable = errors.New("audio device unavailable")
	ErrInvalidAudioFormat     = errors.New("invalid audio format")

	// Controller errors
	ErrControllerClosed = errors.New("speech controller has been closed")
	ErrInvalidRate      = errors.New("rate must be between 0.5 and 2.0")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsRecoverableError checks if an error is recoverable.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}

	for _, fatal := range []error{
		ErrEngineNotAvailable,
		ErrAudioDeviceUnavailable,
		ErrControllerClosed,
		ErrInvalidConfig,
	} {
		if errors.Is(err, fatal) {
			return false
		}
	}

	// Most errors are recoverable
	return true
}

// ErrorSeverity represents the severity of an error.
type ErrorSeverity int

const (
	// SeverityInfo is for informational messages.
	SeverityInfo ErrorSeverity = iota
	// SeverityWarning is for warnings that don't prevent operation.
	SeverityWarning
	// SeverityError is for errors that prevent normal operation.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity.
func (s ErrorSeverity) String() string {
	switch s {
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

// TTSError provides detailed error information.
type TTSError struct {
	Err       error                  // One of the sentinel errors above
	Cause     error                  // Underlying failure, may be nil
	Component string                 // Component that generated the error
	Action    string                 // Action being performed when error occurred
	Severity  ErrorSeverity          // Severity of the error
	Timestamp int64                  // Unix timestamp when error occurred
	Context   map[string]interface{} // Additional context
}

// Error implements the error interface.
func (e *TTSError) Error() string {
	msg := "unknown speech error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Component != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Component, e.Action, msg)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the sentinel and the cause.
func (e *TTSError) Unwrap() []error {
	var errs []error
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// IsRecoverable checks if the error is recoverable.
func (e *TTSError) IsRecoverable() bool {
	return IsRecoverableError(e.Err)
}

// NewError creates a new speech error with context.
func NewError(err error, component, action string) *TTSError {
	return &TTSError{
		Err:       err,
		Component: component,
		Action:    action,
		Severity:  SeverityError,
		Timestamp: time.Now().Unix(),
		Context:   make(map[string]interface{}),
	}
}

// WithCause sets the underlying failure.
func (e *TTSError) WithCause(cause error) *TTSError {
	e.Cause = cause
	return e
}

// WithSeverity sets the error severity.
func (e *TTSError) WithSeverity(severity ErrorSeverity) *TTSError {
	e.Severity = severity
	return e
}

// WithContext adds context to the error.
func (e *TTSError) WithContext(key string, value interface{}) *TTSError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}
