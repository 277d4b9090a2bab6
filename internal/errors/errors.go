// Package errors provides standardized error handling for the splay4d
// application. It defines the error kinds used across conversion, frame
// loading, and playback, plus helper functions for consistent error
// creation, wrapping, and classification.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package functions that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Conversion error kinds
	InputNotFound
	ConversionFailure
	EmptyResult
	// Frame loading error kinds
	FrameUnreadable
	FrameFormatInvalid
	// Playback error kinds
	SceneUnavailable
	JobInFlight
	// Config error kinds
	InvalidConfig
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FrameError represents errors raised while loading a frame file
type FrameError struct {
	ApplicationError
	path string
}

// NewFrameError creates a new frame error
func NewFrameError(msg string, path string, kind ErrorKind, err error) *FrameError {
	return &FrameError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the frame error message
func (e *FrameError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the frame file path associated with the error
func (e *FrameError) Path() string {
	return e.path
}

// ConversionError represents errors raised during a conversion job
type ConversionError struct {
	ApplicationError
	input string
}

// NewConversionError creates a new conversion error
func NewConversionError(msg string, input string, kind ErrorKind, err error) *ConversionError {
	return &ConversionError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		input: input,
	}
}

// Error returns the conversion error message
func (e *ConversionError) Error() string {
	if e.input != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.input, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.input)
	}
	return e.ApplicationError.Error()
}

// Input returns the conversion input path associated with the error
func (e *ConversionError) Input() string {
	return e.input
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// NewKind creates a new error with a message and an explicit kind
func NewKind(msg string, kind ErrorKind) error {
	return &ApplicationError{
		msg:  msg,
		kind: kind,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the first kind other than Unknown carried in err's
// chain, so context wrappers do not mask the classification
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(interface{ Kind() ErrorKind }); ok {
			if kind := k.Kind(); kind != Unknown {
				return kind
			}
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsInputNotFound checks if the error is an input-not-found error
func IsInputNotFound(err error) bool {
	return KindOf(err) == InputNotFound
}

// IsConversionFailure checks if the error is a conversion failure
func IsConversionFailure(err error) bool {
	return KindOf(err) == ConversionFailure
}

// IsEmptyResult checks if the error is an empty-result error
func IsEmptyResult(err error) bool {
	return KindOf(err) == EmptyResult
}

// IsFrameLoadFailure checks if the error came from loading a frame file,
// whether the file was unreadable or its contents malformed
func IsFrameLoadFailure(err error) bool {
	k := KindOf(err)
	return k == FrameUnreadable || k == FrameFormatInvalid
}

// IsSceneUnavailable checks if the error is a scene-unavailable error
func IsSceneUnavailable(err error) bool {
	return KindOf(err) == SceneUnavailable
}

// IsJobInFlight checks if the error is a job-in-flight rejection
func IsJobInFlight(err error) bool {
	return KindOf(err) == JobInFlight
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}
