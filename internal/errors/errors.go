// Package errors provides standardized error handling for regrename.
// It defines the error kinds a rename run can produce, the typed errors that
// carry them, and helpers for classifying errors by kind.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
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
	// Renamer error kinds
	SourceNotFile
	UnsupportedFilename
	RegexError
	PatternFindAbsent
	IOError
	// Enumerator error kinds
	GlobError
	// Config error kinds
	InvalidConfig
)

var kindNames = map[ErrorKind]string{
	Unknown:             "Unknown",
	SourceNotFile:       "SourceNotFile",
	UnsupportedFilename: "UnsupportedFilename",
	RegexError:          "RegexError",
	PatternFindAbsent:   "PatternFindAbsent",
	IOError:             "IOError",
	GlobError:           "GlobError",
	InvalidConfig:       "InvalidConfig",
}

// String returns the name of the kind
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinel errors for matching with Is
var (
	ErrSourceNotFile       = NewRenameError("path has no file name", "", SourceNotFile, nil)
	ErrUnsupportedFilename = NewRenameError("file name is not valid text", "", UnsupportedFilename, nil)
	ErrPatternFindAbsent   = NewRenameError("find pattern not present", "", PatternFindAbsent, nil)
	ErrInvalidConfig       = NewConfigError("invalid configuration", "", InvalidConfig, nil)
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

// RenameError represents a failure while renaming a single candidate path
type RenameError struct {
	ApplicationError
	path string
}

// NewRenameError creates a new rename error
func NewRenameError(msg string, path string, kind ErrorKind, err error) *RenameError {
	return &RenameError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the rename error message
func (e *RenameError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Is matches another RenameError of the same kind, so that the sentinel
// errors compare equal to path-specific instances.
func (e *RenameError) Is(target error) bool {
	t, ok := target.(*RenameError)
	if !ok {
		return false
	}
	return t.kind == e.kind && t.path == ""
}

// Path returns the file path associated with the error
func (e *RenameError) Path() string {
	return e.path
}

// GlobPatternError reports a malformed file glob
type GlobPatternError struct {
	ApplicationError
	pattern string
}

// NewGlobError creates a new glob pattern error
func NewGlobError(msg string, pattern string, err error) *GlobPatternError {
	return &GlobPatternError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: GlobError,
		},
		pattern: pattern,
	}
}

// Error returns the glob error message
func (e *GlobPatternError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %q: %v", e.msg, e.pattern, e.err)
	}
	return fmt.Sprintf("%s: %q", e.msg, e.pattern)
}

// Pattern returns the offending pattern
func (e *GlobPatternError) Pattern() string {
	return e.pattern
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

type kinded interface {
	Kind() ErrorKind
}

// KindOf returns the kind of the first error in err's chain that has one.
// Errors without a kind report Unknown.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(kinded); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsPatternFindAbsent checks if the error means the find pattern did not match
func IsPatternFindAbsent(err error) bool {
	return KindOf(err) == PatternFindAbsent
}

// IsIOError checks if the error is a filesystem failure during rename
func IsIOError(err error) bool {
	return KindOf(err) == IOError
}

// IsGlobError checks if the error is a malformed glob pattern
func IsGlobError(err error) bool {
	var globErr *GlobPatternError
	return errors.As(err, &globErr)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}
