// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// BufferingLine drains streams one newline-terminated unit at a time.
	BufferingLine BufferingPolicy = "line"

	// LogLevelDebug logs everything including per-invocation spawn details.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs invocation lifecycle events.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs only recoverable problems. This is the default.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only hard failures.
	LogLevelError LogLevel = "error"

	// DefaultPreviewCap bounds the per-stream previews embedded in
	// nonzero-exit error messages.
	DefaultPreviewCap = 750
)

var (
	// ErrInvalidBuffering is the sentinel error wrapped by InvalidBufferingError.
	ErrInvalidBuffering = errors.New("invalid buffering policy")
	// ErrInvalidLogLevel is the sentinel error wrapped by InvalidLogLevelError.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidPreviewCap is the sentinel error wrapped by InvalidPreviewCapError.
	ErrInvalidPreviewCap = errors.New("invalid preview cap")
	// ErrInvalidEnvFilePath is the sentinel error wrapped by InvalidEnvFilePathError.
	ErrInvalidEnvFilePath = errors.New("invalid env file path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// BufferingPolicy selects how stream collectors slice process output:
	// "line" for newline-terminated units, or a positive integer literal
	// (e.g. "4096") for fixed-size byte chunks.
	BufferingPolicy string

	// InvalidBufferingError is returned when a BufferingPolicy is neither
	// "line" nor a positive integer. It wraps ErrInvalidBuffering for
	// errors.Is() compatibility.
	InvalidBufferingError struct {
		Value BufferingPolicy
	}

	// LogLevel specifies the minimum severity emitted by the logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// EnvFilePath represents a filesystem path to a dotenv file loaded
	// before every run. A valid path must not be whitespace-only.
	EnvFilePath string

	// InvalidEnvFilePathError is returned when an EnvFilePath value is
	// empty or whitespace-only. It wraps ErrInvalidEnvFilePath for errors.Is().
	InvalidEnvFilePathError struct {
		Value EnvFilePath
	}

	// InvalidPreviewCapError is returned when PreviewCap is negative.
	// It wraps ErrInvalidPreviewCap for errors.Is() compatibility.
	InvalidPreviewCapError struct {
		Value int
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Buffering sets the default stream collection granularity.
		Buffering BufferingPolicy `toml:"buffering" mapstructure:"buffering"`
		// PreviewCap bounds the stdout/stderr previews embedded in
		// failure messages.
		PreviewCap int `toml:"preview_cap" mapstructure:"preview_cap"`
		// LogLevel sets the minimum logger severity.
		LogLevel LogLevel `toml:"log_level" mapstructure:"log_level"`
		// EnvFiles lists dotenv files loaded into the child environment
		// before every run.
		EnvFiles []EnvFilePath `toml:"env_files" mapstructure:"env_files"`
	}
)

// String returns the string representation of the BufferingPolicy.
func (p BufferingPolicy) String() string { return string(p) }

// IsValid returns whether the BufferingPolicy is "line" or a positive
// integer literal, and a list of validation errors if it is not.
func (p BufferingPolicy) IsValid() (bool, []error) {
	if _, err := p.ChunkSize(); err != nil {
		return false, []error{err}
	}
	return true, nil
}

// ChunkSize translates the policy into a collector chunk size: 0 means
// line-buffered, any positive value means fixed-size byte chunks.
func (p BufferingPolicy) ChunkSize() (int, error) {
	if p == BufferingLine || p == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(string(p))
	if err != nil || n <= 0 {
		return 0, &InvalidBufferingError{Value: p}
	}
	return n, nil
}

// Error implements the error interface for InvalidBufferingError.
func (e *InvalidBufferingError) Error() string {
	return fmt.Sprintf("invalid buffering policy %q (valid: line, or a positive byte count)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidBufferingError) Unwrap() error {
	return ErrInvalidBuffering
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error {
	return ErrInvalidLogLevel
}

// String returns the string representation of the EnvFilePath.
func (p EnvFilePath) String() string { return string(p) }

// IsValid returns whether the EnvFilePath is valid.
// A valid path must be non-empty and not whitespace-only.
func (p EnvFilePath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidEnvFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidEnvFilePathError.
func (e *InvalidEnvFilePathError) Error() string {
	return fmt.Sprintf("invalid env file path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidEnvFilePath for errors.Is() compatibility.
func (e *InvalidEnvFilePathError) Unwrap() error { return ErrInvalidEnvFilePath }

// Error implements the error interface for InvalidPreviewCapError.
func (e *InvalidPreviewCapError) Error() string {
	return fmt.Sprintf("invalid preview cap %d: must be non-negative", e.Value)
}

// Unwrap returns ErrInvalidPreviewCap for errors.Is() compatibility.
func (e *InvalidPreviewCapError) Unwrap() error { return ErrInvalidPreviewCap }

// IsValid returns whether the Config has valid fields.
// It delegates to Buffering.IsValid(), LogLevel.IsValid(), and each
// EnvFiles entry's IsValid(). PreviewCap must be non-negative.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Buffering.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.PreviewCap < 0 {
		errs = append(errs, &InvalidPreviewCapError{Value: c.PreviewCap})
	}
	for _, f := range c.EnvFiles {
		if valid, fieldErrs := f.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Buffering:  BufferingLine,
		PreviewCap: DefaultPreviewCap,
		LogLevel:   LogLevelWarn,
		EnvFiles:   []EnvFilePath{},
	}
}
