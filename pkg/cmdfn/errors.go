// SPDX-License-Identifier: MPL-2.0

package cmdfn

import (
	"errors"
	"fmt"
	"os"
)

// TruncateCap bounds the stdout/stderr previews embedded in ExitError
// messages. The full captured streams remain available on the error value;
// only the rendered message is truncated.
var TruncateCap = 750

var (
	// ErrCommandNotFound is the sentinel error wrapped by CommandNotFoundError.
	ErrCommandNotFound = errors.New("command not found")
	// ErrNonZeroExit is the sentinel error wrapped by ExitError for processes
	// that exited with a nonzero code.
	ErrNonZeroExit = errors.New("command exited with nonzero code")
	// ErrSignaled is the sentinel error wrapped by ExitError for processes
	// terminated by a signal.
	ErrSignaled = errors.New("command terminated by signal")
	// ErrOptionConflict is the sentinel error wrapped by OptionConflictError.
	ErrOptionConflict = errors.New("conflicting execution-mode options")
	// ErrStdinClosed is returned by StdinFeeder.Feed after the invocation
	// has completed and the feeder has shut down.
	ErrStdinClosed = errors.New("stdin feeder is closed")
)

type (
	// CommandNotFoundError is returned when a command name cannot be resolved
	// on the search path, including its hyphenated fallback spelling.
	CommandNotFoundError struct {
		Name string
	}

	// OptionConflictError is returned when mutually exclusive execution-mode
	// options are combined on a single call.
	OptionConflictError struct {
		Options []string
	}

	// ExitError is the classified failure for a process that exited with a
	// nonzero code or was terminated by a signal. It carries the full
	// command line and both captured streams so callers can inspect them
	// programmatically; the rendered message truncates each stream to
	// TruncateCap bytes.
	ExitError struct {
		// Code is the process exit code, or Signaled (-1) for
		// signal-terminated processes.
		Code ExitCode
		// Signal is the terminating signal, set only when Code is Signaled.
		Signal os.Signal
		// Cmdline is the full argv that was executed, space-joined.
		Cmdline string
		// Stdout and Stderr hold the complete captured streams.
		Stdout string
		Stderr string
		// StdoutRedirected and StderrRedirected record that the stream went
		// to a caller-supplied sink and was not captured.
		StdoutRedirected bool
		StderrRedirected bool
	}
)

// Error implements the error interface.
func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("command not found: %q", e.Name)
}

// Unwrap returns ErrCommandNotFound so callers can use errors.Is.
func (e *CommandNotFoundError) Unwrap() error { return ErrCommandNotFound }

// Error implements the error interface.
func (e *OptionConflictError) Error() string {
	return fmt.Sprintf("conflicting execution-mode options: %v", e.Options)
}

// Unwrap returns ErrOptionConflict so callers can use errors.Is.
func (e *OptionConflictError) Unwrap() error { return ErrOptionConflict }

// Error renders the failure with the executed command line and bounded
// previews of both streams.
func (e *ExitError) Error() string {
	head := fmt.Sprintf("exit code %d", e.Code)
	if e.Code.IsSignaled() && e.Signal != nil {
		head = fmt.Sprintf("terminated by signal %v", e.Signal)
	}
	return fmt.Sprintf("%s\n\n  RAN: %s\n\n  STDOUT:\n%s\n\n  STDERR:\n%s",
		head,
		e.Cmdline,
		preview(e.Stdout, e.StdoutRedirected),
		preview(e.Stderr, e.StderrRedirected),
	)
}

// Unwrap returns ErrSignaled for signal terminations and ErrNonZeroExit
// otherwise, so callers can discriminate the two with errors.Is. Exact
// codes are discriminated via errors.As and the Code field.
func (e *ExitError) Unwrap() error {
	if e.Code.IsSignaled() {
		return ErrSignaled
	}
	return ErrNonZeroExit
}

// preview truncates a captured stream for message rendering, marking how
// many bytes were elided.
func preview(s string, redirected bool) string {
	if redirected {
		return "<redirected>"
	}
	if len(s) <= TruncateCap {
		return s
	}
	return fmt.Sprintf("%s... (%d more bytes available)", s[:TruncateCap], len(s)-TruncateCap)
}

// ExitCodeOf extracts the classified exit code from an error returned by
// this package. It returns 0 for nil errors and -2 for errors that carry no
// exit classification (resolution or I/O failures).
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -2
}
