// SPDX-License-Identifier: MPL-2.0

package cmdfn

import (
	"errors"
	"strings"
	"testing"
)

func TestExitErrorPreviewTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", TruncateCap+50)
	err := &ExitError{
		Code:    1,
		Cmdline: "/bin/true",
		Stdout:  long,
		Stderr:  "short",
	}

	msg := err.Error()
	if !strings.Contains(msg, "... (50 more bytes available)") {
		t.Errorf("message does not mark elided bytes:\n%s", msg)
	}
	if strings.Contains(msg, long) {
		t.Error("message contains the untruncated stream")
	}
	if err.Stdout != long {
		t.Error("full stdout is no longer accessible on the error value")
	}
	if !strings.Contains(msg, "RAN: /bin/true") {
		t.Errorf("message does not include the executed command line:\n%s", msg)
	}
	if !strings.Contains(msg, "short") {
		t.Errorf("message does not include the short stderr preview:\n%s", msg)
	}
}

func TestExitErrorShortStreamsUntruncated(t *testing.T) {
	t.Parallel()

	err := &ExitError{Code: 2, Cmdline: "x", Stdout: "ok", Stderr: ""}
	if strings.Contains(err.Error(), "more bytes available") {
		t.Errorf("short stream was truncated:\n%s", err.Error())
	}
}

func TestExitErrorSentinels(t *testing.T) {
	t.Parallel()

	nonzero := &ExitError{Code: 3}
	if !errors.Is(nonzero, ErrNonZeroExit) {
		t.Error("nonzero ExitError does not wrap ErrNonZeroExit")
	}
	if errors.Is(nonzero, ErrSignaled) {
		t.Error("nonzero ExitError wraps ErrSignaled")
	}

	signaled := &ExitError{Code: Signaled}
	if !errors.Is(signaled, ErrSignaled) {
		t.Error("signaled ExitError does not wrap ErrSignaled")
	}
	if errors.Is(signaled, ErrNonZeroExit) {
		t.Error("signaled ExitError wraps ErrNonZeroExit")
	}
}

func TestExitCodeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ExitCode
	}{
		{name: "nil is success", err: nil, want: 0},
		{name: "exit error carries its code", err: &ExitError{Code: 42}, want: 42},
		{name: "unclassified errors map to -2", err: errors.New("io fault"), want: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ExitCodeOf(tt.err); got != tt.want {
				t.Errorf("ExitCodeOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCodePredicates(t *testing.T) {
	t.Parallel()

	if !ExitCode(0).IsSuccess() {
		t.Error("ExitCode(0).IsSuccess() = false")
	}
	if ExitCode(1).IsSuccess() {
		t.Error("ExitCode(1).IsSuccess() = true")
	}
	if !Signaled.IsSignaled() {
		t.Error("Signaled.IsSignaled() = false")
	}
	if got := ExitCode(42).String(); got != "42" {
		t.Errorf("ExitCode(42).String() = %q", got)
	}
}
