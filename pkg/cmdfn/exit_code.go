// SPDX-License-Identifier: MPL-2.0

package cmdfn

import "strconv"

// ExitCode represents a process exit status code. Exit codes are in the
// range 0-255 on POSIX systems; the value -1 means the process was
// terminated by a signal rather than exiting on its own. The zero value (0)
// means success.
type ExitCode int

// Signaled is the ExitCode reported for signal-terminated processes.
const Signaled ExitCode = -1

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// IsSignaled returns true if the process was terminated by a signal.
func (c ExitCode) IsSignaled() bool { return c == Signaled }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
