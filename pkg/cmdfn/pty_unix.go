// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package cmdfn

import (
	"fmt"
	"io"
	"os"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// runForegroundPTY runs the process on a pseudo-terminal wired to the
// caller's terminal. The controlling terminal is put into raw mode for the
// duration so keystrokes reach the child unmangled. Nothing is captured.
func (inv *Invocation) runForegroundPTY() error {
	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return inv.failSpawn(fmt.Errorf("pty: stdin is not a terminal"))
	}

	ptmx, err := pty.Start(inv.cmd)
	if err != nil {
		return inv.failSpawn(fmt.Errorf("pty: %w", err))
	}
	defer ptmx.Close() //nolint:errcheck // pty teardown

	if err := pty.InheritSize(os.Stdin, ptmx); err != nil {
		inv.logger.Debug("pty resize failed", "invocation", inv.id, "err", err)
	}

	oldState, err := term.MakeRaw(stdinFd)
	if err == nil {
		defer term.Restore(stdinFd, oldState) //nolint:errcheck // terminal teardown
	}

	go io.Copy(ptmx, os.Stdin) //nolint:errcheck // ends when the pty closes

	// The copy returns with EIO once the child side closes; that is the
	// normal end-of-session condition for a pty master.
	io.Copy(os.Stdout, ptmx) //nolint:errcheck

	inv.stdoutRedirected = true
	inv.stderrRedirected = true
	inv.finish()
	return inv.err
}
