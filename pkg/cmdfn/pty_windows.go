// SPDX-License-Identifier: MPL-2.0

//go:build windows

package cmdfn

import "fmt"

// runForegroundPTY is not supported on Windows.
func (inv *Invocation) runForegroundPTY() error {
	return inv.failSpawn(fmt.Errorf("pty: not supported on this platform"))
}
