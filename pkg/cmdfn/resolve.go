// SPDX-License-Identifier: MPL-2.0

package cmdfn

import (
	"os/exec"
	"strings"
)

// Resolve looks up a logical command name on the search path and returns a
// callable Command for it. Resolution mirrors the OS path-search semantics
// of exec.LookPath. If the literal name is not found and it contains an
// underscore, the lookup is retried with underscores rewritten to hyphens,
// supporting commands whose real name uses dashes (for example
// "google_chrome" resolving to "google-chrome").
//
// Resolution failure returns a CommandNotFoundError; no process is ever
// spawned for an unresolvable name.
func Resolve(name string) (*Command, error) {
	path, err := exec.LookPath(name)
	if err != nil && strings.Contains(name, "_") {
		path, err = exec.LookPath(strings.ReplaceAll(name, "_", "-"))
	}
	if err != nil {
		return nil, &CommandNotFoundError{Name: name}
	}
	return New(path), nil
}

// Which returns the resolved executable path for name, including the
// underscore-to-hyphen fallback, or "" when the name does not resolve.
func Which(name string) string {
	cmd, err := Resolve(name)
	if err != nil {
		return ""
	}
	return cmd.Path()
}
