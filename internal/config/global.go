// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride redirects ConfigDir for tests, since os.UserHomeDir()
// does not reliably respect the HOME environment variable on all platforms
// (e.g., macOS in CI).
var configDirOverride string

// SetConfigDirOverride sets a custom config directory path, bypassing the
// platform lookup. Primarily intended for testing.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
}
