// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with TOML as the file format.
//
// Configuration is loaded from ~/.config/cmdfn/config.toml (or XDG equivalent on Linux,
// ~/Library/Application Support/cmdfn/config.toml on macOS, %APPDATA%\cmdfn\config.toml
// on Windows). The package provides type-safe access to the stream buffering policy,
// failure-preview cap, log level, and dotenv files loaded before every run.
package config
