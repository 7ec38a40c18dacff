// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for cmdfn.
//
// This package implements the Cobra command hierarchy for the cmdfn CLI:
// the root command, `run` for invoking external commands with stream
// control, `which` for resolution lookups, and `config` for managing the
// configuration file.
package cmd
