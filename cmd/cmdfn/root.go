// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cmdfn/internal/config"
	"cmdfn/pkg/cmdfn"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose forces debug-level logging regardless of config
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// appCfg is the configuration loaded by initRootConfig; nil until then.
	appCfg *config.Config

	// logger carries spawn and drain diagnostics for every invocation
	// issued by the CLI.
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "cmdfn",
	})

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "cmdfn",
		Short: "Invoke external commands with stream control",
		Long: TitleStyle.Render("cmdfn") + SubtitleStyle.Render(" - invoke external commands with stream control") + `

cmdfn runs external executables with precise control over how their
stdout and stderr are collected: line-buffered or fixed-size chunks,
merged or separate, streamed to the terminal or handed to a PTY for
programs that change behavior when not attached to one.

Nonzero exits are reported with a preview of both captured streams and
propagated as the CLI's own exit status.

` + SubtitleStyle.Render("Examples:") + `
  cmdfn run ls -la              Run 'ls -la' and stream its output
  cmdfn run --pty top           Run 'top' on a pseudo-terminal
  cmdfn run --merge-stderr make Interleave stderr with stdout
  cmdfn which go git            Resolve executables on PATH
  cmdfn config show             Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/cmdfn/config.toml)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(whichCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	cfg, err := config.NewProvider().Load(context.Background(), config.LoadOptions{
		ConfigFilePath: cfgFile,
	})
	if err != nil {
		// Surface config problems but keep going on defaults.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+err.Error())
		cfg = config.DefaultConfig()
	}
	appCfg = cfg
	cmdfn.TruncateCap = cfg.PreviewCap

	if verbose {
		logger.SetLevel(log.DebugLevel)
		return
	}
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		logger.SetLevel(log.DebugLevel)
	case config.LogLevelInfo:
		logger.SetLevel(log.InfoLevel)
	case config.LogLevelError:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}
}

// loadedConfig returns the configuration loaded during initialization,
// falling back to defaults when called before cobra initialization ran.
func loadedConfig() *config.Config {
	if appCfg != nil {
		return appCfg
	}
	return config.DefaultConfig()
}
