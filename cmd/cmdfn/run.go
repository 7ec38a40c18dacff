// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"cmdfn/internal/config"
	"cmdfn/pkg/cmdfn"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// runFlags holds the flag values for `cmdfn run`, separated from the cobra
// wiring so option construction stays testable.
type runFlags struct {
	foreground  bool
	pty         bool
	mergeStderr bool
	buffer      string
	dir         string
	stdinData   string
	envFiles    []string
	envPairs    []string
}

var (
	runOpts runFlags

	runCmd = &cobra.Command{
		Use:   "run [flags] <command> [args...]",
		Short: "Invoke a command and stream its output",
		Long: `Invoke a command and stream its output.

Arguments are compiled with the same rules the library applies: tokens
are re-split on unquoted whitespace, so quote values that must stay a
single argument.

The exit status of the child becomes the exit status of cmdfn; commands
terminated by a signal exit with 128 plus the signal number.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvocation(args)
		},
	}
)

func init() {
	// Flag parsing stops at the first positional, so flags belonging to the
	// invoked command need no `--` separator.
	runCmd.Flags().SetInterspersed(false)
	runCmd.Flags().BoolVar(&runOpts.foreground, "fg", false, "attach the command to the terminal without capturing output")
	runCmd.Flags().BoolVar(&runOpts.pty, "pty", false, "run the command on a pseudo-terminal (unix only)")
	runCmd.Flags().BoolVar(&runOpts.mergeStderr, "merge-stderr", false, "interleave stderr with stdout")
	runCmd.Flags().StringVar(&runOpts.buffer, "buffer", "", "stream buffering: 'line' or a byte count (default from config)")
	runCmd.Flags().StringVar(&runOpts.dir, "dir", "", "working directory for the command")
	runCmd.Flags().StringVar(&runOpts.stdinData, "stdin", "", "string fed to the command's stdin")
	runCmd.Flags().StringArrayVar(&runOpts.envFiles, "env-file", nil, "dotenv file loaded into the command environment (repeatable)")
	runCmd.Flags().StringArrayVarP(&runOpts.envPairs, "env", "e", nil, "KEY=VALUE overlay on the command environment (repeatable)")
}

func runInvocation(args []string) error {
	cfg := loadedConfig()

	env, err := collectEnv(cfg.EnvFiles, runOpts.envFiles, runOpts.envPairs)
	if err != nil {
		return err
	}

	opts, err := buildRunOptions(runOpts, cfg, env)
	if err != nil {
		return err
	}

	fn, err := cmdfn.Resolve(args[0])
	if err != nil {
		if errors.Is(err, cmdfn.ErrCommandNotFound) {
			return &ExitError{Code: 127, Err: err}
		}
		return err
	}

	callArgs := make([]any, 0, len(opts)+len(args)-1)
	for _, opt := range opts {
		callArgs = append(callArgs, opt)
	}
	for _, arg := range args[1:] {
		callArgs = append(callArgs, arg)
	}

	_, err = fn.Call(callArgs...)
	return classifyRunError(err)
}

// buildRunOptions translates flags and configuration into invocation
// options. In the default mode output is streamed through per-unit
// callbacks so the configured buffering policy is observable; --fg and
// --pty hand the terminal to the child instead.
func buildRunOptions(f runFlags, cfg *config.Config, env map[string]string) ([]cmdfn.Option, error) {
	if f.foreground && f.pty {
		return nil, fmt.Errorf("--fg and --pty are mutually exclusive")
	}

	policy := cfg.Buffering
	if f.buffer != "" {
		policy = config.BufferingPolicy(f.buffer)
	}
	chunk, err := policy.ChunkSize()
	if err != nil {
		return nil, err
	}

	opts := []cmdfn.Option{cmdfn.WithLogger(logger)}

	switch {
	case f.pty:
		opts = append(opts, cmdfn.ForegroundPTY())
	case f.foreground:
		opts = append(opts, cmdfn.Foreground())
	default:
		opts = append(opts, cmdfn.StdoutFunc(func(ev cmdfn.StreamEvent) bool {
			fmt.Fprint(os.Stdout, ev.Data)
			return false
		}))
		if !f.mergeStderr {
			opts = append(opts, cmdfn.StderrFunc(func(ev cmdfn.StreamEvent) bool {
				fmt.Fprint(os.Stderr, ev.Data)
				return false
			}))
		}
		if chunk > 0 {
			opts = append(opts, cmdfn.ByteBuffered(chunk))
		} else {
			opts = append(opts, cmdfn.LineBuffered())
		}
	}

	if f.mergeStderr {
		opts = append(opts, cmdfn.MergeStderr())
	}
	if f.dir != "" {
		opts = append(opts, cmdfn.WithDir(f.dir))
	}
	if f.stdinData != "" {
		opts = append(opts, cmdfn.WithStdinData(f.stdinData))
	}
	if len(env) > 0 {
		opts = append(opts, cmdfn.WithEnv(env))
	}

	return opts, nil
}

// collectEnv merges dotenv files from the config and the command line with
// explicit KEY=VALUE pairs; later sources win.
func collectEnv(cfgFiles []config.EnvFilePath, flagFiles, pairs []string) (map[string]string, error) {
	files := make([]string, 0, len(cfgFiles)+len(flagFiles))
	for _, f := range cfgFiles {
		files = append(files, string(f))
	}
	files = append(files, flagFiles...)

	env := make(map[string]string)
	for _, file := range files {
		vars, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("load env file %s: %w", file, err)
		}
		for k, v := range vars {
			env[k] = v
		}
	}

	for _, pair := range pairs {
		k, v, err := splitEnvPair(pair)
		if err != nil {
			return nil, err
		}
		env[k] = v
	}

	return env, nil
}

func splitEnvPair(pair string) (string, string, error) {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '=' {
			if i == 0 {
				break
			}
			return pair[:i], pair[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid --env value %q: want KEY=VALUE", pair)
}

// classifyRunError maps invocation failures onto the CLI's exit status:
// the child's own code for nonzero exits, 128 plus the signal number for
// signal terminations.
func classifyRunError(err error) error {
	if err == nil {
		return nil
	}

	var ee *cmdfn.ExitError
	if errors.As(err, &ee) {
		status := int(ee.Code)
		if ee.Code.IsSignaled() {
			status = 1
			if sig, ok := ee.Signal.(syscall.Signal); ok {
				status = 128 + int(sig)
			}
		}
		return &ExitError{Code: status, Err: err}
	}

	return err
}
