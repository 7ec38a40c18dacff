// SPDX-License-Identifier: MPL-2.0

package cmdfn

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Invocation is a single spawned-process instance together with its I/O
// state: the full argv, the aggregated stdout/stderr buffers, the stdin
// feeder, and the exactly-once classified exit result.
type Invocation struct {
	id      string
	args    []string
	cmdline string
	opts    callOpts
	cmd     *exec.Cmd
	logger  *log.Logger

	stdoutBuf aggBuffer
	stderrBuf aggBuffer
	feeder    *StdinFeeder

	// live pipes kept for the lazy background (no-collector) path
	stdoutPipe io.ReadCloser
	stderrPipe io.ReadCloser

	claimMu       sync.Mutex
	stdoutClaimed bool

	stdoutRedirected bool
	stderrRedirected bool

	done       chan struct{}
	finishOnce sync.Once
	lazyOnce   sync.Once
	err        error
}

// discardLogger is the default when no WithLogger option is given.
var discardLogger = log.New(io.Discard)

// startInvocation resolves stream wiring from the execution-mode flags,
// spawns the process and, depending on the mode, either blocks for
// completion or returns immediately.
func startInvocation(args []string, o callOpts) (*Invocation, error) {
	inv := &Invocation{
		id:      uuid.NewString(),
		args:    args,
		cmdline: strings.Join(args, " "),
		opts:    o,
		logger:  o.logger,
		done:    make(chan struct{}),
	}
	if inv.logger == nil {
		inv.logger = discardLogger
	}

	// Pipeline input. A running background producer hands its stdout over
	// live: a lazy one gives up the retained descriptor, a collecting one
	// mirrors its aggregation stream. Either way this invocation is forced
	// into background mode, since a blocking stage cannot safely sit behind
	// a non-blocked producer. Any other producer contributes its aggregated
	// stdout text, blocking until it completes.
	var pipeStdin io.ReadCloser
	if p := o.pipeFrom; p != nil {
		if p.opts.background && !p.Done() {
			inv.opts.background = true
			pipeStdin = p.claimStdout()
		}
		if pipeStdin == nil {
			inv.opts.stdinData = []byte(p.Stdout())
		}
	}
	o = inv.opts

	if o.ctx != nil {
		inv.cmd = exec.CommandContext(o.ctx, args[0], args[1:]...)
	} else {
		inv.cmd = exec.Command(args[0], args[1:]...)
	}
	inv.cmd.Env = os.Environ()
	for k, v := range o.env {
		inv.cmd.Env = append(inv.cmd.Env, k+"="+v)
	}
	inv.cmd.Dir = o.dir

	inv.logger.Debug("spawning", "invocation", inv.id, "argv", inv.cmdline,
		"background", o.background, "foreground", o.foreground || o.fgPTY)

	switch {
	case o.fgPTY:
		return inv, inv.runForegroundPTY()
	case o.foreground:
		return inv, inv.runForeground()
	case o.collecting():
		return inv, inv.runCollecting(pipeStdin)
	case o.background:
		return inv, inv.runLazyBackground(pipeStdin)
	default:
		return inv, inv.runSync(pipeStdin)
	}
}

// runForeground attaches the process to the caller's terminal streams and
// blocks until exit. Nothing is captured.
func (inv *Invocation) runForeground() error {
	o := inv.opts
	inv.cmd.Stdin = os.Stdin
	inv.cmd.Stdout = os.Stdout
	inv.cmd.Stderr = os.Stderr
	if o.stdoutW != nil {
		inv.cmd.Stdout = o.stdoutW
	}
	if o.stderrW != nil {
		inv.cmd.Stderr = o.stderrW
	}
	if o.mergeStderr {
		inv.cmd.Stderr = inv.cmd.Stdout
	}
	if err := inv.cmd.Start(); err != nil {
		return inv.failSpawn(err)
	}
	inv.stdoutRedirected = true
	inv.stderrRedirected = true
	inv.finish()
	return inv.err
}

// runSync is the default synchronous mode: both streams are captured to the
// aggregation buffers, any stdin data is written, and the call blocks until
// the single exit check completes.
func (inv *Invocation) runSync(pipeStdin io.ReadCloser) error {
	o := inv.opts
	inv.wireStdin(pipeStdin)

	inv.cmd.Stdout = &inv.stdoutBuf
	if o.stdoutW != nil {
		inv.cmd.Stdout = o.stdoutW
		inv.stdoutRedirected = true
	}
	inv.cmd.Stderr = &inv.stderrBuf
	if o.stderrW != nil {
		inv.cmd.Stderr = o.stderrW
		inv.stderrRedirected = true
	}
	if o.mergeStderr {
		inv.cmd.Stderr = inv.cmd.Stdout
		inv.stderrRedirected = inv.stdoutRedirected
	}

	if err := inv.cmd.Start(); err != nil {
		return inv.failSpawn(err)
	}
	inv.finish()
	return inv.err
}

// runCollecting wires both streams to pipes, starts the stdin feeder and
// the two collector goroutines behind their startup barrier, then blocks
// for completion unless background mode was requested.
func (inv *Invocation) runCollecting(pipeStdin io.ReadCloser) error {
	o := inv.opts

	var stdout, stderr io.Reader
	if o.stdoutW != nil {
		inv.cmd.Stdout = o.stdoutW
		inv.stdoutRedirected = true
	} else {
		rc, err := inv.cmd.StdoutPipe()
		if err != nil {
			return inv.failSpawn(err)
		}
		stdout = rc
	}

	switch {
	case o.mergeStderr:
		inv.cmd.Stderr = inv.cmd.Stdout
		inv.stderrRedirected = inv.stdoutRedirected
	case o.stderrW != nil:
		inv.cmd.Stderr = o.stderrW
		inv.stderrRedirected = true
	default:
		rc, err := inv.cmd.StderrPipe()
		if err != nil {
			return inv.failSpawn(err)
		}
		stderr = rc
	}

	// The feeder owns the stdin pipe for the lifetime of the invocation so
	// callbacks can feed input back. A pipeline descriptor wins over the
	// feeder when present.
	if pipeStdin != nil {
		inv.cmd.Stdin = pipeStdin
	} else {
		stdinPipe, err := inv.cmd.StdinPipe()
		if err != nil {
			return inv.failSpawn(err)
		}
		inv.feeder = newStdinFeeder()
		if len(o.stdinData) > 0 {
			inv.feeder.FeedBytes(o.stdinData) //nolint:errcheck // feeder cannot be closed yet
		}
		go inv.feeder.run(stdinPipe)
	}

	if err := inv.cmd.Start(); err != nil {
		if inv.feeder != nil {
			inv.feeder.close()
		}
		return inv.failSpawn(err)
	}

	inv.startCollectors(stdout, stderr)

	if o.background {
		return nil
	}
	<-inv.done
	return inv.err
}

// runLazyBackground spawns with captured pipes but defers draining until
// Wait or a stream accessor runs, or until a downstream invocation claims
// the live stdout descriptor for pipeline composition.
func (inv *Invocation) runLazyBackground(pipeStdin io.ReadCloser) error {
	o := inv.opts
	inv.wireStdin(pipeStdin)

	if o.stdoutW != nil {
		inv.cmd.Stdout = o.stdoutW
		inv.stdoutRedirected = true
	} else {
		rc, err := inv.cmd.StdoutPipe()
		if err != nil {
			return inv.failSpawn(err)
		}
		inv.stdoutPipe = rc
	}

	switch {
	case o.mergeStderr:
		inv.cmd.Stderr = inv.cmd.Stdout
		inv.stderrRedirected = inv.stdoutRedirected
	case o.stderrW != nil:
		inv.cmd.Stderr = o.stderrW
		inv.stderrRedirected = true
	default:
		rc, err := inv.cmd.StderrPipe()
		if err != nil {
			return inv.failSpawn(err)
		}
		inv.stderrPipe = rc
	}

	if err := inv.cmd.Start(); err != nil {
		return inv.failSpawn(err)
	}
	return nil
}

// wireStdin connects stdin for the non-feeder paths: a claimed pipeline
// descriptor, literal data, or a caller-supplied reader.
func (inv *Invocation) wireStdin(pipeStdin io.ReadCloser) {
	switch {
	case pipeStdin != nil:
		inv.cmd.Stdin = pipeStdin
	case len(inv.opts.stdinData) > 0:
		inv.cmd.Stdin = bytes.NewReader(inv.opts.stdinData)
	case inv.opts.stdinReader != nil:
		inv.cmd.Stdin = inv.opts.stdinReader
	}
}

// failSpawn records a spawn failure and completes the invocation so that
// Wait and the accessors never block on a process that never started.
func (inv *Invocation) failSpawn(err error) error {
	inv.finishOnce.Do(func() {
		inv.err = fmt.Errorf("spawn %q: %w", inv.cmdline, err)
		close(inv.done)
	})
	return inv.err
}

// finish performs the single wait-for-exit-status call, classifies the
// result, and releases everything blocked on completion. All completion
// paths funnel through here; the sync.Once guarantees the exit check and
// failure classification happen exactly once per invocation.
func (inv *Invocation) finish() {
	inv.finishOnce.Do(func() {
		waitErr := inv.cmd.Wait()
		inv.err = inv.classify(waitErr)
		if inv.err != nil {
			inv.logger.Debug("invocation failed", "invocation", inv.id, "err", inv.err)
		} else {
			inv.logger.Debug("invocation done", "invocation", inv.id)
		}
		close(inv.done)
	})
}

// classify translates the wait result into the error taxonomy: nil for
// exit code 0, ExitError for nonzero codes, ExitError with Signal set for
// signal terminations, and a wrapped generic error for I/O faults.
func (inv *Invocation) classify(waitErr error) error {
	if waitErr == nil {
		return nil
	}
	var ee *exec.ExitError
	if !errors.As(waitErr, &ee) {
		return fmt.Errorf("wait on %q: %w", inv.cmdline, waitErr)
	}

	xe := &ExitError{
		Code:             ExitCode(ee.ExitCode()),
		Cmdline:          inv.cmdline,
		Stdout:           inv.stdoutBuf.String(),
		Stderr:           inv.stderrBuf.String(),
		StdoutRedirected: inv.stdoutRedirected || inv.stdoutClaimed,
		StderrRedirected: inv.stderrRedirected,
	}
	if xe.Code.IsSignaled() {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			xe.Signal = ws.Signal()
		}
	}
	return xe
}

// claimStdout hands a live stdout stream to a downstream pipeline stage. A
// lazy background invocation gives up its retained descriptor, so its own
// aggregated stdout stays empty afterwards. A collecting background
// invocation instead attaches a mirror of its aggregation buffer: the
// consumer receives every unit as it is drained while the producer keeps
// aggregating and dispatching callbacks as usual.
func (inv *Invocation) claimStdout() io.ReadCloser {
	inv.claimMu.Lock()
	defer inv.claimMu.Unlock()
	if inv.stdoutClaimed {
		return nil
	}
	if inv.stdoutPipe != nil {
		inv.stdoutClaimed = true
		rc := inv.stdoutPipe
		inv.stdoutPipe = nil
		return rc
	}
	if inv.opts.collecting() {
		return inv.stdoutBuf.attachMirror()
	}
	return nil
}

// communicate drains the retained pipes of a lazy background invocation and
// performs the exit check. Runs at most once.
func (inv *Invocation) communicate() {
	inv.lazyOnce.Do(func() {
		var wg sync.WaitGroup

		inv.claimMu.Lock()
		stdout := inv.stdoutPipe
		inv.stdoutPipe = nil
		inv.claimMu.Unlock()

		if stdout != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, _ := io.ReadAll(stdout)
				if len(out) > 0 {
					inv.stdoutBuf.append(string(out))
				}
			}()
		}
		if inv.stderrPipe != nil {
			stderr := inv.stderrPipe
			inv.stderrPipe = nil
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, _ := io.ReadAll(stderr)
				if len(out) > 0 {
					inv.stderrBuf.append(string(out))
				}
			}()
		}
		wg.Wait()
		inv.finish()
	})
}

// lazy reports whether this invocation deferred its drain to Wait time.
func (inv *Invocation) lazy() bool {
	return inv.opts.background && !inv.opts.collecting()
}

// Wait blocks until the process has exited and both streams are fully
// drained, then returns the classified result. The exit check itself runs
// exactly once per invocation no matter how many goroutines call Wait.
func (inv *Invocation) Wait() error {
	if inv.lazy() {
		inv.communicate()
	}
	<-inv.done
	return inv.err
}

// Done reports whether the invocation has completed and been classified.
func (inv *Invocation) Done() bool {
	select {
	case <-inv.done:
		return true
	default:
		return false
	}
}

// Stdout returns the aggregated stdout text. In background mode it blocks
// until the invocation completes.
func (inv *Invocation) Stdout() string {
	if !inv.Done() {
		inv.Wait() //nolint:errcheck // accessor; failures surface via Wait
	}
	return inv.stdoutBuf.String()
}

// Stderr returns the aggregated stderr text. In background mode it blocks
// until the invocation completes.
func (inv *Invocation) Stderr() string {
	if !inv.Done() {
		inv.Wait() //nolint:errcheck // accessor; failures surface via Wait
	}
	return inv.stderrBuf.String()
}

// String renders the invocation as its aggregated stdout, letting an
// invocation be used directly wherever text output is expected.
func (inv *Invocation) String() string {
	if inv.cmd == nil {
		return ""
	}
	return inv.Stdout()
}

// Text returns the aggregated stdout with surrounding whitespace trimmed.
func (inv *Invocation) Text() string {
	return strings.TrimSpace(inv.Stdout())
}

// Lines splits the aggregated stdout into lines, dropping a trailing empty
// line caused by a final newline.
func (inv *Invocation) Lines() []string {
	out := strings.TrimSuffix(inv.Stdout(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Int parses the trimmed stdout as a base-10 integer.
func (inv *Invocation) Int() (int, error) {
	return strconv.Atoi(inv.Text())
}

// Float64 parses the trimmed stdout as a float.
func (inv *Invocation) Float64() (float64, error) {
	return strconv.ParseFloat(inv.Text(), 64)
}

// Contains reports whether the aggregated stdout contains s.
func (inv *Invocation) Contains(s string) bool {
	return strings.Contains(inv.Stdout(), s)
}

// ID returns the unique identifier assigned to this invocation.
func (inv *Invocation) ID() string { return inv.id }

// Args returns a copy of the full argv that was executed.
func (inv *Invocation) Args() []string {
	return append([]string{}, inv.args...)
}

// Cmdline returns the full argv space-joined, as rendered in failures.
func (inv *Invocation) Cmdline() string { return inv.cmdline }

// ExitCode blocks until completion and returns the classified exit code: 0
// for success, the process code for nonzero exits, Signaled (-1) for signal
// terminations, and -2 for spawn or I/O failures.
func (inv *Invocation) ExitCode() ExitCode {
	if inv.lazy() {
		inv.communicate()
	}
	<-inv.done
	return ExitCodeOf(inv.err)
}

// Signal sends sig to the running process.
func (inv *Invocation) Signal(sig os.Signal) error {
	if inv.cmd.Process == nil {
		return fmt.Errorf("signal %q: process not started", inv.cmdline)
	}
	return inv.cmd.Process.Signal(sig)
}

// Terminate sends SIGTERM to the running process.
func (inv *Invocation) Terminate() error {
	return inv.Signal(syscall.SIGTERM)
}

// Kill forcibly kills the running process.
func (inv *Invocation) Kill() error {
	if inv.cmd.Process == nil {
		return fmt.Errorf("kill %q: process not started", inv.cmdline)
	}
	return inv.cmd.Process.Kill()
}
