// SPDX-License-Identifier: MPL-2.0

package cmdfn

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

type (
	// Kw supplies named call arguments that are compiled into flags. It is
	// kept distinct from Option so that ordinary named arguments and
	// execution-mode options can never be confused on the call surface.
	Kw map[string]any

	// Option configures how a single invocation runs. Options are recognized
	// anywhere in the argument list of Call, Bake and EnterPrefix.
	Option func(*callOpts)

	// StreamFunc is the incremental collection callback. It receives one
	// unit of output (a line or a fixed-size chunk, per the buffering
	// policy) together with handles for feeding stdin back and controlling
	// the invocation; callers ignore the fields they don't need. Returning
	// true stops further callback dispatch for that stream, while draining
	// continues silently so the aggregation buffer stays complete.
	StreamFunc func(ev StreamEvent) bool

	// StreamEvent is the structured context passed to a StreamFunc.
	StreamEvent struct {
		// Data is the unit of output that was just read.
		Data string
		// Stdin feeds input back into the running process. It is nil when
		// stdin came from elsewhere (a pipeline stage, literal data, or a
		// caller-supplied reader); feeding a nil feeder reports
		// ErrStdinClosed rather than panicking.
		Stdin *StdinFeeder
		// Invocation is the owning invocation, usable for early termination.
		Invocation *Invocation
	}

	// callOpts is the resolved execution-mode state for one invocation.
	callOpts struct {
		foreground bool
		fgPTY      bool
		background bool

		stdoutW  io.Writer
		stderrW  io.Writer
		stdoutFn StreamFunc
		stderrFn StreamFunc

		mergeStderr bool

		// lineBuffered selects line-granularity reads; otherwise chunkSize
		// bytes at a time (0 is normalized to 1, i.e. unbuffered).
		lineBuffered bool
		chunkSize    int

		env map[string]string
		dir string

		stdinData   []byte
		stdinReader io.Reader
		pipeFrom    *Invocation

		ctx    context.Context
		logger *log.Logger
	}
)

// defaultOpts returns the baseline execution-mode state: synchronous,
// line-buffered, no sinks.
func defaultOpts() callOpts {
	return callOpts{lineBuffered: true}
}

// apply runs every option against o in order, so later options override
// earlier ones (call-time options override baked ones).
func (o *callOpts) apply(opts []Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// validate rejects mutually exclusive execution-mode combinations.
func (o *callOpts) validate() error {
	modes := make([]string, 0, 3)
	if o.foreground {
		modes = append(modes, "Foreground")
	}
	if o.fgPTY {
		modes = append(modes, "ForegroundPTY")
	}
	if o.background {
		modes = append(modes, "Background")
	}
	if len(modes) > 1 {
		return &OptionConflictError{Options: modes}
	}
	if (o.foreground || o.fgPTY) && (o.stdoutFn != nil || o.stderrFn != nil) {
		return &OptionConflictError{Options: []string{"Foreground", "StdoutFunc/StderrFunc"}}
	}
	return nil
}

// collecting reports whether incremental collection was requested.
func (o *callOpts) collecting() bool {
	return o.stdoutFn != nil || o.stderrFn != nil
}

// Foreground runs the process attached to the caller's stdin/stdout/stderr
// instead of pipes. Output is not captured. Mutually exclusive with
// Background and ForegroundPTY.
func Foreground() Option {
	return func(o *callOpts) { o.foreground = true }
}

// ForegroundPTY runs the process on a pseudo-terminal attached to the
// caller's terminal, for programs that change behavior when their output is
// not a TTY. Unix only; on other platforms the call fails. Output is not
// captured. Mutually exclusive with Foreground and Background.
func ForegroundPTY() Option {
	return func(o *callOpts) { o.fgPTY = true }
}

// Background starts the process and returns immediately. Stdout, Stderr and
// Wait block until completion. Mutually exclusive with Foreground and
// ForegroundPTY.
func Background() Option {
	return func(o *callOpts) { o.background = true }
}

// StdoutTo redirects the process stdout directly to w. The stream is not
// captured; failure previews render it as redirected.
func StdoutTo(w io.Writer) Option {
	return func(o *callOpts) { o.stdoutW = w }
}

// StderrTo redirects the process stderr directly to w. The stream is not
// captured; failure previews render it as redirected.
func StderrTo(w io.Writer) Option {
	return func(o *callOpts) { o.stderrW = w }
}

// StdoutFunc registers an incremental callback for stdout. Each unit is
// appended to the aggregation buffer before fn runs.
func StdoutFunc(fn StreamFunc) Option {
	return func(o *callOpts) { o.stdoutFn = fn }
}

// StderrFunc registers an incremental callback for stderr. Each unit is
// appended to the aggregation buffer before fn runs.
func StderrFunc(fn StreamFunc) Option {
	return func(o *callOpts) { o.stderrFn = fn }
}

// MergeStderr aliases the process stderr onto its stdout descriptor, so both
// streams arrive interleaved on stdout.
func MergeStderr() Option {
	return func(o *callOpts) { o.mergeStderr = true }
}

// LineBuffered drains streams one line at a time. This is the default.
func LineBuffered() Option {
	return func(o *callOpts) {
		o.lineBuffered = true
		o.chunkSize = 0
	}
}

// ByteBuffered drains streams in fixed chunks of n bytes. A size of 0 is
// normalized to 1, i.e. effectively unbuffered.
func ByteBuffered(n int) Option {
	return func(o *callOpts) {
		o.lineBuffered = false
		if n <= 0 {
			n = 1
		}
		o.chunkSize = n
	}
}

// WithEnv overlays variables on the inherited process environment.
func WithEnv(env map[string]string) Option {
	return func(o *callOpts) {
		if o.env == nil {
			o.env = make(map[string]string, len(env))
		}
		for k, v := range env {
			o.env[k] = v
		}
	}
}

// WithDir sets the working directory for the process.
func WithDir(dir string) Option {
	return func(o *callOpts) { o.dir = dir }
}

// WithStdinData feeds s to the process stdin and closes it.
func WithStdinData(s string) Option {
	return func(o *callOpts) { o.stdinData = []byte(s) }
}

// WithStdinReader streams r into the process stdin.
func WithStdinReader(r io.Reader) Option {
	return func(o *callOpts) { o.stdinReader = r }
}

// WithStdinFrom pipes the stdout of a prior invocation into this process,
// equivalent to passing the invocation as the first positional argument.
func WithStdinFrom(inv *Invocation) Option {
	return func(o *callOpts) { o.pipeFrom = inv }
}

// WithContext attaches ctx to the invocation; the process is killed when
// ctx is canceled.
func WithContext(ctx context.Context) Option {
	return func(o *callOpts) { o.ctx = ctx }
}

// WithLogger attaches a logger for spawn and drain diagnostics. The default
// logger discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(o *callOpts) { o.logger = logger }
}
