// SPDX-License-Identifier: MPL-2.0

package cmdfn

import (
	"strings"
	"sync"

	"cmdfn/pkg/argv"
)

// Command is an immutable specification of an external executable: its
// resolved path plus any baked argument prefix and baked execution-mode
// options. A Command is safe to share and call concurrently; every call
// produces an independent Invocation.
type Command struct {
	path      string
	bakedArgs []string
	bakedOpts []Option
}

// New wraps an already-resolved executable path without consulting the
// search path. Use Resolve to look a name up on PATH.
func New(path string) *Command {
	return &Command{path: path}
}

// Path returns the resolved executable path.
func (c *Command) Path() string { return c.path }

// String renders the command as its path followed by any baked arguments.
func (c *Command) String() string {
	if len(c.bakedArgs) == 0 {
		return c.path
	}
	return c.path + " " + strings.Join(c.bakedArgs, " ")
}

// Bake pre-binds arguments and execution-mode options onto a copy of the
// command. The receiver is never mutated; the returned Command owns its own
// argument prefix. Baked options are applied before call-time options, so a
// call can still override them.
func (c *Command) Bake(args ...any) (*Command, error) {
	positional, named, opts, _ := splitCallArgs(args)

	compiled, err := argv.Compile(positional, named)
	if err != nil {
		return nil, err
	}

	baked := &Command{path: c.path}
	baked.bakedArgs = append(append([]string{}, c.bakedArgs...), compiled...)
	baked.bakedOpts = append(append([]Option{}, c.bakedOpts...), opts...)
	return baked, nil
}

// prefixStack is the process-wide stack of argv prefixes pushed by
// EnterPrefix. It reflects strictly nested lexical contexts and is designed
// for single-goroutine nesting; concurrent push/pop from multiple goroutines
// must be serialized by the caller.
var prefixStack = struct {
	mu     sync.Mutex
	frames [][]string
}{}

// snapshotPrefixes flattens the active prefix frames in push order.
func snapshotPrefixes() []string {
	prefixStack.mu.Lock()
	defer prefixStack.mu.Unlock()

	var flat []string
	for _, frame := range prefixStack.frames {
		flat = append(flat, frame...)
	}
	return flat
}

// PrefixScope represents one active prefix context. Exit pops the prefix
// and is idempotent, so it is safe to defer it and also call it early on a
// failure path.
type PrefixScope struct {
	once sync.Once
}

// Exit pops the prefix pushed by EnterPrefix. Calling it more than once is
// a no-op after the first call.
func (s *PrefixScope) Exit() {
	s.once.Do(func() {
		prefixStack.mu.Lock()
		defer prefixStack.mu.Unlock()
		if n := len(prefixStack.frames); n > 0 {
			prefixStack.frames = prefixStack.frames[:n-1]
		}
	})
}

// EnterPrefix pushes this command (path plus baked and given arguments) as
// an argv prefix applied to every invocation issued until the returned
// scope exits. The command itself is not spawned. Scopes nest; pushes and
// pops must stay balanced, which Exit's idempotency guarantees for the
// usual defer pattern:
//
//	scope, err := sudo.EnterPrefix("-u", "deploy")
//	if err != nil { ... }
//	defer scope.Exit()
func (c *Command) EnterPrefix(args ...any) (*PrefixScope, error) {
	positional, named, _, _ := splitCallArgs(args)

	compiled, err := argv.Compile(positional, named)
	if err != nil {
		return nil, err
	}

	frame := make([]string, 0, 1+len(c.bakedArgs)+len(compiled))
	frame = append(frame, c.path)
	frame = append(frame, c.bakedArgs...)
	frame = append(frame, compiled...)

	prefixStack.mu.Lock()
	prefixStack.frames = append(prefixStack.frames, frame)
	prefixStack.mu.Unlock()

	return &PrefixScope{}, nil
}

// splitCallArgs separates the heterogeneous argument list of Call/Bake into
// positional values, named values, execution-mode options and an optional
// pipeline source. An *Invocation in the first positional slot becomes the
// pipe source; anywhere else it is treated as a positional value and
// stringifies to its aggregated stdout.
func splitCallArgs(args []any) (positional []any, named map[string]any, opts []Option, pipe *Invocation) {
	for _, arg := range args {
		switch v := arg.(type) {
		case Option:
			opts = append(opts, v)
		case Kw:
			if named == nil {
				named = make(map[string]any, len(v))
			}
			for k, val := range v {
				named[k] = val
			}
		case *Invocation:
			if len(positional) == 0 && pipe == nil {
				pipe = v
				continue
			}
			positional = append(positional, v)
		default:
			positional = append(positional, arg)
		}
	}
	return positional, named, opts, pipe
}

// Call compiles the given arguments, prepends any active prefix stack and
// baked arguments, and spawns the process.
//
// The argument list may mix positional values (scalars and one-level
// slices), Kw maps for named flags, Options for execution-mode control, and
// a leading *Invocation whose stdout becomes this process's stdin.
//
// In the default synchronous mode Call blocks until the process exits and
// returns the classified failure, if any. In background mode it returns
// immediately; the failure is reported by Wait or the stream accessors. A
// pipe source running in background mode forces this invocation into
// background mode as well.
func (c *Command) Call(args ...any) (*Invocation, error) {
	positional, named, callOpts, pipe := splitCallArgs(args)

	o := defaultOpts()
	o.apply(c.bakedOpts)
	o.apply(callOpts)
	if pipe != nil {
		o.pipeFrom = pipe
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	compiled, err := argv.Compile(positional, named)
	if err != nil {
		return nil, err
	}

	full := snapshotPrefixes()
	full = append(full, c.path)
	full = append(full, c.bakedArgs...)
	full = append(full, compiled...)

	return startInvocation(full, o)
}
