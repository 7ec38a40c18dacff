// SPDX-License-Identifier: MPL-2.0

// Package cmdfn invokes external executables as first-class callables.
//
// A Command is resolved once with Resolve (or wrapped directly with New),
// optionally pre-bound with Bake, and called with a heterogeneous argument
// list of positional values, Kw maps for named flags, and Options for
// execution-mode control:
//
//	git, err := cmdfn.Resolve("git")
//	...
//	inv, err := git.Call("log", cmdfn.Kw{"n": 5, "oneline": true})
//	fmt.Print(inv.Stdout())
//
// Calls are synchronous by default: they block until the process exits and
// return a classified failure for nonzero exit codes. Background mode
// returns immediately, with the stream accessors and Wait blocking until
// completion. Incremental output is observed with StdoutFunc/StderrFunc
// callbacks, drained by per-stream collectors that aggregate every unit
// before dispatching it.
//
// Piping the stdout of one invocation into the next is expressed by passing
// the upstream invocation as the first argument (or with WithStdinFrom):
//
//	ls, _ := cmdfn.Resolve("ls")
//	wc, _ := cmdfn.Resolve("wc")
//	inv, _ := ls.Call(cmdfn.Background())
//	count, _ := wc.Call(inv, "-l")
//
// EnterPrefix registers a command as an argv prefix for every invocation
// issued until the returned scope exits, supporting nested wrapper contexts
// such as sudo or env.
package cmdfn
