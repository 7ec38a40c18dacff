// SPDX-License-Identifier: MPL-2.0

// Package argv compiles heterogeneous call arguments into a flat, ordered
// argv token sequence.
//
// Positional values are stringified; slices are flattened one level. Named
// values become short or long flags depending on key length. The assembled
// token stream is re-split using shell word-splitting rules, so an unquoted
// positional value containing whitespace becomes multiple argv entries.
// Callers that need a single argument containing whitespace must pre-quote
// it. Named flag values are shell-quoted automatically and survive the
// re-split as a single token.
//
// No globbing or path expansion is performed; expansion is entirely the
// caller's responsibility.
package argv

import (
	"fmt"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// Compile turns positional and named call arguments into argv tokens.
//
// Rules for named entries:
//   - single-character key, value true:  -k
//   - single-character key, other value: -k <value>
//   - longer key, value true:            --key (underscores become hyphens)
//   - longer key, other value:           --key=<value>
//
// Named entries are emitted in sorted key order so output is deterministic.
// The only possible failure is malformed quoting in the assembled stream
// (for example an unterminated quote inside a positional value).
func Compile(positional []any, named map[string]any) ([]string, error) {
	tokens := make([]string, 0, len(positional)+len(named))

	for _, arg := range positional {
		switch v := arg.(type) {
		case []string:
			tokens = append(tokens, v...)
		case []any:
			for _, sub := range v {
				tokens = append(tokens, stringify(sub))
			}
		default:
			tokens = append(tokens, stringify(arg))
		}
	}

	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		tokens = append(tokens, compileFlag(k, named[k]))
	}

	// Re-split the assembled stream with shell word-splitting rules. This is
	// a deliberate quirk inherited from the call surface contract: it keeps
	// pre-quoted arguments intact and breaks unquoted whitespace apart.
	fields, err := shell.Fields(strings.Join(tokens, " "), nil)
	if err != nil {
		return nil, fmt.Errorf("argv: split compiled arguments: %w", err)
	}
	return fields, nil
}

// compileFlag renders one named entry as a flag token. Values other than a
// literal true are shell-quoted so they survive the re-split as one token.
func compileFlag(key string, value any) string {
	if len(key) == 1 {
		if value == true {
			return "-" + key
		}
		return fmt.Sprintf("-%s %s", key, quote(stringify(value)))
	}

	key = strings.ReplaceAll(key, "_", "-")
	if value == true {
		return "--" + key
	}
	return fmt.Sprintf("--%s=%s", key, quote(stringify(value)))
}

// stringify renders a scalar argument as a string.
func stringify(v any) string {
	return fmt.Sprint(v)
}

// quote shell-quotes s when necessary. Quoting can only fail for strings
// that cannot be represented in shell syntax at all (embedded NUL bytes);
// those are passed through unquoted and will be mangled by the re-split,
// which matches the documented garbage-in behavior of compilation.
func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return s
	}
	return q
}
