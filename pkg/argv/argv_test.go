// SPDX-License-Identifier: MPL-2.0

package argv

import (
	"reflect"
	"testing"
)

func TestCompilePositional(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		positional []any
		want       []string
	}{
		{
			name:       "scalars are stringified",
			positional: []any{"file.txt", 42, true},
			want:       []string{"file.txt", "42", "true"},
		},
		{
			name:       "string slices flatten one level",
			positional: []any{[]string{"-l", "-a"}, "dir"},
			want:       []string{"-l", "-a", "dir"},
		},
		{
			name:       "any slices flatten one level",
			positional: []any{[]any{"a", 1}, "b"},
			want:       []string{"a", "1", "b"},
		},
		{
			name:       "unquoted whitespace splits into multiple tokens",
			positional: []any{"hello world"},
			want:       []string{"hello", "world"},
		},
		{
			name:       "pre-quoted whitespace stays one token",
			positional: []any{"'hello world'"},
			want:       []string{"hello world"},
		},
		{
			name:       "empty input yields empty argv",
			positional: nil,
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Compile(tt.positional, nil)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompileNamed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		named map[string]any
		want  []string
	}{
		{
			name:  "short flag with true value",
			named: map[string]any{"k": true},
			want:  []string{"-k"},
		},
		{
			name:  "short flag with value becomes two tokens",
			named: map[string]any{"d": "\t"},
			want:  []string{"-d", "\t"},
		},
		{
			name:  "long flag with true value",
			named: map[string]any{"foo_bar": true},
			want:  []string{"--foo-bar"},
		},
		{
			name:  "long flag with value",
			named: map[string]any{"foo_bar": "x"},
			want:  []string{"--foo-bar=x"},
		},
		{
			name:  "long flag value with spaces stays one token",
			named: map[string]any{"message": "hello world"},
			want:  []string{"--message=hello world"},
		},
		{
			name:  "numeric value is stringified",
			named: map[string]any{"n": 3},
			want:  []string{"-n", "3"},
		},
		{
			name:  "false is a value not a switch",
			named: map[string]any{"color": false},
			want:  []string{"--color=false"},
		},
		{
			name:  "keys are emitted in sorted order",
			named: map[string]any{"b": true, "a": true},
			want:  []string{"-a", "-b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Compile(nil, tt.named)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompileMixed(t *testing.T) {
	t.Parallel()

	got, err := Compile([]any{"input.txt"}, map[string]any{"o": "out.txt", "verbose_mode": true})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := []string{"input.txt", "-o", "out.txt", "--verbose-mode"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compile() = %q, want %q", got, want)
	}
}

func TestCompileMalformedQuoting(t *testing.T) {
	t.Parallel()

	if _, err := Compile([]any{"'unterminated"}, nil); err == nil {
		t.Error("Compile() with unterminated quote: expected error, got nil")
	}
}
