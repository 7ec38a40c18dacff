// SPDX-License-Identifier: MPL-2.0

package cmdfn

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveFindsPathCommand(t *testing.T) {
	t.Parallel()

	cmd, err := Resolve("sh")
	if err != nil {
		t.Fatalf("Resolve(sh) error = %v", err)
	}
	if cmd.Path() == "" {
		t.Error("Resolve(sh) returned empty path")
	}
}

func TestResolveNotFound(t *testing.T) {
	t.Parallel()

	_, err := Resolve("definitely-not-a-real-command-xyz")
	if err == nil {
		t.Fatal("Resolve() expected error, got nil")
	}
	if !errors.Is(err, ErrCommandNotFound) {
		t.Errorf("error does not wrap ErrCommandNotFound: %v", err)
	}
	var nf *CommandNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error is not a CommandNotFoundError: %v", err)
	}
	if nf.Name != "definitely-not-a-real-command-xyz" {
		t.Errorf("CommandNotFoundError.Name = %q", nf.Name)
	}
}

func TestResolveUnderscoreFallback(t *testing.T) {
	// Mutates PATH; must not run in parallel.
	dir := t.TempDir()
	script := filepath.Join(dir, "my-fake-tool")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	cmd, err := Resolve("my_fake_tool")
	if err != nil {
		t.Fatalf("Resolve(my_fake_tool) error = %v", err)
	}
	if cmd.Path() != script {
		t.Errorf("Resolve(my_fake_tool) = %q, want %q", cmd.Path(), script)
	}
}

func TestWhich(t *testing.T) {
	t.Parallel()

	if Which("sh") == "" {
		t.Error("Which(sh) returned empty path")
	}
	if got := Which("definitely-not-a-real-command-xyz"); got != "" {
		t.Errorf("Which(nonexistent) = %q, want empty", got)
	}
}
