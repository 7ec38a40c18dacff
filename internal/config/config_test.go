// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is linux-specific")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join("/tmp/test-xdg-config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}
}

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %s, want override %s", got, dir)
	}
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	cfg, resolved, err := LoadResolved(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("LoadResolved() error = %v", err)
	}
	if resolved != "" {
		t.Errorf("resolved path = %q, want empty (defaults)", resolved)
	}
	if cfg.Buffering != BufferingLine || cfg.LogLevel != LogLevelWarn {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	content := "buffering = \"4096\"\nlog_level = \"debug\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := LoadResolved(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("LoadResolved() error = %v", err)
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Buffering != "4096" {
		t.Errorf("buffering = %s, want 4096", cfg.Buffering)
	}
	if cfg.LogLevel != LogLevelDebug {
		t.Errorf("log level = %s, want debug", cfg.LogLevel)
	}
	// preview_cap not set in the file, default must survive the merge
	if cfg.PreviewCap != DefaultPreviewCap {
		t.Errorf("preview cap = %d, want default %d", cfg.PreviewCap, DefaultPreviewCap)
	}
}

func TestLoadExplicitFilePath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("preview_cap = 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PreviewCap != 100 {
		t.Errorf("preview cap = %d, want 100", cfg.PreviewCap)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "absent.toml"),
	})
	if err == nil {
		t.Fatal("Load() expected error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error does not mention the missing file: %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("log_level = \"loud\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err == nil {
		t.Fatal("Load() expected validation error")
	}
}

func TestLoadCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if err == nil {
		t.Fatal("Load() expected error for canceled context")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	want := &Config{
		Buffering:  "512",
		PreviewCap: 200,
		LogLevel:   LogLevelInfo,
		EnvFiles:   []EnvFilePath{"/tmp/.env"},
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, _, err := LoadResolved(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("LoadResolved() error = %v", err)
	}
	if got.Buffering != want.Buffering || got.PreviewCap != want.PreviewCap || got.LogLevel != want.LogLevel {
		t.Errorf("reloaded config = %+v, want %+v", got, want)
	}
	if len(got.EnvFiles) != 1 || got.EnvFiles[0] != "/tmp/.env" {
		t.Errorf("reloaded env files = %v", got.EnvFiles)
	}
}

func TestCreateDefaultConfigIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte("preview_cap = 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A second call must not clobber the existing file.
	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "preview_cap = 9") {
		t.Error("CreateDefaultConfig() overwrote an existing config file")
	}
}

func TestGenerateTOMLRoundTrips(t *testing.T) {
	t.Parallel()

	out, err := GenerateTOML(DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateTOML() error = %v", err)
	}
	for _, want := range []string{"buffering = 'line'", "preview_cap = 750", "log_level = 'warn'"} {
		if !strings.Contains(out, want) {
			t.Errorf("generated TOML missing %q:\n%s", want, out)
		}
	}
}
