// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Buffering != BufferingLine {
		t.Errorf("expected default buffering to be line, got %s", cfg.Buffering)
	}
	if cfg.PreviewCap != DefaultPreviewCap {
		t.Errorf("expected default preview cap to be %d, got %d", DefaultPreviewCap, cfg.PreviewCap)
	}
	if cfg.LogLevel != LogLevelWarn {
		t.Errorf("expected default log level to be warn, got %s", cfg.LogLevel)
	}
	if len(cfg.EnvFiles) != 0 {
		t.Errorf("expected default env files to be empty, got %v", cfg.EnvFiles)
	}

	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("default config should be valid, got %v", errs)
	}
}

func TestBufferingPolicyChunkSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		policy  BufferingPolicy
		want    int
		wantErr bool
	}{
		{name: "line", policy: BufferingLine, want: 0},
		{name: "empty means line", policy: "", want: 0},
		{name: "positive byte count", policy: "4096", want: 4096},
		{name: "one byte", policy: "1", want: 1},
		{name: "zero is invalid", policy: "0", wantErr: true},
		{name: "negative is invalid", policy: "-3", wantErr: true},
		{name: "non-numeric is invalid", policy: "chunky", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.policy.ChunkSize()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ChunkSize(%q) expected error, got %d", tt.policy, got)
				}
				if !errors.Is(err, ErrInvalidBuffering) {
					t.Errorf("error should wrap ErrInvalidBuffering, got: %v", err)
				}
				var berr *InvalidBufferingError
				if !errors.As(err, &berr) {
					t.Errorf("error should be *InvalidBufferingError, got: %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ChunkSize(%q) error = %v", tt.policy, err)
			}
			if got != tt.want {
				t.Errorf("ChunkSize(%q) = %d, want %d", tt.policy, got, tt.want)
			}
		})
	}
}

func TestLogLevelIsValid(t *testing.T) {
	t.Parallel()

	for _, level := range []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError} {
		if valid, errs := level.IsValid(); !valid {
			t.Errorf("LogLevel(%s).IsValid() = false, errs %v", level, errs)
		}
	}

	valid, errs := LogLevel("loud").IsValid()
	if valid {
		t.Fatal("LogLevel(loud) should be invalid")
	}
	if !errors.Is(errs[0], ErrInvalidLogLevel) {
		t.Errorf("error should wrap ErrInvalidLogLevel, got: %v", errs[0])
	}
}

func TestEnvFilePathIsValid(t *testing.T) {
	t.Parallel()

	if valid, _ := EnvFilePath("/tmp/.env").IsValid(); !valid {
		t.Error("non-empty env file path should be valid")
	}

	valid, errs := EnvFilePath("   ").IsValid()
	if valid {
		t.Fatal("whitespace-only env file path should be invalid")
	}
	if !errors.Is(errs[0], ErrInvalidEnvFilePath) {
		t.Errorf("error should wrap ErrInvalidEnvFilePath, got: %v", errs[0])
	}
}

func TestConfigIsValidCollectsFieldErrors(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Buffering:  "nope",
		PreviewCap: -1,
		LogLevel:   "loud",
		EnvFiles:   []EnvFilePath{" "},
	}

	valid, errs := cfg.IsValid()
	if valid {
		t.Fatal("config with four bad fields should be invalid")
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got: %v", errs[0])
	}

	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("error should be *InvalidConfigError, got: %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 4 {
		t.Errorf("expected 4 field errors, got %d: %v", len(cfgErr.FieldErrors), cfgErr.FieldErrors)
	}
}
