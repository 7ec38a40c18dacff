// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"cmdfn/internal/config"

	"github.com/spf13/cobra"
)

// configCmd is the `cmdfn config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cmdfn configuration",
	Long: `Manage cmdfn configuration.

Configuration is stored in:
  - Linux: ~/.config/cmdfn/config.toml
  - macOS: ~/Library/Application Support/cmdfn/config.toml
  - Windows: %APPDATA%\cmdfn\config.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), args[0], args[1])
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
			if err != nil {
				return err
			}

			content, err := config.GenerateTOML(cfg)
			if err != nil {
				return err
			}
			fmt.Print(content)
			return nil
		},
	})
}

func showConfig(ctx context.Context) error {
	cfg, resolved, err := config.LoadResolved(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	if resolved != "" {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), resolved)
	} else {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", CmdStyle.Render("buffering"), SuccessStyle.Render(string(cfg.Buffering)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("preview_cap"), SuccessStyle.Render(strconv.Itoa(cfg.PreviewCap)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("log_level"), SuccessStyle.Render(string(cfg.LogLevel)))

	fmt.Println()
	fmt.Printf("%s:\n", CmdStyle.Render("env_files"))
	if len(cfg.EnvFiles) == 0 {
		fmt.Printf("  %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		for _, f := range cfg.EnvFiles {
			fmt.Printf("  - %s\n", SuccessStyle.Render(string(f)))
		}
	}

	return nil
}

func initConfigFile() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err := config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	fmt.Printf("%s Created default configuration at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Printf("Config directory: %s\n", cfgDir)
	fmt.Printf("Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}

func setConfigValue(ctx context.Context, key, value string) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return err
	}

	switch key {
	case "buffering":
		policy := config.BufferingPolicy(value)
		if valid, errs := policy.IsValid(); !valid {
			return errs[0]
		}
		cfg.Buffering = policy

	case "preview_cap":
		n, convErr := strconv.Atoi(value)
		if convErr != nil || n < 0 {
			return fmt.Errorf("invalid preview_cap: must be a non-negative integer")
		}
		cfg.PreviewCap = n

	case "log_level":
		level := config.LogLevel(value)
		if valid, errs := level.IsValid(); !valid {
			return errs[0]
		}
		cfg.LogLevel = level

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: buffering, preview_cap, log_level", key)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}
