package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/filedex/pkg/filedex/config"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage filedex configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/filedex/config.yaml (if set)
  2. ~/.config/filedex/config.yaml

Environment variables override config file settings using the FILEDEX_ prefix:
  FILEDEX_COMPRESSION=zstd
  FILEDEX_COLOR=false
  FILEDEX_LOGGING_LEVEL=debug`,
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Long:  `Display the effective configuration from all sources.`,
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.runConfigShow()
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit configuration file",
			Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
			Args: cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.runConfigEdit()
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create default configuration file",
			Long:  `Create a default configuration file if one doesn't exist.`,
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.runConfigInit()
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.runConfigPath()
			},
		},
	)
	return configCmd
}

func (a *app) runConfigShow() error {
	w := a.stdout
	source := "(using defaults, no file found)"
	if file := a.v.ConfigFileUsed(); file != "" {
		if _, err := os.Stat(file); err == nil {
			source = file
		}
	}
	fmt.Fprintf(w, "Config file: %s\n\n", source)

	cfg := a.cfg
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "output:             %s\n", cfg.Output)
	fmt.Fprintf(w, "compression:        %s\n", cfg.Compression)
	fmt.Fprintf(w, "compression_level:  %d\n", cfg.CompressionLevel)
	fmt.Fprintf(w, "color:              %t\n", cfg.Color)
	fmt.Fprintf(w, "format:             %s\n", cfg.Format)
	fmt.Fprintf(w, "template:           %q\n", cfg.Template)
	fmt.Fprintf(w, "logging.level:      %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.path:       %s\n", cfg.Logging.Path)

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	anyOverrides := false
	for _, key := range []string{"OUTPUT", "COMPRESSION", "COMPRESSION_LEVEL", "COLOR", "FORMAT", "TEMPLATE", "LOGGING_LEVEL", "LOGGING_PATH"} {
		name := config.EnvPrefix + "_" + key
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(w, "%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(w, "(none)")
	}
	return nil
}

func (a *app) runConfigEdit() error {
	configPath, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	a.logger.Component("config").Debug("opening editor", "path", configPath, "editor", editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = a.stdout
	editorCmd.Stderr = a.stderr
	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

func (a *app) runConfigInit() error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); err == nil {
		a.printInfo("Config file already exists: %s", configPath)
		a.printInfo("Use 'filedex config edit' to modify it.")
		return nil
	}

	if _, err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	a.printInfo("Created default config file: %s", configPath)
	return nil
}

func (a *app) runConfigPath() error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		a.logger.Component("config").Debug("config file does not exist, defaults apply")
	}
	return nil
}
