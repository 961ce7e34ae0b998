// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/internal/config"
	"github.com/runcfg/runcfg/pkg/record"
)

// newConfigCommand creates the `runcfg config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage runcfg settings",
		Long: `Manage runcfg settings.

Settings are stored in:
  - Linux: ~/.config/runcfg/config.cue
  - macOS: ~/Library/Application Support/runcfg/config.cue
  - Windows: %APPDATA%\runcfg\config.cue

Every setting can be overridden with a RUNCFG_ environment variable,
e.g. RUNCFG_ENVIRONMENT_INTERPRETER=python3.12.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output current settings as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.settings(cmd.Context())
			if err != nil {
				return app.fail(cmd, "load settings", app.configFile, err)
			}
			content, err := config.GenerateCUE(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, content)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show settings file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.settingsPath()
			if err != nil {
				return err
			}
			app.println(path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd.Context(), app)
		},
	})

	return cfgCmd
}

// settingsPath returns --config when given, else the default file location.
func (a *App) settingsPath() (string, error) {
	if a.configFile != "" {
		return a.configFile, nil
	}
	return config.DefaultFilePath(a.configDir.String())
}

func showConfig(cmd *cobra.Command, app *App) error {
	cfg, err := app.settings(cmd.Context())
	if err != nil {
		return app.fail(cmd, "load settings", app.configFile, err)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Settings"))
	fmt.Fprintln(w)
	if cfg.Source == "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Settings file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Settings file"), cfg.Source)
	}

	baseDir := cfg.Repository.BaseDir.String()
	if baseDir == "" {
		baseDir = "(working directory)"
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("repository"))
	fmt.Fprintf(w, "  base_dir: %s\n", valueStyle.Render(baseDir))
	fmt.Fprintf(w, "  ancestor_depth: %s\n", valueStyle.Render(fmt.Sprint(cfg.Repository.AncestorDepth)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("environment"))
	fmt.Fprintf(w, "  interpreter: %s\n", valueStyle.Render(cfg.Environment.Interpreter))
	fmt.Fprintf(w, "  version_args: %s\n", valueStyle.Render(cfg.Environment.VersionArgs))
	fmt.Fprintf(w, "  package_command: %s\n", valueStyle.Render(cfg.Environment.PackageCommand))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("hyper_params"))
	if cfg.HyperParams == nil {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(built-in defaults)"))
	} else {
		for _, k := range cfg.HyperParams.Keys() {
			v, _ := cfg.HyperParams.Get(k)
			encoded, err := record.MarshalValue(v)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %s: %s\n", k, valueStyle.Render(string(encoded)))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	return nil
}

func initConfig(ctx context.Context, app *App) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := app.settingsPath()
	if err != nil {
		return err
	}
	written, created, err := config.CreateDefaultConfig(path)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(app.stdout, "Settings file already exists at: %s\n", written)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created settings file: %s\n", SuccessStyle.Render("✓"), written)
	return nil
}
