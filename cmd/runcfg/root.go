// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for runcfg.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the runcfg command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "runcfg",
		Short: "Record the configuration of machine learning training runs",
		Long: TitleStyle.Render("runcfg") + SubtitleStyle.Render(" - training run configuration manager") + `

runcfg writes one JSON file per training run holding the hyperparameters,
the interpreter and installed packages, and the active git branch and
commit. Files are named after the run's start time so the newest one is
easy to find.

` + SubtitleStyle.Render("Examples:") + `
  runcfg create configs/train.json        Record a new run
  runcfg newest configs                   Print the latest run file
  runcfg show configs/train_<ts>.json     Print a run file
  runcfg add <file> hyper_params='{"C":1}'  Add or replace keys`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "", "settings file (default is <user config dir>/runcfg/config.cue)")

	rootCmd.AddCommand(
		newCreateCommand(app),
		newShowCommand(app),
		newAddCommand(app),
		newRemoveCommand(app),
		newNewestCommand(app),
		newListCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the command's status.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(int(exitCode(err)))
	}
}
