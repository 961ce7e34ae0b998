// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/internal/runconfig"
	"github.com/runcfg/runcfg/pkg/types"
)

func newNewestCommand(app *App) *cobra.Command {
	var mode string
	newestCmd := &cobra.Command{
		Use:   "newest <dir>",
		Short: "Print the newest configuration file in a directory",
		Long: `Print the newest *.json file directly inside <dir>.

--mode created (the default) compares file creation times, or modification
times where the filesystem records no creation time. --mode filename
compares the timestamps runcfg embeds in file names.

Exits with status 1 and prints nothing when the directory holds no
configuration files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := types.FilesystemPath(args[0])
			searchMode := runconfig.SearchMode(mode)
			if searchMode != runconfig.SearchModeFilename && searchMode != runconfig.SearchModeCreated {
				return fmt.Errorf("unknown mode %q (valid: %s, %s)", mode, runconfig.SearchModeCreated, runconfig.SearchModeFilename)
			}
			mgr, err := app.Manager(cmd.Context())
			if err != nil {
				return app.fail(cmd, "load settings", app.configFile, err)
			}
			path, found, err := mgr.NewestPath(dir, searchMode)
			if err != nil {
				return app.fail(cmd, "search configurations", dir.String(), err)
			}
			if !found {
				fmt.Fprintln(app.stderr, WarningStyle.Render("no configuration files in "+dir.String()))
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
				return &ExitError{Code: types.ExitFailure}
			}
			app.println(path)
			return nil
		},
	}
	newestCmd.Flags().StringVarP(&mode, "mode", "m", string(runconfig.SearchModeCreated), "how to compare files (created, filename)")
	return newestCmd
}

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <dir>",
		Short: "List configuration files in a directory, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := types.FilesystemPath(args[0])
			mgr, err := app.Manager(cmd.Context())
			if err != nil {
				return app.fail(cmd, "load settings", app.configFile, err)
			}
			entries, err := mgr.List(dir)
			if err != nil {
				return app.fail(cmd, "list configurations", dir.String(), err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(app.stderr, SubtitleStyle.Render("(no configuration files)"))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(app.stdout, "%s  %s\n", SubtitleStyle.Render(entryTime(e)), CmdStyle.Render(e.Path.String()))
			}
			return nil
		},
	}
}

// entryTime prints the embedded run timestamp, or the creation time in the
// same layout for files runcfg did not name.
func entryTime(e runconfig.Entry) string {
	if e.Timestamp != "" {
		return e.Timestamp.String()
	}
	if e.Created.Time.IsZero() {
		return fmt.Sprintf("%-*s", types.TimestampLen, "-")
	}
	return types.FormatTimestamp(e.Created.Time.In(time.Local)).String()
}
