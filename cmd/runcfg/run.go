// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/internal/validate"
	"github.com/runcfg/runcfg/pkg/record"
	"github.com/runcfg/runcfg/pkg/types"
)

// errBadAssignment is returned for an add argument without '='.
var errBadAssignment = errors.New("expected key=value")

func newCreateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <destination>",
		Short: "Record a new training run configuration",
		Long: `Record a new training run configuration.

The file is written next to <destination> with the run's start time
appended to its name, e.g. configs/train.json becomes
configs/train_2024-06-01-12-30-45-000001.json. Missing parent
directories are created. The absolute path written is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst := types.FilesystemPath(args[0])
			mgr, err := app.Manager(cmd.Context())
			if err != nil {
				return app.fail(cmd, "load settings", app.configFile, err)
			}
			path, err := mgr.Create(cmd.Context(), dst)
			if err != nil {
				return app.fail(cmd, "create configuration", dst.String(), err)
			}
			app.println(path)
			return nil
		},
	}
}

func newShowCommand(app *App) *cobra.Command {
	var (
		keys   []string
		format string
		strict bool
	)
	showCmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print a configuration file",
		Long: `Print a configuration file after checking it is a JSON object.

With --keys, the file must contain every listed top-level key. With
--strict, the fields "runcfg create" writes must also have the shape it
writes them in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := types.FilesystemPath(args[0])
			if !isOutputFormat(format) {
				return fmt.Errorf("unknown format %q (valid: %s, %s)", format, formatJSON, formatTOML)
			}
			mgr, err := app.Manager(cmd.Context())
			if err != nil {
				return app.fail(cmd, "load settings", app.configFile, err)
			}
			rec, err := mgr.Load(path, keys)
			if err != nil {
				return app.fail(cmd, "load configuration", path.String(), err)
			}
			if strict {
				if err := validate.Strict(path.String()).Validate(rec, keys); err != nil {
					return app.fail(cmd, "check configuration", path.String(), err)
				}
			}
			out, err := encodeRecord(rec, format)
			if err != nil {
				return app.fail(cmd, "encode configuration", path.String(), err)
			}
			fmt.Fprint(app.stdout, string(out))
			return nil
		},
	}
	showCmd.Flags().StringSliceVar(&keys, "keys", nil, "top-level keys the file must contain")
	showCmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format (json, toml)")
	showCmd.Flags().BoolVar(&strict, "strict", false, "also check fields against the record schema")
	return showCmd
}

func newAddCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path> <key=value>...",
		Short: "Add or replace top-level keys",
		Long: `Add or replace top-level keys of a configuration file.

Each value is read as JSON when it parses as JSON and as a plain string
otherwise, so n_jobs=4 stores a number and solver=saga a string. Existing
keys keep their position; new keys are appended.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := types.FilesystemPath(args[0])
			updates, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			mgr, err := app.Manager(cmd.Context())
			if err != nil {
				return app.fail(cmd, "load settings", app.configFile, err)
			}
			if err := mgr.AddInfo(path, updates); err != nil {
				return app.fail(cmd, "update configuration", path.String(), err)
			}
			return nil
		},
	}
}

func newRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path> <key>...",
		Short: "Remove top-level keys",
		Long:  `Remove top-level keys from a configuration file. Keys that are not present are ignored.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := types.FilesystemPath(args[0])
			mgr, err := app.Manager(cmd.Context())
			if err != nil {
				return app.fail(cmd, "load settings", app.configFile, err)
			}
			if err := mgr.RemoveInfo(path, args[1:]); err != nil {
				return app.fail(cmd, "update configuration", path.String(), err)
			}
			return nil
		},
	}
}

// parseAssignments turns key=value arguments into an ordered record. A
// repeated key keeps its first position and its last value.
func parseAssignments(args []string) (*record.Record, error) {
	updates := record.New()
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", errBadAssignment, arg)
		}
		updates.Set(key, parseValue(raw))
	}
	return updates, nil
}

func parseValue(raw string) any {
	if v, err := record.ParseValue([]byte(raw)); err == nil {
		return v
	}
	return raw
}
