// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runcfg/runcfg/internal/config"
	"github.com/runcfg/runcfg/internal/envinfo"
	"github.com/runcfg/runcfg/internal/issue"
	"github.com/runcfg/runcfg/internal/repoinfo"
	"github.com/runcfg/runcfg/internal/runconfig"
	"github.com/runcfg/runcfg/internal/validate"
	"github.com/runcfg/runcfg/pkg/cueutil"
	"github.com/runcfg/runcfg/pkg/record"
)

// suggestions holds the short hints printed under an error for each issue.
var suggestions = map[issue.Id][]string{
	issue.ConfigFileNotFoundId:  {"Check the path for typos", "Run 'runcfg newest <dir>' to find the latest configuration"},
	issue.DirectoryNotFoundId:   {"Check the directory path for typos"},
	issue.NotAnObjectId:         {"A configuration file must hold a JSON object at the top level"},
	issue.MalformedJSONId:       {"Look for a truncated file or a trailing comma"},
	issue.MissingKeysId:         {"Add the missing keys with 'runcfg add <path> key=value'"},
	issue.SchemaMismatchId:      {"Compare the file with one written by 'runcfg create'"},
	issue.RepositoryNotFoundId:  {"Run inside a git repository or set repository.base_dir in the settings file"},
	issue.DetachedHeadId:        {"Check out a branch with 'git switch <branch>'"},
	issue.InterpreterNotFoundId: {"Install the interpreter or set environment.interpreter in the settings file"},
	issue.PackageListFailedId:   {"Run the package command by hand to see its output", "Set environment.package_command in the settings file"},
	issue.PermissionDeniedId:    {"Check the file and directory permissions"},
}

// classifyError maps an error to the issue catalog page that explains it.
// It returns 0 when no page applies.
func classifyError(err error) issue.Id {
	var (
		ae       *issue.ActionableError
		notFound *runconfig.NotFoundError
	)
	switch {
	case errors.As(err, &ae) && ae.IssueId != 0:
		return ae.IssueId
	case errors.As(err, &notFound):
		return issue.DirectoryNotFoundId
	case errors.Is(err, validate.ErrMissingKeys):
		return issue.MissingKeysId
	case errors.Is(err, validate.ErrSchema):
		return issue.SchemaMismatchId
	case errors.Is(err, record.ErrNotObject):
		return issue.NotAnObjectId
	case errors.Is(err, record.ErrSyntax):
		return issue.MalformedJSONId
	case errors.Is(err, repoinfo.ErrDetachedHead):
		return issue.DetachedHeadId
	case errors.Is(err, repoinfo.ErrRepositoryNotFound):
		return issue.RepositoryNotFoundId
	case errors.Is(err, exec.ErrNotFound):
		return issue.InterpreterNotFoundId
	case errors.Is(err, envinfo.ErrCommandFailed):
		return issue.PackageListFailedId
	case errors.Is(err, fs.ErrNotExist):
		return issue.ConfigFileNotFoundId
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId
	default:
		return 0
	}
}

// fail reports err on stderr and returns an ExitError so fang does not print
// it a second time. Errors that are already actionable keep their own
// operation and suggestions. The matching issue page is rendered below the
// message in verbose mode; otherwise only its links are listed.
func (a *App) fail(cmd *cobra.Command, operation, resource string, err error) error {
	id := classifyError(err)

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		ae = issue.NewErrorContext().
			WithOperation(operation).
			WithResource(resource).
			WithSuggestions(fieldSuggestions(err)...).
			WithSuggestions(suggestions[id]...).
			WithIssue(id).
			Wrap(err).
			Build()
	}

	fmt.Fprintf(a.stderr, "%s %s\n", ErrorStyle.Render("Error:"), ae.Format(a.verbose))
	if is := issue.Get(id); is != nil {
		if a.verbose {
			a.renderIssue(is)
		} else {
			a.printLinks(is)
		}
	}

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return newExitError(ae)
}

// fieldSuggestions names the top-level keys a schema error points at.
func fieldSuggestions(err error) []string {
	var cerr *cueutil.Error
	if !errors.As(err, &cerr) {
		return nil
	}
	keys := cerr.TopLevelKeys()
	if len(keys) == 0 {
		return nil
	}
	return []string{"Check the value of " + strings.Join(keys, ", ")}
}

func (a *App) renderIssue(is *issue.Issue) {
	rendered, err := is.Render(a.glamourStyle())
	if err != nil {
		a.logger.Debug("rendering issue page", "issue", is.Id(), "err", err)
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

func (a *App) printLinks(is *issue.Issue) {
	for _, link := range is.DocLinks() {
		fmt.Fprintf(a.stderr, "  %s %s\n", SubtitleStyle.Render("Docs:"), link)
	}
	for _, link := range is.ExtLinks() {
		fmt.Fprintf(a.stderr, "  %s %s\n", SubtitleStyle.Render("See:"), link)
	}
}

func (a *App) glamourStyle() string {
	if a.cfg == nil {
		return config.ColorSchemeAuto.GlamourStyle()
	}
	return a.cfg.UI.ColorScheme.GlamourStyle()
}
