// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/runcfg/runcfg/internal/envinfo"
	"github.com/runcfg/runcfg/pkg/types"
)

// ExitError carries the status Execute exits with. RunE handlers return it
// after reporting the error themselves.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// newExitError picks the exit status for err. When a version or package
// command failed, its own status is used so scripts can tell "pip is
// broken" from "runcfg failed".
func newExitError(err error) *ExitError {
	code := types.ExitFailure
	var cmdErr *envinfo.CommandError
	if errors.As(err, &cmdErr) {
		code = cmdErr.ExitCode.OrFailure()
	}
	return &ExitError{Code: code, Err: err}
}

// exitCode returns the status for an error that reached Execute. Errors that
// were not reported through ExitError come from cobra's flag and argument
// checks.
func exitCode(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitUsage
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }
