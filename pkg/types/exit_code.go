// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// Exit statuses runcfg itself uses. A failing package or version command
// passes its own status through instead of ExitFailure.
const (
	ExitSuccess ExitCode = 0
	ExitFailure ExitCode = 1
	// ExitUsage is reported for bad flags or arguments.
	ExitUsage ExitCode = 2
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is a process exit status, either runcfg's own or one
	// reported by a command it ran. Valid codes are 0-255.
	ExitCode int

	// InvalidExitCodeError reports an ExitCode outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an *InvalidExitCodeError when c is outside 0-255.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether c is ExitSuccess.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// OrFailure returns c when it is a valid failure status and ExitFailure
// otherwise. A failed operation must never exit 0, and statuses outside
// 0-255 would be truncated by the OS.
func (c ExitCode) OrFailure() ExitCode {
	if c.IsSuccess() || c.Validate() != nil {
		return ExitFailure
	}
	return c
}

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
