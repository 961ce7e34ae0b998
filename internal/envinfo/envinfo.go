// SPDX-License-Identifier: MPL-2.0

// Package envinfo captures the training environment recorded in a
// configuration: the interpreter that will run training, its version and the
// packages installed for it.
//
// Command lines come from settings as single strings and are split with
// POSIX shell quoting rules (mvdan.cc/sh), with $VAR references expanded from
// the process environment.
package envinfo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/runcfg/runcfg/pkg/types"
)

const (
	// DefaultInterpreter is the interpreter looked up on PATH.
	DefaultInterpreter = "python3"
	// DefaultVersionArgs prints the interpreter's version when appended to it.
	DefaultVersionArgs = `-c "import platform; print(platform.python_version())"`
	// DefaultPackageCommand lists installed packages as name==version tokens.
	DefaultPackageCommand = "pip freeze"
)

var (
	// ErrEmptyCommand is returned when a configured command line has no words.
	ErrEmptyCommand = errors.New("empty command line")
	// ErrCommandFailed is the sentinel error wrapped by CommandError.
	ErrCommandFailed = errors.New("command failed")
)

type (
	// Environment is the interpreter block of a configuration record.
	Environment struct {
		Interpreter types.FilesystemPath
		Version     string
		Packages    []string
	}

	// Prober captures the current Environment.
	Prober interface {
		Probe(ctx context.Context) (Environment, error)
	}

	// Runner executes name with args and returns its standard output.
	Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

	// CommandProber builds an Environment by running external commands.
	CommandProber struct {
		// Interpreter is a command name resolved on PATH, or a path.
		Interpreter string
		// VersionArgs are appended to the interpreter to print its version.
		VersionArgs string
		// PackageCommand lists installed packages on stdout.
		PackageCommand string
		// Getenv expands $VAR references in command lines. Nil means os.Getenv.
		Getenv func(string) string
		// Run executes commands. Nil means ExecRunner.
		Run Runner
		// LookPath resolves the interpreter. Nil means exec.LookPath.
		LookPath func(string) (string, error)
	}

	// CommandError describes a command that could not be started or exited
	// unsuccessfully.
	CommandError struct {
		Command  string
		ExitCode types.ExitCode
		Stderr   string
		Err      error
	}
)

// NewCommandProber returns a CommandProber with the given settings, falling
// back to the defaults for empty values.
func NewCommandProber(interpreter, versionArgs, packageCommand string) *CommandProber {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	if versionArgs == "" {
		versionArgs = DefaultVersionArgs
	}
	if packageCommand == "" {
		packageCommand = DefaultPackageCommand
	}
	return &CommandProber{
		Interpreter:    interpreter,
		VersionArgs:    versionArgs,
		PackageCommand: packageCommand,
	}
}

// Probe resolves the interpreter, queries its version and lists packages.
// Any command failure is returned; there is no partial Environment.
func (p *CommandProber) Probe(ctx context.Context) (Environment, error) {
	interp, err := p.interpreterPath()
	if err != nil {
		return Environment{}, err
	}

	versionArgs, err := p.split(p.VersionArgs)
	if err != nil {
		return Environment{}, err
	}
	out, err := p.runner()(ctx, string(interp), versionArgs...)
	if err != nil {
		return Environment{}, err
	}
	version := strings.TrimSpace(string(out))

	packages, err := p.Packages(ctx)
	if err != nil {
		return Environment{}, err
	}

	return Environment{
		Interpreter: interp,
		Version:     version,
		Packages:    packages,
	}, nil
}

// Packages runs the package listing command and returns its output split on
// whitespace.
func (p *CommandProber) Packages(ctx context.Context) ([]string, error) {
	argv, err := p.split(p.PackageCommand)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("package command %q: %w", p.PackageCommand, ErrEmptyCommand)
	}
	out, err := p.runner()(ctx, argv[0], argv[1:]...)
	if err != nil {
		return nil, err
	}
	return strings.Fields(string(out)), nil
}

func (p *CommandProber) interpreterPath() (types.FilesystemPath, error) {
	lookPath := p.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(p.Interpreter)
	if err != nil {
		return "", &CommandError{Command: p.Interpreter, Err: err}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving interpreter path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

func (p *CommandProber) split(cmdline string) ([]string, error) {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	fields, err := shell.Fields(cmdline, getenv)
	if err != nil {
		return nil, fmt.Errorf("parsing command line %q: %w", cmdline, err)
	}
	return fields, nil
}

func (p *CommandProber) runner() Runner {
	if p.Run != nil {
		return p.Run
	}
	return ExecRunner
}

// ExecRunner runs name with os/exec and captures stdout. A failure to start
// or a non-zero exit is reported as a *CommandError carrying stderr.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Command: strings.Join(append([]string{name}, args...), " "),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = types.ExitCode(exitErr.ExitCode())
		}
		return nil, cmdErr
	}
	return stdout.Bytes(), nil
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "%s: %v", e.Command, e.Err)
	if e.Stderr != "" {
		fmt.Fprintf(&msg, ": %s", e.Stderr)
	}
	return msg.String()
}

// Unwrap returns the underlying error and ErrCommandFailed.
func (e *CommandError) Unwrap() []error { return []error{ErrCommandFailed, e.Err} }
