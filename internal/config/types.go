// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/runcfg/runcfg/internal/envinfo"
	"github.com/runcfg/runcfg/internal/repoinfo"
	"github.com/runcfg/runcfg/pkg/record"
	"github.com/runcfg/runcfg/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidAncestorDepth is returned when an ancestor depth is below DetectDepth.
	ErrInvalidAncestorDepth = errors.New("invalid ancestor depth")
	// ErrInvalidBaseDir is returned when a non-empty base directory is whitespace-only.
	ErrInvalidBaseDir = errors.New("invalid repository base directory")
	// ErrInvalidCommandLine is returned when a configured command line is blank.
	ErrInvalidCommandLine = errors.New("invalid command line")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Repository locates the git repository whose state is recorded.
		Repository RepositoryConfig `json:"repository" mapstructure:"repository"`
		// Environment configures the interpreter and package listing.
		Environment EnvironmentConfig `json:"environment" mapstructure:"environment"`
		// HyperParams replaces the default hyper_params block of new
		// configurations. Nil means the built-in defaults. It is read from the
		// settings file directly since viper folds key case.
		HyperParams *record.Record `json:"hyper_params" mapstructure:"-"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Source is the settings file that was loaded, or empty for defaults.
		Source types.FilesystemPath `json:"-" mapstructure:"-"`
	}

	// RepositoryConfig locates the repository root.
	RepositoryConfig struct {
		// BaseDir is where the lookup starts; empty means the working directory.
		BaseDir types.FilesystemPath `json:"base_dir" mapstructure:"base_dir"`
		// AncestorDepth is how many levels above BaseDir the repository root
		// lives. repoinfo.DetectDepth (-1) searches upward for .git.
		AncestorDepth int `json:"ancestor_depth" mapstructure:"ancestor_depth"`
	}

	// EnvironmentConfig configures the environment probe.
	EnvironmentConfig struct {
		// Interpreter is resolved on PATH unless it contains a separator.
		Interpreter string `json:"interpreter" mapstructure:"interpreter"`
		// VersionArgs are appended to Interpreter to print its version.
		VersionArgs string `json:"version_args" mapstructure:"version_args"`
		// PackageCommand lists installed packages on stdout.
		PackageCommand string `json:"package_command" mapstructure:"package_command"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme used for issue pages.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// GlamourStyle returns the glamour style name for the scheme.
func (cs ColorScheme) GlamourStyle() string {
	switch cs {
	case ColorSchemeDark, ColorSchemeLight:
		return string(cs)
	default:
		return "auto"
	}
}

// IsValid returns whether the RepositoryConfig has valid fields.
func (c RepositoryConfig) IsValid() (bool, []error) {
	var errs []error
	if c.BaseDir != "" {
		if err := c.BaseDir.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidBaseDir, err))
		}
	}
	if c.AncestorDepth < repoinfo.DetectDepth {
		errs = append(errs, fmt.Errorf("%w: %d (want >= %d)", ErrInvalidAncestorDepth, c.AncestorDepth, repoinfo.DetectDepth))
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the EnvironmentConfig has valid fields. Empty
// values are valid and mean the envinfo defaults.
func (c EnvironmentConfig) IsValid() (bool, []error) {
	var errs []error
	fields := []struct{ name, value string }{
		{"interpreter", c.Interpreter},
		{"version_args", c.VersionArgs},
		{"package_command", c.PackageCommand},
	}
	for _, f := range fields {
		if f.value != "" && strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Errorf("%w: environment.%s is blank", ErrInvalidCommandLine, f.name))
		}
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	return c.ColorScheme.IsValid()
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Repository.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Environment.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Repository: RepositoryConfig{
			BaseDir:       "",
			AncestorDepth: repoinfo.DetectDepth,
		},
		Environment: EnvironmentConfig{
			Interpreter:    envinfo.DefaultInterpreter,
			VersionArgs:    envinfo.DefaultVersionArgs,
			PackageCommand: envinfo.DefaultPackageCommand,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
