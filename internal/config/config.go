// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"github.com/spf13/viper"

	"github.com/runcfg/runcfg/internal/issue"
	"github.com/runcfg/runcfg/internal/runconfig"
	"github.com/runcfg/runcfg/pkg/cueutil"
	"github.com/runcfg/runcfg/pkg/record"
	"github.com/runcfg/runcfg/pkg/types"
)

const (
	// AppName is the application name.
	AppName = "runcfg"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variable overrides, e.g.
	// RUNCFG_ENVIRONMENT_PACKAGE_COMMAND.
	EnvPrefix = "RUNCFG"

	schemaDefinition = "#Config"
	hyperParamsKey   = "hyper_params"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the runcfg configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultFilePath returns the settings file path inside dir, or inside
// ConfigDir when dir is empty.
func DefaultFilePath(dir string) (string, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("repository.base_dir", string(defaults.Repository.BaseDir))
	v.SetDefault("repository.ancestor_depth", defaults.Repository.AncestorDepth)
	v.SetDefault("environment.interpreter", defaults.Environment.Interpreter)
	v.SetDefault("environment.version_args", defaults.Environment.VersionArgs)
	v.SetDefault("environment.package_command", defaults.Environment.PackageCommand)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var (
		resolvedPath string
		hyperParams  *record.Record
	)

	if opts.ConfigFilePath != "" {
		path := string(opts.ConfigFilePath)
		if !fileExists(path) {
			return nil, issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(path).
				WithIssue(issue.SettingsLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'runcfg config init' to write a default settings file").
				Wrap(fmt.Errorf("settings file not found: %s", path)).
				BuildError()
		}
		resolvedPath = path
	} else {
		path, err := DefaultFilePath(string(opts.ConfigDirPath))
		if err != nil {
			return nil, err
		}
		// A missing settings file means defaults.
		if fileExists(path) {
			resolvedPath = path
		}
	}

	if resolvedPath != "" {
		hp, err := loadCUEIntoViper(v, resolvedPath)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(resolvedPath).
				WithIssue(issue.SettingsLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the settings match the expected schema").
				Wrap(err).
				BuildError()
		}
		hyperParams = hp
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.HyperParams = hyperParams
	cfg.Source = types.FilesystemPath(resolvedPath)

	// Environment overrides bypass the CUE schema.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate settings").
			WithResource(resolvedPath).
			WithIssue(issue.SettingsLoadFailedId).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. The hyper_params block is returned
// separately with its key order and case intact.
func loadCUEIntoViper(v *viper.Viper, path string) (*record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Settings fields are optional, so non-concrete values are accepted here
	// and defaults fill the gaps.
	unified, err := cueutil.Unify(configSchema, data, schemaDefinition,
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return nil, err
	}

	var hyperParams *record.Record
	if hp := unified.LookupPath(cue.ParsePath(hyperParamsKey)); hp.Exists() {
		raw, err := hp.MarshalJSON()
		if err != nil {
			return nil, cueutil.FormatError(err, path)
		}
		if hyperParams, err = record.Parse(raw); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, hyperParamsKey, err)
		}
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return nil, cueutil.FormatError(err, path)
	}
	delete(configMap, hyperParamsKey)

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	return hyperParams, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default settings file to path unless one
// already exists. An empty path means DefaultFilePath(""). It returns the
// path and whether a file was written.
func CreateDefaultConfig(path string) (string, bool, error) {
	if path == "" {
		p, err := DefaultFilePath("")
		if err != nil {
			return "", false, err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := GenerateCUE(DefaultConfig())
	if err != nil {
		return "", false, err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return path, true, nil
}

// GenerateCUE generates a CUE representation of the configuration. A nil
// HyperParams is written out as the built-in defaults.
func GenerateCUE(cfg *Config) (string, error) {
	var sb strings.Builder

	sb.WriteString("// runcfg settings\n\n")

	sb.WriteString("repository: {\n")
	fmt.Fprintf(&sb, "\tbase_dir:       %q\n", cfg.Repository.BaseDir)
	fmt.Fprintf(&sb, "\tancestor_depth: %d\n", cfg.Repository.AncestorDepth)
	sb.WriteString("}\n")

	sb.WriteString("\nenvironment: {\n")
	fmt.Fprintf(&sb, "\tinterpreter:     %q\n", cfg.Environment.Interpreter)
	if cfg.Environment.VersionArgs != "" {
		fmt.Fprintf(&sb, "\tversion_args:    %q\n", cfg.Environment.VersionArgs)
	}
	fmt.Fprintf(&sb, "\tpackage_command: %q\n", cfg.Environment.PackageCommand)
	sb.WriteString("}\n")

	hp := cfg.HyperParams
	if hp == nil {
		hp = runconfig.DefaultHyperParams()
	}
	hpJSON, err := record.MarshalIndent(hp, "\t")
	if err != nil {
		return "", fmt.Errorf("encoding hyper_params: %w", err)
	}
	fmt.Fprintf(&sb, "\n%s: %s\n", hyperParamsKey, hpJSON)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String(), nil
}
