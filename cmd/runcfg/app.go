// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/runcfg/runcfg/internal/config"
	"github.com/runcfg/runcfg/internal/envinfo"
	"github.com/runcfg/runcfg/internal/repoinfo"
	"github.com/runcfg/runcfg/internal/runconfig"
	"github.com/runcfg/runcfg/pkg/types"
)

type (
	// ManagerFactory builds the run configuration manager for a loaded
	// settings value. Tests replace it to inject fake collaborators.
	ManagerFactory func(cfg *config.Config, logger *log.Logger) *runconfig.Manager

	// App wires CLI services and shared dependencies. All Cobra handlers
	// receive an App and reach settings and the manager through it.
	App struct {
		Config     config.Provider
		NewManager ManagerFactory

		configDir types.FilesystemPath
		stdout    io.Writer
		stderr    io.Writer
		logger    *log.Logger

		// Populated from flags before a command runs.
		verbose    bool
		configFile string

		cfg     *config.Config
		manager *runconfig.Manager
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     config.Provider
		NewManager ManagerFactory
		// ConfigDir overrides the settings directory lookup.
		ConfigDir types.FilesystemPath
		Stdout    io.Writer
		Stderr    io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.NewManager == nil {
		deps.NewManager = newManager
	}

	return &App{
		Config:     deps.Config,
		NewManager: deps.NewManager,
		configDir:  deps.ConfigDir,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
		logger: log.NewWithOptions(deps.Stderr, log.Options{
			Prefix: config.AppName,
			Level:  log.WarnLevel,
		}),
	}
}

// newManager builds a Manager backed by go-git and the configured
// interpreter.
func newManager(cfg *config.Config, logger *log.Logger) *runconfig.Manager {
	return runconfig.NewManager(
		runconfig.WithRepository(repoinfo.NewGitProvider(cfg.Repository.BaseDir, cfg.Repository.AncestorDepth)),
		runconfig.WithEnvironment(envinfo.NewCommandProber(
			cfg.Environment.Interpreter,
			cfg.Environment.VersionArgs,
			cfg.Environment.PackageCommand,
		)),
		runconfig.WithHyperParams(cfg.HyperParams),
		runconfig.WithLogger(logger),
	)
}

// loadOptions returns the settings lookup derived from flags and deps.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(a.configFile),
		ConfigDirPath:  a.configDir,
	}
}

// settings loads the settings once per invocation and applies ui.verbose.
func (a *App) settings(ctx context.Context) (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	if cfg.UI.Verbose {
		a.verbose = true
	}
	if a.verbose {
		a.logger.SetLevel(log.DebugLevel)
	}
	a.logger.Debug("settings loaded", "source", sourceLabel(cfg))
	return cfg, nil
}

// Manager returns the run configuration manager, loading settings first.
func (a *App) Manager(ctx context.Context) (*runconfig.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}
	cfg, err := a.settings(ctx)
	if err != nil {
		return nil, err
	}
	a.manager = a.NewManager(cfg, a.logger)
	return a.manager, nil
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.stdout, args...)
}

func sourceLabel(cfg *config.Config) string {
	if cfg.Source == "" {
		return "(defaults)"
	}
	return cfg.Source.String()
}
