// SPDX-License-Identifier: MPL-2.0

package runconfig

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/runcfg/runcfg/internal/envinfo"
	"github.com/runcfg/runcfg/internal/fsmeta"
	"github.com/runcfg/runcfg/internal/repoinfo"
	"github.com/runcfg/runcfg/internal/validate"
	"github.com/runcfg/runcfg/pkg/fspath"
	"github.com/runcfg/runcfg/pkg/record"
	"github.com/runcfg/runcfg/pkg/types"
)

// Record keys written by Create.
const (
	KeyConfigPath    = "config_path"
	KeyHyperParams   = "hyper_params"
	KeyPython        = "python"
	KeyRepository    = "repository"
	KeyTrainDatetime = "train_datetime"

	KeyInterpreter   = "interpreter"
	KeyVersion       = "version"
	KeyPackages      = "packages"
	KeyActiveBranch  = "active_branch"
	KeyCommitVersion = "commit_version"
)

type (
	// Clock supplies the creation timestamp.
	Clock interface {
		Now() time.Time
	}

	// Manager creates and maintains configuration files.
	Manager struct {
		repo        repoinfo.Provider
		env         envinfo.Prober
		validator   validate.Validator
		clock       Clock
		logger      *log.Logger
		hyperParams *record.Record

		creationTime func(path string) (fsmeta.Stamp, error)
	}

	// Option configures a Manager during construction.
	Option func(*Manager)

	systemClock struct{}
)

func (systemClock) Now() time.Time { return time.Now() }

// WithRepository sets the source of branch and commit information.
func WithRepository(p repoinfo.Provider) Option {
	return func(m *Manager) {
		m.repo = p
	}
}

// WithEnvironment sets the interpreter and package prober.
func WithEnvironment(p envinfo.Prober) Option {
	return func(m *Manager) {
		m.env = p
	}
}

// WithValidator sets the validator used by Load.
func WithValidator(v validate.Validator) Option {
	return func(m *Manager) {
		m.validator = v
	}
}

// WithClock sets the clock used for creation timestamps.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithHyperParams replaces the default hyper_params block written by Create.
func WithHyperParams(hp *record.Record) Option {
	return func(m *Manager) {
		m.hyperParams = hp
	}
}

// NewManager returns a Manager. Collaborators not set through options get
// defaults: go-git upward repository detection from the working directory,
// python3 with pip freeze, required-keys plus schema validation, the system
// clock, a warn-level stderr logger and DefaultHyperParams.
func NewManager(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.repo == nil {
		m.repo = repoinfo.NewGitProvider("", repoinfo.DetectDepth)
	}
	if m.env == nil {
		m.env = envinfo.NewCommandProber("", "", "")
	}
	if m.validator == nil {
		m.validator = validate.Default()
	}
	if m.clock == nil {
		m.clock = systemClock{}
	}
	if m.logger == nil {
		m.logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "runcfg",
			Level:  log.WarnLevel,
		})
	}
	if m.hyperParams == nil {
		m.hyperParams = DefaultHyperParams()
	}
	if m.creationTime == nil {
		m.creationTime = fsmeta.CreationTime
	}
	return m
}

// DefaultHyperParams returns the hyper_params block written when none is
// configured.
func DefaultHyperParams() *record.Record {
	return record.New().
		Set("random_state", 0).
		Set("solver", "lbfgs").
		Set("class_weight", "balanced").
		Set("n_jobs", -1).
		Set("cv", 5).
		Set("return_train_score", true)
}

// TimestampedPath turns dst into the file name Create writes: a trailing
// ".json" is removed and "_<ts>.json" appended.
func TimestampedPath(dst types.FilesystemPath, ts types.Timestamp) types.FilesystemPath {
	return types.FilesystemPath(fmt.Sprintf("%s_%s%s", fspath.TrimExt(dst, jsonExt), ts, jsonExt))
}

// Create builds a new configuration record and writes it next to dst under a
// timestamped name, returning the absolute path written.
//
// Repository and environment lookups happen before anything touches the
// filesystem; if either fails no file is created.
func (m *Manager) Create(ctx context.Context, dst types.FilesystemPath) (types.FilesystemPath, error) {
	if err := dst.Validate(); err != nil {
		return "", err
	}

	ts := types.FormatTimestamp(m.clock.Now())

	repo, err := m.repo.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("reading repository state: %w", err)
	}
	env, err := m.env.Probe(ctx)
	if err != nil {
		return "", fmt.Errorf("probing environment: %w", err)
	}

	path, err := fspath.Abs(TimestampedPath(dst, ts))
	if err != nil {
		return "", err
	}

	packages := env.Packages
	if packages == nil {
		packages = []string{}
	}

	rec := record.New().
		Set(KeyConfigPath, path).
		Set(KeyHyperParams, m.hyperParams.Clone()).
		Set(KeyPython, record.New().
			Set(KeyInterpreter, env.Interpreter).
			Set(KeyVersion, env.Version).
			Set(KeyPackages, packages)).
		Set(KeyRepository, record.New().
			Set(KeyActiveBranch, repo.Branch).
			Set(KeyCommitVersion, repo.Commit)).
		Set(KeyTrainDatetime, ts.String())

	if err := m.Save(rec, path); err != nil {
		return "", err
	}
	m.logger.Info("created configuration", "path", path, "branch", repo.Branch, "packages", len(packages))
	return path, nil
}
