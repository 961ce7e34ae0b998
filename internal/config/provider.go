// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"

	"github.com/runcfg/runcfg/pkg/types"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific settings file when set.
	// The file must exist.
	ConfigFilePath types.FilesystemPath
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath types.FilesystemPath
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source, falling back to
// defaults when no settings file exists.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return loadWithOptions(ctx, opts)
}
