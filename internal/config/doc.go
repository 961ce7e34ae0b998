// SPDX-License-Identifier: MPL-2.0

// Package config loads runcfg's own settings using Viper with CUE as the file format.
//
// Settings are read from ~/.config/runcfg/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/runcfg/config.cue on macOS,
// %APPDATA%\runcfg\config.cue on Windows), validated against an embedded CUE
// schema (config_schema.cue) and overridden by RUNCFG_* environment variables,
// e.g. RUNCFG_REPOSITORY_ANCESTOR_DEPTH=2.
//
// The settings choose where the git repository is found, which interpreter
// and package listing command describe the training environment, the default
// hyperparameters of new configurations, and UI preferences.
package config
