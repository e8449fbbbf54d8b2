// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for launchctl.
//
// Configuration is optional. A single file is read when named by
// either the LAUNCHCTL_CONFIG environment variable (via [Load]) or a
// --config flag (via [LoadFile]); otherwise [Default] applies. There is
// no ~/.config discovery and no automatic file search, and no
// environment variable overrides an individual setting.
//
// Variable expansion is performed on the socket path after loading:
// ${HOME} and ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- socket path, bulk reply strategy and sizes, logging
//   - [Default] -- the built-in values
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other launchctl packages.
package config
