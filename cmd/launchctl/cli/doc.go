// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for launchctl.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree by
// cmd/launchctl/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and help output.
//
// Flag values are declared as tagged struct fields and bound with
// [FlagsFromParams].
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// Errors returned from Execute map to a process exit status through
// [ExitStatus]: usage mistakes exit 64, service manager failures exit
// with their error code, and [ExitError] carries an explicit status.
package cli
