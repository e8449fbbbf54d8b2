// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the launchctl command tree.
//
// Each subcommand turns its arguments into one request, sends it through
// the shared [launchd.Client] (or the [bulkreply.Channel] for commands
// whose reply is a large block of text), and renders the reply. The
// human-readable failure messages match the traditional tool's wording,
// so a script that greps for "Could not find service" keeps working.
//
// [Execute] is the whole program minus process setup: it dispatches the
// arguments, prints the diagnostics that apply to every command
// (unknown domain or service, bad target specifier, usage) and returns
// the exit status.
package commands
