// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/launchctl/lib/launchd"
)

// UsageExitCode is the exit status for command-line usage errors
// (sysexits EX_USAGE).
const UsageExitCode = 64

// ExitError signals a non-zero exit code without printing an extra
// error message. When a command handler returns an ExitError, the CLI
// framework exits with the specified code without printing the error
// string. The command is expected to have already written its own
// output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this interface on
// returned errors to distinguish "handled non-zero exit" from
// "unexpected error to display".
func (e *ExitError) ExitCode() int {
	return e.Code
}

// UsageError is a command-line mistake. Command is the command whose
// usage line should be shown.
type UsageError struct {
	Command *Command
	Err     error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command.FullName(), e.Err)
}

func (e *UsageError) Unwrap() error { return e.Err }

// UnknownCommandError reports a subcommand name that matched nothing.
// Suggestion is the closest known name, or empty.
type UnknownCommandError struct {
	Name       string
	Suggestion string
	Command    *Command
}

func (e *UnknownCommandError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("Unrecognized subcommand: %s (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("Unrecognized subcommand: %s", e.Name)
}

// ReportedError marks an error whose diagnostic the command has already
// written. main uses it to avoid printing the same failure twice; the
// exit status still comes from Err.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

// Reported wraps err as a [*ReportedError]. A nil err stays nil.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return &ReportedError{Err: err}
}

// IsReported reports whether err carries a [*ReportedError].
func IsReported(err error) bool {
	var reported *ReportedError
	return errors.As(err, &reported)
}

// ExitStatus maps a command result to the process exit status:
//
//   - nil exits 0
//   - an error with an ExitCode method exits with that code
//   - an unknown subcommand exits 1
//   - usage errors, including unrecognized targets, exit 64
//   - an error carrying a service manager code exits with the code
//   - anything else exits 1
//
// A code the process cannot report intact (outside 1..255) exits 1.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return reportable(int64(coder.ExitCode()))
	}
	var unknown *UnknownCommandError
	if errors.As(err, &unknown) {
		return 1
	}
	var usage *UsageError
	if errors.As(err, &usage) || launchd.KindOf(err) == launchd.KindUsage {
		return UsageExitCode
	}
	if code := launchd.CodeOf(err); code != 0 {
		return reportable(int64(code))
	}
	return 1
}

// reportable keeps code when the low 8 bits of the exit status carry
// it unchanged and a non-zero status.
func reportable(code int64) int {
	if code < 1 || code > 255 {
		return 1
	}
	return int(code)
}
