// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/lib/launchd"
)

// Execute runs the command line args (without the program name) and
// returns the process exit status. Diagnostics go to env.Stderr.
func Execute(env *Env, args []string) int {
	root := Root(env)
	err := root.Execute(args)
	if err != nil {
		env.logger().Debug("command failed", "error", err, "kind", launchd.KindOf(err).String())
		Report(env.Stderr, root, err)
	}
	return cli.ExitStatus(err)
}

// Report writes the diagnostics that apply to any command's failure:
// unknown subcommand, unrecognized target, usage, and the not-found
// codes. Errors a command has already described are not repeated.
func Report(w io.Writer, root *cli.Command, err error) {
	var unknown *cli.UnknownCommandError
	if errors.As(err, &unknown) {
		fmt.Fprintln(w, unknown.Error())
		printOverview(w, root)
		return
	}

	code := launchd.CodeOf(err)
	switch code {
	case launchd.ENODOMAIN:
		fmt.Fprintf(w, "Could not find domain for %s\n", domainOf(err))
	case launchd.ENOSERVICE:
		var failure *launchd.Error
		if errors.As(err, &failure) && failure.Target != nil && failure.Target.Name != "" {
			fmt.Fprintf(w, "Could not find service %q in domain for %s\n", failure.Target.Name, failure.Target.Domain.Describe())
		} else {
			fmt.Fprintln(w, "Could not find service.")
		}
	case launchd.E2BIMPL:
		fmt.Fprintln(w, "Command is not yet implemented.")
	case launchd.EBADNAME:
		fmt.Fprintln(w, "Unrecognized target specifier. <service-target> takes a form of <domain-target>/<service-id>.")
		fmt.Fprintln(w, "Please refer to `launchctl help` for an explanation of the <domain-target> specifiers.")
	}

	var usage *cli.UsageError
	if errors.As(err, &usage) {
		if code != launchd.EBADNAME && !cli.IsReported(err) {
			fmt.Fprintln(w, usage.Error())
		}
		usage.Command.PrintUsage(w)
		return
	}

	switch code {
	case launchd.ENODOMAIN, launchd.ENOSERVICE, launchd.E2BIMPL:
		return
	}
	var coder interface{ ExitCode() int }
	if cli.IsReported(err) || errors.As(err, &coder) {
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// domainOf describes the domain a not-found error refers to.
func domainOf(err error) string {
	var failure *launchd.Error
	if errors.As(err, &failure) && failure.Target != nil {
		return failure.Target.Domain.Describe()
	}
	return "unknown domain"
}
