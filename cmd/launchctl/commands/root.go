// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
)

const targetHelp = `Many subcommands take a target specifier that refers to a domain or a
service within that domain. The available specifier forms are:

system/[service-name]
Targets the system-wide domain or a service within it. Root privileges are
required to make modifications.

user/<uid>/[service-name]
Targets the user domain or a service within it. A process running as the
target user may make modifications. Root may modify any user's domain.

gui/<uid>/[service-name]
Targets the GUI domain or a service within it. Each GUI domain is associated
with a user domain, and a process running as the owner of that user domain
may make modifications.

session/<asid>/[service-name]
Targets a session domain or a service within it. A process running within
the target security audit session may make modifications.

pid/<pid>/[service-name]
Targets a process domain or a service within it. Only the process which owns
the domain may modify it.

Legacy subcommands (load, unload, list, start, stop, setenv, unsetenv,
getenv, limit) always operate on the system domain.`

// Root builds the launchctl command tree around env.
func Root(env *Env) *cli.Command {
	root := &cli.Command{
		Name:  "launchctl",
		Usage: "launchctl <subcommand> ... | help [subcommand]",
		Subcommands: []*cli.Command{
			bootstrapCommand(env),
			bootoutCommand(env),
			enableCommand(env),
			disableCommand(env),
			kickstartCommand(env),
			killCommand(env),
			blameCommand(env),
			printCommand(env),
			runstatsCommand(env),
			loadCommand(env, "load"),
			loadCommand(env, "unload"),
			listCommand(env),
			startCommand(env),
			stopCommand(env),
			setenvCommand(env),
			unsetenvCommand(env),
			getenvCommand(env),
			limitCommand(env),
			dumpJetsamCategoryCommand(env),
			errorCommand(env),
			versionCommand(env, "variant", "Prints the service manager variant."),
			versionCommand(env, "version", "Prints the service manager version."),
		},
	}
	root.Subcommands = append(root.Subcommands, helpCommand(env, root))

	root.Run = func(args []string) error {
		if len(args) > 0 {
			return &cli.UnknownCommandError{Name: args[0], Command: root}
		}
		printOverview(env.Stdout, root)
		return nil
	}
	return root
}

func helpCommand(env *Env, root *cli.Command) *cli.Command {
	return &cli.Command{
		Name:    "help",
		Summary: "Prints the usage for a given subcommand.",
		Usage:   "launchctl help <subcommand>",
		Run: func(args []string) error {
			if len(args) == 0 {
				printOverview(env.Stdout, root)
				return nil
			}
			if sub := root.Lookup(args[0]); sub != nil {
				sub.PrintHelp(env.Stderr)
				return nil
			}
			fmt.Fprintln(env.Stderr, "Usage: launchctl help <subcommand>")
			return &cli.ExitError{Code: cli.UsageExitCode}
		},
	}
}

// printOverview writes the top-level help: usage, the target specifier
// grammar, and one line per subcommand.
func printOverview(w io.Writer, root *cli.Command) {
	fmt.Fprintf(w, "Usage: %s\n", root.Usage)
	fmt.Fprintf(w, "%s\n\nSubcommands:\n", targetHelp)
	for _, sub := range root.Subcommands {
		fmt.Fprintf(w, "\t%-16s%s\n", sub.Name, sub.Summary)
	}
}
