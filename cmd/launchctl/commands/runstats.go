// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// KeyRuns is the list of per-run statistics in a runstats reply.
const KeyRuns = "runs"

func runstatsCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "runstats",
		Summary: "Prints performance statistics for a service.",
		Usage:   "launchctl runstats <service-target>",
		Run: func(args []string) error {
			if err := wantArgs(args, 1, 1); err != nil {
				return err
			}
			service, err := parseService(args[0])
			if err != nil {
				return err
			}

			reply, err := env.call(launchd.RoutineRunstats, newRequest(service))
			switch launchd.CodeOf(err) {
			case launchd.ENOTSUP:
				return env.say(err, "Performance logging is not enabled.")
			case launchd.ENOENT:
				return env.say(err, "No resource statistics gathered for service yet.")
			case launchd.EINVAL:
				return env.say(err, "Bad request.")
			}
			if err != nil {
				return err
			}

			runs, ok := reply.GetList(KeyRuns)
			if !ok {
				return &launchd.Error{Routine: launchd.RoutineRunstats, Code: launchd.EBADRESP}
			}
			fmt.Fprintf(env.Stdout, "%q\n", service.Name)
			for index, run := range runs {
				fmt.Fprintf(env.Stdout, "run %d = ", index)
				if err := value.Render(env.Stdout, run, 0); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
