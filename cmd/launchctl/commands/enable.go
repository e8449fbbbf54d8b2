// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// KeyNames lists the services an enable or disable request applies to.
const KeyNames = "names"

func enableCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "enable",
		Summary: "Enables an existing service.",
		Usage:   "launchctl enable <service-target>",
		Run: func(args []string) error {
			return env.setEnabled(launchd.RoutineEnable, "enable", args)
		},
	}
}

func disableCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "disable",
		Summary: "Disables an existing service.",
		Usage:   "launchctl disable <service-target>",
		Run: func(args []string) error {
			return env.setEnabled(launchd.RoutineDisable, "disable", args)
		},
	}
}

func (e *Env) setEnabled(routine launchd.Routine, verb string, args []string) error {
	if err := wantArgs(args, 1, 1); err != nil {
		return err
	}
	service, err := parseService(args[0])
	if err != nil {
		return err
	}

	msg := newRequest(service)
	msg.Set(KeyNames, value.List{value.String(service.Name)})

	reply, err := e.call(routine, msg)
	if err != nil {
		if launchd.KindOf(err) == launchd.KindNotFound {
			return err
		}
		return e.failf(err, "Could not %s service", verb)
	}

	return e.itemErrors(routine, reply)
}
