// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/target"
)

// KeyPaths carries service definition paths in load and unload requests.
const KeyPaths = "paths"

func bootstrapCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "bootstrap",
		Summary: "Bootstraps a domain or a service into a domain.",
		Description: `Bootstraps a domain, or loads the given service definitions into it.

Relative paths are resolved against the working directory. The target
must name a domain; naming a service is an error.`,
		Usage: "launchctl bootstrap <domain-target> [service-path, service-path2, ...]",
		Examples: []cli.Example{
			{
				Description: "Load one service into the system domain",
				Command:     "launchctl bootstrap system /Library/LaunchDaemons/com.example.agent.plist",
			},
		},
		Run: func(args []string) error {
			if err := wantArgs(args, 1, -1); err != nil {
				return err
			}
			domain, err := parseDomain(args[0])
			if err != nil {
				return err
			}
			return env.loadPaths(launchd.RoutineLoad, domain, args[1:], "Bootstrap failed")
		},
	}
}

func bootoutCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "bootout",
		Summary: "Tears down a domain or removes a service from a domain.",
		Usage:   "launchctl bootout <domain-target> [service-path1, service-path2, ...] | <service-target>",
		Run: func(args []string) error {
			if err := wantArgs(args, 1, -1); err != nil {
				return err
			}
			resolved, err := target.Parse(args[0])
			if err != nil {
				return err
			}
			// Paths only make sense when the target is a whole domain.
			paths := args[1:]
			if resolved.IsService() {
				paths = nil
			}
			return env.loadPaths(launchd.RoutineUnload, resolved, paths, "Boot-out failed")
		},
	}
}

// loadPaths sends a load or unload request and prints per-item errors.
func (e *Env) loadPaths(routine launchd.Routine, t target.Target, paths []string, failure string) error {
	msg := newRequest(t)
	if len(paths) > 0 {
		list, err := e.absolutePaths(paths)
		if err != nil {
			return err
		}
		msg.Set(KeyPaths, list)
	}

	reply, err := e.call(routine, msg)
	if err != nil {
		if launchd.KindOf(err) == launchd.KindNotFound {
			return err
		}
		return e.failf(err, "%s", failure)
	}

	return e.itemErrors(routine, reply)
}
