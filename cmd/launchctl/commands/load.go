// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/target"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// Fields of the legacy load and unload requests.
const (
	KeyLegacyLoad = "legacy-load"
	KeyEnable     = "enable"
	KeyDisable    = "disable"
	KeyForce      = "force"
)

// daemonDirectories are searched when any -D domain is given.
var daemonDirectories = []string{
	"/Library/LaunchDaemons",
	"/System/Library/LaunchDaemons",
}

type loadParams struct {
	Write   bool     `flag:"write,w" desc:"override the Disabled key and persist the change"`
	Force   bool     `flag:"force,F" desc:"force loading, ignoring the Disabled key"`
	Session string   `flag:"session,S" desc:"session type (ignored)"`
	Domains []string `flag:"domain,D" desc:"also search the daemon directories of a domain: all, user, local, network or system"`
}

func loadCommand(env *Env, name string) *cli.Command {
	var params loadParams

	routine, summary := launchd.RoutineLoad, "Bootstraps a service or directory of services."
	if name == "unload" {
		routine, summary = launchd.RoutineUnload, "Unloads a service or directory of services."
	}

	return &cli.Command{
		Name:    name,
		Summary: summary,
		Description: summary + `

Legacy interface: the service definitions are always loaded into the
system domain. Prefer bootstrap and bootout.`,
		Usage: "launchctl " + name + " [-wF] [-S <session>] [-D <domain>] <service-path, service-path2, ...>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams(name, &params)
		},
		Run: func(args []string) error {
			searchDaemons, err := env.loadDomains(params)
			if err != nil {
				return err
			}
			if err := wantArgs(args, 1, -1); err != nil {
				return err
			}

			msg := newRequest(target.SystemDomain())
			paths, err := env.absolutePaths(args)
			if err != nil {
				return err
			}
			if searchDaemons {
				list := make(value.List, 0, len(daemonDirectories)+len(paths))
				for _, directory := range daemonDirectories {
					list = append(list, value.String(directory))
				}
				paths = append(list, paths...)
			}
			msg.Set(KeyPaths, paths)
			if routine == launchd.RoutineLoad {
				msg.SetBool(KeyEnable, params.Write)
			} else {
				msg.SetBool(KeyDisable, params.Write)
			}
			msg.SetBool(KeyLegacyLoad, true)
			if params.Force {
				msg.SetBool(KeyForce, true)
			}

			reply, err := env.call(routine, msg)
			if err != nil {
				return err
			}
			// Legacy loads print per-item failures but still succeed.
			_ = env.itemErrors(routine, reply)
			return nil
		},
	}
}

// loadDomains validates the -S and -D options and reports whether the
// daemon directories should be searched.
func (e *Env) loadDomains(params loadParams) (bool, error) {
	if params.Session != "" {
		fmt.Fprintf(e.Stderr, "Session types are not supported. Ignoring session specifier: %s\n", params.Session)
	}
	search := false
	for _, domain := range params.Domains {
		switch strings.ToLower(domain) {
		case "all", "user", "local", "system":
			search = true
		case "network":
			fmt.Fprintln(e.Stderr, "Ignoring network domain.")
		default:
			return false, launchd.Usagef("unknown domain %q", domain)
		}
	}
	return search, nil
}
