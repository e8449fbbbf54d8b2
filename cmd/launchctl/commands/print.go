// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strconv"

	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/target"
)

// Request fields of the print and limit routines.
const (
	KeyVersion   = "version"
	KeyVariant   = "variant"
	KeyPrint     = "print"
	KeyWhich     = "which"
	KeySoftLimit = "softlimit"
	KeyHardLimit = "hardlimit"
)

func printCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "print",
		Summary: "Prints a description of a domain or service.",
		Description: `Prints a description of a domain or service.

The service manager writes the description itself; it is copied to
standard output once the call completes.`,
		Usage: "launchctl print <domain-target> | <service-target>",
		Examples: []cli.Example{
			{
				Description: "Describe the system domain",
				Command:     "launchctl print system",
			},
			{
				Description: "Describe one service in a user domain",
				Command:     "launchctl print user/501/com.example.agent",
			},
		},
		Run: func(args []string) error {
			if err := wantArgs(args, 1, 1); err != nil {
				return err
			}
			resolved, err := target.Parse(args[0])
			if err != nil {
				return err
			}

			routine := launchd.RoutinePrint
			if resolved.IsService() {
				routine = launchd.RoutinePrintService
			}
			_, err = env.bulk(routine, newRequest(resolved))
			code := launchd.CodeOf(err)
			switch {
			case code == launchd.EINVAL:
				return env.say(err, "Bad request.")
			case code > launchd.ENODOMAIN && code != launchd.ENOSERVICE:
				return env.failf(err, "Could not print domain")
			}
			return err
		},
	}
}

func versionCommand(env *Env, name, summary string) *cli.Command {
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   "launchctl " + name,
		Run: func(args []string) error {
			if err := wantArgs(args, 0, 0); err != nil {
				return err
			}
			msg := newRequest(target.SystemDomain())
			if name == KeyVariant {
				msg.SetBool(KeyVariant, true)
			} else {
				msg.SetBool(KeyVersion, true)
			}

			_, err := env.bulk(launchd.RoutinePrint, msg)
			if err == nil {
				return nil
			}
			if launchd.CodeOf(err) == launchd.EINVAL {
				return env.say(err, "Bad request.")
			}
			return env.failf(err, "Could not print variant")
		},
	}
}

// limitNames are the resource limit names in the order of their
// numeric identifiers.
var limitNames = []string{"cpu", "filesize", "data", "stack", "core", "rss", "memlock", "maxproc", "maxfiles"}

func limitCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "limit",
		Summary: "Reads or modifies resource limits.",
		Description: `With no arguments, prints every resource limit of the service
manager. With a limit name, prints that limit. With values, sets the
soft and hard limit; the hard limit defaults to the soft limit.
"unlimited" removes a limit.`,
		Usage: "launchctl limit [<limit-name> [<soft-limit> [<hard-limit>]]]",
		Run: func(args []string) error {
			if err := wantArgs(args, 0, 3); err != nil {
				return err
			}
			return env.limit(args)
		},
	}
}

func (e *Env) limit(args []string) error {
	msg := newRequest(target.SystemDomain())

	if len(args) > 0 {
		which := -1
		for index, name := range limitNames {
			if name == args[0] {
				which = index
				break
			}
		}
		if which < 0 {
			return e.say(launchd.Usagef("unknown limit %q", args[0]), fmt.Sprintf("%s is not a valid limit name.", args[0]))
		}
		msg.SetInt(KeyWhich, int64(which))
	}

	if len(args) < 2 {
		msg.SetBool(KeyPrint, true)
		_, err := e.bulk(launchd.RoutineLimit, msg)
		if err != nil {
			return e.failf(err, "Could not print resource limits")
		}
		return nil
	}

	soft, err := parseLimit(args[1])
	if err != nil {
		return e.say(err, fmt.Sprintf("%s is not a valid limit.", args[1]))
	}
	hard := soft
	if len(args) > 2 {
		if hard, err = parseLimit(args[2]); err != nil {
			return e.say(err, fmt.Sprintf("%s is not a valid limit.", args[2]))
		}
	}
	msg.SetInt(KeySoftLimit, soft)
	msg.SetInt(KeyHardLimit, hard)

	if _, err := e.call(launchd.RoutineLimit, msg); err != nil {
		return e.failf(err, "Could not set resource limits")
	}
	return nil
}

// parseLimit accepts "unlimited" (sent as -1) or an integer in decimal,
// octal (leading 0) or hexadecimal (leading 0x).
func parseLimit(text string) (int64, error) {
	if text == "unlimited" {
		return -1, nil
	}
	limit, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return 0, launchd.Usagef("invalid limit %q", text)
	}
	return limit, nil
}

func dumpJetsamCategoryCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "dumpjpcategory",
		Summary: "Dumps the jetsam properties category of every service.",
		Usage:   "launchctl dumpjpcategory",
		Run: func(args []string) error {
			if err := wantArgs(args, 0, 0); err != nil {
				return err
			}
			msg := newRequest(target.SystemDomain())
			_, err := env.Bulk.Call(launchd.RoutineDumpJetsamCategory, msg, env.Config.DumpRegionSize)
			if launchd.CodeOf(err) == launchd.ENOTSUP {
				return env.say(err, "Dump jetsamproperties category is not supported on this platform.")
			}
			return err
		},
	}
}
