// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/target"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// Fields of the environment routines.
const (
	KeyEnvironment = "envvars"
	KeyVariable    = "envvar"
	KeyValue       = "value"
)

func setenvCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "setenv",
		Summary: "Sets the specified environment variables for all services within the domain.",
		Usage:   "launchctl setenv <<key> <value>, ...>",
		Run: func(args []string) error {
			if len(args)%2 != 0 {
				return launchd.Usagef("expected key and value pairs, got %d argument(s)", len(args))
			}
			variables := value.NewMap()
			for index := 0; index < len(args); index += 2 {
				variables.SetString(args[index], args[index+1])
			}
			return env.setEnvironment(variables)
		},
	}
}

func unsetenvCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "unsetenv",
		Summary: "Unsets the specified environment variables for all services within the domain.",
		Usage:   "launchctl unsetenv <key, ...>",
		Run: func(args []string) error {
			// A null value removes the variable.
			variables := value.NewMap()
			for _, key := range args {
				variables.Set(key, value.Null{})
			}
			return env.setEnvironment(variables)
		},
	}
}

func (e *Env) setEnvironment(variables *value.Map) error {
	msg := newRequest(target.SystemDomain())
	msg.Set(KeyEnvironment, variables)

	_, err := e.call(launchd.RoutineSetenv, msg)
	if err == nil {
		return nil
	}
	if launchd.CodeOf(err) == launchd.EPERM {
		return e.say(err, "Not privileged to set domain environment.")
	}
	return e.failf(err, "Could not set environment")
}

func getenvCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "getenv",
		Summary: "Gets the value of an environment variable from within the service manager.",
		Usage:   "launchctl getenv <key>",
		Run: func(args []string) error {
			if err := wantArgs(args, 1, 1); err != nil {
				return err
			}
			msg := newRequest(target.SystemDomain())
			msg.SetString(KeyVariable, args[0])

			reply, err := env.call(launchd.RoutineGetenv, msg)
			if err != nil {
				return err
			}
			variable, ok := reply.GetString(KeyValue)
			if !ok {
				return &launchd.Error{Routine: launchd.RoutineGetenv, Code: launchd.EBADRESP}
			}
			fmt.Fprintln(env.Stdout, variable)
			return nil
		},
	}
}
