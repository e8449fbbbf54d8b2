// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/target"
)

// Request and reply fields of the per-service routines.
const (
	KeyKill      = "kill"
	KeySuspended = "suspended"
	KeyPID       = "pid"
	KeySignal    = "signal"
	KeyReason    = "reason"
)

type kickstartParams struct {
	Kill      bool `flag:"kill,k" desc:"kill the running instance before restarting it"`
	Suspended bool `flag:"suspended,s" desc:"start the service suspended"`
	PrintPID  bool `flag:"print-pid,p" desc:"print the pid of the started process"`
}

func kickstartCommand(env *Env) *cli.Command {
	var params kickstartParams

	return &cli.Command{
		Name:    "kickstart",
		Summary: "Forces an existing service to start.",
		Usage:   "launchctl kickstart [-k] [-s] [-p] <service-target>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("kickstart", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Restart a system service and print its new pid",
				Command:     "launchctl kickstart -kp system/com.example.agent",
			},
		},
		Run: func(args []string) error {
			if err := wantArgs(args, 1, 1); err != nil {
				return err
			}
			return env.kickstart(args[0], params)
		},
	}
}

func (e *Env) kickstart(spec string, params kickstartParams) error {
	service, err := parseService(spec)
	if err != nil {
		return err
	}

	msg := newRequest(service)
	if params.Kill {
		msg.SetBool(KeyKill, true)
	}
	if params.Suspended {
		msg.SetBool(KeySuspended, true)
	}

	reply, err := e.call(launchd.RoutineKickstartService, msg)
	if err != nil {
		code := launchd.CodeOf(err)
		switch {
		case code == launchd.EINVAL:
			return e.say(err, "Bad request.")
		case code != 0 && code != launchd.EALREADY && code < launchd.ENODOMAIN:
			return e.failf(err, "Could not kickstart service %q", service.Name)
		}
		return err
	}

	if params.PrintPID {
		pid, _ := reply.GetInt(KeyPID)
		if e.Interactive {
			fmt.Fprintf(e.Stdout, "service spawned with pid: %d\n", pid)
		} else {
			fmt.Fprintf(e.Stdout, "%d\n", pid)
		}
	}
	return nil
}

func killCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "kill",
		Summary: "Sends a signal to the service instance.",
		Description: `Sends a signal to the running instance of a service.

The signal is a number or a name, with or without the SIG prefix and an
optional leading dash: 15, TERM, SIGTERM and -9 are all accepted.`,
		Usage: "launchctl kill <signal-name|signal-number> <service-target>",
		// No flags: "-9" is a signal, not an option.
		Run: func(args []string) error {
			if err := wantArgs(args, 2, 2); err != nil {
				return err
			}
			signal, err := parseSignal(args[0])
			if err != nil {
				return env.say(err, "Invalid signal.")
			}
			return env.kill(signal, args[1])
		},
	}
}

func (e *Env) kill(signal syscall.Signal, spec string) error {
	service, err := parseService(spec)
	if err != nil {
		return err
	}

	msg := newRequest(service)
	msg.SetInt(KeySignal, int64(signal))

	_, err = e.call(launchd.RoutineServiceKill, msg)
	return e.signalFailure(err)
}

// signalFailure prints the messages shared by the signalling routines.
func (e *Env) signalFailure(err error) error {
	switch launchd.CodeOf(err) {
	case launchd.EPERM:
		return e.say(err, "Not privileged to signal service.")
	case launchd.ESRCH:
		return e.say(err, "No process to signal.")
	}
	return err
}

// parseSignal accepts a signal number or name. A leading "-" and a
// case-insensitive "SIG" prefix are ignored.
func parseSignal(text string) (syscall.Signal, error) {
	name := strings.TrimPrefix(text, "-")
	if len(name) > 3 && strings.EqualFold(name[:3], "sig") {
		name = name[3:]
	}

	if number, err := strconv.Atoi(name); err == nil {
		signal := syscall.Signal(number)
		if number <= 0 || unix.SignalName(signal) == "" {
			return 0, launchd.Usagef("invalid signal %q", text)
		}
		return signal, nil
	}

	if signal := unix.SignalNum("SIG" + strings.ToUpper(name)); signal != 0 {
		return signal, nil
	}
	return 0, launchd.Usagef("invalid signal %q", text)
}

func blameCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "blame",
		Summary: "Prints the reason a service is running.",
		Usage:   "launchctl blame <service-target>",
		Run: func(args []string) error {
			if err := wantArgs(args, 1, 1); err != nil {
				return err
			}
			service, err := parseService(args[0])
			if err != nil {
				return err
			}

			reply, err := env.call(launchd.RoutineBlameService, newRequest(service))
			if err != nil {
				return env.signalFailure(err)
			}
			reason, ok := reply.GetString(KeyReason)
			if !ok {
				return &launchd.Error{Routine: launchd.RoutineBlameService, Code: launchd.EBADRESP}
			}
			fmt.Fprintln(env.Stdout, reason)
			return nil
		},
	}
}

func startCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "start",
		Summary: "Starts the specified service.",
		Usage:   "launchctl start <service-name>",
		Run: func(args []string) error {
			return env.startStop(launchd.RoutineServiceStart, "start", args)
		},
	}
}

func stopCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "stop",
		Summary: "Stops the specified service if it is running.",
		Usage:   "launchctl stop <service-name>",
		Run: func(args []string) error {
			return env.startStop(launchd.RoutineServiceStop, "stop", args)
		},
	}
}

// startStop implements the legacy start and stop commands, which take a
// bare label in the system domain. A service that is already in the
// requested state is not an error.
func (e *Env) startStop(routine launchd.Routine, verb string, args []string) error {
	if err := wantArgs(args, 1, 1); err != nil {
		return err
	}
	msg := newRequest(target.SystemDomain().WithName(args[0]))

	_, err := e.call(routine, msg)
	switch launchd.CodeOf(err) {
	case launchd.EALREADY:
		return nil
	case launchd.EPERM:
		return e.say(err, fmt.Sprintf("Not privileged to %s service.", verb))
	}
	return err
}
