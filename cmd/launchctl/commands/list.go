// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/target"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// Reply fields of the list routine.
const (
	KeyServices = "services"
	KeyService  = "service"
	KeyStatus   = "status"
)

func listCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "Lists information about services.",
		Description: `Without a label, prints one line per service in the system domain:
the pid (or "-" when not running), the last exit status, and the label.
A negative status is the signal that terminated the last instance.

With a label, prints the service's properties.`,
		Usage: "launchctl list [service-name]",
		Run: func(args []string) error {
			if err := wantArgs(args, 0, 1); err != nil {
				return err
			}
			domain := target.SystemDomain()
			if len(args) == 1 {
				domain = domain.WithName(args[0])
			}

			reply, err := env.call(launchd.RoutineList, newRequest(domain))
			if err != nil {
				return err
			}

			if !domain.IsService() {
				services, ok := reply.GetMap(KeyServices)
				if !ok {
					return &launchd.Error{Routine: launchd.RoutineList, Code: launchd.EBADRESP}
				}
				return writeServiceTable(env.Stdout, services)
			}

			service, ok := reply.GetMap(KeyService)
			if !ok {
				return &launchd.Error{Routine: launchd.RoutineList, Code: launchd.EBADRESP}
			}
			return value.Render(env.Stdout, service, 0)
		},
	}
}

// writeServiceTable prints the PID/Status/Label table in reply order.
// An entry that is not a map prints as a stopped service with status 0.
func writeServiceTable(w io.Writer, services *value.Map) error {
	if _, err := fmt.Fprintln(w, "PID\tStatus\tLabel"); err != nil {
		return err
	}
	for label, entry := range services.All() {
		var pid, status int64
		if fields, ok := entry.(*value.Map); ok {
			pid, _ = fields.GetInt(KeyPID)
			status, _ = fields.GetInt(KeyStatus)
		}

		pidColumn := "-"
		if pid != 0 {
			pidColumn = fmt.Sprint(pid)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", pidColumn, formatStatus(status), label); err != nil {
			return err
		}
	}
	return nil
}

// formatStatus decodes a wait status: the exit code for a normal exit,
// the negated signal number for a signal, "???" for a stopped process.
func formatStatus(status int64) string {
	wait := unix.WaitStatus(status)
	switch {
	case wait.Stopped():
		return "???"
	case wait.Exited():
		return fmt.Sprint(wait.ExitStatus())
	case wait.Signaled():
		return fmt.Sprintf("-%d", int(wait.Signal()))
	default:
		return "???"
	}
}
