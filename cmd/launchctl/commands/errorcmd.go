// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strconv"

	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/lib/launchd"
)

func errorCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:    "error",
		Summary: "Prints a description of an error.",
		Description: `Prints the description of an error code returned by the service
manager. The code may be decimal, octal (leading 0) or hexadecimal
(leading 0x). "posix" and "bootstrap" select the table explicitly;
without them the code is looked up in both.`,
		Usage: "launchctl error [posix|bootstrap] <code>",
		Run: func(args []string) error {
			if err := wantArgs(args, 1, 2); err != nil {
				return err
			}
			text := args[0]
			if len(args) == 2 {
				if args[0] != "posix" && args[0] != "bootstrap" {
					return launchd.Usagef("unknown error table %q", args[0])
				}
				text = args[1]
			}

			code, err := strconv.ParseUint(text, 0, 32)
			if err != nil {
				return launchd.Usagef("invalid error code %q", text)
			}
			fmt.Fprintf(env.Stdout, "%d: %s\n", code, launchd.Code(code))
			return nil
		},
	}
}
