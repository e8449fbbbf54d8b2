// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/target"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "launchctl",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(args []string) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "list",
				Run: func(args []string) error {
					called = "list"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"list"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "list" {
		t.Errorf("dispatched to %q, want %q", called, "list")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var params struct {
		Kill bool `flag:"kill,k"`
		PID  bool `flag:"print-pid,p"`
	}
	var service string

	command := &Command{
		Name: "kickstart",
		Flags: func() *pflag.FlagSet {
			return FlagsFromParams("kickstart", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				service = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"-kp", "system/com.example.agent"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !params.Kill || !params.PID {
		t.Errorf("combined shorthand flags not parsed: %+v", params)
	}
	if service != "system/com.example.agent" {
		t.Errorf("service = %q", service)
	}
}

func TestCommand_Execute_NoFlagsPassesDashArguments(t *testing.T) {
	var received []string
	command := &Command{
		Name: "kill",
		Run: func(args []string) error {
			received = args
			return nil
		},
	}

	if err := command.Execute([]string{"-9", "system/com.example.agent"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(received) != 2 || received[0] != "-9" {
		t.Errorf("args = %v, want [-9 system/com.example.agent]", received)
	}
}

func TestCommand_Execute_UnknownFlagIsUsageError(t *testing.T) {
	command := &Command{
		Name: "load",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("load", pflag.ContinueOnError)
			flagSet.Bool("force", false, "force loading")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--forse"})
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("Execute() = %v, want *UsageError", err)
	}
	if usage.Command != command {
		t.Error("usage error names the wrong command")
	}
	if !strings.Contains(err.Error(), "did you mean --force") {
		t.Errorf("error = %q, want suggestion for '--force'", err.Error())
	}
	if ExitStatus(err) != UsageExitCode {
		t.Errorf("ExitStatus = %d, want %d", ExitStatus(err), UsageExitCode)
	}
}

func TestCommand_Execute_UsageKindFromRun(t *testing.T) {
	root := &Command{Name: "launchctl"}
	blame := &Command{
		Name: "blame",
		Run: func(args []string) error {
			_, err := target.Parse(args[0])
			return err
		},
	}
	root.Subcommands = []*Command{blame}

	err := root.Execute([]string{"blame", "nowhere/1/foo"})
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("Execute() = %v, want *UsageError", err)
	}
	if usage.Command.FullName() != "launchctl blame" {
		t.Errorf("usage command = %q", usage.Command.FullName())
	}
	if !errors.Is(err, target.ErrBadName) {
		t.Error("usage error lost the underlying target error")
	}
	if launchd.CodeOf(err) != launchd.EBADNAME {
		t.Errorf("CodeOf = %d, want EBADNAME", launchd.CodeOf(err))
	}
}

func TestCommand_Execute_ApplicationErrorPassesThrough(t *testing.T) {
	want := &launchd.Error{Routine: launchd.RoutineServiceStart, Code: launchd.EPERM}
	command := &Command{
		Name: "start",
		Run:  func(args []string) error { return want },
	}

	err := command.Execute([]string{"com.example.agent"})
	if err != want {
		t.Errorf("Execute() = %v, want the Run error unchanged", err)
	}
}

func TestCommand_Execute_UnknownSubcommand(t *testing.T) {
	root := &Command{
		Name: "launchctl",
		Subcommands: []*Command{
			{Name: "bootstrap"},
			{Name: "kickstart"},
			{Name: "version"},
		},
	}

	err := root.Execute([]string{"kickstrat"})
	var unknown *UnknownCommandError
	if !errors.As(err, &unknown) {
		t.Fatalf("Execute() = %v, want *UnknownCommandError", err)
	}
	if unknown.Suggestion != "kickstart" {
		t.Errorf("suggestion = %q, want kickstart", unknown.Suggestion)
	}
	if !strings.HasPrefix(err.Error(), "Unrecognized subcommand: kickstrat") {
		t.Errorf("error = %q", err.Error())
	}
	if ExitStatus(err) != 1 {
		t.Errorf("ExitStatus = %d, want 1", ExitStatus(err))
	}

	err = root.Execute([]string{"zzzzzzz"})
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help"} {
		t.Run(helpArg, func(t *testing.T) {
			called := false
			command := &Command{
				Name: "print",
				Run: func(args []string) error {
					called = true
					return nil
				},
			}
			if err := command.Execute([]string{helpArg}); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
			if called {
				t.Error("help flag ran the command")
			}
		})
	}
}

func TestCommand_Execute_RunWithSubcommands(t *testing.T) {
	var ran []string
	root := &Command{
		Name:        "launchctl",
		Subcommands: []*Command{{Name: "list", Run: func([]string) error { return nil }}},
		Run: func(args []string) error {
			ran = append([]string{"root"}, args...)
			return nil
		},
	}

	if err := root.Execute(nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(ran) != 1 {
		t.Errorf("root Run not called for empty args: %v", ran)
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	root := &Command{
		Name:        "launchctl",
		Description: "Interfaces with the service manager.",
		Subcommands: []*Command{
			{Name: "bootstrap", Summary: "Bootstraps a domain or a service into a domain."},
			{Name: "print", Summary: "Prints a description of a domain or service."},
		},
		Examples: []Example{
			{
				Description: "Print the system domain",
				Command:     "launchctl print system",
			},
		},
	}

	var buffer bytes.Buffer
	root.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Interfaces with the service manager.",
		"Usage:",
		"launchctl <subcommand> ...",
		"Subcommands:",
		"bootstrap",
		"Prints a description of a domain or service.",
		"Examples:",
		"launchctl print system",
		"Run 'launchctl help <subcommand>'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintUsage(t *testing.T) {
	root := &Command{Name: "launchctl"}
	kill := &Command{Name: "kill", Usage: "launchctl kill <signal-name|signal-number> <service-target>"}
	list := &Command{Name: "list"}
	root.Subcommands = []*Command{kill, list}
	root.Lookup("kill")
	root.Lookup("list")

	var buffer bytes.Buffer
	kill.PrintUsage(&buffer)
	list.PrintUsage(&buffer)
	want := "Usage: launchctl kill <signal-name|signal-number> <service-target>\nUsage: launchctl list\n"
	if buffer.String() != want {
		t.Errorf("usage = %q, want %q", buffer.String(), want)
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "launchctl"}
	printCommand := &Command{Name: "print", parent: root}

	if got := root.FullName(); got != "launchctl" {
		t.Errorf("root.FullName() = %q, want %q", got, "launchctl")
	}
	if got := printCommand.FullName(); got != "launchctl print" {
		t.Errorf("printCommand.FullName() = %q, want %q", got, "launchctl print")
	}
}
