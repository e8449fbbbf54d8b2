// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/lib/bulkreply"
	"github.com/bureau-foundation/launchctl/lib/config"
	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/target"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// Env is everything a command needs from the process. main builds one;
// tests build one around a fake service manager.
type Env struct {
	Client *launchd.Client
	Bulk   *bulkreply.Channel
	Config *config.Config

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Interactive reports whether Stdout is a terminal.
	Interactive bool

	// WorkingDirectory resolves relative service paths. Empty means the
	// process working directory.
	WorkingDirectory string
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// call sends one routine and logs the outcome at debug level.
func (e *Env) call(routine launchd.Routine, msg *value.Map) (*value.Map, error) {
	reply, err := e.Client.Call(routine, msg)
	e.logger().Debug("routine finished", "routine", routine, "code", int64(launchd.CodeOf(err)))
	return reply, err
}

// bulk sends routine through the bulk reply channel with the
// single-item region capacity.
func (e *Env) bulk(routine launchd.Routine, msg *value.Map) (*value.Map, error) {
	return e.Bulk.Call(routine, msg, e.Config.RegionSize)
}

// failf prints a command-specific failure line and marks err reported.
// Errors carrying a service manager code print "<prefix>: N: message";
// anything else prints the error text.
func (e *Env) failf(err error, format string, args ...any) error {
	prefix := fmt.Sprintf(format, args...)
	if code := launchd.CodeOf(err); code != 0 {
		fmt.Fprintf(e.Stderr, "%s: %d: %s\n", prefix, int64(code), code)
	} else {
		fmt.Fprintf(e.Stderr, "%s: %v\n", prefix, err)
	}
	return cli.Reported(err)
}

// say prints a fixed diagnostic line and marks err reported.
func (e *Env) say(err error, message string) error {
	fmt.Fprintln(e.Stderr, message)
	return cli.Reported(err)
}

// itemErrors prints one line per failed item of a batch reply and
// returns the batch error, marked reported. It returns nil when every
// item succeeded.
func (e *Env) itemErrors(routine launchd.Routine, reply *value.Map) error {
	err := launchd.ItemErrors(routine, reply)
	var batch *launchd.BatchError
	if !errors.As(err, &batch) {
		return err
	}
	for _, item := range batch.Items {
		switch item.Code {
		case launchd.EEXIST, launchd.EALREADY:
			fmt.Fprintf(e.Stderr, "%s: service already loaded\n", item.Item)
		default:
			fmt.Fprintf(e.Stderr, "%s: %s\n", item.Item, item.Code)
		}
	}
	return cli.Reported(err)
}

// absolutePaths resolves service paths against the working directory
// and returns them as a request list.
func (e *Env) absolutePaths(paths []string) (value.List, error) {
	directory := e.WorkingDirectory
	list := make(value.List, 0, len(paths))
	for _, path := range paths {
		if !filepath.IsAbs(path) {
			if directory == "" {
				working, err := os.Getwd()
				if err != nil {
					return nil, fmt.Errorf("resolving %s: %w", path, err)
				}
				directory = working
			}
			path = filepath.Join(directory, path)
		}
		list = append(list, value.String(path))
	}
	return list, nil
}

// parseService parses a specifier that must name a service.
func parseService(spec string) (target.Target, error) {
	resolved, err := target.Parse(spec)
	if err != nil {
		return target.Target{}, err
	}
	if !resolved.IsService() {
		return target.Target{}, &target.ParseError{Spec: spec, Reason: "a service name is required", Err: target.ErrBadName}
	}
	return resolved, nil
}

// parseDomain parses a specifier that must name a domain only.
func parseDomain(spec string) (target.Target, error) {
	resolved, err := target.Parse(spec)
	if err != nil {
		return target.Target{}, err
	}
	if resolved.IsService() {
		return target.Target{}, &target.ParseError{Spec: spec, Reason: "a domain is required, not a service", Err: target.ErrBadName}
	}
	return resolved, nil
}

// newRequest returns a request addressed to t.
func newRequest(t target.Target) *value.Map {
	msg := value.NewMap()
	t.Apply(msg)
	return msg
}

// wantArgs checks the positional argument count.
func wantArgs(args []string, minimum, maximum int) error {
	switch {
	case len(args) < minimum:
		return launchd.Usagef("expected at least %d argument(s), got %d", minimum, len(args))
	case maximum >= 0 && len(args) > maximum:
		return launchd.Usagef("expected at most %d argument(s), got %d", maximum, len(args))
	}
	return nil
}
