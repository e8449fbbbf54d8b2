// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/launchctl/cmd/launchctl/cli"
	"github.com/bureau-foundation/launchctl/cmd/launchctl/commands"
	"github.com/bureau-foundation/launchctl/lib/bulkreply"
	"github.com/bureau-foundation/launchctl/lib/config"
	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/process"
)

// globalParams are the options accepted before the subcommand name.
type globalParams struct {
	Config string `flag:"config" desc:"configuration file (default: $LAUNCHCTL_CONFIG)"`
	Socket string `flag:"socket" desc:"service manager control socket (overrides the configuration)"`
	Debug  bool   `flag:"debug" desc:"log protocol diagnostics to stderr"`
	Trace  bool   `flag:"trace" desc:"print every request and reply to stderr"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var params globalParams
	flagSet := cli.FlagsFromParams("launchctl", &params)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(io.Discard)

	remaining := args
	if err := flagSet.Parse(args); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "launchctl: %v\n", err)
			return cli.UsageExitCode
		}
		remaining = []string{"--help"}
	} else {
		remaining = flagSet.Args()
	}

	cfg, err := loadConfig(params)
	if err != nil {
		process.Fatal(err)
	}
	level, err := cfg.Level()
	if err != nil {
		process.Fatal(err)
	}
	logger := cli.NewCommandLogger(level)

	mode, err := bulkreply.ParseMode(cfg.BulkReply)
	if err != nil {
		process.Fatal(err)
	}
	capability, err := bulkreply.Resolve(mode)
	if err != nil {
		process.Fatal(err)
	}

	// The channel stays open until the process exits.
	client := launchd.NewClient(func() (launchd.Channel, error) {
		channel, err := launchd.Dial(cfg.SocketPath, launchd.DialOptions{
			CompressThreshold: cfg.CompressThreshold,
			Logger:            logger,
		})
		if err != nil {
			return nil, err
		}
		return channel, nil
	}, logger)
	if cfg.Trace {
		client.SetObserver(commands.NewTracer(os.Stderr))
	}

	env := &commands.Env{
		Client: client,
		Bulk: &bulkreply.Channel{
			Caller:     client,
			Capability: capability,
			Output:     os.Stdout,
			Direct:     os.Stdout,
			Logger:     logger,
		},
		Config:      cfg,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Logger:      logger,
		Interactive: cli.IsTerminal(os.Stdout),
	}
	logger.Debug("starting",
		"socket", cfg.SocketPath,
		"bulk_reply", string(mode),
		"shared_memory", capability.SharedMemory,
	)
	return commands.Execute(env, remaining)
}

// loadConfig reads the configuration named by --config or the
// environment and applies the command-line overrides.
func loadConfig(params globalParams) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if params.Config != "" {
		cfg, err = config.LoadFile(params.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if params.Socket != "" {
		cfg.SocketPath = params.Socket
	}
	if params.Debug {
		cfg.LogLevel = slog.LevelDebug.String()
	}
	if params.Trace {
		cfg.Trace = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
