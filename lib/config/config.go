// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the configuration file when --config is
// not given.
const EnvironmentVariable = "LAUNCHCTL_CONFIG"

// Config is the launchctl configuration.
type Config struct {
	// SocketPath is the service manager's control socket.
	// Default: /var/run/launchd.sock
	SocketPath string `yaml:"socket_path"`

	// BulkReply selects how large replies are returned: "auto" probes
	// the platform for shared memory regions, "region" requires them,
	// "descriptor" always hands the service manager stdout.
	// Default: auto
	BulkReply string `yaml:"bulk_reply"`

	// RegionSize is the reply region capacity for single-item output.
	// Default: 1 MiB
	RegionSize int `yaml:"region_size"`

	// DumpRegionSize is the reply region capacity for whole-system
	// dumps.
	// Default: 20 MiB
	DumpRegionSize int `yaml:"dump_region_size"`

	// CompressThreshold is the request size above which frames are
	// zstd-compressed. Negative disables compression.
	// Default: 64 KiB
	CompressThreshold int `yaml:"compress_threshold"`

	// LogLevel is the slog level name: debug, info, warn, or error.
	// Default: warn
	LogLevel string `yaml:"log_level"`

	// Trace prints every request and reply to stderr.
	// Default: false
	Trace bool `yaml:"trace"`
}

var bulkReplyModes = []string{"auto", "region", "descriptor"}

// Default returns the configuration used when no file is given. A
// loaded file is merged over these values.
func Default() *Config {
	return &Config{
		SocketPath:        "/var/run/launchd.sock",
		BulkReply:         "auto",
		RegionSize:        1 << 20,
		DumpRegionSize:    20 << 20,
		CompressThreshold: 64 << 10,
		LogLevel:          "warn",
	}
}

// Load loads the file named by LAUNCHCTL_CONFIG, or returns [Default]
// when the variable is unset. There is no other discovery.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Unknown keys
// are rejected. ${VAR} and ${VAR:-default} in the socket path are
// expanded after loading.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.SocketPath = expandVars(c.SocketPath, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Level returns LogLevel as a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.SocketPath == "" {
		errs = append(errs, fmt.Errorf("socket_path is required"))
	}

	if !slices.Contains(bulkReplyModes, c.BulkReply) {
		errs = append(errs, fmt.Errorf("bulk_reply must be one of: %v", bulkReplyModes))
	}

	if c.RegionSize <= 0 {
		errs = append(errs, fmt.Errorf("region_size must be positive, got %d", c.RegionSize))
	}
	if c.DumpRegionSize <= 0 {
		errs = append(errs, fmt.Errorf("dump_region_size must be positive, got %d", c.DumpRegionSize))
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
