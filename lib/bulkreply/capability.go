// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bulkreply

import (
	"errors"
	"fmt"
)

// Mode selects the bulk-reply strategy in configuration.
type Mode string

const (
	// ModeAuto uses shared memory regions when the platform supports
	// them and the direct-handle strategy otherwise.
	ModeAuto Mode = "auto"

	// ModeRegion requires shared memory regions.
	ModeRegion Mode = "region"

	// ModeDescriptor always passes the output handle directly.
	ModeDescriptor Mode = "descriptor"
)

// ParseMode validates a configured mode string.
func ParseMode(name string) (Mode, error) {
	switch mode := Mode(name); mode {
	case ModeAuto, ModeRegion, ModeDescriptor:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown bulk reply mode %q (valid: auto, region, descriptor)", name)
	}
}

// Capability is the resolved strategy, injected into [Channel].
type Capability struct {
	// SharedMemory selects the region strategy.
	SharedMemory bool
}

// Resolve turns a configured mode into a capability. ModeRegion on a
// platform without shared memory regions fails with an error matching
// errors.ErrUnsupported.
func Resolve(mode Mode) (Capability, error) {
	switch mode {
	case ModeAuto, "":
		return Capability{SharedMemory: Supported()}, nil
	case ModeRegion:
		if !Supported() {
			return Capability{}, fmt.Errorf("shared memory reply regions: %w", errors.ErrUnsupported)
		}
		return Capability{SharedMemory: true}, nil
	case ModeDescriptor:
		return Capability{}, nil
	default:
		return Capability{}, fmt.Errorf("unknown bulk reply mode %q", mode)
	}
}
