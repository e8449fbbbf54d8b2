// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package bulkreply

import (
	"errors"
	"fmt"
)

// NewRegion fails: anonymous shared memory files are Linux-only.
func NewRegion(capacity int) (*Region, error) {
	return nil, fmt.Errorf("bulkreply: shared memory regions: %w", errors.ErrUnsupported)
}

func (r *Region) release() error { return nil }

// Supported reports whether shared memory regions can be allocated.
func Supported() bool { return false }
