// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package bulkreply

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// NewRegion allocates a zero-filled shared region of capacity bytes
// backed by an anonymous memory file.
func NewRegion(capacity int) (*Region, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("bulkreply: region capacity must be positive, got %d", capacity)
	}

	fd, err := unix.MemfdCreate("launchctl-bulk-reply", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("bulkreply: memfd_create failed: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(capacity)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bulkreply: sizing region to %d bytes: %w", capacity, err)
	}
	data, err := unix.Mmap(fd, 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bulkreply: mmap failed: %w", err)
	}
	return &Region{fd: fd, data: data}, nil
}

func (r *Region) release() error {
	unmapErr := unix.Munmap(r.data)
	r.data = nil
	closeErr := unix.Close(r.fd)
	r.fd = -1
	return errors.Join(unmapErr, closeErr)
}

var supported = sync.OnceValue(func() bool {
	fd, err := unix.MemfdCreate("launchctl-probe", unix.MFD_CLOEXEC)
	if err != nil {
		return false
	}
	unix.Close(fd)
	return true
})

// Supported reports whether shared memory regions can be allocated.
// The probe runs once per process.
func Supported() bool {
	return supported()
}
