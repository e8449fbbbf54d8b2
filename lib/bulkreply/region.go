// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bulkreply

import (
	"github.com/bureau-foundation/launchctl/lib/value"
)

// Region is a shared memory mapping the service manager writes a
// reply into. The backing memory is outside the Go heap.
//
// Close releases the mapping and its descriptor. It is safe to call
// more than once; only the first call releases anything. After Close,
// slices returned by Contents must not be used.
type Region struct {
	fd       int
	data     []byte
	releases int
}

// Descriptor returns the value to attach to a request.
func (r *Region) Descriptor() value.Descriptor {
	return value.Descriptor{FD: r.fd}
}

// Capacity returns the size of the region in bytes.
func (r *Region) Capacity() int {
	return len(r.data)
}

// Contents returns the first written bytes of the region, with written
// clamped to [0, Capacity]. The slice aliases the mapping.
func (r *Region) Contents(written int64) []byte {
	switch {
	case written <= 0:
		return nil
	case written > int64(len(r.data)):
		return r.data
	default:
		return r.data[:written]
	}
}

// Close unmaps the region and closes its descriptor.
func (r *Region) Close() error {
	if r.releases > 0 {
		return nil
	}
	r.releases++
	return r.release()
}

// Releases reports how many times the region has actually been
// released: zero while open, one after Close.
func (r *Region) Releases() int {
	return r.releases
}
