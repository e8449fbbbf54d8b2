// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bulkreply lets the service manager return large formatted
// text without streaming it through the control channel.
//
// A [Channel] wraps a launchd.Client and uses one of two strategies,
// chosen once at startup by [Resolve] and fixed for the process:
//
//   - Region: allocate a zero-filled shared memory [Region] of the
//     caller's capacity, attach its descriptor under "shmem", and on
//     success copy the first "bytes-written" bytes of the region to the
//     output. A reply of zero bytes prints the end-of-data marker
//     instead of nothing. The region is released exactly once on every
//     return path.
//   - Descriptor: attach the caller's own output handle under "fd" and
//     let the service manager write to it directly. Nothing is read
//     back.
//
// "bytes-written" is clamped to [0, capacity]; the region is never
// read past its end no matter what the reply claims.
package bulkreply
