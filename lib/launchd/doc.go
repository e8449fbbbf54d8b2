// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package launchd is the request/reply transport to the service
// manager.
//
// A [Client] owns the process-wide control channel. It is constructed
// once in main with a [DialFunc]; the channel opens on the first
// [Client.Call] and stays open for the life of the process. Each call
// stamps the routine number and its subsystem onto the outgoing
// message, performs one synchronous round trip, and merges the two
// error layers: a channel failure is returned as-is (wrapped), and a
// non-zero "error" field in an otherwise successful reply becomes an
// [*Error] carrying that [Code].
//
// The wire protocol is implemented by [Conn]: each message is one frame
//
//	[1 byte kind] [4 byte big-endian payload length] [payload]
//
// where the payload is the CBOR encoding from lib/codec, optionally
// zstd-compressed. Descriptors referenced by the message travel as
// SCM_RIGHTS ancillary data on the write that carries the frame.
// [Dial] wraps a Conn as the [Channel] a Client uses; the fake service
// manager in launchdtest uses the same Conn for the server side.
//
// Errors are classified by [KindOf] into the categories the command
// layer reports on: usage, not found, transport failure, application
// error, and unsupported.
package launchd
