// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR wire encoding for service manager messages.
//
// Requests and replies are [value.Map] trees. [EncodeMessage] turns one
// into CBOR bytes plus the list of file descriptors that must travel
// with it; [DecodeMessage] reverses that, given the descriptors that
// arrived with the frame.
//
// Mapping:
//
//	String      text string
//	Int         unsigned or negative integer (must fit int64)
//	Double      float
//	Bool        true / false
//	Null        null
//	Blob        byte string
//	List        array
//	Map         map with text keys, in insertion order
//	Descriptor  tag 55800 wrapping an index into the descriptor list
//	Port        tag 55801 wrapping the port name
//
// Maps are written in insertion order rather than the sorted order of
// Core Deterministic Encoding, and decoded in wire order. Reply order
// is visible to users and must survive the round trip.
//
// [Diagnose] renders raw frames in CBOR diagnostic notation for
// debugging payloads that fail to decode.
package codec
