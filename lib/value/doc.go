// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package value is the message model for the service manager protocol.
//
// Every request and reply exchanged with the service manager is a tree
// of [Value]s rooted at a [Map]. Value is a closed sum type: the only
// implementations are the types declared in this package ([String],
// [Int], [Double], [Bool], [Null], [Blob], [List], [*Map],
// [Descriptor], [Port]), so a type switch over them is exhaustive.
//
// [Map] preserves insertion order. Replies are decoded in wire order and
// that order is observable: printers and consumers must never sort or
// re-order entries. Iterate with [Map.All]:
//
//	for key, entry := range reply.All() {
//	    if key == wanted {
//	        break
//	    }
//	}
//
// [Descriptor] and [Port] are opaque handles. Nothing in this package
// reads from, writes to, or closes them.
//
// [Render] is the generic recursive printer used for replies that the
// command layer does not format itself.
package value
