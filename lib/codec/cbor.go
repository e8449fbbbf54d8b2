// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Messages built from
// [value.Map] bypass the key sorting (see EncodeMessage); scalars still
// go through this mode.
var encMode cbor.EncMode

// decMode is the CBOR decoder configured to accept standard CBOR.
// Unknown fields are silently ignored for forward compatibility.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// The service manager never uses non-string map keys. When the
		// decoder's target is any, it must pick a concrete Go map type;
		// the CBOR default map[interface{}]interface{} is incompatible
		// with most Go code that expects map[string]any.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// Replies arrive whole in memory already; 64 levels of nesting
		// is far beyond anything the service manager produces.
		MaxNestedLevels: 64,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data. Used by the protocol tracer for frames that
// fail to decode.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
