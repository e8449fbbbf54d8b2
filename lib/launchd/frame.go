// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launchd

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Frame kinds. Each frame is a 5-byte header (1 byte kind + 4 byte
// big-endian payload length) followed by the payload.
const (
	// frameCBOR carries a CBOR-encoded message.
	frameCBOR byte = 0x01

	// frameZstd carries a zstd stream whose decompressed content is a
	// CBOR-encoded message.
	frameZstd byte = 0x02
)

const frameHeaderLength = 5

// maxFramePayload bounds both the on-wire payload and the decompressed
// message. A whole-system dump travels through a shared region, not
// the channel, so replies stay far below this.
const maxFramePayload = 64 * 1024 * 1024

// DefaultCompressThreshold is the message size above which frames are
// zstd-compressed when no threshold is configured.
const DefaultCompressThreshold = 64 * 1024

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
	)
	if err != nil {
		panic("launchd: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(maxFramePayload),
	)
	if err != nil {
		panic("launchd: zstd decoder initialization failed: " + err.Error())
	}
}

// appendFrame builds a complete frame for an encoded message.
// Messages longer than threshold are compressed when that makes them
// smaller; a threshold of zero or less disables compression.
func appendFrame(buf, message []byte, threshold int) ([]byte, error) {
	kind := frameCBOR
	payload := message
	if threshold > 0 && len(message) > threshold {
		compressed := zstdEncoder.EncodeAll(message, make([]byte, 0, len(message)/2))
		if len(compressed) < len(message) {
			kind = frameZstd
			payload = compressed
		}
	}
	if len(payload) > maxFramePayload {
		return nil, fmt.Errorf("message of %d bytes exceeds maximum frame payload %d", len(payload), maxFramePayload)
	}

	var header [frameHeaderLength]byte
	header[0] = kind
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))
	buf = append(buf, header[:]...)
	return append(buf, payload...), nil
}

// parseFrameHeader validates a frame header and returns its kind and
// payload length.
func parseFrameHeader(header []byte) (byte, int, error) {
	kind := header[0]
	if kind != frameCBOR && kind != frameZstd {
		return 0, 0, fmt.Errorf("unknown frame kind 0x%02x", kind)
	}
	length := binary.BigEndian.Uint32(header[1:])
	if length > maxFramePayload {
		return 0, 0, fmt.Errorf("frame payload length %d exceeds maximum %d", length, maxFramePayload)
	}
	return kind, int(length), nil
}

// framePayload returns the CBOR message carried by a frame payload.
func framePayload(kind byte, payload []byte) ([]byte, error) {
	if kind != frameZstd {
		return payload, nil
	}
	message, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing frame: %w", err)
	}
	if len(message) > maxFramePayload {
		return nil, fmt.Errorf("decompressed frame of %d bytes exceeds maximum %d", len(message), maxFramePayload)
	}
	return message, nil
}
