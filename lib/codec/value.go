// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/bureau-foundation/launchctl/lib/value"
)

// CBOR tag numbers for the handle variants. Both are in the first-come
// first-served range of the IANA registry and are private to this
// protocol.
const (
	TagDescriptor uint64 = 55800
	TagPort       uint64 = 55801
)

// CBOR major types used when writing and walking container heads.
const (
	majorArray byte = 4
	majorMap   byte = 5
	majorTag   byte = 6
)

// cborNull is the single-byte encoding of the null simple value.
const cborNull byte = 0xf6

// maxDepth bounds recursion when decoding untrusted replies.
const maxDepth = 64

// ErrNotMessage is returned by [DecodeMessage] when the top-level item
// is not a map.
var ErrNotMessage = errors.New("codec: message is not a map")

// EncodeMessage encodes msg and returns the bytes together with the
// descriptors referenced by [value.Descriptor] entries, in the order
// their indices were assigned. The caller passes the descriptors to
// the transport unchanged; ownership stays with the caller.
func EncodeMessage(msg *value.Map) ([]byte, []int, error) {
	if msg == nil {
		return nil, nil, ErrNotMessage
	}
	var e encoder
	if err := e.encode(msg); err != nil {
		return nil, nil, err
	}
	return e.buf, e.fds, nil
}

// DecodeMessage decodes one message. fds are the descriptors that
// arrived with the frame; descriptor tags index into it.
func DecodeMessage(data []byte, fds []int) (*value.Map, error) {
	d := decoder{fds: fds}
	decoded, rest, err := d.decode(data, 0)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("codec: %d trailing bytes after message", len(rest))
	}
	msg, ok := decoded.(*value.Map)
	if !ok {
		return nil, fmt.Errorf("%w (got %s)", ErrNotMessage, decoded.Kind())
	}
	return msg, nil
}

type encoder struct {
	buf []byte
	fds []int
}

func (e *encoder) scalar(v any) error {
	encoded, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec: encoding %T: %w", v, err)
	}
	e.buf = append(e.buf, encoded...)
	return nil
}

func (e *encoder) encode(v value.Value) error {
	switch v := v.(type) {
	case value.String:
		return e.scalar(string(v))
	case value.Int:
		return e.scalar(int64(v))
	case value.Double:
		return e.scalar(float64(v))
	case value.Bool:
		return e.scalar(bool(v))
	case value.Null, nil:
		e.buf = append(e.buf, cborNull)
		return nil
	case value.Blob:
		// A nil slice would otherwise encode as null.
		data := []byte(v)
		if data == nil {
			data = []byte{}
		}
		return e.scalar(data)
	case value.List:
		e.buf = appendHead(e.buf, majorArray, uint64(len(v)))
		for _, item := range v {
			if err := e.encode(item); err != nil {
				return err
			}
		}
		return nil
	case *value.Map:
		e.buf = appendHead(e.buf, majorMap, uint64(v.Len()))
		for key, entry := range v.All() {
			if err := e.scalar(key); err != nil {
				return err
			}
			if err := e.encode(entry); err != nil {
				return fmt.Errorf("%q: %w", key, err)
			}
		}
		return nil
	case value.Descriptor:
		if v.FD < 0 {
			return fmt.Errorf("codec: invalid descriptor %d", v.FD)
		}
		e.fds = append(e.fds, v.FD)
		return e.scalar(cbor.Tag{Number: TagDescriptor, Content: uint64(len(e.fds) - 1)})
	case value.Port:
		return e.scalar(cbor.Tag{Number: TagPort, Content: uint64(v.Name)})
	default:
		return fmt.Errorf("codec: unsupported value %T", v)
	}
}

// appendHead writes a CBOR initial byte and argument in the shortest
// form.
func appendHead(buf []byte, major byte, n uint64) []byte {
	initial := major << 5
	switch {
	case n < 24:
		return append(buf, initial|byte(n))
	case n <= math.MaxUint8:
		return append(buf, initial|24, byte(n))
	case n <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(buf, initial|25), uint16(n))
	case n <= math.MaxUint32:
		return binary.BigEndian.AppendUint32(append(buf, initial|26), uint32(n))
	default:
		return binary.BigEndian.AppendUint64(append(buf, initial|27), n)
	}
}

// readHead parses a definite-length CBOR head.
func readHead(data []byte) (byte, uint64, []byte, error) {
	if len(data) == 0 {
		return 0, 0, nil, io.ErrUnexpectedEOF
	}
	major := data[0] >> 5
	info := data[0] & 0x1f
	data = data[1:]

	var width int
	switch {
	case info < 24:
		return major, uint64(info), data, nil
	case info == 24:
		width = 1
	case info == 25:
		width = 2
	case info == 26:
		width = 4
	case info == 27:
		width = 8
	default:
		return 0, 0, nil, fmt.Errorf("codec: unsupported additional information %d for major type %d", info, major)
	}
	if len(data) < width {
		return 0, 0, nil, io.ErrUnexpectedEOF
	}

	var n uint64
	switch width {
	case 1:
		n = uint64(data[0])
	case 2:
		n = uint64(binary.BigEndian.Uint16(data))
	case 4:
		n = uint64(binary.BigEndian.Uint32(data))
	case 8:
		n = binary.BigEndian.Uint64(data)
	}
	return major, n, data[width:], nil
}

type decoder struct {
	fds []int
}

func (d *decoder) decode(data []byte, depth int) (value.Value, []byte, error) {
	if depth > maxDepth {
		return nil, nil, fmt.Errorf("codec: nesting deeper than %d levels", maxDepth)
	}
	if len(data) == 0 {
		return nil, nil, io.ErrUnexpectedEOF
	}

	switch data[0] >> 5 {
	case majorArray:
		_, count, rest, err := readHead(data)
		if err != nil {
			return nil, nil, err
		}
		// Every item takes at least one byte.
		if count > uint64(len(rest)) {
			return nil, nil, fmt.Errorf("codec: array of %d items exceeds remaining %d bytes", count, len(rest))
		}
		list := make(value.List, 0, count)
		for range count {
			var item value.Value
			item, rest, err = d.decode(rest, depth+1)
			if err != nil {
				return nil, nil, err
			}
			list = append(list, item)
		}
		return list, rest, nil

	case majorMap:
		_, count, rest, err := readHead(data)
		if err != nil {
			return nil, nil, err
		}
		if count > uint64(len(rest))/2 {
			return nil, nil, fmt.Errorf("codec: map of %d entries exceeds remaining %d bytes", count, len(rest))
		}
		msg := value.NewMap()
		for range count {
			var key string
			rest, err = decMode.UnmarshalFirst(rest, &key)
			if err != nil {
				return nil, nil, fmt.Errorf("codec: map key: %w", err)
			}
			var entry value.Value
			entry, rest, err = d.decode(rest, depth+1)
			if err != nil {
				return nil, nil, fmt.Errorf("%q: %w", key, err)
			}
			msg.Set(key, entry)
		}
		return msg, rest, nil

	case majorTag:
		_, number, rest, err := readHead(data)
		if err != nil {
			return nil, nil, err
		}
		switch number {
		case TagDescriptor:
			var index uint64
			rest, err = decMode.UnmarshalFirst(rest, &index)
			if err != nil {
				return nil, nil, fmt.Errorf("codec: descriptor index: %w", err)
			}
			if index >= uint64(len(d.fds)) {
				return nil, nil, fmt.Errorf("codec: descriptor index %d out of range (%d received)", index, len(d.fds))
			}
			return value.Descriptor{FD: d.fds[index]}, rest, nil
		case TagPort:
			var name uint32
			rest, err = decMode.UnmarshalFirst(rest, &name)
			if err != nil {
				return nil, nil, fmt.Errorf("codec: port name: %w", err)
			}
			return value.Port{Name: name}, rest, nil
		default:
			return nil, nil, fmt.Errorf("codec: unsupported tag %d", number)
		}

	default:
		var raw any
		rest, err := decMode.UnmarshalFirst(data, &raw)
		if err != nil {
			return nil, nil, fmt.Errorf("codec: %w", err)
		}
		scalar, err := scalarValue(raw)
		if err != nil {
			return nil, nil, err
		}
		return scalar, rest, nil
	}
}

func scalarValue(raw any) (value.Value, error) {
	switch raw := raw.(type) {
	case string:
		return value.String(raw), nil
	case uint64:
		if raw > math.MaxInt64 {
			return nil, fmt.Errorf("codec: integer %d overflows int64", raw)
		}
		return value.Int(int64(raw)), nil
	case int64:
		return value.Int(raw), nil
	case float64:
		return value.Double(raw), nil
	case bool:
		return value.Bool(raw), nil
	case []byte:
		return value.Blob(raw), nil
	case nil:
		return value.Null{}, nil
	default:
		return nil, fmt.Errorf("codec: unsupported item %T", raw)
	}
}
