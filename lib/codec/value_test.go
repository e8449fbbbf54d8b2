// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/bureau-foundation/launchctl/lib/value"
)

func roundTrip(t *testing.T, msg *value.Map) *value.Map {
	t.Helper()
	data, fds, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	decoded, err := DecodeMessage(data, fds)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	return decoded
}

func TestMessageRoundTripPreservesEveryVariant(t *testing.T) {
	nested := value.NewMap()
	nested.SetInt("pid", 0)
	nested.SetInt("status", 256)

	msg := value.NewMap()
	msg.SetString("string", "héllo")
	msg.SetInt("positive", 815)
	msg.SetInt("negative", -40)
	msg.SetInt("max", math.MaxInt64)
	msg.SetInt("min", math.MinInt64)
	msg.Set("double", value.Double(2.25))
	msg.SetBool("bool", true)
	msg.Set("null", value.Null{})
	msg.Set("blob", value.Blob{0, 1, 2, 255})
	msg.Set("empty-blob", value.Blob(nil))
	msg.Set("list", value.List{value.String("a"), value.Int(2), nested})
	msg.Set("map", nested)
	msg.Set("port", value.Port{Name: 0x1103})

	decoded := roundTrip(t, msg)

	if got, want := decoded.Keys(), msg.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	if got := value.Sprint(decoded); got != value.Sprint(msg) {
		t.Errorf("rendered round trip differs:\ngot:\n%s\nwant:\n%s", got, value.Sprint(msg))
	}
	if blob, ok := decoded.GetBlob("empty-blob"); !ok || len(blob) != 0 {
		t.Errorf("empty blob decoded as %v (ok=%v)", blob, ok)
	}
	if n, _ := decoded.GetInt("min"); n != math.MinInt64 {
		t.Errorf("min = %d", n)
	}
	if v, _ := decoded.Get("double"); v != value.Double(2.25) {
		t.Errorf("double = %#v", v)
	}
}

func TestMapOrderIsWireOrderNotSorted(t *testing.T) {
	services := value.NewMap()
	for _, label := range []string{"com.zeta", "com.alpha", "com.mid"} {
		services.Set(label, value.NewMap())
	}
	msg := value.NewMap()
	msg.Set("services", services)

	decoded := roundTrip(t, msg)
	got, _ := decoded.GetMap("services")
	want := []string{"com.zeta", "com.alpha", "com.mid"}
	if !reflect.DeepEqual(got.Keys(), want) {
		t.Errorf("decoded order = %v, want %v", got.Keys(), want)
	}
}

func TestDescriptorsAreIndexedIntoSideList(t *testing.T) {
	msg := value.NewMap()
	msg.Set("shmem", value.Descriptor{FD: 9})
	msg.Set("fd", value.Descriptor{FD: 1})

	data, fds, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	if !reflect.DeepEqual(fds, []int{9, 1}) {
		t.Fatalf("fds = %v, want [9 1]", fds)
	}

	// The receiver sees different descriptor numbers for the same
	// open files; indices resolve against what arrived.
	decoded, err := DecodeMessage(data, []int{40, 41})
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if v, _ := decoded.Get("shmem"); v != (value.Descriptor{FD: 40}) {
		t.Errorf("shmem = %#v, want fd 40", v)
	}
	if v, _ := decoded.Get("fd"); v != (value.Descriptor{FD: 41}) {
		t.Errorf("fd = %#v, want fd 41", v)
	}
}

func TestDescriptorIndexOutOfRange(t *testing.T) {
	msg := value.NewMap()
	msg.Set("fd", value.Descriptor{FD: 3})
	data, _, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	if _, err := DecodeMessage(data, nil); err == nil {
		t.Error("DecodeMessage accepted a descriptor that did not arrive")
	}
}

func TestEncodeRejectsNegativeDescriptor(t *testing.T) {
	msg := value.NewMap()
	msg.Set("fd", value.Descriptor{FD: -1})
	if _, _, err := EncodeMessage(msg); err == nil {
		t.Error("EncodeMessage accepted fd -1")
	}
}

func TestLargeContainersUseWideHeads(t *testing.T) {
	list := make(value.List, 300)
	for index := range list {
		list[index] = value.Int(int64(index))
	}
	msg := value.NewMap()
	msg.Set("list", list)

	decoded := roundTrip(t, msg)
	got, _ := decoded.GetList("list")
	if len(got) != 300 || got[299] != value.Int(299) {
		t.Errorf("decoded %d items, last %v", len(got), got[len(got)-1])
	}
}

func TestDecodeMessageRejectsNonMap(t *testing.T) {
	// CBOR array of one integer.
	if _, err := DecodeMessage([]byte{0x81, 0x01}, nil); !errors.Is(err, ErrNotMessage) {
		t.Errorf("error = %v, want ErrNotMessage", err)
	}
}

func TestDecodeMessageRejectsTrailingBytes(t *testing.T) {
	// Empty map followed by a stray integer.
	if _, err := DecodeMessage([]byte{0xa0, 0x01}, nil); err == nil {
		t.Error("DecodeMessage accepted trailing bytes")
	}
}

func TestDecodeMessageRejectsTruncatedInput(t *testing.T) {
	msg := value.NewMap()
	msg.SetString("name", "com.example.agent")
	data, _, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	if _, err := DecodeMessage(data[:len(data)-3], nil); err == nil {
		t.Error("DecodeMessage accepted truncated input")
	}
}

func TestDecodeMessageRejectsOversizedCounts(t *testing.T) {
	// Map head claiming 2^32 entries with no content.
	data := []byte{0xbb, 0, 0, 0, 1, 0, 0, 0, 0}
	if _, err := DecodeMessage(data, nil); err == nil {
		t.Error("DecodeMessage accepted an impossible entry count")
	}
}

func TestDecodeMessageRejectsUnknownTag(t *testing.T) {
	// {"x": 1(0)}: an epoch timestamp tag the protocol never uses.
	data := []byte{0xa1, 0x61, 'x', 0xc1, 0x00}
	if _, err := DecodeMessage(data, nil); err == nil {
		t.Error("DecodeMessage accepted an unknown tag")
	}
}

func TestDecodeMessageRejectsIntegerOverflow(t *testing.T) {
	// {"n": 2^64-1}
	data := []byte{0xa1, 0x61, 'n', 0x1b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if _, err := DecodeMessage(data, nil); err == nil {
		t.Error("DecodeMessage accepted an integer beyond int64")
	}
}

func TestAppendHeadShortestForm(t *testing.T) {
	tests := []struct {
		n    uint64
		want []byte
	}{
		{0, []byte{0x80}},
		{23, []byte{0x97}},
		{24, []byte{0x98, 24}},
		{255, []byte{0x98, 0xff}},
		{256, []byte{0x99, 0x01, 0x00}},
		{65536, []byte{0x9a, 0x00, 0x01, 0x00, 0x00}},
		{1 << 32, []byte{0x9b, 0, 0, 0, 1, 0, 0, 0, 0}},
	}
	for _, test := range tests {
		got := appendHead(nil, majorArray, test.n)
		if !bytes.Equal(got, test.want) {
			t.Errorf("appendHead(%d) = %x, want %x", test.n, got, test.want)
		}
		_, n, rest, err := readHead(got)
		if err != nil || n != test.n || len(rest) != 0 {
			t.Errorf("readHead(%x) = %d, %x, %v", got, n, rest, err)
		}
	}
}
