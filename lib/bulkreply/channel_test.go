// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package bulkreply

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/launchd/launchdtest"
	"github.com/bureau-foundation/launchctl/lib/testutil"
	"github.com/bureau-foundation/launchctl/lib/value"
)

type callerFunc func(launchd.Routine, *value.Map) (*value.Map, error)

func (f callerFunc) Call(routine launchd.Routine, msg *value.Map) (*value.Map, error) {
	return f(routine, msg)
}

// regionChannel returns a region-strategy channel whose allocations
// are recorded in regions.
func regionChannel(t *testing.T, caller Caller, output io.Writer, regions *[]*Region) *Channel {
	t.Helper()
	if !Supported() {
		t.Skip("shared memory regions unavailable")
	}
	return &Channel{
		Caller:     caller,
		Capability: Capability{SharedMemory: true},
		Output:     output,
		allocate: func(capacity int) (*Region, error) {
			region, err := NewRegion(capacity)
			if err == nil {
				*regions = append(*regions, region)
			}
			return region, err
		},
	}
}

// writingCaller fills the request's region with payload and reports
// written bytes.
func writingCaller(t *testing.T, payload []byte, written int64) Caller {
	return callerFunc(func(routine launchd.Routine, msg *value.Map) (*value.Map, error) {
		if _, err := launchdtest.WriteRegion(msg, payload); err != nil {
			t.Errorf("writing region: %v", err)
		}
		reply := launchdtest.Reply(0)
		reply.SetInt(KeyBytesWritten, written)
		return reply, nil
	})
}

func TestZeroBytesRendersEndOfData(t *testing.T) {
	var output bytes.Buffer
	var regions []*Region
	channel := regionChannel(t, writingCaller(t, nil, 0), &output, &regions)

	if _, err := channel.Call(launchd.RoutinePrint, value.NewMap(), 4096); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if output.String() != EndOfData+"\n" {
		t.Errorf("output = %q, want end-of-data marker", output.String())
	}
	if len(regions) != 1 || regions[0].Releases() != 1 {
		t.Errorf("region not released exactly once")
	}
}

func TestRendersExactlyWrittenBytes(t *testing.T) {
	payload := []byte("system = {\n\ttype = system\n}\ntrailing garbage")
	written := int64(len("system = {\n\ttype = system\n}\n"))

	var output bytes.Buffer
	var regions []*Region
	channel := regionChannel(t, writingCaller(t, payload, written), &output, &regions)

	if _, err := channel.Call(launchd.RoutinePrint, value.NewMap(), 4096); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := output.String(); got != string(payload[:written]) {
		t.Errorf("output = %q, want %q", got, payload[:written])
	}
}

func TestBytesWrittenBeyondCapacityIsClamped(t *testing.T) {
	const capacity = 4096
	payload := bytes.Repeat([]byte("x"), 2*capacity)

	var output bytes.Buffer
	var regions []*Region
	channel := regionChannel(t, writingCaller(t, payload, 1<<40), &output, &regions)

	if _, err := channel.Call(launchd.RoutinePrint, value.NewMap(), capacity); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if output.Len() != capacity {
		t.Errorf("rendered %d bytes, want exactly the %d byte capacity", output.Len(), capacity)
	}
}

func TestNegativeBytesWrittenRendersEndOfData(t *testing.T) {
	var output bytes.Buffer
	var regions []*Region
	channel := regionChannel(t, writingCaller(t, []byte("ignored"), -5), &output, &regions)

	if _, err := channel.Call(launchd.RoutinePrint, value.NewMap(), 4096); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if output.String() != EndOfData+"\n" {
		t.Errorf("output = %q, want end-of-data marker", output.String())
	}
}

func TestRegionReleasedOnceOnEveryFailurePath(t *testing.T) {
	tests := []struct {
		name   string
		caller Caller
		want   error
	}{
		{
			name: "application error",
			caller: callerFunc(func(routine launchd.Routine, msg *value.Map) (*value.Map, error) {
				return launchdtest.Reply(launchd.EPERM), &launchd.Error{Routine: routine, Code: launchd.EPERM}
			}),
			want: launchd.EPERM,
		},
		{
			name: "transport error",
			caller: callerFunc(func(launchd.Routine, *value.Map) (*value.Map, error) {
				return nil, io.ErrUnexpectedEOF
			}),
			want: io.ErrUnexpectedEOF,
		},
		{
			name: "missing bytes-written",
			caller: callerFunc(func(launchd.Routine, *value.Map) (*value.Map, error) {
				return launchdtest.Reply(0), nil
			}),
			want: launchd.EBADRESP,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var output bytes.Buffer
			var regions []*Region
			channel := regionChannel(t, test.caller, &output, &regions)

			_, err := channel.Call(launchd.RoutinePrintService, value.NewMap(), 4096)
			if !errors.Is(err, test.want) {
				t.Fatalf("error = %v, want %v", err, test.want)
			}
			if len(regions) != 1 {
				t.Fatalf("allocated %d regions, want 1", len(regions))
			}
			if regions[0].Releases() != 1 {
				t.Errorf("region released %d times, want 1", regions[0].Releases())
			}
			if output.Len() != 0 {
				t.Errorf("output %q written on failure", output.String())
			}
		})
	}
}

func TestRegionAttachedUnderReservedKey(t *testing.T) {
	var sawRegion, sawDirect bool
	var size int64
	caller := callerFunc(func(routine launchd.Routine, msg *value.Map) (*value.Map, error) {
		_, sawRegion = msg.Get(KeyRegion)
		_, sawDirect = msg.Get(KeyDirect)
		size, _ = launchdtest.RegionSize(msg)
		reply := launchdtest.Reply(0)
		reply.SetInt(KeyBytesWritten, 0)
		return reply, nil
	})
	var regions []*Region
	channel := regionChannel(t, caller, io.Discard, &regions)

	if _, err := channel.Call(launchd.RoutinePrint, value.NewMap(), DefaultCapacity); err != nil {
		t.Fatal(err)
	}
	if !sawRegion || sawDirect {
		t.Errorf("shmem present = %v, fd present = %v", sawRegion, sawDirect)
	}
	if size != DefaultCapacity {
		t.Errorf("region size = %d, want %d", size, DefaultCapacity)
	}
}

func TestDirectHandleStrategy(t *testing.T) {
	reader, writer := testutil.Pipe(t)
	caller := callerFunc(func(routine launchd.Routine, msg *value.Map) (*value.Map, error) {
		if _, ok := msg.Get(KeyRegion); ok {
			t.Error("direct strategy attached a region")
		}
		if err := launchdtest.WriteDescriptor(msg, []byte("version 1.0\n")); err != nil {
			t.Errorf("writing descriptor: %v", err)
		}
		return launchdtest.Reply(0), nil
	})
	var output bytes.Buffer
	channel := &Channel{Caller: caller, Output: &output, Direct: writer}

	if _, err := channel.Call(launchd.RoutinePrint, value.NewMap(), DefaultCapacity); err != nil {
		t.Fatalf("Call: %v", err)
	}
	writer.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "version 1.0\n" {
		t.Errorf("handle received %q", data)
	}
	if output.Len() != 0 {
		t.Errorf("direct strategy rendered %q to Output", output.String())
	}
}

func TestNilRequestIsEmpty(t *testing.T) {
	_, writer := testutil.Pipe(t)
	direct := &Channel{
		Caller: callerFunc(func(routine launchd.Routine, msg *value.Map) (*value.Map, error) {
			if _, ok := msg.Get(KeyDirect); !ok {
				t.Error("direct strategy sent no handle")
			}
			return launchdtest.Reply(0), nil
		}),
		Direct: writer,
	}
	if _, err := direct.Call(launchd.RoutinePrint, nil, DefaultCapacity); err != nil {
		t.Errorf("direct Call with nil request: %v", err)
	}

	var output bytes.Buffer
	var regions []*Region
	region := regionChannel(t, writingCaller(t, []byte("ok\n"), 3), &output, &regions)
	if _, err := region.Call(launchd.RoutinePrint, nil, DefaultCapacity); err != nil {
		t.Fatalf("region Call with nil request: %v", err)
	}
	if output.String() != "ok\n" {
		t.Errorf("output = %q, want %q", output.String(), "ok\n")
	}
}

func TestRegionThroughFakeServiceManager(t *testing.T) {
	if !Supported() {
		t.Skip("shared memory regions unavailable")
	}
	text := "com.example.agent = {\n\tstate = running\n}\n"
	server := launchdtest.NewServer(t)
	server.Handle(launchd.RoutinePrintService, func(request *value.Map) *value.Map {
		written, err := launchdtest.WriteRegion(request, []byte(text))
		if err != nil {
			t.Errorf("server writing region: %v", err)
		}
		reply := launchdtest.Reply(0)
		reply.SetInt(KeyBytesWritten, int64(written))
		return reply
	})

	client := launchd.NewClient(server.Dial, nil)
	var output bytes.Buffer
	channel := &Channel{Caller: client, Capability: Capability{SharedMemory: true}, Output: &output}

	msg := value.NewMap()
	msg.SetString("name", "com.example.agent")
	done := make(chan error, 1)
	go func() {
		_, err := channel.Call(launchd.RoutinePrintService, msg, DefaultCapacity)
		done <- err
	}()
	if err := testutil.RequireReceive(t, done, 10*time.Second, "bulk reply call"); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if output.String() != text {
		t.Errorf("output = %q, want %q", output.String(), text)
	}
}

func TestRegionContentsAndClose(t *testing.T) {
	if !Supported() {
		t.Skip("shared memory regions unavailable")
	}
	region, err := NewRegion(16)
	if err != nil {
		t.Fatal(err)
	}
	if got := region.Contents(16); !bytes.Equal(got, make([]byte, 16)) {
		t.Errorf("new region not zero-filled: %x", got)
	}
	if got := len(region.Contents(1000)); got != 16 {
		t.Errorf("Contents(1000) returned %d bytes", got)
	}
	if region.Contents(-1) != nil {
		t.Error("Contents(-1) returned data")
	}

	if err := region.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := region.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if region.Releases() != 1 {
		t.Errorf("Releases = %d after two Close calls, want 1", region.Releases())
	}

	if _, err := NewRegion(0); err == nil {
		t.Error("NewRegion(0) succeeded")
	}
}

func TestResolve(t *testing.T) {
	capability, err := Resolve(ModeDescriptor)
	if err != nil || capability.SharedMemory {
		t.Errorf("Resolve(descriptor) = %+v, %v", capability, err)
	}

	capability, err = Resolve(ModeAuto)
	if err != nil || capability.SharedMemory != Supported() {
		t.Errorf("Resolve(auto) = %+v, %v", capability, err)
	}

	if Supported() {
		capability, err = Resolve(ModeRegion)
		if err != nil || !capability.SharedMemory {
			t.Errorf("Resolve(region) = %+v, %v", capability, err)
		}
	}

	if _, err := Resolve("mmap"); err == nil {
		t.Error("Resolve accepted an unknown mode")
	}
	if _, err := ParseMode("mmap"); err == nil || !strings.Contains(err.Error(), "mmap") {
		t.Errorf("ParseMode error = %v", err)
	}
}
