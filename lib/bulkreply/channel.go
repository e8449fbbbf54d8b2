// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bulkreply

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// Reserved fields.
const (
	KeyRegion       = "shmem"
	KeyDirect       = "fd"
	KeyBytesWritten = "bytes-written"
)

// EndOfData is printed in place of an empty region reply.
const EndOfData = "(end of data)"

// Region capacities used by the command layer.
const (
	DefaultCapacity = 1 << 20
	DumpCapacity    = 20 << 20
)

// Caller performs one routine call. *launchd.Client satisfies it.
type Caller interface {
	Call(routine launchd.Routine, msg *value.Map) (*value.Map, error)
}

// Channel performs calls whose reply text is written by the service
// manager outside the control channel.
type Channel struct {
	Caller     Caller
	Capability Capability

	// Output receives the region contents. Defaults to os.Stdout.
	Output io.Writer

	// Direct is the handle passed to the service manager by the
	// direct-handle strategy. Defaults to os.Stdout.
	Direct *os.File

	Logger *slog.Logger

	// allocate creates the region for a call; NewRegion unless a test
	// replaces it.
	allocate func(capacity int) (*Region, error)
}

// Call sends routine with msg using the configured strategy and
// returns the reply. With the region strategy, capacity is the region
// size and the reply text is copied to Output before Call returns.
//
// Errors are those of the underlying Caller. A successful region reply
// without a "bytes-written" field is reported as EBADRESP. A nil msg
// is treated as an empty request.
func (c *Channel) Call(routine launchd.Routine, msg *value.Map, capacity int) (*value.Map, error) {
	if msg == nil {
		msg = value.NewMap()
	}
	if !c.Capability.SharedMemory {
		return c.callDirect(routine, msg)
	}

	allocate := c.allocate
	if allocate == nil {
		allocate = NewRegion
	}
	region, err := allocate(capacity)
	if err != nil {
		return nil, fmt.Errorf("allocating %d byte reply region: %w", capacity, err)
	}
	defer region.Close()

	msg.Set(KeyRegion, region.Descriptor())
	c.logger().Debug("bulk reply region", "routine", routine, "capacity", capacity)

	reply, err := c.Caller.Call(routine, msg)
	if err != nil {
		return reply, err
	}

	written, ok := reply.GetInt(KeyBytesWritten)
	if !ok {
		return reply, &launchd.Error{Routine: routine, Code: launchd.EBADRESP}
	}
	if written < 0 || written > int64(region.Capacity()) {
		c.logger().Warn("bytes-written outside region; clamping",
			"routine", routine,
			"bytes_written", written,
			"capacity", region.Capacity(),
		)
	}

	if err := writeContents(c.output(), region.Contents(written)); err != nil {
		return reply, fmt.Errorf("writing %s reply: %w", routine, err)
	}
	return reply, nil
}

func (c *Channel) callDirect(routine launchd.Routine, msg *value.Map) (*value.Map, error) {
	direct := c.Direct
	if direct == nil {
		direct = os.Stdout
	}
	msg.Set(KeyDirect, value.Descriptor{FD: int(direct.Fd())})
	c.logger().Debug("bulk reply direct handle", "routine", routine, "fd", direct.Fd())
	return c.Caller.Call(routine, msg)
}

func writeContents(w io.Writer, contents []byte) error {
	if len(contents) == 0 {
		_, err := fmt.Fprintln(w, EndOfData)
		return err
	}
	_, err := w.Write(contents)
	return err
}

func (c *Channel) output() io.Writer {
	if c.Output == nil {
		return os.Stdout
	}
	return c.Output
}

func (c *Channel) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
