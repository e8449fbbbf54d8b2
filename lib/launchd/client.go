// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launchd

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/launchctl/lib/target"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// Channel performs one synchronous request/reply exchange with the
// service manager.
type Channel interface {
	RoundTrip(request *value.Map) (*value.Map, error)
}

// DialFunc opens the control channel. A [Client] calls it at most once.
type DialFunc func() (Channel, error)

// Observer sees every request before it is sent and every reply (or
// channel failure) after it arrives. Used for protocol tracing.
type Observer interface {
	ObserveRequest(routine Routine, request *value.Map)
	ObserveReply(routine Routine, reply *value.Map, err error)
}

// Client sends routines to the service manager over a single control
// channel. The channel opens on the first call and is reused for every
// later call; it is never reopened, and a failure to open it is
// returned by every call.
//
// Client is meant to be constructed once in main and passed to the
// code that needs it. Calls must not overlap.
type Client struct {
	dial     DialFunc
	logger   *slog.Logger
	observer Observer

	once    sync.Once
	channel Channel
	dialErr error
}

// NewClient returns a Client that will open its channel with dial.
// logger may be nil.
func NewClient(dial DialFunc, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{dial: dial, logger: logger}
}

// SetObserver installs an observer for subsequent calls.
func (c *Client) SetObserver(observer Observer) {
	c.observer = observer
}

func (c *Client) open() (Channel, error) {
	c.once.Do(func() {
		c.channel, c.dialErr = c.dial()
		if c.dialErr != nil {
			c.dialErr = fmt.Errorf("connecting to service manager: %w", c.dialErr)
		}
	})
	return c.channel, c.dialErr
}

// Call stamps routine and its subsystem onto msg, sends it, and
// returns the reply.
//
// A channel failure is returned wrapped and with a nil reply. A reply
// without an integer "error" field is reported as [EBADRESP]. A
// non-zero "error" is returned as an [*Error] together with the reply,
// which may carry detail such as a per-item error map; for
// [ENODOMAIN] and [ENOSERVICE] the Error names the addressed target.
func (c *Client) Call(routine Routine, msg *value.Map) (*value.Map, error) {
	if msg == nil {
		msg = value.NewMap()
	}
	msg.SetInt(KeySubsystem, routine.Subsystem())
	msg.SetInt(KeyRoutine, int64(routine))

	channel, err := c.open()
	if err != nil {
		return nil, err
	}

	if c.observer != nil {
		c.observer.ObserveRequest(routine, msg)
	}
	reply, err := channel.RoundTrip(msg)
	if c.observer != nil {
		c.observer.ObserveReply(routine, reply, err)
	}
	if err != nil {
		c.logger.Debug("round trip failed", "routine", routine, "error", err)
		return nil, fmt.Errorf("%s: %w", routine, err)
	}

	code, ok := reply.GetInt(KeyError)
	if !ok {
		c.logger.Debug("reply missing error field", "routine", routine)
		return nil, &Error{Routine: routine, Code: EBADRESP}
	}
	c.logger.Debug("round trip",
		"routine", routine,
		"subsystem", routine.Subsystem(),
		"error", code,
	)
	if code == 0 {
		return reply, nil
	}

	callErr := &Error{Routine: routine, Code: Code(code)}
	if callErr.Code == ENODOMAIN || callErr.Code == ENOSERVICE {
		addressed := target.FromMessage(msg)
		callErr.Target = &addressed
	}
	return reply, callErr
}
