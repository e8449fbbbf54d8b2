// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launchd

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/bureau-foundation/launchctl/lib/value"
)

// dialTimeout bounds the connect phase only. Once connected, a round
// trip blocks until the service manager replies.
const dialTimeout = 5 * time.Second

// DialOptions configures [Dial].
type DialOptions struct {
	// CompressThreshold is the message size above which requests are
	// zstd-compressed. Zero selects [DefaultCompressThreshold]; a
	// negative value disables compression.
	CompressThreshold int

	// Logger receives debug records for undecodable replies. May be
	// nil.
	Logger *slog.Logger
}

// UnixChannel is the control channel over a Unix stream socket.
type UnixChannel struct {
	socketPath string
	conn       *Conn
}

// Dial connects to the service manager socket at socketPath.
func Dial(socketPath string, options DialOptions) (*UnixChannel, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", socketPath, err)
	}
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("connecting to %s: not a unix socket", socketPath)
	}

	threshold := options.CompressThreshold
	if threshold == 0 {
		threshold = DefaultCompressThreshold
	}
	return &UnixChannel{
		socketPath: socketPath,
		conn:       NewConn(unixConn, threshold, options.Logger),
	}, nil
}

// RoundTrip sends request and waits for the reply. Descriptors that
// arrive with the reply stay open; the reply's descriptor values refer
// to them.
func (u *UnixChannel) RoundTrip(request *value.Map) (*value.Map, error) {
	if err := u.conn.Send(request); err != nil {
		return nil, fmt.Errorf("sending request to %s: %w", u.socketPath, err)
	}
	reply, _, err := u.conn.Receive()
	if err != nil {
		return nil, fmt.Errorf("reading reply from %s: %w", u.socketPath, err)
	}
	return reply, nil
}

// Close closes the socket. The command-line tool never calls it; the
// channel lives until the process exits.
func (u *UnixChannel) Close() error {
	return u.conn.Close()
}
