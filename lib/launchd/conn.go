// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launchd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/launchctl/lib/codec"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// maxDescriptors bounds the descriptors accepted or sent with a single
// frame. Requests carry at most one (a shared region or an output
// handle).
const maxDescriptors = 16

// Conn exchanges framed messages and their descriptors over a Unix
// stream socket. It is not safe for concurrent use; the protocol has at
// most one outstanding request.
type Conn struct {
	conn              *net.UnixConn
	compressThreshold int
	logger            *slog.Logger
	oob               []byte
}

// NewConn wraps conn. Messages larger than compressThreshold bytes are
// sent zstd-compressed; zero or less disables compression. logger may
// be nil.
func NewConn(conn *net.UnixConn, compressThreshold int, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Conn{
		conn:              conn,
		compressThreshold: compressThreshold,
		logger:            logger,
		oob:               make([]byte, unix.CmsgSpace(maxDescriptors*4)),
	}
}

// Send encodes msg and writes it as one frame. Descriptors referenced
// by the message ride on the first write as SCM_RIGHTS; the caller
// keeps ownership of them.
func (c *Conn) Send(msg *value.Map) error {
	encoded, fds, err := codec.EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	frame, err := appendFrame(nil, encoded, c.compressThreshold)
	if err != nil {
		return err
	}

	if len(fds) == 0 {
		if _, err := c.conn.Write(frame); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
		return nil
	}

	if len(fds) > maxDescriptors {
		return fmt.Errorf("message references %d descriptors, maximum is %d", len(fds), maxDescriptors)
	}
	written, _, err := c.conn.WriteMsgUnix(frame, unix.UnixRights(fds...), nil)
	if err != nil {
		return fmt.Errorf("writing frame with %d descriptors: %w", len(fds), err)
	}
	// A stream socket may accept only part of a large frame. The
	// descriptors went with the first byte, so the rest is plain data.
	if written < len(frame) {
		if _, err := c.conn.Write(frame[written:]); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
	}
	return nil
}

// Receive reads one frame and decodes it. It returns the descriptors
// that arrived with the frame; descriptor values in the message refer
// to them. The caller owns the returned descriptors. On error, any
// descriptors received are closed.
//
// A clean end of stream before any byte of the frame returns io.EOF.
func (c *Conn) Receive() (*value.Map, []int, error) {
	var fds []int
	msg, err := c.receive(&fds)
	if err != nil {
		closeDescriptors(fds)
		return nil, nil, err
	}
	return msg, fds, nil
}

func (c *Conn) receive(fds *[]int) (*value.Map, error) {
	var header [frameHeaderLength]byte
	if err := c.readFull(header[:], fds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading frame header: %w", err)
	}
	kind, length, err := parseFrameHeader(header[:])
	if err != nil {
		return nil, err
	}

	payload := make([]byte, length)
	if err := c.readFull(payload, fds); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading frame payload: %w", err)
	}

	message, err := framePayload(kind, payload)
	if err != nil {
		return nil, err
	}
	msg, err := codec.DecodeMessage(message, *fds)
	if err != nil {
		if c.logger.Enabled(context.Background(), slog.LevelDebug) {
			notation, diagnoseErr := codec.Diagnose(message)
			if diagnoseErr != nil {
				notation = fmt.Sprintf("%x", message)
			}
			c.logger.Debug("undecodable message", "error", err, "payload", notation)
		}
		return nil, fmt.Errorf("decoding message: %w", err)
	}
	return msg, nil
}

// readFull fills buf, collecting any descriptors that arrive on the
// way. It returns io.EOF only if the stream ends before the first
// byte.
func (c *Conn) readFull(buf []byte, fds *[]int) error {
	filled := 0
	for filled < len(buf) {
		n, oobn, flags, _, err := c.conn.ReadMsgUnix(buf[filled:], c.oob)
		if oobn > 0 {
			received, parseErr := parseRights(c.oob[:oobn])
			*fds = append(*fds, received...)
			if parseErr != nil {
				return parseErr
			}
		}
		if flags&unix.MSG_CTRUNC != 0 {
			return fmt.Errorf("descriptor list truncated (more than %d descriptors)", maxDescriptors)
		}
		filled += n
		if err != nil {
			if errors.Is(err, io.EOF) && filled > 0 {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		if n == 0 {
			if filled == 0 {
				return io.EOF
			}
			return io.ErrUnexpectedEOF
		}
	}
	return nil
}

func parseRights(oob []byte) ([]int, error) {
	messages, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("parsing control message: %w", err)
	}
	var fds []int
	for index := range messages {
		rights, err := unix.ParseUnixRights(&messages[index])
		if err != nil {
			continue
		}
		fds = append(fds, rights...)
	}
	return fds, nil
}

func closeDescriptors(fds []int) {
	for _, fd := range fds {
		unix.Close(fd)
	}
}

// Close closes the underlying socket.
func (c *Conn) Close() error {
	return c.conn.Close()
}
