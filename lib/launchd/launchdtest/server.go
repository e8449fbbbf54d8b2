// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package launchdtest provides an in-process fake service manager for
// tests.
//
// [Server] listens on a Unix socket in a short temporary directory and
// speaks the same framed protocol as the real service manager. Tests
// register a [Handler] per routine, point a launchd.Client at
// [Server.Dial], and inspect the recorded requests afterwards.
// Routines without a handler are answered with ENOTSUP.
//
//	server := launchdtest.NewServer(t)
//	server.Handle(launchd.RoutineList, func(request *value.Map) *value.Map {
//	    reply := launchdtest.Reply(0)
//	    reply.Set("services", value.NewMap())
//	    return reply
//	})
//	client := launchd.NewClient(server.Dial, nil)
//
// Descriptors received with a request are valid while the handler
// runs and are closed after the reply is sent. [WriteRegion] and
// [WriteDescriptor] let a handler answer a bulk-reply request the way
// the service manager does.
package launchdtest

import (
	"errors"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/launchctl/lib/launchd"
	"github.com/bureau-foundation/launchctl/lib/testutil"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// Handler computes the reply to one request.
type Handler func(request *value.Map) *value.Map

// Request is one request the server received.
type Request struct {
	Routine launchd.Routine
	Message *value.Map
}

// Server is a fake service manager.
type Server struct {
	// SocketPath is where the server listens.
	SocketPath string

	// CompressThreshold applies to replies; see launchd.NewConn.
	CompressThreshold int

	t        testing.TB
	listener *net.UnixListener

	mu          sync.Mutex
	handlers    map[launchd.Routine]Handler
	requests    []Request
	connections int
	open        []*net.UnixConn

	done sync.WaitGroup
}

// NewServer starts a server. It is stopped when the test completes.
func NewServer(t testing.TB) *Server {
	t.Helper()
	socketPath := filepath.Join(testutil.SocketDir(t), "launchd.sock")
	listener, err := net.ListenUnix("unix", &net.UnixAddr{Name: socketPath, Net: "unix"})
	if err != nil {
		t.Fatalf("listening on %s: %v", socketPath, err)
	}

	server := &Server{
		SocketPath: socketPath,
		t:          t,
		listener:   listener,
		handlers:   make(map[launchd.Routine]Handler),
	}
	server.done.Add(1)
	go server.serve()
	t.Cleanup(func() {
		listener.Close()
		server.mu.Lock()
		for _, conn := range server.open {
			conn.Close()
		}
		server.mu.Unlock()
		server.done.Wait()
	})
	return server
}

// Handle registers the handler for routine, replacing any earlier one.
func (s *Server) Handle(routine launchd.Routine, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[routine] = handler
}

// Requests returns the requests received so far, in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Connections returns how many connections the server has accepted.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections
}

// Dial connects a new channel to the server. Its signature matches
// launchd.DialFunc.
func (s *Server) Dial() (launchd.Channel, error) {
	channel, err := launchd.Dial(s.SocketPath, launchd.DialOptions{})
	if err != nil {
		return nil, err
	}
	s.t.Cleanup(func() { channel.Close() })
	return channel, nil
}

func (s *Server) serve() {
	defer s.done.Done()
	for {
		conn, err := s.listener.AcceptUnix()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.t.Errorf("launchdtest: accept: %v", err)
			}
			return
		}
		s.mu.Lock()
		s.connections++
		s.open = append(s.open, conn)
		s.mu.Unlock()

		s.done.Add(1)
		go func() {
			defer s.done.Done()
			s.serveConn(conn)
		}()
	}
}

// serveConn answers requests on one connection until the client
// closes it.
func (s *Server) serveConn(unixConn *net.UnixConn) {
	conn := launchd.NewConn(unixConn, s.CompressThreshold, nil)
	defer conn.Close()
	for {
		request, fds, err := conn.Receive()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.t.Errorf("launchdtest: receiving request: %v", err)
			}
			return
		}
		reply := s.dispatch(request)
		sendErr := conn.Send(reply)
		for _, fd := range fds {
			unix.Close(fd)
		}
		if sendErr != nil {
			s.t.Errorf("launchdtest: sending reply: %v", sendErr)
			return
		}
	}
}

func (s *Server) dispatch(request *value.Map) *value.Map {
	number, _ := request.GetInt(launchd.KeyRoutine)
	routine := launchd.Routine(number)

	s.mu.Lock()
	s.requests = append(s.requests, Request{Routine: routine, Message: request})
	handler := s.handlers[routine]
	s.mu.Unlock()

	if handler == nil {
		return Reply(launchd.ENOTSUP)
	}
	return handler(request)
}

// Reply returns a reply carrying only the given error code.
func Reply(code launchd.Code) *value.Map {
	reply := value.NewMap()
	reply.SetInt(launchd.KeyError, int64(code))
	return reply
}

// Descriptor returns the descriptor a request carries under key.
func Descriptor(request *value.Map, key string) (int, error) {
	entry, ok := request.Get(key)
	if !ok {
		return -1, fmt.Errorf("request has no %q field", key)
	}
	descriptor, ok := entry.(value.Descriptor)
	if !ok {
		return -1, fmt.Errorf("request field %q is %s, not a descriptor", key, entry.Kind())
	}
	return descriptor.FD, nil
}

// WriteRegion copies payload into the shared region a request carries
// under "shmem", truncated to the region's size, and returns the number
// of bytes copied.
func WriteRegion(request *value.Map, payload []byte) (int, error) {
	fd, err := Descriptor(request, "shmem")
	if err != nil {
		return 0, err
	}
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		return 0, fmt.Errorf("fstat region: %w", err)
	}
	if stat.Size == 0 {
		return 0, nil
	}
	mapping, err := unix.Mmap(fd, 0, int(stat.Size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return 0, fmt.Errorf("mapping region: %w", err)
	}
	defer unix.Munmap(mapping)
	return copy(mapping, payload), nil
}

// RegionSize returns the size of the shared region a request carries.
func RegionSize(request *value.Map) (int64, error) {
	fd, err := Descriptor(request, "shmem")
	if err != nil {
		return 0, err
	}
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		return 0, fmt.Errorf("fstat region: %w", err)
	}
	return stat.Size, nil
}

// WriteDescriptor writes payload to the output handle a request
// carries under "fd".
func WriteDescriptor(request *value.Map, payload []byte) error {
	fd, err := Descriptor(request, "fd")
	if err != nil {
		return err
	}
	for len(payload) > 0 {
		written, err := unix.Write(fd, payload)
		if err != nil {
			return fmt.Errorf("writing to descriptor: %w", err)
		}
		payload = payload[written:]
	}
	return nil
}
