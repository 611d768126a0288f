// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package reactor is an embeddable TCP server core: a single-threaded,
// edge-triggered event reactor that accepts many concurrent connections,
// reassembles length-prefixed binary messages, dispatches each complete
// message to a worker pool running the application handler, and streams
// length-prefixed responses back — preserving per-connection ordering and
// tolerating partial reads, partial writes, and abrupt peer disconnects.
//
// Wire format: uint32_be length || length bytes of body. Symmetric in
// both directions; no handshake, no heartbeat, no framing escape.
//
// This package targets Linux, using epoll in edge-triggered mode as its
// readiness facility (see poller_linux.go).
package reactor

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// Server is the lifecycle controller and reactor (C9+C10): start, graceful
// stop (drain signalling and join), and event callback dispatch.
type Server struct {
	opts   Options
	events Events

	startMu sync.Mutex
	started bool
	stopped bool

	shutdown atomic.Bool

	listenFD int
	poller   *epollPoller

	conns map[handle]*conn

	pending *pendingQueue
	mature  *matureList

	workers *errgroup.Group

	doneCh chan struct{}

	log *logrus.Entry
}

// NewServer constructs a Server with the given event callbacks and
// options. SetListenAddress/SetWorkThreadCount may still be called before
// Start to override WithListenAddress/WithWorkThreadCount.
func NewServer(events Events, opts ...Option) *Server {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &Server{
		opts:   o,
		events: events,
		conns:  make(map[handle]*conn),
		pending: newPendingQueue(),
		mature:  newMatureList(),
		doneCh:  make(chan struct{}),
	}
}

// SetListenAddress sets the bind address. Must be called before Start.
func (s *Server) SetListenAddress(addr string) {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	s.opts.ListenAddress = addr
}

// SetWorkThreadCount sets the worker pool size. Must be called before Start.
func (s *Server) SetWorkThreadCount(n int) {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	s.opts.WorkThreadCount = n
}

// RequestShutdown asynchronously requests a graceful stop, equivalent to
// the original's process-wide exit_flag being set from a signal handler.
// It does not block; use Shutdown to wait for drain to complete.
func (s *Server) RequestShutdown() {
	s.shutdown.Store(true)
	s.pending.closeAndBroadcast()
}

// Shutdown requests a graceful stop and waits for Start to return or for
// ctx to be cancelled, whichever happens first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.RequestShutdown()
	select {
	case <-s.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start binds the listener, spawns the worker pool, and runs the reactor
// loop until RequestShutdown is called or ctx is cancelled. It returns nil
// on a graceful stop, or a non-nil error if startup failed or OnInit
// vetoed startup.
func (s *Server) Start(ctx context.Context, port int) error {
	s.startMu.Lock()
	if s.started {
		s.startMu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.startMu.Unlock()
	defer close(s.doneCh)

	s.log = s.opts.Logger.WithField("component", "reactor")

	if err := s.opts.validate(); err != nil {
		return err
	}

	if s.opts.WorkThreadCount <= 0 {
		s.opts.WorkThreadCount = defaultWorkThreadCount()
	}

	if s.events.OnInit != nil && !s.events.OnInit(s) {
		return fmt.Errorf("reactor: onInit aborted startup")
	}

	// SIGPIPE would otherwise terminate the process on a write to a
	// half-closed connection; the reactor already handles that as an
	// ordinary write error.
	signal.Ignore(syscall.SIGPIPE)

	listenFD, err := s.bindListener(port)
	if err != nil {
		return fmt.Errorf("reactor: listen: %w", err)
	}
	s.listenFD = listenFD
	defer unix.Close(listenFD)

	poller, err := newEpollPoller()
	if err != nil {
		return fmt.Errorf("reactor: epoll_create1: %w", err)
	}
	s.poller = poller
	defer poller.close()

	if err := poller.addListener(listenFD); err != nil {
		return fmt.Errorf("reactor: epoll_ctl(listener): %w", err)
	}

	s.workers = startWorkerPool(s.opts.WorkThreadCount, s.pending, s.mature, s.events.OnRequest)
	s.log.WithFields(logrus.Fields{
		"address": s.opts.ListenAddress,
		"port":    port,
		"workers": s.opts.WorkThreadCount,
	}).Info("reactor started")

	go func() {
		select {
		case <-ctx.Done():
			s.RequestShutdown()
		case <-s.doneCh:
		}
	}()

	s.runLoop()

	s.pending.closeAndBroadcast()
	if err := s.workers.Wait(); err != nil {
		s.log.WithError(err).Warn("worker pool returned an error during shutdown")
	}
	s.releaseRemaining()

	if s.events.OnEnd != nil {
		s.events.OnEnd(s)
	}
	s.log.Info("reactor stopped")
	return nil
}

// bindListener creates, binds, and listens on a non-blocking TCP socket,
// the Go rendering of original_source/neusc_server.cc's socket/bind/listen
// sequence.
func (s *Server) bindListener(port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, err
	}
	addr, err := parseIPv4(s.opts.ListenAddress)
	if err != nil {
		unix.Close(fd)
		return -1, err
	}
	sa := &unix.SockaddrInet4{Port: port, Addr: addr}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind: %w", err)
	}
	const listenBacklog = 128
	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("listen: %w", err)
	}
	if err := setNonblocking(fd); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// releaseRemaining releases every remaining request from all four
// structures and closes every open connection, matching §4.7 step 5 /
// original_source's release_remain.
func (s *Server) releaseRemaining() {
	for h, c := range s.conns {
		unix.Close(c.fd)
		delete(s.conns, h)
	}
	s.pending.drainAll()
	s.mature.drainAll()
}

var errUnsupportedAddress = errors.New("reactor: unsupported listen address")
