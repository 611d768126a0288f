// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// eventBacklog bounds how many ready descriptors epoll_wait reports per
// call, matching original_source/neusc_server.h's EVENTSIZE (1000).
const eventBacklog = 1000

// scratchBufferSize is the reactor's one fixed scratch buffer, matching
// original_source's BUFFERSIZE (64 KiB), reused across every readable
// connection since the reactor is single-threaded.
const scratchBufferSize = 64 * 1024

// runLoop is the reactor's single-threaded readiness loop (C9). Each
// iteration waits with a bounded timeout so shutdown is observed promptly,
// per §4.7 step 4.
func (s *Server) runLoop() {
	events := make([]unix.EpollEvent, eventBacklog)
	var scratch [scratchBufferSize]byte
	timeoutMS := int(s.opts.PollTimeout / time.Millisecond)

	for !s.shutdown.Load() {
		n, err := s.poller.wait(events, timeoutMS)
		if err != nil {
			s.log.WithError(err).Warn("epoll_wait failed")
			continue
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if fd == s.listenFD {
				s.acceptAll()
				continue
			}
			h := handle(fd)
			c, ok := s.conns[h]
			if !ok {
				continue
			}
			if events[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				s.teardown(c, func() {
					if s.events.OnPeerReset != nil {
						s.events.OnPeerReset(int(h))
					}
				})
				continue
			}
			if events[i].Events&unix.EPOLLIN != 0 {
				s.handleReadable(c, scratch[:])
				if _, stillOpen := s.conns[h]; !stillOpen {
					continue
				}
			}
			if events[i].Events&unix.EPOLLOUT != 0 {
				s.handleWritable(c)
			}
		}
	}
}

// acceptAll accepts as many pending connections as possible, per §4.4's
// "Listener readable" handling.
func (s *Server) acceptAll() {
	for {
		fd, sa, err := unix.Accept(s.listenFD)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return
			}
			if errors.Is(err, unix.EINTR) {
				continue
			}
			s.log.WithError(err).Warn("accept failed")
			return
		}
		if err := setNonblocking(fd); err != nil {
			s.log.WithError(err).Warn("set_non_blocking failed")
			unix.Close(fd)
			continue
		}
		peerIP := peerIPString(sa)
		h := handle(fd)
		if s.events.OnConnected != nil && !s.events.OnConnected(int(h), peerIP) {
			unix.Close(fd)
			continue
		}
		if err := s.poller.addConn(fd); err != nil {
			s.log.WithError(err).Warn("epoll_ctl(add) failed")
			unix.Close(fd)
			continue
		}
		c := newConn(h, fd, peerIP)
		c.premature = newRequest(s, h)
		s.conns[h] = c
	}
}

// handleReadable repeatedly reads into the reactor's scratch buffer until
// the socket returns would-block, feeding each non-empty read to the
// receive state machine, per §4.4's "Connection readable" handling.
func (s *Server) handleReadable(c *conn, scratch []byte) {
	for {
		n, err := sockRead(c.fd, scratch)
		if err != nil {
			if errors.Is(err, ErrWouldBlock) {
				return
			}
			s.teardown(c, func() {
				if s.events.OnPeerReset != nil {
					s.events.OnPeerReset(int(c.h))
				}
			})
			return
		}
		if n == 0 {
			s.teardown(c, func() {
				if s.events.OnPeerClosed != nil {
					s.events.OnPeerClosed(int(c.h))
				}
			})
			return
		}

		chunk := scratch[:n]
		for len(chunk) > 0 {
			consumed, complete, ferr := c.premature.feed(chunk, s.opts.ReadLimit, s.opts.InitialBodyCapacity)
			chunk = chunk[consumed:]
			if ferr != nil {
				// Malformed frame (zero length, or longer than ReadLimit):
				// fatal for this connection, torn down as a reset per §7.
				// Buffer growth in reserve reports no allocation failure,
				// so no such error reaches this point.
				s.teardown(c, func() {
					if s.events.OnPeerReset != nil {
						s.events.OnPeerReset(int(c.h))
					}
				})
				return
			}
			if !complete {
				break
			}
			s.movePremature(c)
		}
	}
}

// movePremature implements §4.2 step 5: the completed request is handed to
// the pending queue, a fresh Request is installed as the connection's
// premature entry, and one worker is signalled.
func (s *Server) movePremature(c *conn) {
	req := c.premature
	c.premature = newRequest(s, c.h)
	s.pending.push(req)
}

// handleWritable drives the egress state machine (C3 + pick) once per
// writable event, chaining to the next mature response as each one
// completes, per §4.5.
func (s *Server) handleWritable(c *conn) {
	for {
		if c.sending == nil {
			next := s.mature.pickForHandle(c.h)
			if next == nil {
				return
			}
			next.send.prepare(len(next.response))
			c.sending = next
		}

		req := c.sending
		done, err := req.send.step(req.response, func(p []byte) (int, error) {
			return sockWrite(c.fd, p)
		})
		if err != nil {
			if errors.Is(err, ErrWouldBlock) {
				return
			}
			s.teardown(c, func() {
				if s.events.OnPeerReset != nil {
					s.events.OnPeerReset(int(c.h))
				}
			})
			return
		}
		if !done {
			return
		}
		c.sending = nil
		// Loop to chain the next pending response: the readiness facility
		// is edge-triggered and won't fire again on its own.
	}
}

// teardown implements clear_handle (§4.6): it removes and destroys the
// premature entry, deletes any pending-queue entries for h, marks or
// deletes mature-list entries for h, destroys any in-flight sending
// entry, closes and deregisters the socket, then invokes the supplied
// notify callback (OnPeerReset or OnPeerClosed).
func (s *Server) teardown(c *conn, notify func()) {
	h := c.h
	delete(s.conns, h)

	unix.Close(c.fd)
	_ = s.poller.remove(c.fd)

	s.pending.removeHandle(h)
	s.mature.clearHandle(h)

	// Mark the struct itself dead, matching original_source's clear_handle
	// setting request->handle = -1: a stray reference kept alive past this
	// point (there shouldn't be one) reads as invalid rather than as some
	// other live connection's fd.
	c.h = invalidHandle

	notify()
}

// endResponse is invoked by Request.EndResponse. It marks the request
// matured and, if not discarded, re-arms write-readiness so the reactor
// picks it up on the next loop iteration even if the socket was already
// writable (see epollPoller.rearmConn).
func (s *Server) endResponse(r *Request) {
	if !s.mature.markMatured(r) {
		return
	}
	// r.h is the connection's file descriptor; calling epoll_ctl directly
	// (rather than looking up s.conns, which is reactor-only state) avoids
	// a data race with the reactor goroutine. If the connection has since
	// been torn down and its fd reused by the OS, this harmlessly re-arms
	// whatever connection now owns that fd — already-registered interest
	// is idempotent, and the discard flag (set under the same lock) is
	// what actually prevents a stale response from being sent.
	if err := s.poller.rearmConn(int(r.h)); err != nil {
		s.log.WithError(err).Warn("epoll_ctl(mod) failed")
	}
}

func peerIPString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		ip := a.Addr
		return ipv4String(ip)
	default:
		return ""
	}
}

func ipv4String(b [4]byte) string {
	const digits = "0123456789"
	buf := make([]byte, 0, 15)
	for i, octet := range b {
		if i > 0 {
			buf = append(buf, '.')
		}
		buf = appendUint8(buf, octet, digits)
	}
	return string(buf)
}

func appendUint8(buf []byte, v byte, digits string) []byte {
	if v >= 100 {
		buf = append(buf, digits[v/100])
		v %= 100
		buf = append(buf, digits[v/10])
		v %= 10
		buf = append(buf, digits[v])
		return buf
	}
	if v >= 10 {
		buf = append(buf, digits[v/10])
		v %= 10
		buf = append(buf, digits[v])
		return buf
	}
	return append(buf, digits[v])
}
