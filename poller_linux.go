// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package reactor

import "golang.org/x/sys/unix"

// epollPoller is the edge-triggered readiness facility backing C9, the
// direct Go analogue of original_source/neusc_server.cc's epoll_fd and
// epoll_add_socket/epoll_delete_socket/epoll_modify_socket trio.
type epollPoller struct {
	epfd int
}

func newEpollPoller() (*epollPoller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{epfd: fd}, nil
}

// addListener registers the listening socket for readable events only,
// level-triggered (accept backlog draining doesn't need edge semantics).
func (p *epollPoller) addListener(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
	})
}

// addConn registers a client connection for readable AND writable, both
// edge-triggered, per §4.4.
func (p *epollPoller) addConn(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLET,
		Fd:     int32(fd),
	})
}

// rearmConn re-applies the same interest set. Because EPOLL_CTL_MOD
// re-establishes edge state, this forces a fresh writable notification
// even when the socket was already writable and nothing changed on the
// wire — which is exactly what EndResponse needs after a worker matures a
// request with no write event pending.
func (p *epollPoller) rearmConn(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLET,
		Fd:     int32(fd),
	})
}

func (p *epollPoller) remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// wait blocks for up to timeoutMS milliseconds and fills events, returning
// the number ready.
func (p *epollPoller) wait(events []unix.EpollEvent, timeoutMS int) (int, error) {
	n, err := unix.EpollWait(p.epfd, events, timeoutMS)
	if err == unix.EINTR {
		return 0, nil
	}
	return n, err
}

func (p *epollPoller) close() error {
	return unix.Close(p.epfd)
}
