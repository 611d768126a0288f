// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package reactor

import "golang.org/x/sys/unix"

// setNonblocking matches original_source/neusc_server.cc's set_non_blocking.
func setNonblocking(fd int) error {
	return unix.SetNonblock(fd, true)
}

// sockRead performs one non-blocking read attempt, translating EAGAIN into
// ErrWouldBlock and retrying transparently on EINTR, the same contract
// framer's readOnce gives its callers.
func sockRead(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return 0, ErrWouldBlock
		}
		return n, err
	}
}

// sockWrite performs one non-blocking write attempt, same translation as
// sockRead.
func sockWrite(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Write(fd, p)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return 0, ErrWouldBlock
		}
		return n, err
	}
}
