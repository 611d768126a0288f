// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

import (
	"errors"

	"code.hybscloud.com/iox"
)

var (
	// ErrInvalidArgument reports an invalid configuration value.
	ErrInvalidArgument = errors.New("reactor: invalid argument")

	// ErrFrameTooLong reports that a declared frame body length exceeds the
	// configured read limit.
	ErrFrameTooLong = errors.New("reactor: frame too long")

	// ErrZeroLengthFrame reports a frame whose declared body length is zero,
	// which is not valid input per the wire protocol.
	ErrZeroLengthFrame = errors.New("reactor: zero-length frame body")

	// ErrAlreadyStarted is returned by Start if Start has already been called
	// on this server, whether or not that run has since stopped.
	ErrAlreadyStarted = errors.New("reactor: already started")
)

// ErrWouldBlock and ErrMore are re-exported so callers recognize the same
// non-blocking control-flow signals code.hybscloud.com/iox uses, without
// importing iox directly.
var (
	// ErrWouldBlock means "no further progress without waiting": the socket
	// has no more bytes to read or buffer space to write right now.
	ErrWouldBlock = iox.ErrWouldBlock

	// ErrMore means a partial completion occurred and the same operation
	// should be retried to make further progress.
	ErrMore = iox.ErrMore
)
