// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

// sendState is the per-request egress buffer (C3): it tracks how many
// bytes of the 4-byte length prefix and how many bytes of the response
// body have been written so far, so a partial write (the socket returning
// would-block mid-frame) can resume exactly where it left off on the next
// writable event.
type sendState struct {
	header        [frameHeaderLen]byte
	headerWritten int
	bodyWritten   int
}

// prepare arms the send state for a response body of the given length,
// matching original_source/neusc_server.cc's Response::set_length.
func (s *sendState) prepare(bodyLen int) {
	putFrameHeader(s.header[:], uint32(bodyLen))
	s.headerWritten = 0
	s.bodyWritten = 0
}

// writeFunc abstracts a single non-blocking socket write attempt. It
// returns ErrWouldBlock when the socket buffer is full, mirroring the
// framer package's writeOnce contract.
type writeFunc func(p []byte) (int, error)

// step drives one or more write attempts against write, resuming from
// whatever progress was made on a prior call. It returns done=true once
// the 4-byte prefix and the full body have both been written.
func (s *sendState) step(body []byte, write writeFunc) (done bool, err error) {
	for s.headerWritten < frameHeaderLen {
		n, werr := write(s.header[s.headerWritten:])
		s.headerWritten += n
		if werr != nil {
			return false, werr
		}
		if n == 0 {
			return false, ErrWouldBlock
		}
	}
	for s.bodyWritten < len(body) {
		n, werr := write(body[s.bodyWritten:])
		s.bodyWritten += n
		if werr != nil {
			return false, werr
		}
		if n == 0 {
			return false, ErrWouldBlock
		}
	}
	return true, nil
}
