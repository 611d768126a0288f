// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

import "encoding/binary"

// Wire format: a 4-byte big-endian unsigned length prefix followed by
// exactly that many bytes of body. Symmetric in both directions, no
// handshake, no framing escape. The codec itself carries no state; all
// state lives in the receive (C2) and send (C3) buffers.
const frameHeaderLen = 4

// putFrameHeader encodes length into header using the wire byte order.
func putFrameHeader(header []byte, length uint32) {
	binary.BigEndian.PutUint32(header, length)
}

// frameHeaderLength decodes the declared body length from a full header.
func frameHeaderLength(header []byte) uint32 {
	return binary.BigEndian.Uint32(header)
}

// nextBodyCapacity returns the smallest power-of-two doubling of cur that
// reaches need, matching the buffer-growth discipline of §4.2 step 3
// (ported from the original source's Request::reserve_size).
func nextBodyCapacity(cur, need int) int {
	if cur <= 0 {
		cur = 1
	}
	for cur < need {
		cur *= 2
	}
	return cur
}
