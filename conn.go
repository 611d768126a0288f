// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

// conn is the reactor-only per-connection state: the socket descriptor,
// the premature request currently being filled (C2/premature map, which
// also carries the receive state machine — see Request.feed), and the
// request currently being written out, if any (C7/sending map). Touched
// only by the reactor goroutine; no lock, per §5's "who touches what"
// table.
type conn struct {
	h      handle
	fd     int
	peerIP string

	premature *Request // premature map: exactly one entry per live connection
	sending   *Request // sending map: at most one entry per connection
}

func newConn(h handle, fd int, peerIP string) *conn {
	return &conn{h: h, fd: fd, peerIP: peerIP}
}
