// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

// Events groups the optional lifecycle callbacks a Server invokes. All
// fields are optional; a nil callback is simply skipped (OnRequest falls
// back to the default handler).
type Events struct {
	// OnInit runs before the listener is bound. Returning false aborts
	// startup.
	OnInit func(*Server) bool

	// OnEnd runs once, after the reactor loop and all workers have
	// stopped and every remaining request has been released.
	OnEnd func(*Server)

	// OnConnected runs after accept, before the connection is registered.
	// Returning false rejects the connection (it is closed immediately).
	OnConnected func(h int, peerIP string) bool

	// OnPeerReset runs on abnormal termination (socket error, reset).
	OnPeerReset func(h int)

	// OnPeerClosed runs on orderly peer EOF.
	OnPeerClosed func(h int)

	// OnRequest handles one fully-received request. It must either call
	// Request.CloneResponse + Request.EndResponse and return true, or
	// return false to drop the request without replying. If nil, the
	// default handler (a 1-byte zero-valued echo of nothing) is used.
	OnRequest Handler
}
