// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

// Request is the unit that flows premature map → pending queue → mature
// list → sending map → destroyed (§3's ownership chain). Exactly one
// party mutates it at a time; the guarded containers it moves through
// establish the happens-before relationship between that party and the
// next.
//
// While premature, Request doubles as the receive state machine (C2):
// header/headerRead/bodyLen/bodyReadN/body track exactly how much of the
// current frame has arrived, mirroring
// original_source/neusc_server.cc's Request class, which is both the
// in-flight receive buffer and the unit handed to workers.
//
// Request keeps a back-reference to its Server so EndResponse can re-arm
// write-readiness without the caller threading the server through the
// handler signature. Unlike the C++ original, this is not a shared-
// ownership cycle that needs manual bookkeeping: Go's garbage collector
// reclaims it once the request leaves the sending map.
type Request struct {
	srv *Server
	h   handle

	// receive state (C2); only meaningful while this Request is the
	// connection's premature entry.
	header     [frameHeaderLen]byte
	headerRead int
	bodyLen    int
	bodyReadN  int
	body       []byte // input body; nil after ReleaseRequestData

	response []byte // populated by CloneResponse

	matured bool // set exactly once, by the worker, after response is ready
	discard bool // set when the connection died while the request was in flight

	send sendState // egress progress for this request's response (C3)
}

func newRequest(srv *Server, h handle) *Request {
	return &Request{srv: srv, h: h}
}

// Size returns the number of bytes in the request body.
func (r *Request) Size() int { return len(r.body) }

// Bytes returns a read-only view of the request body.
func (r *Request) Bytes() []byte { return r.body }

// CloneResponse copies body into the response buffer, replacing any
// previous contents.
func (r *Request) CloneResponse(body []byte) {
	r.response = append(r.response[:0], body...)
}

// ReleaseRequestData frees the input buffer early, once the handler no
// longer needs it. Safe to call only after the request has been handed to
// a worker (i.e. from within the handler).
func (r *Request) ReleaseRequestData() {
	r.body = nil
}

// EndResponse marks the request matured: its response buffer is ready to
// send. This must be called exactly once by the handler (directly, or via
// the default handler when Events.OnRequest is nil).
func (r *Request) EndResponse() {
	r.srv.endResponse(r)
}

// defaultHandler produces a 1-byte zero-valued response, matching
// original_source/neusc_server.cc's default_request_process.
func defaultHandler(r *Request) bool {
	r.CloneResponse([]byte{0})
	r.EndResponse()
	return true
}

// reserve ensures body has capacity for need bytes, doubling per §4.2
// step 3 (ported from the original source's Request::reserve_size).
func (r *Request) reserve(need, initialCap int) {
	if cap(r.body) >= need {
		return
	}
	newCap := nextBodyCapacity(maxInt(cap(r.body), initialCap), need)
	newBody := make([]byte, newCap)
	copy(newBody, r.body[:r.bodyReadN])
	r.body = newBody
}

// feed consumes bytes from chunk and returns how many bytes were consumed
// and whether a complete frame is now available. A chunk may contain
// multiple complete frames, a partial tail, or a frame split across many
// chunks; feed handles all three uniformly by consuming at most one
// complete frame per call so the reactor can loop over the remainder.
//
// On a zero-length declared body, feed returns ErrZeroLengthFrame per §3's
// invariant that a zero body_length is not valid input. On a declared
// length exceeding limit (when limit > 0), feed returns ErrFrameTooLong.
func (r *Request) feed(chunk []byte, limit, initialCap int) (consumed int, complete bool, err error) {
	// 1) Header bytes.
	if r.headerRead < frameHeaderLen {
		n := copy(r.header[r.headerRead:], chunk)
		r.headerRead += n
		consumed += n
		chunk = chunk[n:]
		if r.headerRead < frameHeaderLen {
			return consumed, false, nil
		}
		declared := frameHeaderLength(r.header[:])
		if declared == 0 {
			return consumed, false, ErrZeroLengthFrame
		}
		if limit > 0 && int64(declared) > int64(limit) {
			return consumed, false, ErrFrameTooLong
		}
		r.bodyLen = int(declared)
		r.reserve(r.bodyLen, initialCap)
	}

	// 2) Body bytes.
	remain := r.bodyLen - r.bodyReadN
	if remain > 0 && len(chunk) > 0 {
		n := copy(r.body[r.bodyReadN:r.bodyLen], chunk)
		r.bodyReadN += n
		consumed += n
	}

	if r.bodyReadN == r.bodyLen {
		r.body = r.body[:r.bodyLen]
		return consumed, true, nil
	}
	return consumed, false, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
