// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

import "golang.org/x/sync/errgroup"

// Handler is the user request handler. It must either populate the
// response via Request.CloneResponse and call Request.EndResponse and
// return true, or return false to drop the request without replying.
type Handler func(r *Request) bool

// startWorkerPool spawns n worker goroutines, each running the loop
// described in §4.3: wait on the pending queue until non-empty or
// shutdown, pop the head request and append it (still unmatured) to the
// mature list as one atomic step, then invoke the handler.
//
// popAndMature (not pop followed by a separate append) is what's called
// here: with several workers popping concurrently, releasing the pending
// queue's lock between the pop and the append would let two workers'
// pops and appends interleave, so the mature list's order could stop
// matching arrival order even though the pending queue itself stayed
// FIFO. See pendingQueue.popAndMature.
//
// The goroutines are supervised by an errgroup.Group so a handler panic
// or unexpected error surfaces through Wait rather than silently killing
// one worker, the same supervision pattern
// pkg/inference/scheduling/scheduler.go uses for its worker set.
func startWorkerPool(n int, pending *pendingQueue, mature *matureList, handler Handler) *errgroup.Group {
	if handler == nil {
		handler = defaultHandler
	}
	g := &errgroup.Group{}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			for {
				req, ok := pending.popAndMature(mature)
				if !ok {
					return nil
				}
				if !handler(req) {
					// A dropped request gets no reply. Mark it discarded so it
					// no longer holds back later responses on its connection,
					// and re-arm so the reactor rescans the mature list.
					mature.mu.Lock()
					wasDiscarded := req.discard
					req.discard = true
					mature.mu.Unlock()
					if !wasDiscarded && req.srv != nil {
						_ = req.srv.poller.rearmConn(int(req.h))
					}
				}
			}
		})
	}
	return g
}
