// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

import "sync"

// pendingQueue is the FIFO of fully-received requests awaiting a worker
// (C5). The reactor produces, workers consume; guarded by its own mutex
// and condition variable, matching §5's "who touches what" table.
type pendingQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*Request
	closed bool
}

func newPendingQueue() *pendingQueue {
	q := &pendingQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends a fully-received request and wakes one waiting worker.
func (q *pendingQueue) push(r *Request) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
	q.cond.Signal()
}

// pop blocks until the queue is non-empty or the queue has been closed
// for shutdown. ok is false only once closed and drained.
func (q *pendingQueue) pop() (r *Request, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	r, q.items = q.items[0], q.items[1:]
	return r, true
}

// popAndMature blocks exactly as pop does, then appends the popped
// request to mature before releasing the pending queue's own lock. Doing
// both under one critical section, rather than letting the caller pop
// and append as two separate steps, is what makes the mature list's
// order match arrival order when several workers are popping
// concurrently: original_source/neusc_server.cc:174-186 holds
// pending_list's mutex across both its pop_front and its
// mature_list.push_back for the same reason.
func (q *pendingQueue) popAndMature(m *matureList) (r *Request, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	r, q.items = q.items[0], q.items[1:]
	m.append(r)
	return r, true
}

// removeHandle deletes every request belonging to h, per §4.6 step 2.
func (q *pendingQueue) removeHandle(h handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	for _, r := range q.items {
		if r.h != h {
			kept = append(kept, r)
		}
	}
	q.items = kept
}

// closeAndBroadcast sets the closed flag and wakes every waiting worker so
// they can observe shutdown, matching §4.7 step 5.
func (q *pendingQueue) closeAndBroadcast() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// drainAll removes and returns every remaining request, for release during
// shutdown.
func (q *pendingQueue) drainAll() []*Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
