// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

import "sync"

// matureList preserves the order requests were originally enqueued to
// pending (arrival order), so per-connection response order equals
// request order (C6). Workers append; the reactor scans and removes;
// clearHandle also mutates it. Guarded by its own mutex.
type matureList struct {
	mu    sync.Mutex
	items []*Request
}

func newMatureList() *matureList { return &matureList{} }

// append adds r to the tail, called by a worker immediately after popping
// it from the pending queue (still not matured at that point).
func (m *matureList) append(r *Request) {
	m.mu.Lock()
	m.items = append(m.items, r)
	m.mu.Unlock()
}

// markMatured sets r.matured under the mature list's lock — the same lock
// pickForHandle and clearHandle use to read/write matured and discard —
// and returns whether the reactor should still bother re-arming
// write-readiness (false if the connection already marked r discarded).
func (m *matureList) markMatured(r *Request) (shouldRearm bool) {
	m.mu.Lock()
	r.matured = true
	shouldRearm = !r.discard
	m.mu.Unlock()
	return shouldRearm
}

// pickForHandle returns the oldest outstanding request for h — and only
// if it has matured — removing it from the list. If the oldest entry for
// h is discarded (its connection died before the worker finished), it is
// deleted in place and the scan continues to the next entry for h. If the
// oldest entry for h exists but has not matured yet, pickForHandle
// returns nil: responses must leave in the order their requests arrived,
// so a still-running handler for an earlier request head-of-line-blocks
// every later response on the same connection (§8's ordering invariant).
//
// This departs from original_source's move_sending_request, which scans
// for the first matured entry for h anywhere in the list: that is only
// correct because the original's client is synchronous (at most one
// request in flight per connection), so "first matured for h" and
// "oldest for h" always agree. This server allows pipelining, so they
// don't.
func (m *matureList) pickForHandle(h handle) *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < len(m.items); {
		r := m.items[i]
		if r.h != h {
			i++
			continue
		}
		if r.discard {
			m.items = append(m.items[:i], m.items[i+1:]...)
			continue
		}
		if !r.matured {
			return nil
		}
		m.items = append(m.items[:i], m.items[i+1:]...)
		return r
	}
	return nil
}

// clearHandle implements §4.6 step 3: matured entries for h are deleted
// outright; not-yet-matured entries are marked discard so the worker that
// matures them leaves them to be swept on the next scan.
func (m *matureList) clearHandle(h handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < len(m.items); {
		r := m.items[i]
		if r.h != h {
			i++
			continue
		}
		if r.matured {
			m.items = append(m.items[:i], m.items[i+1:]...)
			continue
		}
		r.discard = true
		i++
	}
}

// drainAll removes and returns every remaining request, for release during
// shutdown.
func (m *matureList) drainAll() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.items
	m.items = nil
	return out
}
