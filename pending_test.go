// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

import (
	"sync"
	"testing"
	"time"
)

func TestPendingQueueFIFOOrder(t *testing.T) {
	q := newPendingQueue()
	r1 := newRequest(nil, 1)
	r2 := newRequest(nil, 1)
	r3 := newRequest(nil, 2)
	q.push(r1)
	q.push(r2)
	q.push(r3)

	for _, want := range []*Request{r1, r2, r3} {
		got, ok := q.pop()
		if !ok {
			t.Fatalf("pop: queue unexpectedly empty")
		}
		if got != want {
			t.Fatalf("pop order mismatch")
		}
	}
}

func TestPendingQueuePopBlocksUntilPush(t *testing.T) {
	q := newPendingQueue()
	done := make(chan *Request, 1)
	go func() {
		r, ok := q.pop()
		if !ok {
			done <- nil
			return
		}
		done <- r
	}()

	select {
	case <-done:
		t.Fatalf("pop returned before any push")
	case <-time.After(50 * time.Millisecond):
	}

	r := newRequest(nil, 5)
	q.push(r)

	select {
	case got := <-done:
		if got != r {
			t.Fatalf("pop returned wrong request")
		}
	case <-time.After(time.Second):
		t.Fatalf("pop did not return after push")
	}
}

func TestPendingQueueCloseUnblocksWaiters(t *testing.T) {
	q := newPendingQueue()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.closeAndBroadcast()

	select {
	case ok := <-done:
		if ok {
			t.Fatalf("expected pop to report ok=false after close")
		}
	case <-time.After(time.Second):
		t.Fatalf("pop did not unblock after close")
	}
}

func TestPendingQueueRemoveHandle(t *testing.T) {
	q := newPendingQueue()
	a1 := newRequest(nil, 1)
	b1 := newRequest(nil, 2)
	a2 := newRequest(nil, 1)
	q.push(a1)
	q.push(b1)
	q.push(a2)

	q.removeHandle(1)

	got, ok := q.pop()
	if !ok || got != b1 {
		t.Fatalf("expected only handle 2's request to remain")
	}
}

func TestPendingQueuePopAndMaturePreservesOrderAcrossWorkers(t *testing.T) {
	q := newPendingQueue()
	m := newMatureList()
	const n = 50
	want := make([]*Request, n)
	for i := 0; i < n; i++ {
		r := newRequest(nil, 1)
		want[i] = r
		q.push(r)
	}

	var wg sync.WaitGroup
	const workers = 8
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				_, ok := q.popAndMature(m)
				if !ok {
					return
				}
			}
		}()
	}
	q.closeAndBroadcast()
	wg.Wait()

	got := m.drainAll()
	if len(got) != n {
		t.Fatalf("drained %d requests, want %d", len(got), n)
	}
	for i, r := range got {
		if r != want[i] {
			t.Fatalf("mature list order diverged at index %d: concurrent workers reordered arrival order", i)
		}
	}
}

func TestPendingQueueDrainAll(t *testing.T) {
	q := newPendingQueue()
	q.push(newRequest(nil, 1))
	q.push(newRequest(nil, 1))

	drained := q.drainAll()
	if len(drained) != 2 {
		t.Fatalf("drainAll returned %d items, want 2", len(drained))
	}
	if rest := q.drainAll(); len(rest) != 0 {
		t.Fatalf("queue not empty after drain")
	}
}
