// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

import (
	"bytes"
	"testing"
)

// scriptedWriter accepts at most max bytes in total, then reports
// ErrWouldBlock, simulating a socket send buffer filling up mid-write.
// Raising max again models the buffer draining.
type scriptedWriter struct {
	buf bytes.Buffer
	max int
}

func (w *scriptedWriter) write(p []byte) (int, error) {
	if w.max <= 0 {
		return 0, ErrWouldBlock
	}
	n := len(p)
	if n > w.max {
		n = w.max
	}
	w.buf.Write(p[:n])
	w.max -= n
	return n, nil
}

func TestSendStateStepWholeWrite(t *testing.T) {
	body := []byte("hello, reactor")
	var s sendState
	s.prepare(len(body))

	w := &scriptedWriter{max: 1 << 20}
	done, err := s.step(body, w.write)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !done {
		t.Fatalf("expected done=true")
	}
	want := frameBytes(body)
	if !bytes.Equal(w.buf.Bytes(), want) {
		t.Fatalf("wire = % x, want % x", w.buf.Bytes(), want)
	}
}

func TestSendStateStepResumesAfterWouldBlock(t *testing.T) {
	body := bytes.Repeat([]byte("z"), 10)
	var s sendState
	s.prepare(len(body))

	w := &scriptedWriter{}
	var done bool
	var err error
	for i := 0; i < 100 && !done; i++ {
		w.max = 2 // room for two more bytes, forcing many partial writes
		done, err = s.step(body, w.write)
		if err != nil && err != ErrWouldBlock {
			t.Fatalf("step: %v", err)
		}
	}
	if !done {
		t.Fatalf("step never completed after repeated resumes")
	}
	want := frameBytes(body)
	if !bytes.Equal(w.buf.Bytes(), want) {
		t.Fatalf("wire = % x, want % x", w.buf.Bytes(), want)
	}
}

func TestSendStateStepWouldBlockOnHeaderOnly(t *testing.T) {
	body := []byte("payload")
	var s sendState
	s.prepare(len(body))

	w := &scriptedWriter{max: 0}
	done, err := s.step(body, w.write)
	if done {
		t.Fatalf("expected done=false")
	}
	if err != ErrWouldBlock {
		t.Fatalf("err = %v, want ErrWouldBlock", err)
	}
}
