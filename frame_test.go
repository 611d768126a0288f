// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

import "testing"

func TestPutFrameHeaderRoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 100, 65535, 300000, 1 << 31}
	for _, length := range cases {
		var header [frameHeaderLen]byte
		putFrameHeader(header[:], length)
		got := frameHeaderLength(header[:])
		if got != length {
			t.Fatalf("length %d: round-trip got %d", length, got)
		}
	}
}

func TestPutFrameHeaderWireFormat(t *testing.T) {
	// §8 test 1: a 100-byte body must be prefixed exactly 00 00 00 64.
	var header [frameHeaderLen]byte
	putFrameHeader(header[:], 100)
	want := [4]byte{0x00, 0x00, 0x00, 0x64}
	if header != want {
		t.Fatalf("header = % x, want % x", header, want)
	}
}

func TestNextBodyCapacity(t *testing.T) {
	cases := []struct {
		cur, need, want int
	}{
		{1024, 1, 1024},
		{1024, 1024, 1024},
		{1024, 1025, 2048},
		{1024, 300000, 524288}, // §8 test 4
		{0, 1, 1},
	}
	for _, c := range cases {
		got := nextBodyCapacity(c.cur, c.need)
		if got != c.want {
			t.Fatalf("nextBodyCapacity(%d, %d) = %d, want %d", c.cur, c.need, got, c.want)
		}
	}
}
