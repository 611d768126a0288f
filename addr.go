// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

import "net"

// parseIPv4 resolves a dotted-quad listen address (e.g. "0.0.0.0") into the
// 4-byte form unix.SockaddrInet4 expects. Hostname resolution beyond a
// literal IP is out of scope (§1: "thin glue" left to the caller).
func parseIPv4(addr string) (out [4]byte, err error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return out, errUnsupportedAddress
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return out, errUnsupportedAddress
	}
	copy(out[:], ip4)
	return out, nil
}
