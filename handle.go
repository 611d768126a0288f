// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

// handle identifies an accepted client connection. It is the file
// descriptor of the underlying socket, unique while the connection lives
// and reusable by the OS after close.
//
// invalidHandle is used as the "not open" sentinel instead of testing
// handle > 0, since descriptor 0 is a legal (if unusual) open descriptor.
type handle int32

const invalidHandle handle = -1
