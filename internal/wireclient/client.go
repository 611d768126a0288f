// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wireclient is a minimal synchronous client speaking the
// reactor wire protocol (uint32_be length || body), used only to drive
// integration tests against a real *reactor.Server. It is deliberately not
// part of the public API: §1 scopes the synchronous client library out of
// the core, referencing only its wire behaviour. The blocking read/write
// loop here is grounded on original_source/client_test1.cc and
// neusc_clientsync.cc's ClientSync::out/in.
package wireclient

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// Client is a blocking request/response client over a single net.Conn.
type Client struct {
	conn net.Conn
}

// Dial connects to addr and returns a Client ready to send requests.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// Send writes one framed message: a 4-byte big-endian length prefix
// followed by body.
func (c *Client) Send(body []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := c.conn.Write(header[:]); err != nil {
		return fmt.Errorf("wireclient: write header: %w", err)
	}
	if _, err := c.conn.Write(body); err != nil {
		return fmt.Errorf("wireclient: write body: %w", err)
	}
	return nil
}

// Receive blocks for one complete framed message and returns its body.
func (c *Client) Receive() ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return nil, fmt.Errorf("wireclient: read header: %w", err)
	}
	length := binary.BigEndian.Uint32(header[:])
	body := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(c.conn, body); err != nil {
			return nil, fmt.Errorf("wireclient: read body: %w", err)
		}
	}
	return body, nil
}
