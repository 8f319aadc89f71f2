// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package uacp implements the UACP transport layer: a connection
// plugin abstraction the core dials against, a concrete TCP
// implementation, and the HEL/ACK handshake framing. The core itself
// never touches a socket; everything above this package speaks in
// terms of the Connection interface.
package uacp

import (
	"net"
	"net/url"
	"time"

	"github.com/imatic-tech/opcua/internal/coreerr"
)

// DefaultReceiveBufSize and DefaultSendBufSize bound the chunk size
// negotiated during HEL/ACK when a caller does not override them.
const (
	DefaultReceiveBufSize = 64 * 1024
	DefaultSendBufSize    = 64 * 1024
	DefaultMaxMessageSize = 0 // unlimited
	DefaultMaxChunkCount  = 0 // unlimited
)

// LocalConnectionConfig carries the transport parameters a Client
// advertises in its Hello message.
type LocalConnectionConfig struct {
	ReceiveBufSize uint32
	SendBufSize    uint32
	MaxMessageSize uint32
	MaxChunkCount  uint32
}

func DefaultLocalConnectionConfig() LocalConnectionConfig {
	return LocalConnectionConfig{
		ReceiveBufSize: DefaultReceiveBufSize,
		SendBufSize:    DefaultSendBufSize,
		MaxMessageSize: DefaultMaxMessageSize,
		MaxChunkCount:  DefaultMaxChunkCount,
	}
}

// Connection is the transport plugin the core consumes (spec §6).
// Implementations need not be safe for concurrent use; the core
// calls into a Connection only from its single event-loop thread.
type Connection interface {
	Send(b []byte) error
	// Receive blocks up to timeout for a frame. It returns
	// ErrTimeout if none arrived in time, or ErrClosed if the peer
	// closed the connection.
	Receive(timeout time.Duration) ([]byte, error)
	Close() error
}

var (
	ErrTimeout = coreerr.Errorf("uacp: receive timeout")
	ErrClosed  = coreerr.Errorf("uacp: connection closed")
)

// ConnectionFactory yields a Connection for an endpoint URL. The core
// holds exactly one factory in its Configuration (spec §3).
type ConnectionFactory func(endpointURL string, cfg LocalConnectionConfig) (Connection, error)

// Endpoint is the subset of an opc.tcp:// URL the transport needs:
// scheme, host and port. Path, query, and every other component of
// the URL are outside this package's scope (spec §1) and are left
// untouched for whatever layer constructs service requests against
// them.
type Endpoint struct {
	Scheme string
	Host   string
	Port   string
}

func (e Endpoint) Address() string {
	if e.Port == "" {
		return e.Host
	}
	return net.JoinHostPort(e.Host, e.Port)
}

// ParseEndpoint extracts scheme+host+port from an endpoint URL, e.g.
// "opc.tcp://10.0.0.1:4840/path" → {opc.tcp, 10.0.0.1, 4840}.
func ParseEndpoint(rawURL string) (Endpoint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, coreerr.Wrap(err, "uacp: parse endpoint url")
	}
	host := u.Hostname()
	if host == "" {
		return Endpoint{}, coreerr.Errorf("uacp: endpoint url %q has no host", rawURL)
	}
	port := u.Port()
	if port == "" {
		port = "4840"
	}
	return Endpoint{Scheme: u.Scheme, Host: host, Port: port}, nil
}

// tcpConnection is the default Connection implementation, a thin
// wrapper around net.Conn with framed length-prefixed reads matching
// the chunk sizes negotiated by uasc. It performs no chunk parsing
// itself; uasc.Channel owns message framing. tcpConnection only ever
// moves opaque byte slices, each one already a complete UACP chunk,
// across the wire.
type tcpConnection struct {
	conn net.Conn
}

// DialTCP opens a raw TCP connection to the endpoint encoded in
// endpointURL. It performs no HEL/ACK handshake; that exchange is a
// uasc-layer concern built on top of the returned Connection.
func DialTCP(endpointURL string, cfg LocalConnectionConfig, dialTimeout time.Duration) (Connection, error) {
	ep, err := ParseEndpoint(endpointURL)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialTimeout("tcp", ep.Address(), dialTimeout)
	if err != nil {
		return nil, coreerr.Wrap(err, "uacp: dial")
	}
	return &tcpConnection{conn: conn}, nil
}

func (c *tcpConnection) Send(b []byte) error {
	_, err := c.conn.Write(b)
	if err != nil {
		return coreerr.Wrap(err, "uacp: send")
	}
	return nil
}

// Receive reads a single chunk. Chunk boundaries are delimited by the
// 8-byte UACP header (message type + chunk type + length) prefixed to
// every frame; Receive reads the header, then the remainder of the
// declared length.
func (c *tcpConnection) Receive(timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		c.conn.SetReadDeadline(time.Time{})
	}
	hdr := make([]byte, 8)
	if _, err := readFull(c.conn, hdr); err != nil {
		return nil, translateReadErr(err)
	}
	size := int(hdr[4]) | int(hdr[5])<<8 | int(hdr[6])<<16 | int(hdr[7])<<24
	if size < 8 {
		return nil, coreerr.Errorf("uacp: invalid chunk size %d", size)
	}
	body := make([]byte, size)
	copy(body, hdr)
	if _, err := readFull(c.conn, body[8:]); err != nil {
		return nil, translateReadErr(err)
	}
	return body, nil
}

func (c *tcpConnection) Close() error {
	return c.conn.Close()
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func translateReadErr(err error) error {
	if err == nil {
		return nil
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return ErrTimeout
	}
	return ErrClosed
}
