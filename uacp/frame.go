// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uacp

import (
	"encoding/binary"
	"time"

	"github.com/imatic-tech/opcua/internal/coreerr"
	"github.com/imatic-tech/opcua/ua"
)

// MessageType is the 3-byte ASCII tag at the front of every UACP
// chunk header (Part 6, 7.1).
type MessageType [3]byte

var (
	MessageTypeHello           = MessageType{'H', 'E', 'L'}
	MessageTypeAcknowledge     = MessageType{'A', 'C', 'K'}
	MessageTypeError           = MessageType{'E', 'R', 'R'}
	MessageTypeOpenChannel     = MessageType{'O', 'P', 'N'}
	MessageTypeMessage         = MessageType{'M', 'S', 'G'}
	MessageTypeCloseChannel    = MessageType{'C', 'L', 'O'}
)

// ChunkType is the header byte after the 3-byte message type: final,
// intermediate, or abort (Part 6, 7.1.2.2).
type ChunkType byte

const (
	ChunkTypeFinal        ChunkType = 'F'
	ChunkTypeIntermediate ChunkType = 'C'
	ChunkTypeAbort        ChunkType = 'A'
)

// EncodeChunk prefixes body with the 8-byte UACP header.
func EncodeChunk(mt MessageType, ct ChunkType, body []byte) []byte {
	out := make([]byte, 8+len(body))
	copy(out[0:3], mt[:])
	out[3] = byte(ct)
	binary.LittleEndian.PutUint32(out[4:8], uint32(8+len(body)))
	copy(out[8:], body)
	return out
}

// DecodeChunk splits a raw frame (as returned by Connection.Receive)
// into its header fields and body.
func DecodeChunk(frame []byte) (mt MessageType, ct ChunkType, body []byte, err error) {
	if len(frame) < 8 {
		return mt, ct, nil, coreerr.Errorf("uacp: chunk shorter than header")
	}
	copy(mt[:], frame[0:3])
	ct = ChunkType(frame[3])
	size := binary.LittleEndian.Uint32(frame[4:8])
	if int(size) != len(frame) {
		return mt, ct, nil, coreerr.Errorf("uacp: chunk size mismatch: header says %d, got %d", size, len(frame))
	}
	return mt, ct, frame[8:], nil
}

// Handshake performs the HEL/ACK exchange (Part 6, 7.1.2.3/7.1.2.4):
// send a Hello advertising the local connection config, then wait for
// the server's Acknowledge. A well-formed ERR chunk is surfaced as an
// error carrying the server's reported status code.
func Handshake(conn Connection, endpointURL string, cfg LocalConnectionConfig, timeout time.Duration) (*ua.Acknowledge, error) {
	hello := &ua.Hello{
		Version:        0,
		ReceiveBufSize: cfg.ReceiveBufSize,
		SendBufSize:    cfg.SendBufSize,
		MaxMessageSize: cfg.MaxMessageSize,
		MaxChunkCount:  cfg.MaxChunkCount,
		EndpointURL:    endpointURL,
	}
	if err := conn.Send(EncodeChunk(MessageTypeHello, ChunkTypeFinal, hello.Encode())); err != nil {
		return nil, err
	}
	frame, err := conn.Receive(timeout)
	if err != nil {
		return nil, err
	}
	mt, _, body, err := DecodeChunk(frame)
	if err != nil {
		return nil, err
	}
	switch mt {
	case MessageTypeAcknowledge:
		return ua.DecodeAcknowledge(body)
	case MessageTypeError:
		em, derr := ua.DecodeErrorMessage(body)
		if derr != nil {
			return nil, derr
		}
		return nil, coreerr.Errorf("uacp: server rejected hello: %s (%s)", em.Error, em.Reason)
	default:
		return nil, coreerr.Errorf("uacp: unexpected message type %q during handshake", string(mt[:]))
	}
}
