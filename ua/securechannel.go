// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"

	"github.com/imatic-tech/opcua/id"
)

// Hello is the UACP handshake message (Part 6, 7.1.2.3). It carries no
// request/response header and is never routed through the request
// multiplexer; uacp frames it directly as an "HEL" chunk.
type Hello struct {
	Version        uint32
	ReceiveBufSize uint32
	SendBufSize    uint32
	MaxMessageSize uint32
	MaxChunkCount  uint32
	EndpointURL    string
}

// Acknowledge is the UACP handshake response (Part 6, 7.1.2.4), framed
// by uacp as an "ACK" chunk.
type Acknowledge struct {
	Version        uint32
	ReceiveBufSize uint32
	SendBufSize    uint32
	MaxMessageSize uint32
	MaxChunkCount  uint32
}

// ErrorMessage is the UACP error chunk ("ERR", Part 6, 7.1.2.5) a server
// may send in place of ACK or at any point to abort the connection.
type ErrorMessage struct {
	Error  StatusCode
	Reason string
}

func (h *Hello) Encode() []byte {
	var buf bytes.Buffer
	writeUint32(&buf, h.Version)
	writeUint32(&buf, h.ReceiveBufSize)
	writeUint32(&buf, h.SendBufSize)
	writeUint32(&buf, h.MaxMessageSize)
	writeUint32(&buf, h.MaxChunkCount)
	writeString(&buf, h.EndpointURL)
	return buf.Bytes()
}

func DecodeHello(b []byte) (*Hello, error) {
	r := &byteReader{b: b}
	h := &Hello{}
	var err error
	if h.Version, err = r.uint32(); err != nil {
		return nil, err
	}
	if h.ReceiveBufSize, err = r.uint32(); err != nil {
		return nil, err
	}
	if h.SendBufSize, err = r.uint32(); err != nil {
		return nil, err
	}
	if h.MaxMessageSize, err = r.uint32(); err != nil {
		return nil, err
	}
	if h.MaxChunkCount, err = r.uint32(); err != nil {
		return nil, err
	}
	if h.EndpointURL, err = r.string(); err != nil {
		return nil, err
	}
	return h, nil
}

func (a *Acknowledge) Encode() []byte {
	var buf bytes.Buffer
	writeUint32(&buf, a.Version)
	writeUint32(&buf, a.ReceiveBufSize)
	writeUint32(&buf, a.SendBufSize)
	writeUint32(&buf, a.MaxMessageSize)
	writeUint32(&buf, a.MaxChunkCount)
	return buf.Bytes()
}

func DecodeAcknowledge(b []byte) (*Acknowledge, error) {
	r := &byteReader{b: b}
	a := &Acknowledge{}
	var err error
	if a.Version, err = r.uint32(); err != nil {
		return nil, err
	}
	if a.ReceiveBufSize, err = r.uint32(); err != nil {
		return nil, err
	}
	if a.SendBufSize, err = r.uint32(); err != nil {
		return nil, err
	}
	if a.MaxMessageSize, err = r.uint32(); err != nil {
		return nil, err
	}
	if a.MaxChunkCount, err = r.uint32(); err != nil {
		return nil, err
	}
	return a, nil
}

func DecodeErrorMessage(b []byte) (*ErrorMessage, error) {
	r := &byteReader{b: b}
	e := &ErrorMessage{}
	var err error
	sc, err := r.uint32()
	if err != nil {
		return nil, err
	}
	e.Error = StatusCode(sc)
	if e.Reason, err = r.string(); err != nil {
		return nil, err
	}
	return e, nil
}

// SecurityTokenRequestType distinguishes Issue from Renew, Part 4, 5.5.2.2.
type SecurityTokenRequestType uint32

const (
	SecurityTokenRequestTypeIssue SecurityTokenRequestType = iota
	SecurityTokenRequestTypeRenew
)

// ChannelSecurityToken is Part 4, 7.31.
type ChannelSecurityToken struct {
	ChannelID       uint32
	TokenID         uint32
	CreatedAt       int64
	RevisedLifetime uint32
}

// OpenSecureChannelRequest is Part 4, 5.5.2.
type OpenSecureChannelRequest struct {
	RequestHeader          RequestHeader
	ClientProtocolVersion  uint32
	RequestType            SecurityTokenRequestType
	SecurityMode           MessageSecurityMode
	ClientNonce            []byte
	RequestedLifetime      uint32
}

func (r *OpenSecureChannelRequest) Header() *RequestHeader { return &r.RequestHeader }

// OpenSecureChannelResponse is Part 4, 5.5.2.
type OpenSecureChannelResponse struct {
	ResponseHeader        ResponseHeader
	ServerProtocolVersion uint32
	SecurityToken         *ChannelSecurityToken
	ServerNonce           []byte
}

func (r *OpenSecureChannelResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// CloseSecureChannelRequest is Part 4, 5.5.3.
type CloseSecureChannelRequest struct {
	RequestHeader RequestHeader
}

func (r *CloseSecureChannelRequest) Header() *RequestHeader { return &r.RequestHeader }

// CloseSecureChannelResponse is Part 4, 5.5.3.
type CloseSecureChannelResponse struct {
	ResponseHeader ResponseHeader
}

func (r *CloseSecureChannelResponse) Header() *ResponseHeader { return &r.ResponseHeader }

func writeChannelSecurityToken(buf *bytes.Buffer, t *ChannelSecurityToken) {
	if t == nil {
		writeUint32(buf, 0)
		writeUint32(buf, 0)
		writeTime(buf, zeroTime)
		writeUint32(buf, 0)
		return
	}
	writeUint32(buf, t.ChannelID)
	writeUint32(buf, t.TokenID)
	writeInt64(buf, t.CreatedAt)
	writeUint32(buf, t.RevisedLifetime)
}

func readChannelSecurityToken(r *byteReader) (*ChannelSecurityToken, error) {
	t := &ChannelSecurityToken{}
	var err error
	if t.ChannelID, err = r.uint32(); err != nil {
		return nil, err
	}
	if t.TokenID, err = r.uint32(); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = r.int64(); err != nil {
		return nil, err
	}
	if t.RevisedLifetime, err = r.uint32(); err != nil {
		return nil, err
	}
	return t, nil
}

func init() {
	registerBuiltin(&funcDescriptor{
		id: id.OpenSecureChannelRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*OpenSecureChannelRequest)
			if !ok {
				return errWrongType("*OpenSecureChannelRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeUint32(buf, req.ClientProtocolVersion)
			writeUint32(buf, uint32(req.RequestType))
			writeUint32(buf, uint32(req.SecurityMode))
			writeBytes(buf, req.ClientNonce)
			writeUint32(buf, req.RequestedLifetime)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &OpenSecureChannelRequest{RequestHeader: *h}
			if req.ClientProtocolVersion, err = r.uint32(); err != nil {
				return nil, err
			}
			rt, err := r.uint32()
			if err != nil {
				return nil, err
			}
			req.RequestType = SecurityTokenRequestType(rt)
			sm, err := r.uint32()
			if err != nil {
				return nil, err
			}
			req.SecurityMode = MessageSecurityMode(sm)
			if req.ClientNonce, err = r.bytes(); err != nil {
				return nil, err
			}
			if req.RequestedLifetime, err = r.uint32(); err != nil {
				return nil, err
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.OpenSecureChannelResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*OpenSecureChannelResponse)
			if !ok {
				return errWrongType("*OpenSecureChannelResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeUint32(buf, res.ServerProtocolVersion)
			writeChannelSecurityToken(buf, res.SecurityToken)
			writeBytes(buf, res.ServerNonce)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &OpenSecureChannelResponse{ResponseHeader: *h}
			if res.ServerProtocolVersion, err = r.uint32(); err != nil {
				return nil, err
			}
			if res.SecurityToken, err = readChannelSecurityToken(r); err != nil {
				return nil, err
			}
			if res.ServerNonce, err = r.bytes(); err != nil {
				return nil, err
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.CloseSecureChannelRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*CloseSecureChannelRequest)
			if !ok {
				return errWrongType("*CloseSecureChannelRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			return &CloseSecureChannelRequest{RequestHeader: *h}, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.CloseSecureChannelResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*CloseSecureChannelResponse)
			if !ok {
				return errWrongType("*CloseSecureChannelResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			return &CloseSecureChannelResponse{ResponseHeader: *h}, nil
		},
	})
}
