// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"

	"github.com/imatic-tech/opcua/id"
)

// CreateSessionRequest is Part 4, 5.6.2.
type CreateSessionRequest struct {
	RequestHeader           RequestHeader
	ClientDescription       *ApplicationDescription
	EndpointURL             string
	SessionName             string
	ClientNonce             []byte
	ClientCertificate       []byte
	RequestedSessionTimeout float64
}

func (r *CreateSessionRequest) Header() *RequestHeader { return &r.RequestHeader }

// CreateSessionResponse is Part 4, 5.6.2.
type CreateSessionResponse struct {
	ResponseHeader        ResponseHeader
	SessionID             *NodeID
	AuthenticationToken    *NodeID
	RevisedSessionTimeout  float64
	ServerNonce            []byte
	ServerCertificate      []byte
	ServerEndpoints        []*EndpointDescription
	ServerSignature        *SignatureData
}

func (r *CreateSessionResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// ActivateSessionRequest is Part 4, 5.6.3.
type ActivateSessionRequest struct {
	RequestHeader      RequestHeader
	ClientSignature    *SignatureData
	LocaleIDs          []string
	UserIdentityToken  IdentityToken
	UserTokenSignature *SignatureData
}

func (r *ActivateSessionRequest) Header() *RequestHeader { return &r.RequestHeader }

// ActivateSessionResponse is Part 4, 5.6.3.
type ActivateSessionResponse struct {
	ResponseHeader ResponseHeader
	ServerNonce    []byte
}

func (r *ActivateSessionResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// CloseSessionRequest is Part 4, 5.6.4.
type CloseSessionRequest struct {
	RequestHeader       RequestHeader
	DeleteSubscriptions bool
}

func (r *CloseSessionRequest) Header() *RequestHeader { return &r.RequestHeader }

// CloseSessionResponse is Part 4, 5.6.4.
type CloseSessionResponse struct {
	ResponseHeader ResponseHeader
}

func (r *CloseSessionResponse) Header() *ResponseHeader { return &r.ResponseHeader }

func writeIdentityToken(buf *bytes.Buffer, tok IdentityToken) {
	switch t := tok.(type) {
	case *AnonymousIdentityToken:
		buf.WriteByte(byte(UserTokenTypeAnonymous))
		writeString(buf, t.PolicyID)
	case *UserNameIdentityToken:
		buf.WriteByte(byte(UserTokenTypeUserName))
		writeString(buf, t.PolicyID)
		writeString(buf, t.UserName)
		writeBytes(buf, t.Password)
		writeString(buf, t.EncryptionAlgorithm)
	default:
		buf.WriteByte(byte(UserTokenTypeAnonymous))
		writeString(buf, "")
	}
}

func readIdentityToken(r *byteReader) (IdentityToken, error) {
	if r.pos >= len(r.b) {
		return nil, errShortBuffer("identity token tag")
	}
	typ := UserTokenType(r.b[r.pos])
	r.pos++
	switch typ {
	case UserTokenTypeUserName:
		policy, err := r.string()
		if err != nil {
			return nil, err
		}
		user, err := r.string()
		if err != nil {
			return nil, err
		}
		pass, err := r.bytes()
		if err != nil {
			return nil, err
		}
		alg, err := r.string()
		if err != nil {
			return nil, err
		}
		return &UserNameIdentityToken{PolicyID: policy, UserName: user, Password: pass, EncryptionAlgorithm: alg}, nil
	default:
		policy, err := r.string()
		if err != nil {
			return nil, err
		}
		return &AnonymousIdentityToken{PolicyID: policy}, nil
	}
}

func init() {
	registerBuiltin(&funcDescriptor{
		id: id.CreateSessionRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*CreateSessionRequest)
			if !ok {
				return errWrongType("*CreateSessionRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeString(buf, req.EndpointURL)
			writeString(buf, req.SessionName)
			writeBytes(buf, req.ClientNonce)
			writeBytes(buf, req.ClientCertificate)
			writeFloat64(buf, req.RequestedSessionTimeout)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &CreateSessionRequest{RequestHeader: *h}
			if req.EndpointURL, err = r.string(); err != nil {
				return nil, err
			}
			if req.SessionName, err = r.string(); err != nil {
				return nil, err
			}
			if req.ClientNonce, err = r.bytes(); err != nil {
				return nil, err
			}
			if req.ClientCertificate, err = r.bytes(); err != nil {
				return nil, err
			}
			if req.RequestedSessionTimeout, err = r.float64(); err != nil {
				return nil, err
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.CreateSessionResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*CreateSessionResponse)
			if !ok {
				return errWrongType("*CreateSessionResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeNodeID(buf, res.SessionID)
			writeNodeID(buf, res.AuthenticationToken)
			writeFloat64(buf, res.RevisedSessionTimeout)
			writeBytes(buf, res.ServerNonce)
			writeBytes(buf, res.ServerCertificate)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &CreateSessionResponse{ResponseHeader: *h}
			if res.SessionID, err = r.nodeID(); err != nil {
				return nil, err
			}
			if res.AuthenticationToken, err = r.nodeID(); err != nil {
				return nil, err
			}
			if res.RevisedSessionTimeout, err = r.float64(); err != nil {
				return nil, err
			}
			if res.ServerNonce, err = r.bytes(); err != nil {
				return nil, err
			}
			if res.ServerCertificate, err = r.bytes(); err != nil {
				return nil, err
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.ActivateSessionRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*ActivateSessionRequest)
			if !ok {
				return errWrongType("*ActivateSessionRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeIdentityToken(buf, req.UserIdentityToken)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &ActivateSessionRequest{RequestHeader: *h}
			if req.UserIdentityToken, err = readIdentityToken(r); err != nil {
				return nil, err
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.ActivateSessionResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*ActivateSessionResponse)
			if !ok {
				return errWrongType("*ActivateSessionResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeBytes(buf, res.ServerNonce)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &ActivateSessionResponse{ResponseHeader: *h}
			if res.ServerNonce, err = r.bytes(); err != nil {
				return nil, err
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.CloseSessionRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*CloseSessionRequest)
			if !ok {
				return errWrongType("*CloseSessionRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			if req.DeleteSubscriptions {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &CloseSessionRequest{RequestHeader: *h}
			if r.pos < len(r.b) {
				req.DeleteSubscriptions = r.b[r.pos] != 0
				r.pos++
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.CloseSessionResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*CloseSessionResponse)
			if !ok {
				return errWrongType("*CloseSessionResponse", v)
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
			return &CloseSessionResponse{ResponseHeader: *h}, nil
		},
	})
}
