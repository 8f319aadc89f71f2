// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"

	"github.com/imatic-tech/opcua/id"
)

// GetEndpointsRequest is Part 4, 5.4.4. Discovery services are issued
// over a transient SecureChannel without a Session (spec §4.5/§6).
type GetEndpointsRequest struct {
	RequestHeader RequestHeader
	EndpointURL   string
	LocaleIDs     []string
	ProfileURIs   []string
}

func (r *GetEndpointsRequest) Header() *RequestHeader { return &r.RequestHeader }

// GetEndpointsResponse is Part 4, 5.4.4.
type GetEndpointsResponse struct {
	ResponseHeader ResponseHeader
	Endpoints      []*EndpointDescription
}

func (r *GetEndpointsResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// FindServersRequest is Part 4, 5.4.2.
type FindServersRequest struct {
	RequestHeader  RequestHeader
	EndpointURL    string
	LocaleIDs      []string
	ServerURIs     []string
}

func (r *FindServersRequest) Header() *RequestHeader { return &r.RequestHeader }

// FindServersResponse is Part 4, 5.4.2.
type FindServersResponse struct {
	ResponseHeader ResponseHeader
	Servers        []*ApplicationDescription
}

func (r *FindServersResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// ServerOnNetwork is Part 12, 5.3.2.
type ServerOnNetwork struct {
	RecordID          uint32
	ServerName        string
	DiscoveryURL      string
	ServerCapabilities []string
}

// FindServersOnNetworkRequest is Part 4, 5.4.3 / Part 12, 5.3.2.
type FindServersOnNetworkRequest struct {
	RequestHeader       RequestHeader
	StartingRecordID    uint32
	MaxRecordsToReturn  uint32
	ServerCapabilityFilter []string
}

func (r *FindServersOnNetworkRequest) Header() *RequestHeader { return &r.RequestHeader }

// FindServersOnNetworkResponse is Part 4, 5.4.3.
type FindServersOnNetworkResponse struct {
	ResponseHeader ResponseHeader
	Servers        []*ServerOnNetwork
}

func (r *FindServersOnNetworkResponse) Header() *ResponseHeader { return &r.ResponseHeader }

func writeUserTokenPolicy(buf *bytes.Buffer, p *UserTokenPolicy) {
	writeString(buf, p.PolicyID)
	writeUint32(buf, uint32(p.TokenType))
	writeString(buf, p.IssuedTokenType)
	writeString(buf, p.IssuerEndpointURL)
	writeString(buf, p.SecurityPolicyURI)
}

func readUserTokenPolicy(r *byteReader) (*UserTokenPolicy, error) {
	p := &UserTokenPolicy{}
	var err error
	if p.PolicyID, err = r.string(); err != nil {
		return nil, err
	}
	tt, err := r.uint32()
	if err != nil {
		return nil, err
	}
	p.TokenType = UserTokenType(tt)
	if p.IssuedTokenType, err = r.string(); err != nil {
		return nil, err
	}
	if p.IssuerEndpointURL, err = r.string(); err != nil {
		return nil, err
	}
	if p.SecurityPolicyURI, err = r.string(); err != nil {
		return nil, err
	}
	return p, nil
}

func writeApplicationDescription(buf *bytes.Buffer, a *ApplicationDescription) {
	if a == nil {
		a = &ApplicationDescription{}
	}
	writeString(buf, a.ApplicationURI)
	writeString(buf, a.ProductURI)
	writeString(buf, a.ApplicationName)
	writeUint32(buf, a.ApplicationType)
	writeString(buf, a.DiscoveryProfileURI)
	writeInt32(buf, int32(len(a.DiscoveryURLs)))
	for _, u := range a.DiscoveryURLs {
		writeString(buf, u)
	}
}

func readApplicationDescription(r *byteReader) (*ApplicationDescription, error) {
	a := &ApplicationDescription{}
	var err error
	if a.ApplicationURI, err = r.string(); err != nil {
		return nil, err
	}
	if a.ProductURI, err = r.string(); err != nil {
		return nil, err
	}
	if a.ApplicationName, err = r.string(); err != nil {
		return nil, err
	}
	if a.ApplicationType, err = r.uint32(); err != nil {
		return nil, err
	}
	if a.DiscoveryProfileURI, err = r.string(); err != nil {
		return nil, err
	}
	n, err := r.int32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < n; i++ {
		u, err := r.string()
		if err != nil {
			return nil, err
		}
		a.DiscoveryURLs = append(a.DiscoveryURLs, u)
	}
	return a, nil
}

func writeEndpointDescription(buf *bytes.Buffer, e *EndpointDescription) {
	writeString(buf, e.EndpointURL)
	writeApplicationDescription(buf, e.Server)
	writeBytes(buf, e.ServerCertificate)
	writeUint32(buf, uint32(e.SecurityMode))
	writeString(buf, e.SecurityPolicyURI)
	writeInt32(buf, int32(len(e.UserIdentityTokens)))
	for _, t := range e.UserIdentityTokens {
		writeUserTokenPolicy(buf, t)
	}
	writeString(buf, e.TransportProfileURI)
	buf.WriteByte(e.SecurityLevel)
}

func readEndpointDescription(r *byteReader) (*EndpointDescription, error) {
	e := &EndpointDescription{}
	var err error
	if e.EndpointURL, err = r.string(); err != nil {
		return nil, err
	}
	if e.Server, err = readApplicationDescription(r); err != nil {
		return nil, err
	}
	if e.ServerCertificate, err = r.bytes(); err != nil {
		return nil, err
	}
	sm, err := r.uint32()
	if err != nil {
		return nil, err
	}
	e.SecurityMode = MessageSecurityMode(sm)
	if e.SecurityPolicyURI, err = r.string(); err != nil {
		return nil, err
	}
	n, err := r.int32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < n; i++ {
		t, err := readUserTokenPolicy(r)
		if err != nil {
			return nil, err
		}
		e.UserIdentityTokens = append(e.UserIdentityTokens, t)
	}
	if e.TransportProfileURI, err = r.string(); err != nil {
		return nil, err
	}
	if r.pos >= len(r.b) {
		return nil, errShortBuffer("SecurityLevel")
	}
	e.SecurityLevel = r.b[r.pos]
	r.pos++
	return e, nil
}

func init() {
	registerBuiltin(&funcDescriptor{
		id: id.GetEndpointsRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*GetEndpointsRequest)
			if !ok {
				return errWrongType("*GetEndpointsRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeString(buf, req.EndpointURL)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &GetEndpointsRequest{RequestHeader: *h}
			if req.EndpointURL, err = r.string(); err != nil {
				return nil, err
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.GetEndpointsResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*GetEndpointsResponse)
			if !ok {
				return errWrongType("*GetEndpointsResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeInt32(buf, int32(len(res.Endpoints)))
			for _, e := range res.Endpoints {
				writeEndpointDescription(buf, e)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &GetEndpointsResponse{ResponseHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				e, err := readEndpointDescription(r)
				if err != nil {
					return nil, err
				}
				res.Endpoints = append(res.Endpoints, e)
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.FindServersRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*FindServersRequest)
			if !ok {
				return errWrongType("*FindServersRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeString(buf, req.EndpointURL)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &FindServersRequest{RequestHeader: *h}
			if req.EndpointURL, err = r.string(); err != nil {
				return nil, err
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.FindServersResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*FindServersResponse)
			if !ok {
				return errWrongType("*FindServersResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeInt32(buf, int32(len(res.Servers)))
			for _, s := range res.Servers {
				writeApplicationDescription(buf, s)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &FindServersResponse{ResponseHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				s, err := readApplicationDescription(r)
				if err != nil {
					return nil, err
				}
				res.Servers = append(res.Servers, s)
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.FindServersOnNetworkRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*FindServersOnNetworkRequest)
			if !ok {
				return errWrongType("*FindServersOnNetworkRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeUint32(buf, req.StartingRecordID)
			writeUint32(buf, req.MaxRecordsToReturn)
			writeInt32(buf, int32(len(req.ServerCapabilityFilter)))
			for _, c := range req.ServerCapabilityFilter {
				writeString(buf, c)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &FindServersOnNetworkRequest{RequestHeader: *h}
			if req.StartingRecordID, err = r.uint32(); err != nil {
				return nil, err
			}
			if req.MaxRecordsToReturn, err = r.uint32(); err != nil {
				return nil, err
			}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				c, err := r.string()
				if err != nil {
					return nil, err
				}
				req.ServerCapabilityFilter = append(req.ServerCapabilityFilter, c)
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.FindServersOnNetworkResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*FindServersOnNetworkResponse)
			if !ok {
				return errWrongType("*FindServersOnNetworkResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeInt32(buf, int32(len(res.Servers)))
			for _, s := range res.Servers {
				writeUint32(buf, s.RecordID)
				writeString(buf, s.ServerName)
				writeString(buf, s.DiscoveryURL)
				writeInt32(buf, int32(len(s.ServerCapabilities)))
				for _, c := range s.ServerCapabilities {
					writeString(buf, c)
				}
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &FindServersOnNetworkResponse{ResponseHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				s := &ServerOnNetwork{}
				if s.RecordID, err = r.uint32(); err != nil {
					return nil, err
				}
				if s.ServerName, err = r.string(); err != nil {
					return nil, err
				}
				if s.DiscoveryURL, err = r.string(); err != nil {
					return nil, err
				}
				nc, err := r.int32()
				if err != nil {
					return nil, err
				}
				for j := int32(0); j < nc; j++ {
					c, err := r.string()
					if err != nil {
						return nil, err
					}
					s.ServerCapabilities = append(s.ServerCapabilities, c)
				}
				res.Servers = append(res.Servers, s)
			}
			return res, nil
		},
	})
}
