// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"

	"github.com/imatic-tech/opcua/id"
)

// RegisterNodesRequest is Part 4, 5.8.5.
type RegisterNodesRequest struct {
	RequestHeader    RequestHeader
	NodesToRegister []*NodeID
}

func (r *RegisterNodesRequest) Header() *RequestHeader { return &r.RequestHeader }

// RegisterNodesResponse is Part 4, 5.8.5.
type RegisterNodesResponse struct {
	ResponseHeader    ResponseHeader
	RegisteredNodeIDs []*NodeID
}

func (r *RegisterNodesResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// UnregisterNodesRequest is Part 4, 5.8.6.
type UnregisterNodesRequest struct {
	RequestHeader      RequestHeader
	NodesToUnregister []*NodeID
}

func (r *UnregisterNodesRequest) Header() *RequestHeader { return &r.RequestHeader }

// UnregisterNodesResponse is Part 4, 5.8.6.
type UnregisterNodesResponse struct {
	ResponseHeader ResponseHeader
}

func (r *UnregisterNodesResponse) Header() *ResponseHeader { return &r.ResponseHeader }

func init() {
	registerBuiltin(&funcDescriptor{
		id: id.RegisterNodesRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*RegisterNodesRequest)
			if !ok {
				return errWrongType("*RegisterNodesRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeNodeIDArray(buf, req.NodesToRegister)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &RegisterNodesRequest{RequestHeader: *h}
			if req.NodesToRegister, err = r.nodeIDArray(); err != nil {
				return nil, err
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.RegisterNodesResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*RegisterNodesResponse)
			if !ok {
				return errWrongType("*RegisterNodesResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeNodeIDArray(buf, res.RegisteredNodeIDs)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &RegisterNodesResponse{ResponseHeader: *h}
			if res.RegisteredNodeIDs, err = r.nodeIDArray(); err != nil {
				return nil, err
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.UnregisterNodesRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*UnregisterNodesRequest)
			if !ok {
				return errWrongType("*UnregisterNodesRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeNodeIDArray(buf, req.NodesToUnregister)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &UnregisterNodesRequest{RequestHeader: *h}
			if req.NodesToUnregister, err = r.nodeIDArray(); err != nil {
				return nil, err
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.UnregisterNodesResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*UnregisterNodesResponse)
			if !ok {
				return errWrongType("*UnregisterNodesResponse", v)
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
			return &UnregisterNodesResponse{ResponseHeader: *h}, nil
		},
	})
}
