// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"

	"github.com/imatic-tech/opcua/id"
)

// BrowseDescription is Part 4, 7.5.
type BrowseDescription struct {
	NodeID          *NodeID
	BrowseDirection uint32
	ReferenceTypeID *NodeID
	IncludeSubtypes bool
	NodeClassMask   uint32
	ResultMask      uint32
}

// ReferenceDescription is Part 4, 7.31.
type ReferenceDescription struct {
	ReferenceTypeID *NodeID
	IsForward       bool
	NodeID          *NodeID
	DisplayName     string
	NodeClass       uint32
}

// BrowseResult is Part 4, 7.6.
type BrowseResult struct {
	StatusCode        StatusCode
	ContinuationPoint []byte
	References        []*ReferenceDescription
}

// BrowseRequest is Part 4, 5.8.2.
type BrowseRequest struct {
	RequestHeader                 RequestHeader
	RequestedMaxReferencesPerNode uint32
	NodesToBrowse                 []*BrowseDescription
}

func (r *BrowseRequest) Header() *RequestHeader { return &r.RequestHeader }

// BrowseResponse is Part 4, 5.8.2.
type BrowseResponse struct {
	ResponseHeader ResponseHeader
	Results        []*BrowseResult
}

func (r *BrowseResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// BrowseNextRequest is Part 4, 5.8.3.
type BrowseNextRequest struct {
	RequestHeader             RequestHeader
	ReleaseContinuationPoints bool
	ContinuationPoints        [][]byte
}

func (r *BrowseNextRequest) Header() *RequestHeader { return &r.RequestHeader }

// BrowseNextResponse is Part 4, 5.8.3.
type BrowseNextResponse struct {
	ResponseHeader ResponseHeader
	Results        []*BrowseResult
}

func (r *BrowseNextResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// CallMethodRequest is Part 4, 5.11.2.
type CallMethodRequest struct {
	ObjectID       *NodeID
	MethodID       *NodeID
	InputArguments []*Variant
}

// CallMethodResult is Part 4, 7.4.
type CallMethodResult struct {
	StatusCode            StatusCode
	InputArgumentResults  []StatusCode
	OutputArguments       []*Variant
}

// CallRequest is Part 4, 5.11.2.
type CallRequest struct {
	RequestHeader RequestHeader
	MethodsToCall []*CallMethodRequest
}

func (r *CallRequest) Header() *RequestHeader { return &r.RequestHeader }

// CallResponse is Part 4, 5.11.2.
type CallResponse struct {
	ResponseHeader ResponseHeader
	Results        []*CallMethodResult
}

func (r *CallResponse) Header() *ResponseHeader { return &r.ResponseHeader }

func writeBrowseResult(buf *bytes.Buffer, r *BrowseResult) {
	writeUint32(buf, uint32(r.StatusCode))
	writeBytes(buf, r.ContinuationPoint)
	writeInt32(buf, int32(len(r.References)))
	for _, ref := range r.References {
		writeNodeID(buf, ref.ReferenceTypeID)
		if ref.IsForward {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		writeNodeID(buf, ref.NodeID)
		writeString(buf, ref.DisplayName)
		writeUint32(buf, ref.NodeClass)
	}
}

func readBrowseResult(r *byteReader) (*BrowseResult, error) {
	sc, err := r.uint32()
	if err != nil {
		return nil, err
	}
	cp, err := r.bytes()
	if err != nil {
		return nil, err
	}
	br := &BrowseResult{StatusCode: StatusCode(sc), ContinuationPoint: cp}
	n, err := r.int32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < n; i++ {
		ref := &ReferenceDescription{}
		if ref.ReferenceTypeID, err = r.nodeID(); err != nil {
			return nil, err
		}
		if r.pos >= len(r.b) {
			return nil, errShortBuffer("reference IsForward")
		}
		ref.IsForward = r.b[r.pos] != 0
		r.pos++
		if ref.NodeID, err = r.nodeID(); err != nil {
			return nil, err
		}
		if ref.DisplayName, err = r.string(); err != nil {
			return nil, err
		}
		if ref.NodeClass, err = r.uint32(); err != nil {
			return nil, err
		}
		br.References = append(br.References, ref)
	}
	return br, nil
}

func init() {
	registerBuiltin(&funcDescriptor{
		id: id.BrowseRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*BrowseRequest)
			if !ok {
				return errWrongType("*BrowseRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeUint32(buf, req.RequestedMaxReferencesPerNode)
			writeInt32(buf, int32(len(req.NodesToBrowse)))
			for _, b := range req.NodesToBrowse {
				writeNodeID(buf, b.NodeID)
				writeUint32(buf, b.BrowseDirection)
				writeNodeID(buf, b.ReferenceTypeID)
				if b.IncludeSubtypes {
					buf.WriteByte(1)
				} else {
					buf.WriteByte(0)
				}
				writeUint32(buf, b.NodeClassMask)
				writeUint32(buf, b.ResultMask)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &BrowseRequest{RequestHeader: *h}
			if req.RequestedMaxReferencesPerNode, err = r.uint32(); err != nil {
				return nil, err
			}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				bd := &BrowseDescription{}
				if bd.NodeID, err = r.nodeID(); err != nil {
					return nil, err
				}
				if bd.BrowseDirection, err = r.uint32(); err != nil {
					return nil, err
				}
				if bd.ReferenceTypeID, err = r.nodeID(); err != nil {
					return nil, err
				}
				if r.pos >= len(r.b) {
					return nil, errShortBuffer("IncludeSubtypes")
				}
				bd.IncludeSubtypes = r.b[r.pos] != 0
				r.pos++
				if bd.NodeClassMask, err = r.uint32(); err != nil {
					return nil, err
				}
				if bd.ResultMask, err = r.uint32(); err != nil {
					return nil, err
				}
				req.NodesToBrowse = append(req.NodesToBrowse, bd)
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.BrowseResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*BrowseResponse)
			if !ok {
				return errWrongType("*BrowseResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeInt32(buf, int32(len(res.Results)))
			for _, r := range res.Results {
				writeBrowseResult(buf, r)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &BrowseResponse{ResponseHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				br, err := readBrowseResult(r)
				if err != nil {
					return nil, err
				}
				res.Results = append(res.Results, br)
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.BrowseNextRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*BrowseNextRequest)
			if !ok {
				return errWrongType("*BrowseNextRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			if req.ReleaseContinuationPoints {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
			writeInt32(buf, int32(len(req.ContinuationPoints)))
			for _, cp := range req.ContinuationPoints {
				writeBytes(buf, cp)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &BrowseNextRequest{RequestHeader: *h}
			if r.pos >= len(r.b) {
				return nil, errShortBuffer("ReleaseContinuationPoints")
			}
			req.ReleaseContinuationPoints = r.b[r.pos] != 0
			r.pos++
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				cp, err := r.bytes()
				if err != nil {
					return nil, err
				}
				req.ContinuationPoints = append(req.ContinuationPoints, cp)
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.BrowseNextResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*BrowseNextResponse)
			if !ok {
				return errWrongType("*BrowseNextResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeInt32(buf, int32(len(res.Results)))
			for _, r := range res.Results {
				writeBrowseResult(buf, r)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &BrowseNextResponse{ResponseHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				br, err := readBrowseResult(r)
				if err != nil {
					return nil, err
				}
				res.Results = append(res.Results, br)
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.CallRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*CallRequest)
			if !ok {
				return errWrongType("*CallRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeInt32(buf, int32(len(req.MethodsToCall)))
			for _, m := range req.MethodsToCall {
				writeNodeID(buf, m.ObjectID)
				writeNodeID(buf, m.MethodID)
				writeInt32(buf, int32(len(m.InputArguments)))
				for _, a := range m.InputArguments {
					encodeVariant(buf, a)
				}
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &CallRequest{RequestHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				m := &CallMethodRequest{}
				if m.ObjectID, err = r.nodeID(); err != nil {
					return nil, err
				}
				if m.MethodID, err = r.nodeID(); err != nil {
					return nil, err
				}
				na, err := r.int32()
				if err != nil {
					return nil, err
				}
				for j := int32(0); j < na; j++ {
					a, err := decodeVariant(r)
					if err != nil {
						return nil, err
					}
					m.InputArguments = append(m.InputArguments, a)
				}
				req.MethodsToCall = append(req.MethodsToCall, m)
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.CallResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*CallResponse)
			if !ok {
				return errWrongType("*CallResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeInt32(buf, int32(len(res.Results)))
			for _, res1 := range res.Results {
				writeUint32(buf, uint32(res1.StatusCode))
				writeStatusCodeArray(buf, res1.InputArgumentResults)
				writeInt32(buf, int32(len(res1.OutputArguments)))
				for _, a := range res1.OutputArguments {
					encodeVariant(buf, a)
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
			res := &CallResponse{ResponseHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				cr := &CallMethodResult{}
				sc, err := r.uint32()
				if err != nil {
					return nil, err
				}
				cr.StatusCode = StatusCode(sc)
				if cr.InputArgumentResults, err = r.statusCodeArray(); err != nil {
					return nil, err
				}
				no, err := r.int32()
				if err != nil {
					return nil, err
				}
				for j := int32(0); j < no; j++ {
					a, err := decodeVariant(r)
					if err != nil {
						return nil, err
					}
					cr.OutputArguments = append(cr.OutputArguments, a)
				}
				res.Results = append(res.Results, cr)
			}
			return res, nil
		},
	})
}
