// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"

	"github.com/imatic-tech/opcua/id"
)

// AttributeID is Part 4, Table 1. Only Value is needed by the core's
// reference codec; the rest of the catalog lives with whatever
// production codec an application plugs in.
const AttributeIDValue uint32 = 13

// TimestampsToReturn is Part 4, 7.40.
const (
	TimestampsToReturnSource TimestampsToReturn = iota
	TimestampsToReturnServer
	TimestampsToReturnBoth
	TimestampsToReturnNeither
)

type TimestampsToReturn uint32

// QualifiedName is Part 3, 8.3.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

// DataValue is Part 4, 7.8. EncodingMask bit 0 indicates Value is set;
// the core's reference codec always treats it as set when non-nil.
const DataValueValue byte = 0x01

type DataValue struct {
	EncodingMask    byte
	Value           *Variant
	StatusCode      StatusCode
}

// ReadValueID is Part 4, 7.28.
type ReadValueID struct {
	NodeID       *NodeID
	AttributeID  uint32
	IndexRange   string
	DataEncoding *QualifiedName
}

// ReadRequest is Part 4, 5.10.2.
type ReadRequest struct {
	RequestHeader      RequestHeader
	MaxAge             float64
	TimestampsToReturn TimestampsToReturn
	NodesToRead        []*ReadValueID
}

func (r *ReadRequest) Header() *RequestHeader { return &r.RequestHeader }

// ReadResponse is Part 4, 5.10.2.
type ReadResponse struct {
	ResponseHeader ResponseHeader
	Results        []*DataValue
}

func (r *ReadResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// WriteValue is Part 4, 7.41.
type WriteValue struct {
	NodeID      *NodeID
	AttributeID uint32
	IndexRange  string
	Value       *DataValue
}

// WriteRequest is Part 4, 5.10.4.
type WriteRequest struct {
	RequestHeader RequestHeader
	NodesToWrite  []*WriteValue
}

func (r *WriteRequest) Header() *RequestHeader { return &r.RequestHeader }

// WriteResponse is Part 4, 5.10.4.
type WriteResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *WriteResponse) Header() *ResponseHeader { return &r.ResponseHeader }

func writeDataValue(buf *bytes.Buffer, v *DataValue) {
	if v == nil {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(v.EncodingMask)
	encodeVariant(buf, v.Value)
	writeUint32(buf, uint32(v.StatusCode))
}

func readDataValue(r *byteReader) (*DataValue, error) {
	if r.pos >= len(r.b) {
		return nil, errShortBuffer("data value mask")
	}
	mask := r.b[r.pos]
	r.pos++
	v, err := decodeVariant(r)
	if err != nil {
		return nil, err
	}
	sc, err := r.uint32()
	if err != nil {
		return nil, err
	}
	return &DataValue{EncodingMask: mask, Value: v, StatusCode: StatusCode(sc)}, nil
}

func init() {
	registerBuiltin(&funcDescriptor{
		id: id.ReadRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*ReadRequest)
			if !ok {
				return errWrongType("*ReadRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeFloat64(buf, req.MaxAge)
			writeUint32(buf, uint32(req.TimestampsToReturn))
			writeInt32(buf, int32(len(req.NodesToRead)))
			for _, rv := range req.NodesToRead {
				writeNodeID(buf, rv.NodeID)
				writeUint32(buf, rv.AttributeID)
				writeString(buf, rv.IndexRange)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &ReadRequest{RequestHeader: *h}
			if req.MaxAge, err = r.float64(); err != nil {
				return nil, err
			}
			ts, err := r.uint32()
			if err != nil {
				return nil, err
			}
			req.TimestampsToReturn = TimestampsToReturn(ts)
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				rv := &ReadValueID{}
				if rv.NodeID, err = r.nodeID(); err != nil {
					return nil, err
				}
				if rv.AttributeID, err = r.uint32(); err != nil {
					return nil, err
				}
				if rv.IndexRange, err = r.string(); err != nil {
					return nil, err
				}
				req.NodesToRead = append(req.NodesToRead, rv)
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.ReadResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*ReadResponse)
			if !ok {
				return errWrongType("*ReadResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeInt32(buf, int32(len(res.Results)))
			for _, dv := range res.Results {
				writeDataValue(buf, dv)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &ReadResponse{ResponseHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				dv, err := readDataValue(r)
				if err != nil {
					return nil, err
				}
				res.Results = append(res.Results, dv)
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.WriteRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*WriteRequest)
			if !ok {
				return errWrongType("*WriteRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeInt32(buf, int32(len(req.NodesToWrite)))
			for _, wv := range req.NodesToWrite {
				writeNodeID(buf, wv.NodeID)
				writeUint32(buf, wv.AttributeID)
				writeString(buf, wv.IndexRange)
				writeDataValue(buf, wv.Value)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &WriteRequest{RequestHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				wv := &WriteValue{}
				if wv.NodeID, err = r.nodeID(); err != nil {
					return nil, err
				}
				if wv.AttributeID, err = r.uint32(); err != nil {
					return nil, err
				}
				if wv.IndexRange, err = r.string(); err != nil {
					return nil, err
				}
				if wv.Value, err = readDataValue(r); err != nil {
					return nil, err
				}
				req.NodesToWrite = append(req.NodesToWrite, wv)
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.WriteResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*WriteResponse)
			if !ok {
				return errWrongType("*WriteResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeStatusCodeArray(buf, res.Results)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &WriteResponse{ResponseHeader: *h}
			if res.Results, err = r.statusCodeArray(); err != nil {
				return nil, err
			}
			return res, nil
		},
	})
}
