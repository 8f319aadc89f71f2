// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"

	"github.com/imatic-tech/opcua/internal/coreerr"
)

// The helpers below implement the OPC UA Binary primitive encodings
// (Part 6, 5.2) used by the handful of built-in message descriptors in
// this package: fixed-width integers are little-endian, strings are
// Int32-length-prefixed UTF-8 with -1 meaning "null". Full Part 6
// coverage (arrays of extension objects, diagnostic info, variants) is
// explicitly out of the core's scope (spec §1) and is left to whatever
// production codec an application plugs in through
// Configuration.CustomTypeDescriptors.

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeInt32(buf *bytes.Buffer, v int32) { writeUint32(buf, uint32(v)) }

func writeString(buf *bytes.Buffer, s string) {
	if s == "" {
		writeInt32(buf, -1)
		return
	}
	writeInt32(buf, int32(len(s)))
	buf.WriteString(s)
}

func writeFloat64(buf *bytes.Buffer, f float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(f))
	buf.Write(tmp[:])
}

func (r *byteReader) float64() (float64, error) {
	if r.pos+8 > len(r.b) {
		return 0, errShortBuffer("float64")
	}
	bits := binary.LittleEndian.Uint64(r.b[r.pos:])
	r.pos += 8
	return math.Float64frombits(bits), nil
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	if b == nil {
		writeInt32(buf, -1)
		return
	}
	writeInt32(buf, int32(len(b)))
	buf.Write(b)
}

func (r *byteReader) bytes() ([]byte, error) {
	n, err := r.int32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	if r.pos+int(n) > len(r.b) {
		return nil, errShortBuffer("byte string")
	}
	out := make([]byte, n)
	copy(out, r.b[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

func writeNodeID(buf *bytes.Buffer, n *NodeID) {
	if n == nil {
		writeInt32(buf, -1)
		writeUint32(buf, 0)
		writeUint32(buf, 0)
		writeString(buf, "")
		return
	}
	writeInt32(buf, int32(n.Type))
	writeUint32(buf, uint32(n.NamespaceIndex))
	writeUint32(buf, n.IntID)
	writeString(buf, n.StringID)
}

func (r *byteReader) nodeID() (*NodeID, error) {
	typ, err := r.int32()
	if err != nil {
		return nil, err
	}
	n := &NodeID{}
	ns, err := r.uint32()
	if err != nil {
		return nil, err
	}
	n.NamespaceIndex = uint16(ns)
	if n.IntID, err = r.uint32(); err != nil {
		return nil, err
	}
	if n.StringID, err = r.string(); err != nil {
		return nil, err
	}
	if typ < 0 {
		return nil, nil
	}
	n.Type = NodeIDType(typ)
	return n, nil
}

func writeNodeIDArray(buf *bytes.Buffer, ids []*NodeID) {
	writeInt32(buf, int32(len(ids)))
	for _, n := range ids {
		writeNodeID(buf, n)
	}
}

func (r *byteReader) nodeIDArray() ([]*NodeID, error) {
	n, err := r.int32()
	if err != nil || n <= 0 {
		return nil, err
	}
	out := make([]*NodeID, n)
	for i := range out {
		if out[i], err = r.nodeID(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeStatusCodeArray(buf *bytes.Buffer, codes []StatusCode) {
	writeInt32(buf, int32(len(codes)))
	for _, c := range codes {
		writeUint32(buf, uint32(c))
	}
}

func (r *byteReader) statusCodeArray() ([]StatusCode, error) {
	n, err := r.int32()
	if err != nil || n <= 0 {
		return nil, err
	}
	out := make([]StatusCode, n)
	for i := range out {
		v, err := r.uint32()
		if err != nil {
			return nil, err
		}
		out[i] = StatusCode(v)
	}
	return out, nil
}

func writeTime(buf *bytes.Buffer, t time.Time) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(t.UnixNano()))
	buf.Write(tmp[:])
}

var zeroTime time.Time

func writeInt64(buf *bytes.Buffer, v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	buf.Write(tmp[:])
}

func (r *byteReader) int64() (int64, error) {
	if r.pos+8 > len(r.b) {
		return 0, errShortBuffer("int64")
	}
	v := binary.LittleEndian.Uint64(r.b[r.pos:])
	r.pos += 8
	return int64(v), nil
}

type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) uint32() (uint32, error) {
	if r.pos+4 > len(r.b) {
		return 0, coreerr.Errorf("ua: short buffer reading uint32")
	}
	v := binary.LittleEndian.Uint32(r.b[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *byteReader) int32() (int32, error) {
	v, err := r.uint32()
	return int32(v), err
}

func errShortBuffer(what string) error {
	return coreerr.Errorf("ua: short buffer reading %s", what)
}

func (r *byteReader) string() (string, error) {
	n, err := r.int32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", nil
	}
	if r.pos+int(n) > len(r.b) {
		return "", coreerr.Errorf("ua: short buffer reading string")
	}
	s := string(r.b[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *byteReader) time() (time.Time, error) {
	if r.pos+8 > len(r.b) {
		return time.Time{}, coreerr.Errorf("ua: short buffer reading timestamp")
	}
	v := binary.LittleEndian.Uint64(r.b[r.pos:])
	r.pos += 8
	return time.Unix(0, int64(v)), nil
}

func writeRequestHeader(buf *bytes.Buffer, h *RequestHeader) {
	writeNodeID(buf, h.AuthenticationToken)
	writeTime(buf, h.Timestamp)
	writeUint32(buf, h.RequestHandle)
	writeUint32(buf, h.ReturnDiagnostics)
	writeString(buf, h.AuditEntryID)
	writeUint32(buf, h.TimeoutHint)
}

func readRequestHeader(r *byteReader) (*RequestHeader, error) {
	h := &RequestHeader{}
	var err error
	if h.AuthenticationToken, err = r.nodeID(); err != nil {
		return nil, err
	}
	if h.Timestamp, err = r.time(); err != nil {
		return nil, err
	}
	if h.RequestHandle, err = r.uint32(); err != nil {
		return nil, err
	}
	if h.ReturnDiagnostics, err = r.uint32(); err != nil {
		return nil, err
	}
	if h.AuditEntryID, err = r.string(); err != nil {
		return nil, err
	}
	if h.TimeoutHint, err = r.uint32(); err != nil {
		return nil, err
	}
	return h, nil
}

func writeResponseHeader(buf *bytes.Buffer, h *ResponseHeader) {
	writeTime(buf, h.Timestamp)
	writeUint32(buf, h.RequestHandle)
	writeUint32(buf, uint32(h.ServiceResult))
	writeInt32(buf, int32(len(h.StringTable)))
	for _, s := range h.StringTable {
		writeString(buf, s)
	}
}

func readResponseHeader(r *byteReader) (*ResponseHeader, error) {
	h := &ResponseHeader{}
	var err error
	if h.Timestamp, err = r.time(); err != nil {
		return nil, err
	}
	if h.RequestHandle, err = r.uint32(); err != nil {
		return nil, err
	}
	sc, err := r.uint32()
	if err != nil {
		return nil, err
	}
	h.ServiceResult = StatusCode(sc)
	n, err := r.int32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < n; i++ {
		s, err := r.string()
		if err != nil {
			return nil, err
		}
		h.StringTable = append(h.StringTable, s)
	}
	return h, nil
}
