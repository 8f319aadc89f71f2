// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package uasc implements the SecureChannel layer: message framing per
// OPC UA binary protocol, request-id allocation, chunk reassembly, and
// renewal scheduling (spec §4.2). It sits directly on top of uacp and
// below the request multiplexer.
package uasc

import (
	"bytes"
	"encoding/binary"

	"github.com/imatic-tech/opcua/internal/coreerr"
)

// sequenceHeader is Part 6, 6.7.2: every MSG/OPN/CLO chunk carries a
// monotonically increasing sequence number plus the request id it
// correlates to.
type sequenceHeader struct {
	SequenceNumber uint32
	RequestID      uint32
}

func (h sequenceHeader) encode(buf *bytes.Buffer) {
	putUint32(buf, h.SequenceNumber)
	putUint32(buf, h.RequestID)
}

func decodeSequenceHeader(r *reader) (sequenceHeader, error) {
	var h sequenceHeader
	var err error
	if h.SequenceNumber, err = r.uint32(); err != nil {
		return h, err
	}
	if h.RequestID, err = r.uint32(); err != nil {
		return h, err
	}
	return h, nil
}

// symmetricSecurityHeader prefixes MSG/CLO chunks (Part 6, 6.7.2.3):
// the channel and token ids identify which SecureChannel a message
// belongs to.
type symmetricSecurityHeader struct {
	ChannelID uint32
	TokenID   uint32
}

func (h symmetricSecurityHeader) encode(buf *bytes.Buffer) {
	putUint32(buf, h.ChannelID)
	putUint32(buf, h.TokenID)
}

func decodeSymmetricSecurityHeader(r *reader) (symmetricSecurityHeader, error) {
	var h symmetricSecurityHeader
	var err error
	if h.ChannelID, err = r.uint32(); err != nil {
		return h, err
	}
	if h.TokenID, err = r.uint32(); err != nil {
		return h, err
	}
	return h, nil
}

// asymmetricSecurityHeader prefixes OPN chunks (Part 6, 6.7.2.2).
// Under SecurityPolicy#None the certificate fields are always empty;
// the core carries the field shapes so a future security policy can
// populate them without changing the chunk layout.
type asymmetricSecurityHeader struct {
	SecurityPolicyURI            string
	SenderCertificate             []byte
	ReceiverCertificateThumbprint []byte
}

func (h asymmetricSecurityHeader) encode(buf *bytes.Buffer) {
	putString(buf, h.SecurityPolicyURI)
	putBytes(buf, h.SenderCertificate)
	putBytes(buf, h.ReceiverCertificateThumbprint)
}

func decodeAsymmetricSecurityHeader(r *reader) (asymmetricSecurityHeader, error) {
	var h asymmetricSecurityHeader
	var err error
	if h.SecurityPolicyURI, err = r.string(); err != nil {
		return h, err
	}
	if h.SenderCertificate, err = r.bytes(); err != nil {
		return h, err
	}
	if h.ReceiverCertificateThumbprint, err = r.bytes(); err != nil {
		return h, err
	}
	return h, nil
}

// typeID tags the body that follows a sequence header with the binary
// type id the descriptor table is keyed by (Part 6, 5.2.2.15
// ExpandedNodeId, collapsed to a namespace-0 numeric id since every
// built-in descriptor lives in namespace 0).
func putTypeID(buf *bytes.Buffer, id uint32) { putUint32(buf, id) }

func decodeTypeID(r *reader) (uint32, error) { return r.uint32() }

// --- primitive codec, duplicated from ua's unexported byteReader so
// this package has no dependency on ua's internal layout; it only
// needs to speak the handful of primitives chunk headers use. ---

func putUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func putString(buf *bytes.Buffer, s string) {
	if s == "" {
		putUint32(buf, 0xFFFFFFFF)
		return
	}
	putUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func putBytes(buf *bytes.Buffer, b []byte) {
	if b == nil {
		putUint32(buf, 0xFFFFFFFF)
		return
	}
	putUint32(buf, uint32(len(b)))
	buf.Write(b)
}

type reader struct {
	b   []byte
	pos int
}

func (r *reader) uint32() (uint32, error) {
	if r.pos+4 > len(r.b) {
		return 0, coreerr.Errorf("uasc: short buffer reading uint32")
	}
	v := binary.LittleEndian.Uint32(r.b[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) int32() (int32, error) {
	v, err := r.uint32()
	return int32(v), err
}

func (r *reader) string() (string, error) {
	n, err := r.int32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", nil
	}
	if r.pos+int(n) > len(r.b) {
		return "", coreerr.Errorf("uasc: short buffer reading string")
	}
	s := string(r.b[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.int32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	if r.pos+int(n) > len(r.b) {
		return nil, coreerr.Errorf("uasc: short buffer reading bytes")
	}
	out := make([]byte, n)
	copy(out, r.b[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

func (r *reader) rest() []byte { return r.b[r.pos:] }
