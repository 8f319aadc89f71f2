// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package uasc

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/imatic-tech/opcua/id"
	"github.com/imatic-tech/opcua/internal/coreerr"
	"github.com/imatic-tech/opcua/uacp"
	"github.com/imatic-tech/opcua/ua"
)

// Channel is a SecureChannel (spec §3, §4.2): identified by
// (channelID, tokenID), holding a lifetime window and a monotonic
// per-channel request id counter. It owns the uacp.Connection
// exclusively and frames every outbound request, reassembling inbound
// chunks back into descriptor-decoded responses.
type Channel struct {
	conn        uacp.Connection
	localCfg    uacp.LocalConnectionConfig
	endpointURL string

	channelID uint32
	tokenID   uint32
	createdAt time.Time
	lifetime  time.Duration

	sequenceNumber uint32
	requestID      uint32 // atomic, spec §4.2: wraps to 1, never 0

	sets   map[uint32]*chunkSet // keyed by requestID, reassembly in flight
	custom []ua.TypeDescriptor  // spec §3 customTypeDescriptors, checked before the built-in table
}

// chunkSet accumulates intermediate ('C') chunks for a request until
// a final ('F') chunk arrives or an abort ('A') chunk discards it
// (spec §4.2 "Inbound chunk handling").
type chunkSet struct {
	typeID uint32
	body   bytes.Buffer
}

// Open dials endpointURL via factory, performs the HEL/ACK handshake,
// and returns an unopened Channel (no SecureChannel yet — call
// OpenSecureChannel next). Separated from OpenSecureChannel so a
// caller that only needs a transient channel for discovery can skip
// straight past HEL/ACK without opening a Session afterward.
func Open(factory uacp.ConnectionFactory, endpointURL string, localCfg uacp.LocalConnectionConfig, timeout time.Duration, custom ...ua.TypeDescriptor) (*Channel, error) {
	conn, err := factory(endpointURL, localCfg)
	if err != nil {
		return nil, coreerr.Wrap(err, "uasc: dial")
	}
	if _, err := uacp.Handshake(conn, endpointURL, localCfg, timeout); err != nil {
		conn.Close()
		return nil, coreerr.Wrap(err, "uasc: hel/ack handshake")
	}
	return &Channel{
		conn:        conn,
		localCfg:    localCfg,
		endpointURL: endpointURL,
		sets:        make(map[uint32]*chunkSet),
		custom:      custom,
	}, nil
}

// ChannelID and TokenID identify the currently installed secure
// channel (spec §3).
func (c *Channel) ChannelID() uint32 { return c.channelID }
func (c *Channel) TokenID() uint32   { return c.tokenID }
func (c *Channel) CreatedAt() time.Time { return c.createdAt }
func (c *Channel) Lifetime() time.Duration { return c.lifetime }

// NeedsRenewal reports whether now has reached the renewal threshold
// (spec §4.2: "renewed when now ≥ createdAt + 0.75 × lifetime").
func (c *Channel) NeedsRenewal(now time.Time) bool {
	if c.lifetime <= 0 {
		return false
	}
	threshold := c.createdAt.Add(time.Duration(float64(c.lifetime) * 0.75))
	return !now.Before(threshold)
}

// RenewInterval is the recommended repeated-callback period for
// driving renewal checks: min(lifetime/4, 60s) per spec §4.2.
func (c *Channel) RenewInterval() time.Duration {
	quarter := c.lifetime / 4
	if quarter <= 0 || quarter > 60*time.Second {
		return 60 * time.Second
	}
	return quarter
}

// nextRequestID allocates a monotonically increasing, never-zero
// request id (spec §3 SecureChannel, §4.2 "Request-id allocation").
func (c *Channel) nextRequestID() uint32 {
	for {
		v := atomic.AddUint32(&c.requestID, 1)
		if v != 0 {
			return v
		}
		// wrapped past the uint32 max straight to 0: skip it and
		// retry so 0 is never issued.
	}
}

func (c *Channel) nextSequenceNumber() uint32 {
	return atomic.AddUint32(&c.sequenceNumber, 1)
}

// OpenSecureChannel issues (requestType=Issue) or renews
// (requestType=Renew) the channel. On success it installs the new
// tokenID and lifetime window.
func (c *Channel) OpenSecureChannel(requestType ua.SecurityTokenRequestType, requestedLifetime time.Duration, timeout time.Duration) (*ua.OpenSecureChannelResponse, error) {
	req := &ua.OpenSecureChannelRequest{
		RequestHeader:         ua.RequestHeader{Timestamp: time.Now()},
		ClientProtocolVersion: 0,
		RequestType:           requestType,
		SecurityMode:          ua.MessageSecurityModeNone,
		ClientNonce:           nil,
		RequestedLifetime:     uint32(requestedLifetime / time.Millisecond),
	}

	descEnc, err := c.descriptorFor(id.OpenSecureChannelRequest_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	if err := descEnc.Encode(req, &body); err != nil {
		return nil, coreerr.Wrap(err, "uasc: encode OpenSecureChannelRequest")
	}

	reqID := c.nextRequestID()
	asymHdr := asymmetricSecurityHeader{SecurityPolicyURI: ua.SecurityPolicyURINone}
	var frame bytes.Buffer
	asymHdr.encode(&frame)
	sequenceHeader{SequenceNumber: c.nextSequenceNumber(), RequestID: reqID}.encode(&frame)
	putTypeID(&frame, id.OpenSecureChannelRequest_Encoding_DefaultBinary)
	frame.Write(body.Bytes())

	if err := c.conn.Send(uacp.EncodeChunk(uacp.MessageTypeOpenChannel, uacp.ChunkTypeFinal, frame.Bytes())); err != nil {
		return nil, err
	}

	rawFrame, err := c.conn.Receive(timeout)
	if err != nil {
		return nil, err
	}
	mt, ct, payload, err := uacp.DecodeChunk(rawFrame)
	if err != nil {
		return nil, err
	}
	if mt != uacp.MessageTypeOpenChannel || ct != uacp.ChunkTypeFinal {
		return nil, coreerr.Errorf("uasc: unexpected chunk during OpenSecureChannel (type=%q)", string(mt[:]))
	}
	r := &reader{b: payload}
	if _, err := decodeAsymmetricSecurityHeader(r); err != nil {
		return nil, err
	}
	if _, err := decodeSequenceHeader(r); err != nil {
		return nil, err
	}
	respTypeID, err := decodeTypeID(r)
	if err != nil {
		return nil, err
	}
	if respTypeID != id.OpenSecureChannelResponse_Encoding_DefaultBinary {
		return nil, coreerr.Errorf("uasc: unexpected response type id %d for OpenSecureChannel", respTypeID)
	}
	decoded, err := c.decodeBody(id.OpenSecureChannelResponse_Encoding_DefaultBinary, r.rest())
	if err != nil {
		return nil, err
	}
	res, ok := decoded.(*ua.OpenSecureChannelResponse)
	if !ok {
		return nil, coreerr.Errorf("uasc: decoded OpenSecureChannelResponse has wrong type")
	}
	if res.SecurityToken != nil {
		c.channelID = res.SecurityToken.ChannelID
		c.tokenID = res.SecurityToken.TokenID
		c.createdAt = time.Unix(0, res.SecurityToken.CreatedAt)
		c.lifetime = time.Duration(res.SecurityToken.RevisedLifetime) * time.Millisecond
	}
	return res, nil
}

// SendMessage frames req as an MSG chunk under the current symmetric
// security header and returns the request id assigned to it. Outbound
// requests are always sent as a single final chunk: splitting a body
// across the negotiated maxMessageSize/maxChunkCount is left for a
// production binary codec (spec §1 scope), since this core's built-in
// descriptors never produce bodies large enough to require it.
func (c *Channel) SendMessage(typeID uint32, req ua.Request) (uint32, error) {
	return c.send(uacp.MessageTypeMessage, typeID, req)
}

// send frames req as a single final chunk of message type mt under the
// symmetric security header. RequestHandle is set to the allocated
// request id before the body is encoded.
func (c *Channel) send(mt uacp.MessageType, typeID uint32, req ua.Request) (uint32, error) {
	descEnc, err := c.descriptorFor(typeID)
	if err != nil {
		return 0, err
	}
	reqID := c.nextRequestID()
	req.Header().RequestHandle = reqID

	var body bytes.Buffer
	if err := descEnc.Encode(req, &body); err != nil {
		return 0, coreerr.Wrap(err, "uasc: encode request body")
	}

	var frame bytes.Buffer
	symmetricSecurityHeader{ChannelID: c.channelID, TokenID: c.tokenID}.encode(&frame)
	sequenceHeader{SequenceNumber: c.nextSequenceNumber(), RequestID: reqID}.encode(&frame)
	putTypeID(&frame, typeID)
	frame.Write(body.Bytes())

	if err := c.conn.Send(uacp.EncodeChunk(mt, uacp.ChunkTypeFinal, frame.Bytes())); err != nil {
		return 0, err
	}
	return reqID, nil
}

// DecodedMessage is the result of reassembling one or more chunks into
// a complete, descriptor-decoded response (spec §4.2).
type DecodedMessage struct {
	RequestID uint32
	TypeID    uint32
	Value     interface{}
}

// AbortedRequest is returned by ProcessChunk when the peer sent an 'A'
// chunk type for RequestID, discarding a partially reassembled message.
// It names a single in-flight request (spec §4.2: "fails the pending
// entry with BadCommunicationError") and is deliberately distinct from
// every other error ProcessChunk returns, which indicate the channel
// itself is unusable.
type AbortedRequest struct {
	RequestID uint32
}

func (e *AbortedRequest) Error() string {
	return fmt.Sprintf("uasc: chunk set for request %d aborted by peer", e.RequestID)
}

// ProcessChunk feeds one raw frame (as returned by Connection.Receive
// or injected via Client.ProcessBinaryMessage) into the reassembler.
// It returns a non-nil *DecodedMessage only once the final chunk of a
// request completes; intermediate chunks return (nil, nil).
func (c *Channel) ProcessChunk(frame []byte) (*DecodedMessage, error) {
	mt, ct, payload, err := uacp.DecodeChunk(frame)
	if err != nil {
		return nil, err
	}
	if mt == uacp.MessageTypeError {
		em, derr := ua.DecodeErrorMessage(payload)
		if derr != nil {
			return nil, derr
		}
		return nil, coreerr.Errorf("uasc: server error %s: %s", em.Error, em.Reason)
	}

	r := &reader{b: payload}
	if mt == uacp.MessageTypeOpenChannel {
		if _, err := decodeAsymmetricSecurityHeader(r); err != nil {
			return nil, err
		}
	} else {
		if _, err := decodeSymmetricSecurityHeader(r); err != nil {
			return nil, err
		}
	}
	seqHdr, err := decodeSequenceHeader(r)
	if err != nil {
		return nil, err
	}

	if ct == uacp.ChunkTypeAbort {
		delete(c.sets, seqHdr.RequestID)
		return nil, &AbortedRequest{RequestID: seqHdr.RequestID}
	}

	typeID, err := decodeTypeID(r)
	if err != nil {
		return nil, err
	}

	set, ok := c.sets[seqHdr.RequestID]
	if !ok {
		set = &chunkSet{typeID: typeID}
		c.sets[seqHdr.RequestID] = set
	}
	set.body.Write(r.rest())

	if ct != uacp.ChunkTypeFinal {
		return nil, nil
	}
	delete(c.sets, seqHdr.RequestID)

	val, err := c.decodeBody(set.typeID, set.body.Bytes())
	if err != nil {
		return nil, err
	}
	return &DecodedMessage{RequestID: seqHdr.RequestID, TypeID: set.typeID, Value: val}, nil
}

// Receive blocks for one frame on the underlying connection and runs
// it through ProcessChunk.
func (c *Channel) Receive(timeout time.Duration) (*DecodedMessage, error) {
	frame, err := c.conn.Receive(timeout)
	if err != nil {
		return nil, err
	}
	return c.ProcessChunk(frame)
}

// CloseSecureChannel sends CloseSecureChannelRequest as a CLO chunk and
// closes the underlying connection. Matches spec §4.1 disconnect's
// "CloseSession → CloseSecureChannel → TCP close" step.
func (c *Channel) CloseSecureChannel() error {
	req := &ua.CloseSecureChannelRequest{RequestHeader: ua.RequestHeader{Timestamp: time.Now()}}
	if _, err := c.send(uacp.MessageTypeCloseChannel, id.CloseSecureChannelRequest_Encoding_DefaultBinary, req); err != nil {
		return err
	}
	return c.conn.Close()
}

// Abort tears down the connection without attempting a graceful
// CloseSecureChannel exchange (spec §4.1 close(): "best-effort").
func (c *Channel) Abort() error {
	return c.conn.Close()
}

func (c *Channel) descriptorFor(typeID uint32) (ua.TypeDescriptor, error) {
	d, ok := ua.Lookup(typeID, c.custom)
	if !ok {
		return nil, coreerr.Errorf("uasc: no descriptor registered for type id %d", typeID)
	}
	return d, nil
}

func (c *Channel) decodeBody(typeID uint32, b []byte) (interface{}, error) {
	d, err := c.descriptorFor(typeID)
	if err != nil {
		return nil, err
	}
	return d.Decode(b)
}
