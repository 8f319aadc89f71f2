// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua_test

import (
	"bytes"
	"encoding/binary"
	"sync/atomic"
	"testing"
	"time"

	"github.com/imatic-tech/opcua"
	"github.com/imatic-tech/opcua/id"
	"github.com/imatic-tech/opcua/ua"
	"github.com/imatic-tech/opcua/uacp"
)

// pipeConn is an in-memory uacp.Connection: everything Send writes
// lands on toServer, everything the fake server produces is read back
// through Receive via toClient.
type pipeConn struct {
	toServer chan []byte
	toClient chan []byte
}

func newPipeConn() *pipeConn {
	return &pipeConn{toServer: make(chan []byte, 16), toClient: make(chan []byte, 16)}
}

func (p *pipeConn) Send(b []byte) error {
	cp := append([]byte(nil), b...)
	p.toServer <- cp
	return nil
}

func (p *pipeConn) Receive(timeout time.Duration) ([]byte, error) {
	select {
	case b, ok := <-p.toClient:
		if !ok {
			return nil, uacp.ErrClosed
		}
		return b, nil
	case <-time.After(timeout):
		return nil, uacp.ErrTimeout
	}
}

func (p *pipeConn) Close() error {
	return nil
}

// --- minimal standalone primitive reader, mirroring uasc's own
// duplicated codec: test harness code speaks the wire format without
// reaching into the package's unexported helpers. ---

func beUint32(b []byte, pos int) (uint32, int) {
	return binary.LittleEndian.Uint32(b[pos : pos+4]), pos + 4
}

func readString(b []byte, pos int) (string, int) {
	n, pos := beUint32(b, pos)
	if n == 0xFFFFFFFF {
		return "", pos
	}
	return string(b[pos : pos+int(n)]), pos + int(n)
}

func readBytes(b []byte, pos int) ([]byte, int) {
	n, pos := beUint32(b, pos)
	if n == 0xFFFFFFFF {
		return nil, pos
	}
	return b[pos : pos+int(n)], pos + int(n)
}

// fakeServer answers HEL/OPN automatically and dispatches every MSG
// request to a per-type-id handler the test supplies.
type fakeServer struct {
	conn      *pipeConn
	channelID uint32
	tokenID   uint32
	lifetime  time.Duration
	seq       uint32
	handlers  map[uint32]func(req ua.Request) (respTypeID uint32, resp ua.Response)
}

func newFakeServer(channelID, tokenID uint32, lifetime time.Duration) (*fakeServer, uacp.ConnectionFactory) {
	conn := newPipeConn()
	s := &fakeServer{
		conn:      conn,
		channelID: channelID,
		tokenID:   tokenID,
		lifetime:  lifetime,
		handlers:  make(map[uint32]func(ua.Request) (uint32, ua.Response)),
	}
	factory := func(_ string, _ uacp.LocalConnectionConfig) (uacp.Connection, error) {
		return conn, nil
	}
	return s, factory
}

func (s *fakeServer) on(reqTypeID uint32, h func(ua.Request) (uint32, ua.Response)) {
	s.handlers[reqTypeID] = h
}

func (s *fakeServer) nextSeq() uint32 {
	s.seq++
	return s.seq
}

// run drives the fake server until stop is closed. Every frame is
// handled synchronously and in order, matching the single in-flight
// request the Client's cooperative event loop ever produces per
// callSync invocation.
func (s *fakeServer) run(t *testing.T, stop <-chan struct{}) {
	t.Helper()
	for {
		select {
		case <-stop:
			return
		case frame := <-s.conn.toServer:
			s.handleFrame(t, frame)
		}
	}
}

func (s *fakeServer) handleFrame(t *testing.T, frame []byte) {
	t.Helper()
	mt, _, body, err := uacp.DecodeChunk(frame)
	if err != nil {
		t.Errorf("fake server: decode chunk: %v", err)
		return
	}
	switch mt {
	case uacp.MessageTypeHello:
		ack := &ua.Acknowledge{Version: 0, ReceiveBufSize: 65536, SendBufSize: 65536, MaxMessageSize: 1 << 20, MaxChunkCount: 1}
		s.conn.toClient <- uacp.EncodeChunk(uacp.MessageTypeAcknowledge, uacp.ChunkTypeFinal, ack.Encode())

	case uacp.MessageTypeOpenChannel:
		s.handleOpen(t, body)

	case uacp.MessageTypeMessage:
		s.handleMessage(t, body)

	case uacp.MessageTypeCloseChannel:
		// no reply expected: the Channel closes its connection right
		// after sending CLO.

	default:
		t.Errorf("fake server: unexpected message type %q", mt)
	}
}

func (s *fakeServer) handleOpen(t *testing.T, payload []byte) {
	t.Helper()
	pos := 0
	_, pos = readString(payload, pos) // SecurityPolicyURI
	_, pos = readBytes(payload, pos)  // SenderCertificate
	_, pos = readBytes(payload, pos)  // ReceiverCertificateThumbprint
	_, pos = beUint32(payload, pos)   // sequence number
	reqID, pos := beUint32(payload, pos)
	typeID, pos := beUint32(payload, pos)

	d, ok := ua.Lookup(typeID, nil)
	if !ok {
		t.Fatalf("fake server: no descriptor for OPN type id %d", typeID)
	}
	decoded, err := d.Decode(payload[pos:])
	if err != nil {
		t.Fatalf("fake server: decode OpenSecureChannelRequest: %v", err)
	}
	req, ok := decoded.(*ua.OpenSecureChannelRequest)
	if !ok {
		t.Fatalf("fake server: OPN body has wrong type %T", decoded)
	}

	res := &ua.OpenSecureChannelResponse{
		ResponseHeader: ua.ResponseHeader{RequestHandle: req.RequestHeader.RequestHandle, ServiceResult: ua.StatusOK},
		SecurityToken: &ua.ChannelSecurityToken{
			ChannelID:       s.channelID,
			TokenID:         s.tokenID,
			CreatedAt:       time.Now().UnixNano(),
			RevisedLifetime: uint32(s.lifetime / time.Millisecond),
		},
	}
	respDesc, _ := ua.Lookup(id.OpenSecureChannelResponse_Encoding_DefaultBinary, nil)
	s.conn.toClient <- s.frameOPN(respDesc, res, reqID)
}

func (s *fakeServer) frameOPN(d ua.TypeDescriptor, res *ua.OpenSecureChannelResponse, reqID uint32) []byte {
	var out []byte
	out = append(out, leUint32(0xFFFFFFFF)...) // empty SecurityPolicyURI
	out = append(out, leUint32(0xFFFFFFFF)...) // nil SenderCertificate
	out = append(out, leUint32(0xFFFFFFFF)...) // nil ReceiverCertificateThumbprint
	out = append(out, leUint32(s.nextSeq())...)
	out = append(out, leUint32(reqID)...)
	out = append(out, leUint32(id.OpenSecureChannelResponse_Encoding_DefaultBinary)...)

	var buf bytes.Buffer
	if err := d.Encode(res, &buf); err != nil {
		panic(err)
	}
	out = append(out, buf.Bytes()...)
	return uacp.EncodeChunk(uacp.MessageTypeOpenChannel, uacp.ChunkTypeFinal, out)
}

func (s *fakeServer) handleMessage(t *testing.T, payload []byte) {
	t.Helper()
	pos := 0
	_, pos = beUint32(payload, pos) // channel id
	_, pos = beUint32(payload, pos) // token id
	_, pos = beUint32(payload, pos) // sequence number
	reqID, pos := beUint32(payload, pos)
	typeID, pos := beUint32(payload, pos)

	d, ok := ua.Lookup(typeID, nil)
	if !ok {
		t.Fatalf("fake server: no descriptor for MSG type id %d", typeID)
	}
	decoded, err := d.Decode(payload[pos:])
	if err != nil {
		t.Fatalf("fake server: decode request body: %v", err)
	}
	req, ok := decoded.(ua.Request)
	if !ok {
		t.Fatalf("fake server: decoded body %T is not a ua.Request", decoded)
	}

	if typeID == id.CloseSecureChannelRequest_Encoding_DefaultBinary {
		// fire-and-forget: the Channel sends this and closes its
		// connection without waiting for a reply.
		return
	}

	h, ok := s.handlers[typeID]
	if !ok {
		t.Fatalf("fake server: no handler registered for request type id %d", typeID)
	}
	respTypeID, resp := h(req)
	resp.Header().RequestHandle = req.Header().RequestHandle

	respDesc, ok := ua.Lookup(respTypeID, nil)
	if !ok {
		t.Fatalf("fake server: no descriptor for response type id %d", respTypeID)
	}
	var buf bytes.Buffer
	if err := respDesc.Encode(resp, &buf); err != nil {
		t.Fatalf("fake server: encode response: %v", err)
	}

	var out []byte
	out = append(out, leUint32(s.channelID)...)
	out = append(out, leUint32(s.tokenID)...)
	out = append(out, leUint32(s.nextSeq())...)
	out = append(out, leUint32(reqID)...)
	out = append(out, leUint32(respTypeID)...)
	out = append(out, buf.Bytes()...)

	s.conn.toClient <- uacp.EncodeChunk(uacp.MessageTypeMessage, uacp.ChunkTypeFinal, out)
}

func leUint32(v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return tmp[:]
}

// newTestServer wires a fakeServer with handlers for the three calls
// every Connect makes after OpenSecureChannel: GetEndpoints (anonymous
// policy resolution), CreateSession, ActivateSession.
func newTestServer() (*fakeServer, uacp.ConnectionFactory) {
	s, factory := newFakeServer(1, 1, time.Hour)

	s.on(id.GetEndpointsRequest_Encoding_DefaultBinary, func(ua.Request) (uint32, ua.Response) {
		return id.GetEndpointsResponse_Encoding_DefaultBinary, &ua.GetEndpointsResponse{
			ResponseHeader: ua.ResponseHeader{ServiceResult: ua.StatusOK},
		}
	})
	s.on(id.CreateSessionRequest_Encoding_DefaultBinary, func(ua.Request) (uint32, ua.Response) {
		return id.CreateSessionResponse_Encoding_DefaultBinary, &ua.CreateSessionResponse{
			ResponseHeader:        ua.ResponseHeader{ServiceResult: ua.StatusOK},
			SessionID:             ua.NewNumericNodeID(0, 1),
			AuthenticationToken:   ua.NewNumericNodeID(0, 2),
			RevisedSessionTimeout: 60000,
		}
	})
	s.on(id.ActivateSessionRequest_Encoding_DefaultBinary, func(ua.Request) (uint32, ua.Response) {
		return id.ActivateSessionResponse_Encoding_DefaultBinary, &ua.ActivateSessionResponse{
			ResponseHeader: ua.ResponseHeader{ServiceResult: ua.StatusOK},
		}
	})
	s.on(id.CloseSessionRequest_Encoding_DefaultBinary, func(ua.Request) (uint32, ua.Response) {
		return id.CloseSessionResponse_Encoding_DefaultBinary, &ua.CloseSessionResponse{
			ResponseHeader: ua.ResponseHeader{ServiceResult: ua.StatusOK},
		}
	})
	return s, factory
}

// TestConnectReadDisconnect drives the full Disconnected -> Connected
// -> SecureChannel -> Session progression against a scripted fake
// server, issues one synchronous Read, then disconnects cleanly.
func TestConnectReadDisconnect(t *testing.T) {
	srv, factory := newTestServer()
	stop := make(chan struct{})
	go srv.run(t, stop)
	defer close(stop)

	wantNodeID := ua.NewNumericNodeID(2, 1001)
	srv.on(id.ReadRequest_Encoding_DefaultBinary, func(req ua.Request) (uint32, ua.Response) {
		rr, ok := req.(*ua.ReadRequest)
		if !ok {
			t.Fatalf("fake server: Read handler got %T", req)
		}
		if len(rr.NodesToRead) != 1 || rr.NodesToRead[0].NodeID.String() != wantNodeID.String() {
			t.Errorf("Read request carried unexpected NodesToRead: %+v", rr.NodesToRead)
		}
		return id.ReadResponse_Encoding_DefaultBinary, &ua.ReadResponse{
			ResponseHeader: ua.ResponseHeader{ServiceResult: ua.StatusOK},
			Results: []*ua.DataValue{
				{StatusCode: ua.StatusOK, Value: ua.MustVariant(int32(42))},
			},
		}
	})

	c := opcua.New("opc.tcp://fake/endpoint", opcua.WithConnectionFactory(factory))
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := c.GetState(); got != opcua.Session {
		t.Fatalf("GetState after Connect = %v, want Session", got)
	}

	resp, err := c.Read(&ua.ReadRequest{NodesToRead: []*ua.ReadValueID{{NodeID: wantNodeID, AttributeID: ua.AttributeIDValue}}})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].StatusCode != ua.StatusOK {
		t.Fatalf("Read result = %+v, want one StatusOK result", resp.Results)
	}
	if got, want := resp.Results[0].Value.Value, int32(42); got != want {
		t.Fatalf("Read value = %v, want %v", got, want)
	}

	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if got := c.GetState(); got != opcua.Disconnected {
		t.Fatalf("GetState after Disconnect = %v, want Disconnected", got)
	}
}

// TestCallFailsAfterConnectionLoss verifies that a synchronous call
// that never gets an answer because the transport disappeared surfaces
// BadSecureChannelClosed instead of hanging (spec §4.3 failAll /
// channel-loss semantics).
func TestCallFailsAfterConnectionLoss(t *testing.T) {
	srv, factory := newTestServer()
	stop := make(chan struct{})
	go srv.run(t, stop)

	c := opcua.New("opc.tcp://fake/endpoint", opcua.WithConnectionFactory(factory))
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	close(stop)
	close(srv.conn.toClient)

	resp, err := c.Browse(&ua.BrowseRequest{NodesToBrowse: []*ua.BrowseDescription{{NodeID: ua.NewNumericNodeID(0, 85)}}})
	if err != nil {
		t.Fatalf("Browse after connection loss returned a transport error instead of a manufactured response: %v", err)
	}
	if resp.ResponseHeader.ServiceResult != ua.StatusBadSecureChannelClosed {
		t.Fatalf("Browse after connection loss ServiceResult = %v, want BadSecureChannelClosed", resp.ResponseHeader.ServiceResult)
	}
	if got := c.GetState(); got != opcua.Disconnected {
		t.Fatalf("GetState after connection loss = %v, want Disconnected", got)
	}
}

// TestRepeatedCallbackFiresWithoutDrift exercises the timer scheduler
// through the public AddRepeatedCallback surface on a Disconnected
// client: RunIterate still advances timers even with no transport attached.
func TestRepeatedCallbackFiresWithoutDrift(t *testing.T) {
	c := opcua.New("opc.tcp://fake/endpoint")

	var fires int
	cbID, err := c.AddRepeatedCallback(5*time.Millisecond, func() { fires++ })
	if err != nil {
		t.Fatalf("AddRepeatedCallback: %v", err)
	}
	defer c.RemoveRepeatedCallback(cbID)

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) && fires < 10 {
		if _, err := c.RunIterate(); err != nil {
			t.Fatalf("RunIterate: %v", err)
		}
	}
	if fires < 10 {
		t.Fatalf("repeated callback fired %d times in 200ms, want at least 10", fires)
	}
}

// TestAddRepeatedCallbackBelowMinimumIntervalIsBadInvalidArgument pins
// down spec §8's literal boundary behavior: addRepeatedCallback with
// interval=4ms must fail with exactly BadInvalidArgument, not some
// internal diagnostic error wearing a pkg/errors wrapper.
func TestAddRepeatedCallbackBelowMinimumIntervalIsBadInvalidArgument(t *testing.T) {
	c := opcua.New("opc.tcp://fake/endpoint")
	if _, err := c.AddRepeatedCallback(4*time.Millisecond, func() {}); err != ua.StatusBadInvalidArgument {
		t.Fatalf("AddRepeatedCallback(4ms) error = %v, want BadInvalidArgument", err)
	}
}

func TestChangeRepeatedCallbackIntervalBelowMinimumIsBadInvalidArgument(t *testing.T) {
	c := opcua.New("opc.tcp://fake/endpoint")
	cbID, err := c.AddRepeatedCallback(5*time.Millisecond, func() {})
	if err != nil {
		t.Fatalf("AddRepeatedCallback: %v", err)
	}
	defer c.RemoveRepeatedCallback(cbID)

	if err := c.ChangeRepeatedCallbackInterval(cbID, 4*time.Millisecond); err != ua.StatusBadInvalidArgument {
		t.Fatalf("ChangeRepeatedCallbackInterval(4ms) error = %v, want BadInvalidArgument", err)
	}
}

// TestAsyncCallRejectedAtCapacityNeverReachesWire pins down spec §4.3's
// back-pressure requirement: a dispatch that would exceed
// MaxPendingRequests must be rejected with BadTooManyOperations before
// anything is written to the wire, not merely before the response is
// accepted.
func TestAsyncCallRejectedAtCapacityNeverReachesWire(t *testing.T) {
	srv, factory := newTestServer()
	stop := make(chan struct{})
	go srv.run(t, stop)
	defer close(stop)

	var readCount int32
	srv.on(id.ReadRequest_Encoding_DefaultBinary, func(ua.Request) (uint32, ua.Response) {
		atomic.AddInt32(&readCount, 1)
		return id.ReadResponse_Encoding_DefaultBinary, &ua.ReadResponse{
			ResponseHeader: ua.ResponseHeader{ServiceResult: ua.StatusOK},
		}
	})

	c := opcua.New("opc.tcp://fake/endpoint", opcua.WithConnectionFactory(factory), opcua.MaxPendingRequests(1))
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if _, err := c.ReadAsync(&ua.ReadRequest{}, func(*ua.ReadResponse) {}); err != nil {
		t.Fatalf("first ReadAsync: %v", err)
	}
	if _, err := c.ReadAsync(&ua.ReadRequest{}, func(*ua.ReadResponse) {}); err != ua.StatusBadTooManyOperations {
		t.Fatalf("second ReadAsync error = %v, want BadTooManyOperations", err)
	}

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&readCount); got != 1 {
		t.Fatalf("fake server observed %d Read requests, want exactly 1 (the rejected call must never reach the wire)", got)
	}
}

// TestAbortChunkFailsOnlyThatRequest exercises the full Client, not
// just uasc.Channel: an 'A' chunk for one outstanding async request
// must fail only that request's callback with BadCommunicationError
// and leave the session (and every other pending request) alone.
func TestAbortChunkFailsOnlyThatRequest(t *testing.T) {
	srv, factory := newTestServer()
	stop := make(chan struct{})
	go srv.run(t, stop)

	c := opcua.New("opc.tcp://fake/endpoint", opcua.WithConnectionFactory(factory))
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	// Stop the fake server so nothing auto-replies to the Read below;
	// the test injects the abort itself instead.
	close(stop)

	var got *ua.ReadResponse
	reqID, err := c.ReadAsync(&ua.ReadRequest{}, func(r *ua.ReadResponse) { got = r })
	if err != nil {
		t.Fatalf("ReadAsync: %v", err)
	}

	abortFrame := encodeAbortFrame(srv.channelID, srv.tokenID, reqID, srv.nextSeq())
	if err := c.ProcessBinaryMessage(abortFrame); err == nil {
		t.Fatal("ProcessBinaryMessage(abort chunk) returned nil error")
	}
	if got == nil {
		t.Fatal("async callback was never invoked after the abort")
	}
	if got.ResponseHeader.ServiceResult != ua.StatusBadCommunicationError {
		t.Fatalf("ServiceResult = %v, want BadCommunicationError", got.ResponseHeader.ServiceResult)
	}
	if state := c.GetState(); state != opcua.Session {
		t.Fatalf("GetState after an aborted request = %v, want Session (the channel must stay up)", state)
	}
}

func encodeAbortFrame(channelID, tokenID, reqID, seq uint32) []byte {
	var out []byte
	out = append(out, leUint32(channelID)...)
	out = append(out, leUint32(tokenID)...)
	out = append(out, leUint32(seq)...)
	out = append(out, leUint32(reqID)...)
	return uacp.EncodeChunk(uacp.MessageTypeMessage, uacp.ChunkTypeAbort, out)
}
