package uasc

import (
	"bytes"
	"testing"
	"time"

	"github.com/imatic-tech/opcua/id"
	"github.com/imatic-tech/opcua/uacp"
	"github.com/imatic-tech/opcua/ua"
)

// fakeConn is an in-memory uacp.Connection driven by a scripted list of
// frames to hand back from Receive, and a record of everything sent.
type fakeConn struct {
	sent   [][]byte
	toRecv [][]byte
	closed bool
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	f.sent = append(f.sent, cp)
	return nil
}

func (f *fakeConn) Receive(timeout time.Duration) ([]byte, error) {
	if len(f.toRecv) == 0 {
		return nil, errNoMoreFrames
	}
	frame := f.toRecv[0]
	f.toRecv = f.toRecv[1:]
	return frame, nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

var errNoMoreFrames = &scriptExhausted{}

type scriptExhausted struct{}

func (*scriptExhausted) Error() string { return "uasc test: script exhausted" }

func TestRequestIDNeverZeroAndMonotonic(t *testing.T) {
	c := &Channel{sets: make(map[uint32]*chunkSet)}
	seen := map[uint32]bool{}
	var prev uint32
	for i := 0; i < 5; i++ {
		id := c.nextRequestID()
		if id == 0 {
			t.Fatal("nextRequestID returned 0")
		}
		if seen[id] {
			t.Fatalf("nextRequestID returned duplicate %d", id)
		}
		seen[id] = true
		if i > 0 && id <= prev {
			t.Fatalf("request ids not monotonic: %d then %d", prev, id)
		}
		prev = id
	}
}

func TestRequestIDWrapsPastZero(t *testing.T) {
	c := &Channel{sets: make(map[uint32]*chunkSet)}
	c.requestID = ^uint32(0) - 1 // next AddUint32 lands on max, then wraps to 0
	first := c.nextRequestID()
	if first == 0 {
		t.Fatalf("expected non-zero id at the wrap boundary, got %d", first)
	}
	second := c.nextRequestID()
	if second == 0 {
		t.Fatalf("expected non-zero id after wrap, got %d", second)
	}
}

func TestNeedsRenewalThreshold(t *testing.T) {
	c := &Channel{createdAt: time.Unix(0, 0), lifetime: 10 * time.Second}
	if c.NeedsRenewal(time.Unix(0, 0).Add(5 * time.Second)) {
		t.Fatal("should not need renewal before 0.75 * lifetime")
	}
	if !c.NeedsRenewal(time.Unix(0, 0).Add(7500 * time.Millisecond)) {
		t.Fatal("should need renewal at exactly 0.75 * lifetime")
	}
	if !c.NeedsRenewal(time.Unix(0, 0).Add(9 * time.Second)) {
		t.Fatal("should need renewal past the threshold")
	}
}

func TestRenewIntervalCapsAt60s(t *testing.T) {
	c := &Channel{lifetime: 10 * time.Minute}
	if got := c.RenewInterval(); got != 60*time.Second {
		t.Fatalf("RenewInterval() = %s, want 60s for a long lifetime", got)
	}
	c2 := &Channel{lifetime: 4 * time.Second}
	if got := c2.RenewInterval(); got != 1*time.Second {
		t.Fatalf("RenewInterval() = %s, want 1s for lifetime/4", got)
	}
}

func TestSendMessageAndProcessChunkRoundTrip(t *testing.T) {
	conn := &fakeConn{}
	c := &Channel{conn: conn, channelID: 7, tokenID: 3, sets: make(map[uint32]*chunkSet)}

	req := &ua.ReadRequest{
		RequestHeader: ua.RequestHeader{Timestamp: time.Now()},
		NodesToRead: []*ua.ReadValueID{
			{NodeID: ua.NewNumericNodeID(0, 2258), AttributeID: ua.AttributeIDValue},
		},
	}
	reqID, err := c.SendMessage(id.ReadRequest_Encoding_DefaultBinary, req)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(conn.sent) != 1 {
		t.Fatalf("expected exactly one frame sent, got %d", len(conn.sent))
	}

	// Simulate the server decoding the request and replying in kind,
	// reusing the same chunk-framing helpers a fake server harness would.
	res := &ua.ReadResponse{
		ResponseHeader: ua.ResponseHeader{RequestHandle: reqID, ServiceResult: ua.StatusOK},
		Results: []*ua.DataValue{
			{EncodingMask: ua.DataValueValue, Value: ua.MustVariant(int32(42)), StatusCode: ua.StatusOK},
		},
	}
	respFrame := encodeTestResponse(t, c.channelID, c.tokenID, reqID, id.ReadResponse_Encoding_DefaultBinary, res)
	conn.toRecv = append(conn.toRecv, respFrame)

	msg, err := c.Receive(time.Second)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if msg == nil {
		t.Fatal("expected a decoded message, got nil")
	}
	if msg.RequestID != reqID {
		t.Errorf("RequestID = %d, want %d", msg.RequestID, reqID)
	}
	decoded, ok := msg.Value.(*ua.ReadResponse)
	if !ok {
		t.Fatalf("decoded value has wrong type %T", msg.Value)
	}
	if decoded.ResponseHeader.RequestHandle != reqID {
		t.Errorf("decoded RequestHandle = %d, want %d", decoded.ResponseHeader.RequestHandle, reqID)
	}
}

func TestProcessChunkAbortFailsOnlyThatRequest(t *testing.T) {
	conn := &fakeConn{}
	c := &Channel{conn: conn, channelID: 7, tokenID: 3, sets: make(map[uint32]*chunkSet)}

	// An intermediate chunk for request 9 is in flight when the server
	// aborts it; a wholly unrelated request 4 must be untouched.
	c.sets[9] = &chunkSet{typeID: id.ReadResponse_Encoding_DefaultBinary}
	c.sets[4] = &chunkSet{typeID: id.ReadResponse_Encoding_DefaultBinary}

	abortFrame := encodeTestAbort(c.channelID, c.tokenID, 9)
	msg, err := c.ProcessChunk(abortFrame)
	if msg != nil {
		t.Fatalf("expected no decoded message from an abort chunk, got %+v", msg)
	}
	aborted, ok := err.(*AbortedRequest)
	if !ok {
		t.Fatalf("err = %T, want *AbortedRequest", err)
	}
	if aborted.RequestID != 9 {
		t.Errorf("AbortedRequest.RequestID = %d, want 9", aborted.RequestID)
	}
	if _, stillSet := c.sets[9]; stillSet {
		t.Error("aborted request's chunk set was not discarded")
	}
	if _, stillSet := c.sets[4]; !stillSet {
		t.Error("unrelated request's chunk set was discarded by an unrelated abort")
	}
}

func encodeTestAbort(channelID, tokenID, reqID uint32) []byte {
	var frame bytes.Buffer
	symmetricSecurityHeader{ChannelID: channelID, TokenID: tokenID}.encode(&frame)
	sequenceHeader{SequenceNumber: 1, RequestID: reqID}.encode(&frame)
	return uacp.EncodeChunk(uacp.MessageTypeMessage, uacp.ChunkTypeAbort, frame.Bytes())
}

func encodeTestResponse(t *testing.T, channelID, tokenID, reqID, typeID uint32, res ua.Response) []byte {
	t.Helper()
	d, ok := ua.Lookup(typeID, nil)
	if !ok {
		t.Fatalf("no descriptor for type id %d", typeID)
	}
	var body bytes.Buffer
	if err := d.Encode(res, &body); err != nil {
		t.Fatalf("encode test response: %v", err)
	}
	var frame bytes.Buffer
	symmetricSecurityHeader{ChannelID: channelID, TokenID: tokenID}.encode(&frame)
	sequenceHeader{SequenceNumber: 1, RequestID: reqID}.encode(&frame)
	putTypeID(&frame, typeID)
	frame.Write(body.Bytes())
	return uacp.EncodeChunk(uacp.MessageTypeMessage, uacp.ChunkTypeFinal, frame.Bytes())
}
