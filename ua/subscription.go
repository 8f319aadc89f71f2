// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"

	"github.com/imatic-tech/opcua/id"
)

// CreateSubscriptionRequest is Part 4, 5.13.2.
type CreateSubscriptionRequest struct {
	RequestHeader               RequestHeader
	RequestedPublishingInterval float64
	RequestedLifetimeCount      uint32
	RequestedMaxKeepAliveCount  uint32
	MaxNotificationsPerPublish  uint32
	PublishingEnabled           bool
	Priority                    byte
}

func (r *CreateSubscriptionRequest) Header() *RequestHeader { return &r.RequestHeader }

// CreateSubscriptionResponse is Part 4, 5.13.2.
type CreateSubscriptionResponse struct {
	ResponseHeader             ResponseHeader
	SubscriptionID             uint32
	RevisedPublishingInterval  float64
	RevisedLifetimeCount       uint32
	RevisedMaxKeepAliveCount   uint32
}

func (r *CreateSubscriptionResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// DeleteSubscriptionsRequest is Part 4, 5.13.8.
type DeleteSubscriptionsRequest struct {
	RequestHeader   RequestHeader
	SubscriptionIDs []uint32
}

func (r *DeleteSubscriptionsRequest) Header() *RequestHeader { return &r.RequestHeader }

// DeleteSubscriptionsResponse is Part 4, 5.13.8.
type DeleteSubscriptionsResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *DeleteSubscriptionsResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// TransferSubscriptionsRequest is Part 4, 5.13.7.
type TransferSubscriptionsRequest struct {
	RequestHeader     RequestHeader
	SubscriptionIDs   []uint32
	SendInitialValues bool
}

func (r *TransferSubscriptionsRequest) Header() *RequestHeader { return &r.RequestHeader }

// TransferResult is Part 4, 7.39.
type TransferResult struct {
	StatusCode               StatusCode
	AvailableSequenceNumbers []uint32
}

// TransferSubscriptionsResponse is Part 4, 5.13.7.
type TransferSubscriptionsResponse struct {
	ResponseHeader ResponseHeader
	Results        []*TransferResult
}

func (r *TransferSubscriptionsResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// SubscriptionAcknowledgement is Part 4, 7.36.
type SubscriptionAcknowledgement struct {
	SubscriptionID uint32
	SequenceNumber uint32
}

// PublishRequest is Part 4, 5.14.2. spec §4.5: a PublishRequest in
// flight has its SubscriptionAcknowledgements set from the sequence
// numbers the previous PublishResponse reported.
type PublishRequest struct {
	RequestHeader                RequestHeader
	SubscriptionAcknowledgements []*SubscriptionAcknowledgement
}

func (r *PublishRequest) Header() *RequestHeader { return &r.RequestHeader }

// NotificationMessage is Part 4, 7.21. NotificationData is left opaque
// (raw bytes) since decoding DataChangeNotification/EventNotificationList
// bodies is part of the binary-encoding concern spec §1 places outside
// the core's scope; the Subscription Pump only needs to know a
// notification arrived and hand it to the application hook.
type NotificationMessage struct {
	SequenceNumber   uint32
	PublishTime      int64
	NotificationData [][]byte
}

// PublishResponse is Part 4, 5.14.2.
type PublishResponse struct {
	ResponseHeader           ResponseHeader
	SubscriptionID           uint32
	AvailableSequenceNumbers []uint32
	MoreNotifications        bool
	NotificationMessage      *NotificationMessage
	Results                  []StatusCode
}

func (r *PublishResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// RepublishRequest is Part 4, 5.14.3.
type RepublishRequest struct {
	RequestHeader            RequestHeader
	SubscriptionID           uint32
	RetransmitSequenceNumber uint32
}

func (r *RepublishRequest) Header() *RequestHeader { return &r.RequestHeader }

// RepublishResponse is Part 4, 5.14.3.
type RepublishResponse struct {
	ResponseHeader       ResponseHeader
	NotificationMessage *NotificationMessage
}

func (r *RepublishResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// MonitoredItemCreateRequest is Part 4, 7.20 / 5.12.2.
type MonitoredItemCreateRequest struct {
	ItemToMonitor   *ReadValueID
	MonitoringMode  uint32
	SamplingInterval float64
	QueueSize       uint32
	DiscardOldest   bool
}

// MonitoredItemCreateResult is Part 4, 7.19.
type MonitoredItemCreateResult struct {
	StatusCode      StatusCode
	MonitoredItemID uint32
	RevisedSamplingInterval float64
	RevisedQueueSize        uint32
}

// CreateMonitoredItemsRequest is Part 4, 5.12.2.
type CreateMonitoredItemsRequest struct {
	RequestHeader      RequestHeader
	SubscriptionID     uint32
	TimestampsToReturn TimestampsToReturn
	ItemsToCreate      []*MonitoredItemCreateRequest
}

func (r *CreateMonitoredItemsRequest) Header() *RequestHeader { return &r.RequestHeader }

// CreateMonitoredItemsResponse is Part 4, 5.12.2.
type CreateMonitoredItemsResponse struct {
	ResponseHeader ResponseHeader
	Results        []*MonitoredItemCreateResult
}

func (r *CreateMonitoredItemsResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// QueryFirstRequest is Part 4, 5.9.2. Kept distinct from QueryNext
// (spec §9 design note: the original source routes queryNext through
// the QueryFirst descriptors, apparently by typo; here they are
// separate services with their own descriptors).
type QueryFirstRequest struct {
	RequestHeader RequestHeader
}

func (r *QueryFirstRequest) Header() *RequestHeader { return &r.RequestHeader }

// QueryFirstResponse is Part 4, 5.9.2.
type QueryFirstResponse struct {
	ResponseHeader ResponseHeader
}

func (r *QueryFirstResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// QueryNextRequest is Part 4, 5.9.3.
type QueryNextRequest struct {
	RequestHeader             RequestHeader
	ReleaseContinuationPoint bool
	ContinuationPoint        []byte
}

func (r *QueryNextRequest) Header() *RequestHeader { return &r.RequestHeader }

// QueryNextResponse is Part 4, 5.9.3.
type QueryNextResponse struct {
	ResponseHeader ResponseHeader
}

func (r *QueryNextResponse) Header() *ResponseHeader { return &r.ResponseHeader }

func writeSubAcks(buf *bytes.Buffer, acks []*SubscriptionAcknowledgement) {
	writeInt32(buf, int32(len(acks)))
	for _, a := range acks {
		writeUint32(buf, a.SubscriptionID)
		writeUint32(buf, a.SequenceNumber)
	}
}

func readSubAcks(r *byteReader) ([]*SubscriptionAcknowledgement, error) {
	n, err := r.int32()
	if err != nil || n <= 0 {
		return nil, err
	}
	out := make([]*SubscriptionAcknowledgement, n)
	for i := range out {
		a := &SubscriptionAcknowledgement{}
		if a.SubscriptionID, err = r.uint32(); err != nil {
			return nil, err
		}
		if a.SequenceNumber, err = r.uint32(); err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

func writeNotificationMessage(buf *bytes.Buffer, m *NotificationMessage) {
	if m == nil {
		writeUint32(buf, 0)
		writeInt32(buf, -9999)
		buf.WriteByte(0)
		return
	}
	writeUint32(buf, m.SequenceNumber)
	writeInt32(buf, -9999)
	buf.WriteByte(1)
	writeInt32(buf, int32(len(m.NotificationData)))
	for _, d := range m.NotificationData {
		writeBytes(buf, d)
	}
}

func readNotificationMessage(r *byteReader) (*NotificationMessage, error) {
	m := &NotificationMessage{}
	var err error
	if m.SequenceNumber, err = r.uint32(); err != nil {
		return nil, err
	}
	if _, err = r.int32(); err != nil { // reserved sentinel, see writeNotificationMessage
		return nil, err
	}
	if r.pos >= len(r.b) {
		return nil, errShortBuffer("notification present flag")
	}
	present := r.b[r.pos] != 0
	r.pos++
	if !present {
		return nil, nil
	}
	n, err := r.int32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < n; i++ {
		d, err := r.bytes()
		if err != nil {
			return nil, err
		}
		m.NotificationData = append(m.NotificationData, d)
	}
	return m, nil
}

func init() {
	registerBuiltin(&funcDescriptor{
		id: id.CreateSubscriptionRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*CreateSubscriptionRequest)
			if !ok {
				return errWrongType("*CreateSubscriptionRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeFloat64(buf, req.RequestedPublishingInterval)
			writeUint32(buf, req.RequestedLifetimeCount)
			writeUint32(buf, req.RequestedMaxKeepAliveCount)
			writeUint32(buf, req.MaxNotificationsPerPublish)
			if req.PublishingEnabled {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
			buf.WriteByte(req.Priority)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &CreateSubscriptionRequest{RequestHeader: *h}
			if req.RequestedPublishingInterval, err = r.float64(); err != nil {
				return nil, err
			}
			if req.RequestedLifetimeCount, err = r.uint32(); err != nil {
				return nil, err
			}
			if req.RequestedMaxKeepAliveCount, err = r.uint32(); err != nil {
				return nil, err
			}
			if req.MaxNotificationsPerPublish, err = r.uint32(); err != nil {
				return nil, err
			}
			if r.pos >= len(r.b) {
				return nil, errShortBuffer("PublishingEnabled")
			}
			req.PublishingEnabled = r.b[r.pos] != 0
			r.pos++
			if r.pos >= len(r.b) {
				return nil, errShortBuffer("Priority")
			}
			req.Priority = r.b[r.pos]
			r.pos++
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.CreateSubscriptionResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*CreateSubscriptionResponse)
			if !ok {
				return errWrongType("*CreateSubscriptionResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeUint32(buf, res.SubscriptionID)
			writeFloat64(buf, res.RevisedPublishingInterval)
			writeUint32(buf, res.RevisedLifetimeCount)
			writeUint32(buf, res.RevisedMaxKeepAliveCount)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &CreateSubscriptionResponse{ResponseHeader: *h}
			if res.SubscriptionID, err = r.uint32(); err != nil {
				return nil, err
			}
			if res.RevisedPublishingInterval, err = r.float64(); err != nil {
				return nil, err
			}
			if res.RevisedLifetimeCount, err = r.uint32(); err != nil {
				return nil, err
			}
			if res.RevisedMaxKeepAliveCount, err = r.uint32(); err != nil {
				return nil, err
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.DeleteSubscriptionsRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*DeleteSubscriptionsRequest)
			if !ok {
				return errWrongType("*DeleteSubscriptionsRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeInt32(buf, int32(len(req.SubscriptionIDs)))
			for _, id := range req.SubscriptionIDs {
				writeUint32(buf, id)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &DeleteSubscriptionsRequest{RequestHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				v, err := r.uint32()
				if err != nil {
					return nil, err
				}
				req.SubscriptionIDs = append(req.SubscriptionIDs, v)
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.DeleteSubscriptionsResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*DeleteSubscriptionsResponse)
			if !ok {
				return errWrongType("*DeleteSubscriptionsResponse", v)
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
			res := &DeleteSubscriptionsResponse{ResponseHeader: *h}
			if res.Results, err = r.statusCodeArray(); err != nil {
				return nil, err
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.PublishRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*PublishRequest)
			if !ok {
				return errWrongType("*PublishRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeSubAcks(buf, req.SubscriptionAcknowledgements)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &PublishRequest{RequestHeader: *h}
			if req.SubscriptionAcknowledgements, err = readSubAcks(r); err != nil {
				return nil, err
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.PublishResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*PublishResponse)
			if !ok {
				return errWrongType("*PublishResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeUint32(buf, res.SubscriptionID)
			writeInt32(buf, int32(len(res.AvailableSequenceNumbers)))
			for _, s := range res.AvailableSequenceNumbers {
				writeUint32(buf, s)
			}
			if res.MoreNotifications {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
			writeNotificationMessage(buf, res.NotificationMessage)
			writeStatusCodeArray(buf, res.Results)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &PublishResponse{ResponseHeader: *h}
			if res.SubscriptionID, err = r.uint32(); err != nil {
				return nil, err
			}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				s, err := r.uint32()
				if err != nil {
					return nil, err
				}
				res.AvailableSequenceNumbers = append(res.AvailableSequenceNumbers, s)
			}
			if r.pos >= len(r.b) {
				return nil, errShortBuffer("MoreNotifications")
			}
			res.MoreNotifications = r.b[r.pos] != 0
			r.pos++
			if res.NotificationMessage, err = readNotificationMessage(r); err != nil {
				return nil, err
			}
			if res.Results, err = r.statusCodeArray(); err != nil {
				return nil, err
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.RepublishRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*RepublishRequest)
			if !ok {
				return errWrongType("*RepublishRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeUint32(buf, req.SubscriptionID)
			writeUint32(buf, req.RetransmitSequenceNumber)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &RepublishRequest{RequestHeader: *h}
			if req.SubscriptionID, err = r.uint32(); err != nil {
				return nil, err
			}
			if req.RetransmitSequenceNumber, err = r.uint32(); err != nil {
				return nil, err
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.RepublishResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*RepublishResponse)
			if !ok {
				return errWrongType("*RepublishResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeNotificationMessage(buf, res.NotificationMessage)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &RepublishResponse{ResponseHeader: *h}
			if res.NotificationMessage, err = readNotificationMessage(r); err != nil {
				return nil, err
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.TransferSubscriptionsRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*TransferSubscriptionsRequest)
			if !ok {
				return errWrongType("*TransferSubscriptionsRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeInt32(buf, int32(len(req.SubscriptionIDs)))
			for _, id := range req.SubscriptionIDs {
				writeUint32(buf, id)
			}
			if req.SendInitialValues {
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
			req := &TransferSubscriptionsRequest{RequestHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				v, err := r.uint32()
				if err != nil {
					return nil, err
				}
				req.SubscriptionIDs = append(req.SubscriptionIDs, v)
			}
			if r.pos >= len(r.b) {
				return nil, errShortBuffer("SendInitialValues")
			}
			req.SendInitialValues = r.b[r.pos] != 0
			r.pos++
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.TransferSubscriptionsResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*TransferSubscriptionsResponse)
			if !ok {
				return errWrongType("*TransferSubscriptionsResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeInt32(buf, int32(len(res.Results)))
			for _, tr := range res.Results {
				writeUint32(buf, uint32(tr.StatusCode))
				writeInt32(buf, int32(len(tr.AvailableSequenceNumbers)))
				for _, s := range tr.AvailableSequenceNumbers {
					writeUint32(buf, s)
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
			res := &TransferSubscriptionsResponse{ResponseHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				tr := &TransferResult{}
				sc, err := r.uint32()
				if err != nil {
					return nil, err
				}
				tr.StatusCode = StatusCode(sc)
				ns, err := r.int32()
				if err != nil {
					return nil, err
				}
				for j := int32(0); j < ns; j++ {
					s, err := r.uint32()
					if err != nil {
						return nil, err
					}
					tr.AvailableSequenceNumbers = append(tr.AvailableSequenceNumbers, s)
				}
				res.Results = append(res.Results, tr)
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.CreateMonitoredItemsRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*CreateMonitoredItemsRequest)
			if !ok {
				return errWrongType("*CreateMonitoredItemsRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			writeUint32(buf, req.SubscriptionID)
			writeUint32(buf, uint32(req.TimestampsToReturn))
			writeInt32(buf, int32(len(req.ItemsToCreate)))
			for _, it := range req.ItemsToCreate {
				writeNodeID(buf, it.ItemToMonitor.NodeID)
				writeUint32(buf, it.ItemToMonitor.AttributeID)
				writeUint32(buf, it.MonitoringMode)
				writeFloat64(buf, it.SamplingInterval)
				writeUint32(buf, it.QueueSize)
				if it.DiscardOldest {
					buf.WriteByte(1)
				} else {
					buf.WriteByte(0)
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
			req := &CreateMonitoredItemsRequest{RequestHeader: *h}
			if req.SubscriptionID, err = r.uint32(); err != nil {
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
				it := &MonitoredItemCreateRequest{ItemToMonitor: &ReadValueID{}}
				if it.ItemToMonitor.NodeID, err = r.nodeID(); err != nil {
					return nil, err
				}
				if it.ItemToMonitor.AttributeID, err = r.uint32(); err != nil {
					return nil, err
				}
				if it.MonitoringMode, err = r.uint32(); err != nil {
					return nil, err
				}
				if it.SamplingInterval, err = r.float64(); err != nil {
					return nil, err
				}
				if it.QueueSize, err = r.uint32(); err != nil {
					return nil, err
				}
				if r.pos >= len(r.b) {
					return nil, errShortBuffer("DiscardOldest")
				}
				it.DiscardOldest = r.b[r.pos] != 0
				r.pos++
				req.ItemsToCreate = append(req.ItemsToCreate, it)
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.CreateMonitoredItemsResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*CreateMonitoredItemsResponse)
			if !ok {
				return errWrongType("*CreateMonitoredItemsResponse", v)
			}
			writeResponseHeader(buf, &res.ResponseHeader)
			writeInt32(buf, int32(len(res.Results)))
			for _, mr := range res.Results {
				writeUint32(buf, uint32(mr.StatusCode))
				writeUint32(buf, mr.MonitoredItemID)
				writeFloat64(buf, mr.RevisedSamplingInterval)
				writeUint32(buf, mr.RevisedQueueSize)
			}
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readResponseHeader(r)
			if err != nil {
				return nil, err
			}
			res := &CreateMonitoredItemsResponse{ResponseHeader: *h}
			n, err := r.int32()
			if err != nil {
				return nil, err
			}
			for i := int32(0); i < n; i++ {
				mr := &MonitoredItemCreateResult{}
				sc, err := r.uint32()
				if err != nil {
					return nil, err
				}
				mr.StatusCode = StatusCode(sc)
				if mr.MonitoredItemID, err = r.uint32(); err != nil {
					return nil, err
				}
				if mr.RevisedSamplingInterval, err = r.float64(); err != nil {
					return nil, err
				}
				if mr.RevisedQueueSize, err = r.uint32(); err != nil {
					return nil, err
				}
				res.Results = append(res.Results, mr)
			}
			return res, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.QueryFirstRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*QueryFirstRequest)
			if !ok {
				return errWrongType("*QueryFirstRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			return &QueryFirstRequest{RequestHeader: *h}, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.QueryFirstResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*QueryFirstResponse)
			if !ok {
				return errWrongType("*QueryFirstResponse", v)
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
			return &QueryFirstResponse{ResponseHeader: *h}, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.QueryNextRequest_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			req, ok := v.(*QueryNextRequest)
			if !ok {
				return errWrongType("*QueryNextRequest", v)
			}
			writeRequestHeader(buf, &req.RequestHeader)
			if req.ReleaseContinuationPoint {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
			writeBytes(buf, req.ContinuationPoint)
			return nil
		},
		decode: func(b []byte) (interface{}, error) {
			r := &byteReader{b: b}
			h, err := readRequestHeader(r)
			if err != nil {
				return nil, err
			}
			req := &QueryNextRequest{RequestHeader: *h}
			if r.pos >= len(r.b) {
				return nil, errShortBuffer("ReleaseContinuationPoint")
			}
			req.ReleaseContinuationPoint = r.b[r.pos] != 0
			r.pos++
			if req.ContinuationPoint, err = r.bytes(); err != nil {
				return nil, err
			}
			return req, nil
		},
	})

	registerBuiltin(&funcDescriptor{
		id: id.QueryNextResponse_Encoding_DefaultBinary,
		encode: func(v interface{}, buf *bytes.Buffer) error {
			res, ok := v.(*QueryNextResponse)
			if !ok {
				return errWrongType("*QueryNextResponse", v)
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
			return &QueryNextResponse{ResponseHeader: *h}, nil
		},
	})
}
