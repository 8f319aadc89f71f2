// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

import (
	"time"

	"github.com/imatic-tech/opcua/ua"
)

// pendingKind distinguishes a synchronous waiter from an asynchronous
// callback (spec §3 PendingRequest, §9 "model as a tagged variant").
type pendingKind int

const (
	pendingSync pendingKind = iota
	pendingAsync
)

// AsyncCallback is invoked once a pending async request completes,
// fails, or times out (spec §4.3). response is a zero-initialized
// value of the registered response type when the core manufactures a
// failure; otherwise it is the decoded server response.
type AsyncCallback func(requestID uint32, response ua.Response)

// pendingRequest is a Multiplexer entry (spec §3): keyed by requestID,
// completed or failed exactly once.
type pendingRequest struct {
	requestID    uint32
	responseType uint32 // binary type id of the expected response, for manufacturing failures
	kind         pendingKind

	// Sync path.
	done chan ua.Response

	// Async path.
	callback AsyncCallback

	deadline     time.Time
	dispatchedAt time.Time
}

// multiplexer maps outstanding request ids to pending sync waiters or
// async callbacks (spec §4.3). Not safe for concurrent use — like
// everything else in the core it is driven exclusively from the
// event-loop thread.
type multiplexer struct {
	pending map[uint32]*pendingRequest
	max     int
}

func newMultiplexer(max int) *multiplexer {
	return &multiplexer{pending: make(map[uint32]*pendingRequest), max: max}
}

// errTooManyOperations is returned by register when admitting a new
// pending request would exceed the configured back-pressure limit
// (spec §4.3).
var errTooManyOperations = ua.StatusBadTooManyOperations

// full reports whether admitting one more pending request would exceed
// the configured back-pressure limit. Callers check this before doing
// any work that would be wasted on a rejected dispatch — in particular,
// before the request is ever written to the wire (spec §4.3: "rejects
// new dispatches").
func (m *multiplexer) full() bool {
	return len(m.pending) >= m.max
}

func (m *multiplexer) register(p *pendingRequest) error {
	if m.full() {
		return errTooManyOperations
	}
	m.pending[p.requestID] = p
	return nil
}

// complete routes a decoded response to its waiter/callback and
// removes the entry. It is a no-op (not an error) if no entry exists
// for requestID: spec §4.3 "tolerate out-of-order delivery" implies
// duplicate or unexpected ids are simply dropped rather than panicking.
func (m *multiplexer) complete(requestID uint32, resp ua.Response) {
	p, ok := m.pending[requestID]
	if !ok {
		return
	}
	delete(m.pending, requestID)
	switch p.kind {
	case pendingSync:
		p.done <- resp
	case pendingAsync:
		if p.callback != nil {
			p.callback(requestID, resp)
		}
	}
}

// fail manufactures a zero-initialized response of p's declared
// descriptor with serviceResult=status and delivers it (spec §7 item 5:
// "the core manufactures an empty response body").
func (m *multiplexer) fail(p *pendingRequest, status ua.StatusCode) {
	resp := zeroResponse(p.responseType, status)
	switch p.kind {
	case pendingSync:
		p.done <- resp
	case pendingAsync:
		if p.callback != nil {
			p.callback(p.requestID, resp)
		}
	}
}

// failOne fails the single pending entry keyed by requestID, if any,
// leaving every other entry untouched. Used for protocol errors scoped
// to one request rather than the whole channel (spec §4.2 abort
// handling: "fails the pending entry with BadCommunicationError").
func (m *multiplexer) failOne(requestID uint32, status ua.StatusCode) {
	p, ok := m.pending[requestID]
	if !ok {
		return
	}
	delete(m.pending, requestID)
	m.fail(p, status)
}

// failAll fails every pending entry with status, emptying the table.
// Used on shutdown (BadShutdown) and channel loss
// (BadSecureChannelClosed), spec §4.1/§7.
func (m *multiplexer) failAll(status ua.StatusCode) {
	pending := m.pending
	m.pending = make(map[uint32]*pendingRequest)
	for _, p := range pending {
		m.fail(p, status)
	}
}

// expireDeadlines fails every sync/async entry whose deadline has
// passed with BadTimeout (spec §4.3 "the deadline expires").
func (m *multiplexer) expireDeadlines(now time.Time) {
	var expired []*pendingRequest
	for id, p := range m.pending {
		if !p.deadline.IsZero() && now.After(p.deadline) {
			expired = append(expired, p)
			delete(m.pending, id)
		}
	}
	for _, p := range expired {
		m.fail(p, ua.StatusBadTimeout)
	}
}

func (m *multiplexer) len() int { return len(m.pending) }

// genericResponse is returned for a request type this process has no
// concrete zero-value constructor for (should not happen for the
// built-in descriptor set; kept as a defensive fallback).
type genericResponse struct {
	header ua.ResponseHeader
}

func (g *genericResponse) Header() *ua.ResponseHeader { return &g.header }

// zeroResponse builds a zero-initialized response of responseTypeID's
// Go type with ServiceResult=status. The per-type switch is the Go
// analogue of the C core's descriptor.init(out) followed by setting
// responseHeader.serviceResult (spec §7 propagation policy).
func zeroResponse(responseTypeID uint32, status ua.StatusCode) ua.Response {
	if ctor, ok := responseZeroValues[responseTypeID]; ok {
		r := ctor()
		*r.Header() = ua.ResponseHeader{ServiceResult: status}
		return r
	}
	return &genericResponse{header: ua.ResponseHeader{ServiceResult: status}}
}
