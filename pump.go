// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

import (
	"time"

	"github.com/imatic-tech/opcua/debug"
	"github.com/imatic-tech/opcua/id"
	"github.com/imatic-tech/opcua/ua"
)

// NotificationHandler observes every NotificationMessage delivered by
// the Publish pump (spec §4.5 "expose a notification-received hook").
type NotificationHandler func(subscriptionID uint32, msg *ua.NotificationMessage)

// publishPump keeps `target` PublishRequests outstanding once a
// Session exists (spec §4.5). It never blocks the event loop: requests
// are dispatched async, and each response re-arms exactly one
// replacement.
type publishPump struct {
	c      *Client
	target int // current steady-state outstanding count, reduced (never below 1) on BadTooManyPublishRequests
	out    int // requests currently in flight

	pendingAcks []*ua.SubscriptionAcknowledgement // acks to attach to the next outgoing request

	handler NotificationHandler
	running bool
}

func newPublishPump(c *Client, n int) *publishPump {
	if n < 1 {
		n = 1
	}
	return &publishPump{c: c, target: n}
}

// OnNotification registers the handler invoked for every notification
// the pump receives.
func (c *Client) OnNotification(h NotificationHandler) {
	if c.pump != nil {
		c.pump.handler = h
	}
}

// start fills the pump up to target once a Session is active (spec
// §4.5: "keeps N Publish requests outstanding").
func (p *publishPump) start() {
	p.running = true
	for p.out < p.target {
		if !p.dispatchOne() {
			break
		}
	}
}

// stop stops replenishing; requests already in flight fail naturally
// when the session-level failAll runs at disconnect.
func (p *publishPump) stop() {
	p.running = false
}

func (p *publishPump) dispatchOne() bool {
	req := &ua.PublishRequest{
		RequestHeader:                ua.RequestHeader{Timestamp: time.Now(), AuthenticationToken: p.c.authenticationToken},
		SubscriptionAcknowledgements: p.pendingAcks,
	}
	p.pendingAcks = nil

	_, err := p.c.callAsync(id.PublishRequest_Encoding_DefaultBinary, req, id.PublishResponse_Encoding_DefaultBinary, p.onResponse)
	if err != nil {
		debug.Errorf("opcua: publish pump dispatch failed: %v", err)
		return false
	}
	p.out++
	return true
}

// onResponse is the async callback for every dispatched Publish
// request: it hands the notification (if any) to the application
// handler, queues the acknowledgement for the next request, and
// re-arms the pump to keep `target` outstanding (spec §4.5: "echo
// prior sequence-number acknowledgements on the next Publish
// request").
func (p *publishPump) onResponse(requestID uint32, resp ua.Response) {
	p.out--

	pr, ok := resp.(*ua.PublishResponse)
	if !ok {
		return
	}

	if pr.ResponseHeader.ServiceResult == ua.StatusBadTooManyPublishRequests {
		// spec §4.5: reduce the pump's target by 1 (never below 1) for
		// the session's life.
		if p.target > 1 {
			p.target--
		}
	} else if pr.ResponseHeader.ServiceResult == ua.StatusOK {
		if pr.NotificationMessage != nil {
			p.pendingAcks = append(p.pendingAcks, &ua.SubscriptionAcknowledgement{
				SubscriptionID: pr.SubscriptionID,
				SequenceNumber: pr.NotificationMessage.SequenceNumber,
			})
			if p.handler != nil {
				p.handler(pr.SubscriptionID, pr.NotificationMessage)
			}
		}
	}

	if p.running {
		for p.out < p.target {
			if !p.dispatchOne() {
				break
			}
		}
	}
}
