// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package opcua implements the core of an OPC UA client: the layered
// connection state machine (TCP → SecureChannel → Session), a
// request/response multiplexer driving synchronous and asynchronous
// service calls, a cooperative single-threaded timer/event loop, and a
// subscription Publish pump.
//
// The OPC UA binary encoding, the concrete transport, and the logger
// are external collaborators (package ua, uacp, and the standard
// library log package respectively); this package only ever calls
// through their interfaces.
package opcua

import (
	"time"

	"github.com/imatic-tech/opcua/debug"
	"github.com/imatic-tech/opcua/id"
	"github.com/imatic-tech/opcua/internal/coreerr"
	"github.com/imatic-tech/opcua/internal/timer"
	"github.com/imatic-tech/opcua/uacp"
	"github.com/imatic-tech/opcua/uasc"
	"github.com/imatic-tech/opcua/ua"
)

// Client is the top-level object (spec §3): it owns one Configuration,
// one Connection (via the SecureChannel), zero-or-one SecureChannel,
// zero-or-one Session, one Multiplexer, one timer.Scheduler, and one
// Subscription Pump.
//
// None of its methods are safe for concurrent use; the whole core is a
// strictly single-threaded cooperative model (spec §5) driven by
// whichever goroutine calls run/RunIterate.
type Client struct {
	cfg         *Configuration
	endpointURL string

	state State
	chain *uasc.Channel

	sessionID           *ua.NodeID
	authenticationToken *ua.NodeID

	mux    *multiplexer
	timers *timer.Scheduler
	pump   *publishPump

	// reentryDepth counts the synchronous calls currently pumping the
	// event loop; callSync raises it for the duration of its wait and
	// refuses to start once it reaches ReentrancyLimit (spec §5
	// re-entrance guard, default limit 4).
	reentryDepth int
}

// New constructs a Client from opts layered over DefaultConfiguration
// (spec §6 "new(config)"). The Client starts Disconnected; no network
// activity happens until Connect.
func New(endpointURL string, opts ...Option) *Client {
	cfg := applyOptions(opts...)
	c := &Client{
		cfg:         cfg,
		endpointURL: endpointURL,
		mux:         newMultiplexer(cfg.MaxPendingRequests),
		timers:      timer.New(),
	}
	if cfg.OutstandingPublishRequests > 0 {
		c.pump = newPublishPump(c, cfg.OutstandingPublishRequests)
	}
	return c
}

func (c *Client) connectionFactory() uacp.ConnectionFactory {
	if c.cfg.ConnectionFactory != nil {
		return c.cfg.ConnectionFactory
	}
	timeout := c.cfg.DialTimeout
	return func(url string, lc uacp.LocalConnectionConfig) (uacp.Connection, error) {
		return uacp.DialTCP(url, lc, timeout)
	}
}

// Connect advances Disconnected → Connected → SecureChannel → Session
// using an anonymous identity (spec §4.1 connect). On any failure
// before SecureChannel is reached, the client observes Disconnected by
// the time Connect returns.
func (c *Client) Connect() error {
	return c.connect(nil)
}

// ConnectUsername is Connect with a UserName identity token instead of
// anonymous (spec §4.1 connect_username).
func (c *Client) ConnectUsername(user, pass string) error {
	return c.connect(&ua.UserNameIdentityToken{UserName: user, Password: []byte(pass)})
}

func (c *Client) connect(explicitIdentity *ua.UserNameIdentityToken) error {
	if c.state != Disconnected {
		return coreerr.Errorf("opcua: connect called from state %s, want Disconnected", c.state)
	}

	chain, err := uasc.Open(c.connectionFactory(), c.endpointURL, c.cfg.LocalConnectionConfig, c.cfg.DialTimeout, c.cfg.CustomTypeDescriptors...)
	if err != nil {
		c.setState(Disconnected)
		return err
	}
	c.chain = chain
	c.setState(Connected)

	if _, err := chain.OpenSecureChannel(ua.SecurityTokenRequestTypeIssue, c.cfg.SecureChannelLifetime, c.cfg.SyncTimeout); err != nil {
		c.teardownTransport()
		c.setState(Disconnected)
		return err
	}
	c.setState(SecureChannelOpen)
	c.scheduleRenewal()

	endpoints, err := c.getEndpointsInternal()
	if err != nil {
		c.teardownTransport()
		c.setState(Disconnected)
		return err
	}

	var identity ua.IdentityToken
	var policyID string
	if explicitIdentity != nil {
		policy := ua.UserNamePolicy(endpoints)
		if policy != nil {
			policyID = policy.PolicyID
		}
		explicitIdentity.PolicyID = policyID
		identity = explicitIdentity
	} else {
		identity = &ua.AnonymousIdentityToken{PolicyID: ua.AnonymousPolicyID(endpoints)}
	}

	if err := c.createAndActivateSession(identity); err != nil {
		c.teardownTransport()
		c.setState(Disconnected)
		return err
	}
	c.setState(Session)
	if c.pump != nil {
		c.pump.start()
	}
	return nil
}

func (c *Client) createAndActivateSession(identity ua.IdentityToken) error {
	createReq := &ua.CreateSessionRequest{
		RequestHeader:           ua.RequestHeader{Timestamp: time.Now()},
		ClientDescription:       &ua.ApplicationDescription{ApplicationURI: "urn:opcua:client", ApplicationType: 1},
		EndpointURL:             c.endpointURL,
		SessionName:             "opcua-client",
		RequestedSessionTimeout: float64(c.cfg.SyncTimeout / time.Millisecond * 10),
	}
	createResp, err := c.callSync(id.CreateSessionRequest_Encoding_DefaultBinary, createReq, id.CreateSessionResponse_Encoding_DefaultBinary)
	if err != nil {
		return err
	}
	cr, ok := createResp.(*ua.CreateSessionResponse)
	if !ok {
		return coreerr.Errorf("opcua: unexpected CreateSession response type %T", createResp)
	}
	if cr.ResponseHeader.ServiceResult != ua.StatusOK {
		return cr.ResponseHeader.ServiceResult
	}
	c.sessionID = cr.SessionID
	c.authenticationToken = cr.AuthenticationToken

	activateReq := &ua.ActivateSessionRequest{
		RequestHeader:     ua.RequestHeader{Timestamp: time.Now(), AuthenticationToken: c.authenticationToken},
		UserIdentityToken: identity,
	}
	activateResp, err := c.callSync(id.ActivateSessionRequest_Encoding_DefaultBinary, activateReq, id.ActivateSessionResponse_Encoding_DefaultBinary)
	if err != nil {
		return err
	}
	ar, ok := activateResp.(*ua.ActivateSessionResponse)
	if !ok {
		return coreerr.Errorf("opcua: unexpected ActivateSession response type %T", activateResp)
	}
	if ar.ResponseHeader.ServiceResult != ua.StatusOK {
		return ar.ResponseHeader.ServiceResult
	}
	return nil
}

// scheduleRenewal installs the repeated renewal check (spec §4.2:
// "fires every min(lifetime/4, 60s)").
func (c *Client) scheduleRenewal() {
	interval := c.chain.RenewInterval()
	c.timers.Add(time.Now(), interval, func() {
		if c.chain == nil || !c.chain.NeedsRenewal(time.Now()) {
			return
		}
		if err := c.ManuallyRenewSecureChannel(); err != nil {
			debug.Errorf("opcua: secure channel renewal failed: %v", err)
			c.mux.failAll(ua.StatusBadSecureChannelClosed)
			c.teardownTransport()
			c.setState(Disconnected)
		}
	})
}

// ManuallyRenewSecureChannel issues OpenSecureChannel with
// RequestType=Renew (spec §4.1 manuallyRenewSecureChannel).
func (c *Client) ManuallyRenewSecureChannel() error {
	if c.chain == nil {
		return coreerr.Errorf("opcua: no secure channel to renew")
	}
	_, err := c.chain.OpenSecureChannel(ua.SecurityTokenRequestTypeRenew, c.cfg.SecureChannelLifetime, c.cfg.SyncTimeout)
	if err != nil {
		return err
	}
	if c.state == Session {
		c.setState(SessionRenewed)
	}
	return nil
}

// Disconnect gracefully tears down Session → SecureChannel → TCP
// (spec §4.1 disconnect). All pending requests fail with BadShutdown.
func (c *Client) Disconnect() error {
	if c.state == Disconnected {
		return nil
	}
	if c.pump != nil {
		c.pump.stop()
	}
	var firstErr error
	if c.state == Session || c.state == SessionRenewed {
		req := &ua.CloseSessionRequest{
			RequestHeader:       ua.RequestHeader{Timestamp: time.Now(), AuthenticationToken: c.authenticationToken},
			DeleteSubscriptions: true,
		}
		if _, err := c.callSync(id.CloseSessionRequest_Encoding_DefaultBinary, req, id.CloseSessionResponse_Encoding_DefaultBinary); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.chain != nil {
		if err := c.chain.CloseSecureChannel(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.chain = nil
	}
	c.mux.failAll(ua.StatusBadShutdown)
	c.setState(Disconnected)
	return firstErr
}

// Close is Disconnect's best-effort counterpart (spec §4.1 close()):
// every teardown step is attempted even if an earlier one failed.
func (c *Client) Close() error {
	if c.state == Disconnected {
		return nil
	}
	if c.pump != nil {
		c.pump.stop()
	}
	if c.state == Session || c.state == SessionRenewed {
		req := &ua.CloseSessionRequest{
			RequestHeader:       ua.RequestHeader{Timestamp: time.Now(), AuthenticationToken: c.authenticationToken},
			DeleteSubscriptions: true,
		}
		c.callSync(id.CloseSessionRequest_Encoding_DefaultBinary, req, id.CloseSessionResponse_Encoding_DefaultBinary)
	}
	c.teardownTransport()
	c.mux.failAll(ua.StatusBadShutdown)
	c.setState(Disconnected)
	return nil
}

func (c *Client) teardownTransport() {
	if c.chain != nil {
		c.chain.Abort()
		c.chain = nil
	}
}

// GetConnection exposes the raw channel for manual transport scenarios
// (spec §6 getConnection()).
func (c *Client) GetConnection() *uasc.Channel { return c.chain }

// Reset returns the client to its just-constructed state without
// requiring a new New() call; any open channel is aborted first.
func (c *Client) Reset() {
	if c.state != Disconnected {
		c.teardownTransport()
		c.mux.failAll(ua.StatusBadShutdown)
	}
	c.sessionID = nil
	c.authenticationToken = nil
	c.timers = timer.New()
	c.mux = newMultiplexer(c.cfg.MaxPendingRequests)
	c.setState(Disconnected)
}

// Delete releases every resource the client holds; the Client must
// not be used afterward (spec §6 delete()).
func (c *Client) Delete() {
	c.Close()
}
