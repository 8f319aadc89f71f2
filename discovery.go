// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

import (
	"sort"
	"time"

	"github.com/imatic-tech/opcua/id"
	"github.com/imatic-tech/opcua/internal/coreerr"
	"github.com/imatic-tech/opcua/internal/timer"
	"github.com/imatic-tech/opcua/ua"
	"github.com/imatic-tech/opcua/uasc"
)

// getEndpointsInternal is called from connect() once the SecureChannel
// is open but before a Session exists (spec §4.1 connect: "uses the
// channel just opened to call GetEndpoints before creating a
// Session").
func (c *Client) getEndpointsInternal() ([]*ua.EndpointDescription, error) {
	req := &ua.GetEndpointsRequest{
		RequestHeader: ua.RequestHeader{Timestamp: time.Now()},
		EndpointURL:   c.endpointURL,
	}
	resp, err := c.callSync(id.GetEndpointsRequest_Encoding_DefaultBinary, req, id.GetEndpointsResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.GetEndpointsResponse)
	if !ok {
		return nil, coreerr.Errorf("opcua: unexpected GetEndpoints response type %T", resp)
	}
	if r.ResponseHeader.ServiceResult != ua.StatusOK {
		return nil, r.ResponseHeader.ServiceResult
	}
	return r.Endpoints, nil
}

// openDiscoveryChannel opens a SecureChannel for a single request/
// response exchange and nothing else: no Session, no renewal timer, no
// state transition observed by StateCallback (spec §4.5/§6: "Discovery
// ... each opens a transient channel without a session").
func (c *Client) openDiscoveryChannel(endpointURL string) (*uasc.Channel, error) {
	chain, err := uasc.Open(c.connectionFactory(), endpointURL, c.cfg.LocalConnectionConfig, c.cfg.DialTimeout, c.cfg.CustomTypeDescriptors...)
	if err != nil {
		return nil, err
	}
	if _, err := chain.OpenSecureChannel(ua.SecurityTokenRequestTypeIssue, c.cfg.SecureChannelLifetime, c.cfg.SyncTimeout); err != nil {
		chain.Abort()
		return nil, err
	}
	return chain, nil
}

// discoveryCall opens a transient channel against endpointURL, sends
// one request through it via a throwaway Client whose chain points at
// the transient channel, and tears the channel down before returning.
func (c *Client) discoveryCall(endpointURL string, reqTypeID uint32, req ua.Request, respTypeID uint32) (ua.Response, error) {
	chain, err := c.openDiscoveryChannel(endpointURL)
	if err != nil {
		return nil, err
	}
	defer chain.Abort()

	tmp := &Client{cfg: c.cfg, endpointURL: endpointURL, chain: chain, mux: newMultiplexer(c.cfg.MaxPendingRequests), timers: timer.New()}
	return tmp.callSync(reqTypeID, req, respTypeID)
}

// GetEndpoints opens a transient SecureChannel (no Session) against
// endpointURL and returns its advertised endpoints (spec §4.5/§6).
func (c *Client) GetEndpoints(endpointURL string) ([]*ua.EndpointDescription, error) {
	req := &ua.GetEndpointsRequest{RequestHeader: ua.RequestHeader{Timestamp: time.Now()}, EndpointURL: endpointURL}
	resp, err := c.discoveryCall(endpointURL, id.GetEndpointsRequest_Encoding_DefaultBinary, req, id.GetEndpointsResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.GetEndpointsResponse)
	if !ok {
		return nil, coreerr.Errorf("opcua: unexpected GetEndpoints response type %T", resp)
	}
	if r.ResponseHeader.ServiceResult != ua.StatusOK {
		return nil, r.ResponseHeader.ServiceResult
	}
	return r.Endpoints, nil
}

// FindServers is FindServers (spec §4.5/§6), also over a transient
// channel.
func (c *Client) FindServers(endpointURL string) ([]*ua.ApplicationDescription, error) {
	req := &ua.FindServersRequest{RequestHeader: ua.RequestHeader{Timestamp: time.Now()}, EndpointURL: endpointURL}
	resp, err := c.discoveryCall(endpointURL, id.FindServersRequest_Encoding_DefaultBinary, req, id.FindServersResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.FindServersResponse)
	if !ok {
		return nil, coreerr.Errorf("opcua: unexpected FindServers response type %T", resp)
	}
	if r.ResponseHeader.ServiceResult != ua.StatusOK {
		return nil, r.ResponseHeader.ServiceResult
	}
	return r.Servers, nil
}

// FindServersOnNetwork is Part 12's LDS-ME discovery call (supplemented
// feature, spec §4.5), also over a transient channel.
func (c *Client) FindServersOnNetwork(endpointURL string) ([]*ua.ServerOnNetwork, error) {
	req := &ua.FindServersOnNetworkRequest{RequestHeader: ua.RequestHeader{Timestamp: time.Now()}}
	resp, err := c.discoveryCall(endpointURL, id.FindServersOnNetworkRequest_Encoding_DefaultBinary, req, id.FindServersOnNetworkResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.FindServersOnNetworkResponse)
	if !ok {
		return nil, coreerr.Errorf("opcua: unexpected FindServersOnNetwork response type %T", resp)
	}
	if r.ResponseHeader.ServiceResult != ua.StatusOK {
		return nil, r.ResponseHeader.ServiceResult
	}
	return r.Servers, nil
}

// SelectEndpoint picks the endpoint with the highest SecurityLevel
// among those matching policyURI (empty matches any), grounded on the
// teacher's SelectEndpoint helper used throughout examples/.
func SelectEndpoint(endpoints []*ua.EndpointDescription, policyURI string) *ua.EndpointDescription {
	var candidates []*ua.EndpointDescription
	for _, e := range endpoints {
		if policyURI == "" || e.SecurityPolicyURI == policyURI {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].SecurityLevel > candidates[j].SecurityLevel
	})
	return candidates[0]
}
