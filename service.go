// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

import (
	"time"

	"github.com/imatic-tech/opcua/id"
	"github.com/imatic-tech/opcua/internal/coreerr"
	"github.com/imatic-tech/opcua/ua"
)

// stamp fills in the two RequestHeader fields every service call needs
// from session state (spec §4.3: AuthenticationToken ties the request
// to the Session; Timestamp records issue time). RequestHandle is
// stamped later, by the Channel, from its own request-id counter.
func (c *Client) stamp(req ua.Request) {
	h := req.Header()
	h.Timestamp = time.Now()
	h.AuthenticationToken = c.authenticationToken
}

// call is the synchronous dispatcher every typed shim below routes
// through (spec §9 "implement the core as a single generic dispatcher
// parameterized by two type descriptors; generate the typed surface as
// thin shims" — expressed here as one stamping+calling helper plus
// per-service type assertions, since the module predates generics).
func (c *Client) call(reqTypeID uint32, req ua.Request, respTypeID uint32) (ua.Response, error) {
	c.stamp(req)
	return c.callSync(reqTypeID, req, respTypeID)
}

func (c *Client) callAsyncStamped(reqTypeID uint32, req ua.Request, respTypeID uint32, cb AsyncCallback) (uint32, error) {
	c.stamp(req)
	return c.callAsync(reqTypeID, req, respTypeID, cb)
}

func errUnexpectedType(want string, got interface{}) error {
	return coreerr.Errorf("opcua: unexpected response type %T, want %s", got, want)
}

// Read is Part 4, 5.10.2.
func (c *Client) Read(req *ua.ReadRequest) (*ua.ReadResponse, error) {
	resp, err := c.call(id.ReadRequest_Encoding_DefaultBinary, req, id.ReadResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.ReadResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.ReadResponse", resp)
	}
	return r, nil
}

// ReadAsync is Read's asynchronous counterpart.
func (c *Client) ReadAsync(req *ua.ReadRequest, cb func(*ua.ReadResponse)) (uint32, error) {
	return c.callAsyncStamped(id.ReadRequest_Encoding_DefaultBinary, req, id.ReadResponse_Encoding_DefaultBinary, func(_ uint32, resp ua.Response) {
		r, _ := resp.(*ua.ReadResponse)
		cb(r)
	})
}

// Write is Part 4, 5.10.4.
func (c *Client) Write(req *ua.WriteRequest) (*ua.WriteResponse, error) {
	resp, err := c.call(id.WriteRequest_Encoding_DefaultBinary, req, id.WriteResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.WriteResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.WriteResponse", resp)
	}
	return r, nil
}

// WriteAsync is Write's asynchronous counterpart.
func (c *Client) WriteAsync(req *ua.WriteRequest, cb func(*ua.WriteResponse)) (uint32, error) {
	return c.callAsyncStamped(id.WriteRequest_Encoding_DefaultBinary, req, id.WriteResponse_Encoding_DefaultBinary, func(_ uint32, resp ua.Response) {
		r, _ := resp.(*ua.WriteResponse)
		cb(r)
	})
}

// Browse is Part 4, 5.8.2.
func (c *Client) Browse(req *ua.BrowseRequest) (*ua.BrowseResponse, error) {
	resp, err := c.call(id.BrowseRequest_Encoding_DefaultBinary, req, id.BrowseResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.BrowseResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.BrowseResponse", resp)
	}
	return r, nil
}

// BrowseAsync is Browse's asynchronous counterpart.
func (c *Client) BrowseAsync(req *ua.BrowseRequest, cb func(*ua.BrowseResponse)) (uint32, error) {
	return c.callAsyncStamped(id.BrowseRequest_Encoding_DefaultBinary, req, id.BrowseResponse_Encoding_DefaultBinary, func(_ uint32, resp ua.Response) {
		r, _ := resp.(*ua.BrowseResponse)
		cb(r)
	})
}

// BrowseNext is Part 4, 5.8.3.
func (c *Client) BrowseNext(req *ua.BrowseNextRequest) (*ua.BrowseNextResponse, error) {
	resp, err := c.call(id.BrowseNextRequest_Encoding_DefaultBinary, req, id.BrowseNextResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.BrowseNextResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.BrowseNextResponse", resp)
	}
	return r, nil
}

// BrowseNextAsync is BrowseNext's asynchronous counterpart.
func (c *Client) BrowseNextAsync(req *ua.BrowseNextRequest, cb func(*ua.BrowseNextResponse)) (uint32, error) {
	return c.callAsyncStamped(id.BrowseNextRequest_Encoding_DefaultBinary, req, id.BrowseNextResponse_Encoding_DefaultBinary, func(_ uint32, resp ua.Response) {
		r, _ := resp.(*ua.BrowseNextResponse)
		cb(r)
	})
}

// Call is Part 4, 5.11.2.
func (c *Client) Call(req *ua.CallRequest) (*ua.CallResponse, error) {
	resp, err := c.call(id.CallRequest_Encoding_DefaultBinary, req, id.CallResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.CallResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.CallResponse", resp)
	}
	return r, nil
}

// CallAsync is Call's asynchronous counterpart.
func (c *Client) CallAsync(req *ua.CallRequest, cb func(*ua.CallResponse)) (uint32, error) {
	return c.callAsyncStamped(id.CallRequest_Encoding_DefaultBinary, req, id.CallResponse_Encoding_DefaultBinary, func(_ uint32, resp ua.Response) {
		r, _ := resp.(*ua.CallResponse)
		cb(r)
	})
}

// RegisterNodes is Part 4, 5.8.5.
func (c *Client) RegisterNodes(req *ua.RegisterNodesRequest) (*ua.RegisterNodesResponse, error) {
	resp, err := c.call(id.RegisterNodesRequest_Encoding_DefaultBinary, req, id.RegisterNodesResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.RegisterNodesResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.RegisterNodesResponse", resp)
	}
	return r, nil
}

// UnregisterNodes is Part 4, 5.8.6.
func (c *Client) UnregisterNodes(req *ua.UnregisterNodesRequest) (*ua.UnregisterNodesResponse, error) {
	resp, err := c.call(id.UnregisterNodesRequest_Encoding_DefaultBinary, req, id.UnregisterNodesResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.UnregisterNodesResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.UnregisterNodesResponse", resp)
	}
	return r, nil
}

// CreateSubscription is Part 4, 5.13.2.
func (c *Client) CreateSubscription(req *ua.CreateSubscriptionRequest) (*ua.CreateSubscriptionResponse, error) {
	resp, err := c.call(id.CreateSubscriptionRequest_Encoding_DefaultBinary, req, id.CreateSubscriptionResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.CreateSubscriptionResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.CreateSubscriptionResponse", resp)
	}
	return r, nil
}

// DeleteSubscriptions is Part 4, 5.13.8.
func (c *Client) DeleteSubscriptions(req *ua.DeleteSubscriptionsRequest) (*ua.DeleteSubscriptionsResponse, error) {
	resp, err := c.call(id.DeleteSubscriptionsRequest_Encoding_DefaultBinary, req, id.DeleteSubscriptionsResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.DeleteSubscriptionsResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.DeleteSubscriptionsResponse", resp)
	}
	return r, nil
}

// TransferSubscriptions is Part 4, 5.13.7.
func (c *Client) TransferSubscriptions(req *ua.TransferSubscriptionsRequest) (*ua.TransferSubscriptionsResponse, error) {
	resp, err := c.call(id.TransferSubscriptionsRequest_Encoding_DefaultBinary, req, id.TransferSubscriptionsResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.TransferSubscriptionsResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.TransferSubscriptionsResponse", resp)
	}
	return r, nil
}

// CreateMonitoredItems is Part 4, 5.12.2.
func (c *Client) CreateMonitoredItems(req *ua.CreateMonitoredItemsRequest) (*ua.CreateMonitoredItemsResponse, error) {
	resp, err := c.call(id.CreateMonitoredItemsRequest_Encoding_DefaultBinary, req, id.CreateMonitoredItemsResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.CreateMonitoredItemsResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.CreateMonitoredItemsResponse", resp)
	}
	return r, nil
}

// Republish is Part 4, 5.14.3.
func (c *Client) Republish(req *ua.RepublishRequest) (*ua.RepublishResponse, error) {
	resp, err := c.call(id.RepublishRequest_Encoding_DefaultBinary, req, id.RepublishResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.RepublishResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.RepublishResponse", resp)
	}
	return r, nil
}

// QueryFirst is Part 4, 5.9.2.
func (c *Client) QueryFirst(req *ua.QueryFirstRequest) (*ua.QueryFirstResponse, error) {
	resp, err := c.call(id.QueryFirstRequest_Encoding_DefaultBinary, req, id.QueryFirstResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.QueryFirstResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.QueryFirstResponse", resp)
	}
	return r, nil
}

// QueryNext is Part 4, 5.9.3 (kept distinct from QueryFirst: separate
// binary type ids, separate descriptors — see DESIGN.md).
func (c *Client) QueryNext(req *ua.QueryNextRequest) (*ua.QueryNextResponse, error) {
	resp, err := c.call(id.QueryNextRequest_Encoding_DefaultBinary, req, id.QueryNextResponse_Encoding_DefaultBinary)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*ua.QueryNextResponse)
	if !ok {
		return nil, errUnexpectedType("*ua.QueryNextResponse", resp)
	}
	return r, nil
}
