// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

import (
	"github.com/imatic-tech/opcua/id"
	"github.com/imatic-tech/opcua/ua"
)

// responseZeroValues maps a response's binary type id to a constructor
// for its zero value, so the Multiplexer can manufacture a failure
// response of the right concrete Go type (spec §7 item 5) without a
// runtime reflect.New over an interface{} the way the teacher's
// safeAssign helper does it for decoded values.
var responseZeroValues = map[uint32]func() ua.Response{
	id.GetEndpointsResponse_Encoding_DefaultBinary:           func() ua.Response { return &ua.GetEndpointsResponse{} },
	id.FindServersResponse_Encoding_DefaultBinary:            func() ua.Response { return &ua.FindServersResponse{} },
	id.FindServersOnNetworkResponse_Encoding_DefaultBinary:   func() ua.Response { return &ua.FindServersOnNetworkResponse{} },
	id.CreateSessionResponse_Encoding_DefaultBinary:          func() ua.Response { return &ua.CreateSessionResponse{} },
	id.ActivateSessionResponse_Encoding_DefaultBinary:        func() ua.Response { return &ua.ActivateSessionResponse{} },
	id.CloseSessionResponse_Encoding_DefaultBinary:           func() ua.Response { return &ua.CloseSessionResponse{} },
	id.ReadResponse_Encoding_DefaultBinary:                   func() ua.Response { return &ua.ReadResponse{} },
	id.WriteResponse_Encoding_DefaultBinary:                  func() ua.Response { return &ua.WriteResponse{} },
	id.BrowseResponse_Encoding_DefaultBinary:                 func() ua.Response { return &ua.BrowseResponse{} },
	id.BrowseNextResponse_Encoding_DefaultBinary:             func() ua.Response { return &ua.BrowseNextResponse{} },
	id.CallResponse_Encoding_DefaultBinary:                   func() ua.Response { return &ua.CallResponse{} },
	id.RegisterNodesResponse_Encoding_DefaultBinary:          func() ua.Response { return &ua.RegisterNodesResponse{} },
	id.UnregisterNodesResponse_Encoding_DefaultBinary:        func() ua.Response { return &ua.UnregisterNodesResponse{} },
	id.CreateSubscriptionResponse_Encoding_DefaultBinary:     func() ua.Response { return &ua.CreateSubscriptionResponse{} },
	id.DeleteSubscriptionsResponse_Encoding_DefaultBinary:    func() ua.Response { return &ua.DeleteSubscriptionsResponse{} },
	id.CreateMonitoredItemsResponse_Encoding_DefaultBinary:   func() ua.Response { return &ua.CreateMonitoredItemsResponse{} },
	id.PublishResponse_Encoding_DefaultBinary:                func() ua.Response { return &ua.PublishResponse{} },
	id.RepublishResponse_Encoding_DefaultBinary:              func() ua.Response { return &ua.RepublishResponse{} },
	id.TransferSubscriptionsResponse_Encoding_DefaultBinary:  func() ua.Response { return &ua.TransferSubscriptionsResponse{} },
	id.QueryFirstResponse_Encoding_DefaultBinary:             func() ua.Response { return &ua.QueryFirstResponse{} },
	id.QueryNextResponse_Encoding_DefaultBinary:              func() ua.Response { return &ua.QueryNextResponse{} },
	id.OpenSecureChannelResponse_Encoding_DefaultBinary:      func() ua.Response { return &ua.OpenSecureChannelResponse{} },
	id.CloseSecureChannelResponse_Encoding_DefaultBinary:     func() ua.Response { return &ua.CloseSecureChannelResponse{} },
}
