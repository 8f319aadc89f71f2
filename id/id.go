// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package id holds the binary type ids the core's built-in descriptor
// table is keyed by. The teacher's github.com/gopcua/opcua/id package
// is a generated, multi-thousand-constant table covering the entire
// Part 3 node set; this one only enumerates the *_Encoding_DefaultBinary
// ids for the service pairs this core actually drives end-to-end, since
// full binary encoding is explicitly out of the core's scope (spec §1).
package id

const (
	GetEndpointsRequest_Encoding_DefaultBinary  uint32 = 428
	GetEndpointsResponse_Encoding_DefaultBinary uint32 = 431

	FindServersRequest_Encoding_DefaultBinary  uint32 = 422
	FindServersResponse_Encoding_DefaultBinary uint32 = 425

	FindServersOnNetworkRequest_Encoding_DefaultBinary  uint32 = 12208
	FindServersOnNetworkResponse_Encoding_DefaultBinary uint32 = 12209

	CreateSessionRequest_Encoding_DefaultBinary  uint32 = 461
	CreateSessionResponse_Encoding_DefaultBinary uint32 = 464

	ActivateSessionRequest_Encoding_DefaultBinary  uint32 = 467
	ActivateSessionResponse_Encoding_DefaultBinary uint32 = 470

	CloseSessionRequest_Encoding_DefaultBinary  uint32 = 473
	CloseSessionResponse_Encoding_DefaultBinary uint32 = 476

	ReadRequest_Encoding_DefaultBinary  uint32 = 631
	ReadResponse_Encoding_DefaultBinary uint32 = 634

	WriteRequest_Encoding_DefaultBinary  uint32 = 673
	WriteResponse_Encoding_DefaultBinary uint32 = 676

	BrowseRequest_Encoding_DefaultBinary  uint32 = 527
	BrowseResponse_Encoding_DefaultBinary uint32 = 530

	BrowseNextRequest_Encoding_DefaultBinary  uint32 = 533
	BrowseNextResponse_Encoding_DefaultBinary uint32 = 536

	CallRequest_Encoding_DefaultBinary  uint32 = 712
	CallResponse_Encoding_DefaultBinary uint32 = 715

	RegisterNodesRequest_Encoding_DefaultBinary  uint32 = 560
	RegisterNodesResponse_Encoding_DefaultBinary uint32 = 563

	UnregisterNodesRequest_Encoding_DefaultBinary  uint32 = 566
	UnregisterNodesResponse_Encoding_DefaultBinary uint32 = 569

	CreateSubscriptionRequest_Encoding_DefaultBinary  uint32 = 787
	CreateSubscriptionResponse_Encoding_DefaultBinary uint32 = 790

	DeleteSubscriptionsRequest_Encoding_DefaultBinary  uint32 = 847
	DeleteSubscriptionsResponse_Encoding_DefaultBinary uint32 = 850

	CreateMonitoredItemsRequest_Encoding_DefaultBinary  uint32 = 751
	CreateMonitoredItemsResponse_Encoding_DefaultBinary uint32 = 754

	PublishRequest_Encoding_DefaultBinary  uint32 = 826
	PublishResponse_Encoding_DefaultBinary uint32 = 829

	RepublishRequest_Encoding_DefaultBinary  uint32 = 832
	RepublishResponse_Encoding_DefaultBinary uint32 = 835

	TransferSubscriptionsRequest_Encoding_DefaultBinary  uint32 = 841
	TransferSubscriptionsResponse_Encoding_DefaultBinary uint32 = 844

	QueryFirstRequest_Encoding_DefaultBinary  uint32 = 615
	QueryFirstResponse_Encoding_DefaultBinary uint32 = 618

	QueryNextRequest_Encoding_DefaultBinary  uint32 = 621
	QueryNextResponse_Encoding_DefaultBinary uint32 = 624

	OpenSecureChannelRequest_Encoding_DefaultBinary  uint32 = 446
	OpenSecureChannelResponse_Encoding_DefaultBinary uint32 = 449

	CloseSecureChannelRequest_Encoding_DefaultBinary  uint32 = 452
	CloseSecureChannelResponse_Encoding_DefaultBinary uint32 = 455

	Server_ServerStatus_State uint32 = 2259
)
