// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import "time"

// RequestHeader is Part 4, 7.29 RequestHeader. Every request descriptor
// in this package embeds it so the channel layer can stamp a fresh
// RequestHandle and the Client, for session services, the
// authentication token without reaching into service-specific fields.
type RequestHeader struct {
	AuthenticationToken *NodeID
	Timestamp           time.Time
	RequestHandle       uint32
	ReturnDiagnostics   uint32
	AuditEntryID        string
	TimeoutHint         uint32
}

// ResponseHeader is Part 4, 7.30 ResponseHeader. ServiceResult is the
// status code every sync/async caller inspects per spec §7.
type ResponseHeader struct {
	Timestamp     time.Time
	RequestHandle uint32
	ServiceResult StatusCode
	StringTable   []string
}

// Request is implemented by every request message. Header returns a
// pointer so the Client can stamp AuthenticationToken and the channel
// layer RequestHandle in place before encoding.
type Request interface {
	Header() *RequestHeader
}

// Response is implemented by every response message.
type Response interface {
	Header() *ResponseHeader
}
