// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import "fmt"

// StatusCode is the OPC UA status code carried in every responseHeader
// (spec §6). It implements error so service-level failures can be
// returned and compared the same way the teacher's client.go does
// (e.g. "return ua.StatusBadServerNotConnected").
type StatusCode uint32

// Error implements error.
func (s StatusCode) Error() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StatusCode(0x%08x)", uint32(s))
}

// String implements fmt.Stringer.
func (s StatusCode) String() string { return s.Error() }

// IsGood reports whether the severity bits indicate success.
func (s StatusCode) IsGood() bool { return uint32(s)&0xC0000000 == 0 }

// IsBad reports whether the severity bits indicate failure.
func (s StatusCode) IsBad() bool { return uint32(s)&0x80000000 != 0 }

// The boundary status codes used by the core (spec §6). Numeric values
// follow the Part 6 StatusCode allocation so they remain interoperable
// with a real OPC UA server/wire decoder; the core only ever compares
// these symbolically, never by their numeric encoding.
const (
	StatusOK                       StatusCode = 0x00000000
	StatusBad                      StatusCode = 0x80000000
	StatusBadTimeout                StatusCode = 0x800A0000
	StatusBadShutdown               StatusCode = 0x800C0000
	StatusBadSecureChannelClosed     StatusCode = 0x80860000
	StatusBadCommunicationError      StatusCode = 0x80050000
	StatusBadTooManyOperations       StatusCode = 0x80100000
	StatusBadTooManyPublishRequests  StatusCode = 0x80780000
	StatusBadNoSubscription          StatusCode = 0x80790000
	StatusBadInvalidArgument         StatusCode = 0x80AB0000
	StatusBadInternalError           StatusCode = 0x80020000
	StatusBadServerNotConnected      StatusCode = 0x800D0000
	StatusBadConnectionClosed        StatusCode = 0x80AE0000
	StatusBadSessionClosed           StatusCode = 0x80260000
	StatusBadSessionIDInvalid        StatusCode = 0x80250000
	StatusBadSecureChannelIDInvalid  StatusCode = 0x80220000
	StatusBadSubscriptionIDInvalid   StatusCode = 0x80280000
	StatusBadUnknownResponse         StatusCode = 0x80090000
	StatusBadDataTypeIDUnknown       StatusCode = 0x80110000
	StatusBadUserAccessDenied        StatusCode = 0x801F0000
	StatusBadMessageNotAvailable     StatusCode = 0x807B0000
	StatusBadRequestHeaderInvalid    StatusCode = 0x802A0000
	StatusBadCertificateInvalid      StatusCode = 0x80120000
)

var statusNames = map[StatusCode]string{
	StatusOK:                        "Good",
	StatusBad:                       "Bad",
	StatusBadTimeout:                "BadTimeout",
	StatusBadShutdown:               "BadShutdown",
	StatusBadSecureChannelClosed:    "BadSecureChannelClosed",
	StatusBadCommunicationError:     "BadCommunicationError",
	StatusBadTooManyOperations:      "BadTooManyOperations",
	StatusBadTooManyPublishRequests: "BadTooManyPublishRequests",
	StatusBadNoSubscription:         "BadNoSubscription",
	StatusBadInvalidArgument:        "BadInvalidArgument",
	StatusBadInternalError:          "BadInternalError",
	StatusBadServerNotConnected:     "BadServerNotConnected",
	StatusBadConnectionClosed:       "BadConnectionClosed",
	StatusBadSessionClosed:          "BadSessionClosed",
	StatusBadSessionIDInvalid:       "BadSessionIDInvalid",
	StatusBadSecureChannelIDInvalid: "BadSecureChannelIDInvalid",
	StatusBadSubscriptionIDInvalid:  "BadSubscriptionIDInvalid",
	StatusBadUnknownResponse:        "BadUnknownResponse",
	StatusBadDataTypeIDUnknown:      "BadDataTypeIDUnknown",
	StatusBadUserAccessDenied:       "BadUserAccessDenied",
	StatusBadMessageNotAvailable:    "BadMessageNotAvailable",
	StatusBadRequestHeaderInvalid:   "BadRequestHeaderInvalid",
	StatusBadCertificateInvalid:     "BadCertificateInvalid",
}
