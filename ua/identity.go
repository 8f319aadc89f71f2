// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// MessageSecurityMode is Part 4, 7.15.
type MessageSecurityMode uint32

const (
	MessageSecurityModeInvalid MessageSecurityMode = 0
	MessageSecurityModeNone    MessageSecurityMode = 1
	MessageSecurityModeSign    MessageSecurityMode = 2
	MessageSecurityModeSignAndEncrypt MessageSecurityMode = 3
)

// SecurityPolicyURINone is the only policy this core implements end to
// end (spec §4.1 "OpenSecureChannel with SecurityPolicy#None"); the rest
// of Part 7's policy catalog is out of scope (spec §1) and is left to a
// future securitypolicy implementation plugged in alongside a real
// binary codec.
const SecurityPolicyURINone = "http://opcfoundation.org/UA/SecurityPolicy#None"

// FormatSecurityPolicyURI normalizes a bare policy name ("None") or a
// full URI into the full URI form, the way the teacher's
// client.SelectEndpoint does.
func FormatSecurityPolicyURI(policy string) string {
	if policy == "" || policy == "None" {
		return SecurityPolicyURINone
	}
	return policy
}

// UserTokenType is Part 4, 7.43.
type UserTokenType uint32

const (
	UserTokenTypeAnonymous UserTokenType = iota
	UserTokenTypeUserName
	UserTokenTypeCertificate
	UserTokenTypeIssuedToken
)

// UserTokenPolicy is Part 4, 7.42.
type UserTokenPolicy struct {
	PolicyID          string
	TokenType         UserTokenType
	IssuedTokenType   string
	IssuerEndpointURL string
	SecurityPolicyURI string
}

// IdentityToken is implemented by the two identity token kinds the
// core's Connect/ConnectUsername entry points construct (spec §4.1).
type IdentityToken interface{ isIdentityToken() }

// AnonymousIdentityToken is Part 4, 7.38.2.
type AnonymousIdentityToken struct {
	PolicyID string
}

func (*AnonymousIdentityToken) isIdentityToken() {}

// UserNameIdentityToken is Part 4, 7.38.3.
type UserNameIdentityToken struct {
	PolicyID            string
	UserName             string
	Password             []byte
	EncryptionAlgorithm string
}

func (*UserNameIdentityToken) isIdentityToken() {}

// SignatureData is Part 4, 7.34.
type SignatureData struct {
	Algorithm string
	Signature []byte
}

// ApplicationDescription is Part 4, 7.1.
type ApplicationDescription struct {
	ApplicationURI      string
	ProductURI          string
	ApplicationName     string
	ApplicationType     uint32
	DiscoveryProfileURI string
	DiscoveryURLs       []string
}

// EndpointDescription is Part 4, 7.10.
type EndpointDescription struct {
	EndpointURL         string
	Server              *ApplicationDescription
	ServerCertificate   []byte
	SecurityMode        MessageSecurityMode
	SecurityPolicyURI   string
	UserIdentityTokens  []*UserTokenPolicy
	TransportProfileURI string
	SecurityLevel       byte
}

// AnonymousPolicyID returns the PolicyID of the first anonymous,
// SecurityMode=None user token policy advertised by endpoints, or the
// conventional default if none advertise one explicitly. Grounded on
// the teacher's unexported client.anonymousPolicyID.
func AnonymousPolicyID(endpoints []*EndpointDescription) string {
	const defaultID = "Anonymous"
	for _, e := range endpoints {
		if e.SecurityMode != MessageSecurityModeNone || e.SecurityPolicyURI != SecurityPolicyURINone {
			continue
		}
		for _, t := range e.UserIdentityTokens {
			if t.TokenType == UserTokenTypeAnonymous {
				return t.PolicyID
			}
		}
	}
	return defaultID
}

// UserNamePolicy returns the UserName token policy advertised by
// endpoints, used by Client.ConnectUsername to pick the policy an
// endpoint expects (spec §4.1 connect_username).
func UserNamePolicy(endpoints []*EndpointDescription) *UserTokenPolicy {
	for _, e := range endpoints {
		for _, t := range e.UserIdentityTokens {
			if t.TokenType == UserTokenTypeUserName {
				return t
			}
		}
	}
	return nil
}
