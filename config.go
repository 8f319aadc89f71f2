// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package opcua

import (
	"time"

	"github.com/imatic-tech/opcua/uacp"
	"github.com/imatic-tech/opcua/ua"
)

// Configuration is immutable after Client creation (spec §3). A Client
// is always built through New(), which applies a chain of Options over
// DefaultConfiguration the way the teacher's NewClient(endpoint,
// opts...) applies Options over DefaultClientConfig().
type Configuration struct {
	SyncTimeout                time.Duration
	SecureChannelLifetime      time.Duration
	LocalConnectionConfig      uacp.LocalConnectionConfig
	ConnectionFactory          uacp.ConnectionFactory
	CustomTypeDescriptors      []ua.TypeDescriptor
	StateCallback              StateCallback
	OutstandingPublishRequests int
	MaxPendingRequests         int
	ReentrancyLimit            int
	DialTimeout                time.Duration
}

// DefaultConfiguration mirrors the teacher's DefaultClientConfig: every
// field has a sane production default, so New(endpointURL) with no
// options produces a usable client.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		SyncTimeout:                5 * time.Second,
		SecureChannelLifetime:      10 * time.Minute,
		LocalConnectionConfig:      uacp.DefaultLocalConnectionConfig(),
		OutstandingPublishRequests: 0,
		MaxPendingRequests:         1024,
		ReentrancyLimit:            4,
		DialTimeout:                5 * time.Second,
	}
}

// Option mutates a Configuration at construction time. Grounded on the
// teacher's functional-options Option/ApplyConfig pattern.
type Option func(*Configuration)

// SyncTimeout overrides the deadline for a synchronous service call
// (spec §3 syncTimeoutMs, default 5000ms).
func SyncTimeout(d time.Duration) Option {
	return func(c *Configuration) { c.SyncTimeout = d }
}

// SecureChannelLifetime overrides the negotiated channel lifetime
// upper bound requested in OpenSecureChannel (spec §3
// secureChannelLifetimeMs, default 600000ms).
func SecureChannelLifetime(d time.Duration) Option {
	return func(c *Configuration) { c.SecureChannelLifetime = d }
}

// WithConnectionFactory overrides the transport plugin used to dial an
// endpoint URL (spec §3 connectionFactory). Tests substitute an
// in-memory fake here instead of uacp.DialTCP.
func WithConnectionFactory(f uacp.ConnectionFactory) Option {
	return func(c *Configuration) { c.ConnectionFactory = f }
}

// WithStateCallback registers an observer notified synchronously on
// every state transition (spec §3 stateCallback).
func WithStateCallback(cb StateCallback) Option {
	return func(c *Configuration) { c.StateCallback = cb }
}

// WithCustomTypeDescriptors extends the built-in descriptor table
// (spec §3 customTypeDescriptors); entries here take precedence over
// built-ins sharing the same binary type id.
func WithCustomTypeDescriptors(d ...ua.TypeDescriptor) Option {
	return func(c *Configuration) { c.CustomTypeDescriptors = append(c.CustomTypeDescriptors, d...) }
}

// OutstandingPublishRequests sets how many Publish requests the
// Subscription Pump keeps in flight once a Session exists (spec §3
// outstandingPublishRequests, 0 disables the pump).
func OutstandingPublishRequests(n int) Option {
	return func(c *Configuration) { c.OutstandingPublishRequests = n }
}

// MaxPendingRequests bounds the Multiplexer's outstanding-request
// count; beyond it dispatch fails with BadTooManyOperations (spec
// §4.3 back-pressure, modeling the server-advertised maxRequestCount).
func MaxPendingRequests(n int) Option {
	return func(c *Configuration) { c.MaxPendingRequests = n }
}

// ReentrancyLimit bounds nested sync-call re-entrance into the event
// loop (spec §5, default 4); deeper nesting fails with
// BadInternalError.
func ReentrancyLimit(n int) Option {
	return func(c *Configuration) { c.ReentrancyLimit = n }
}

// DialTimeout bounds the initial TCP dial and HEL/ACK handshake.
func DialTimeout(d time.Duration) Option {
	return func(c *Configuration) { c.DialTimeout = d }
}

func applyOptions(opts ...Option) *Configuration {
	cfg := DefaultConfiguration()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
