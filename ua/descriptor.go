// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"
	"sync"

	"github.com/imatic-tech/opcua/internal/coreerr"
)

// TypeDescriptor is the collaborator contract spec §6 places outside the
// core's scope: "the core consumes a type-descriptor abstraction that
// can encode a request value and decode a response value of a given
// descriptor." The core never hand-rolls OPC UA Binary on its own; it
// only ever calls through this interface, looked up by BinaryTypeID in
// the union of the built-in table and Configuration.customTypeDescriptors.
//
// Init/Clear exist because the C client this core is modeled on
// (open62541) manages request/response memory manually; Go's allocator
// makes them no-ops here, but the methods stay so a custom descriptor
// plugged in via Configuration can still observe construction/teardown
// if it wants to (e.g. to pool buffers).
type TypeDescriptor interface {
	BinaryTypeID() uint32
	EncodedSize(value interface{}) int
	Encode(value interface{}, buf *bytes.Buffer) error
	Decode(buf []byte) (interface{}, error)
	Init(out interface{})
	Clear(value interface{})
}

// funcDescriptor is the concrete TypeDescriptor every built-in message in
// this package registers itself as; a custom descriptor plugged in via
// Configuration.CustomTypeDescriptors need not use this helper type, it
// only has to satisfy the interface above.
type funcDescriptor struct {
	id        uint32
	size      func(interface{}) int
	encode    func(interface{}, *bytes.Buffer) error
	decode    func([]byte) (interface{}, error)
}

func (d *funcDescriptor) BinaryTypeID() uint32 { return d.id }
func (d *funcDescriptor) EncodedSize(v interface{}) int {
	if d.size == nil {
		return 0
	}
	return d.size(v)
}
func (d *funcDescriptor) Encode(v interface{}, buf *bytes.Buffer) error { return d.encode(v, buf) }
func (d *funcDescriptor) Decode(b []byte) (interface{}, error)          { return d.decode(b) }
func (d *funcDescriptor) Init(interface{})                              {}
func (d *funcDescriptor) Clear(interface{})                             {}

var (
	builtinMu    sync.RWMutex
	builtinTable = map[uint32]TypeDescriptor{}
)

// registerBuiltin adds a descriptor to the built-in table. Called from
// package init() in the per-service-pair files (attribute.go,
// discovery.go, nodemanagement.go, securechannel.go, session.go,
// subscription.go, view.go).
func registerBuiltin(d TypeDescriptor) {
	builtinMu.Lock()
	defer builtinMu.Unlock()
	builtinTable[d.BinaryTypeID()] = d
}

// Lookup resolves a binary type id against custom first, then the
// built-in table, matching spec §6 ("union of a built-in table and
// customTypeDescriptors", custom takes precedence so applications can
// override a built-in encoding).
func Lookup(binaryTypeID uint32, custom []TypeDescriptor) (TypeDescriptor, bool) {
	for _, d := range custom {
		if d.BinaryTypeID() == binaryTypeID {
			return d, true
		}
	}
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	d, ok := builtinTable[binaryTypeID]
	return d, ok
}

// errWrongType is returned by a descriptor's Decode/Encode when handed a
// value of the wrong Go type.
func errWrongType(want string, got interface{}) error {
	return coreerr.Errorf("ua: expected %s, got %T", want, got)
}
