// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/imatic-tech/opcua/internal/coreerr"
)

// NodeIDType is the identifier encoding used within a NodeID.
type NodeIDType uint8

const (
	NodeIDTypeNumeric NodeIDType = iota
	NodeIDTypeString
	NodeIDTypeGUID
	NodeIDTypeOpaque
)

// NodeID identifies a node in the server's address space (Part 3, 8.2.1).
// The core treats NodeIDs opaquely except where it must format or parse
// one for logging/discovery; full GUID/Opaque support is left to the
// pluggable binary codec (spec §1, out of scope here).
type NodeID struct {
	NamespaceIndex uint16
	Type           NodeIDType
	IntID          uint32
	StringID       string
}

// NewNumericNodeID builds a numeric NodeID, e.g. ns=0;i=2258.
func NewNumericNodeID(ns uint16, id uint32) *NodeID {
	return &NodeID{NamespaceIndex: ns, Type: NodeIDTypeNumeric, IntID: id}
}

// NewStringNodeID builds a string NodeID, e.g. ns=2;s=rw_bool.
func NewStringNodeID(ns uint16, id string) *NodeID {
	return &NodeID{NamespaceIndex: ns, Type: NodeIDTypeString, StringID: id}
}

// String renders the NodeID in the standard ns=<ns>;<type>=<id> form.
func (n *NodeID) String() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	if n.NamespaceIndex != 0 {
		fmt.Fprintf(&b, "ns=%d;", n.NamespaceIndex)
	}
	switch n.Type {
	case NodeIDTypeString:
		fmt.Fprintf(&b, "s=%s", n.StringID)
	default:
		fmt.Fprintf(&b, "i=%d", n.IntID)
	}
	return b.String()
}

// ParseNodeID parses the standard ns=<ns>;i=<id> / ns=<ns>;s=<id> form.
func ParseNodeID(s string) (*NodeID, error) {
	id := &NodeID{}
	for _, part := range strings.Split(s, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, coreerr.Errorf("invalid node id %q", s)
		}
		switch kv[0] {
		case "ns":
			v, err := strconv.ParseUint(kv[1], 10, 16)
			if err != nil {
				return nil, coreerr.Wrap(err, "invalid namespace index")
			}
			id.NamespaceIndex = uint16(v)
		case "i":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil {
				return nil, coreerr.Wrap(err, "invalid numeric identifier")
			}
			id.Type = NodeIDTypeNumeric
			id.IntID = uint32(v)
		case "s":
			id.Type = NodeIDTypeString
			id.StringID = kv[1]
		default:
			return nil, coreerr.Errorf("invalid node id component %q", part)
		}
	}
	return id, nil
}

// Equal reports whether two NodeIDs identify the same node.
func (n *NodeID) Equal(o *NodeID) bool {
	if n == nil || o == nil {
		return n == o
	}
	return *n == *o
}
