// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"
	"testing"

	"github.com/pascaldekloe/goe/verify"
)

func TestNodeIDRoundTrip(t *testing.T) {
	cases := []*NodeID{
		NewNumericNodeID(0, 0),
		NewNumericNodeID(2, 2258),
		NewNumericNodeID(7, 1),
		NewStringNodeID(3, "a.channel.tag"),
	}
	for _, want := range cases {
		var buf bytes.Buffer
		writeNodeID(&buf, want)
		r := &byteReader{b: buf.Bytes()}
		got, err := r.nodeID()
		if err != nil {
			t.Fatalf("nodeID() error for %v: %v", want, err)
		}
		verify.Values(t, want.String(), got, want)
	}
}

func TestRequestHeaderRoundTrip(t *testing.T) {
	want := &RequestHeader{
		AuthenticationToken: NewNumericNodeID(1, 42),
		RequestHandle:       7,
		ReturnDiagnostics:   0,
		AuditEntryID:        "",
		TimeoutHint:         5000,
	}
	var buf bytes.Buffer
	writeRequestHeader(&buf, want)
	r := &byteReader{b: buf.Bytes()}
	got, err := readRequestHeader(r)
	if err != nil {
		t.Fatalf("readRequestHeader() error: %v", err)
	}
	want.Timestamp = got.Timestamp // encoded/decoded separately, not under test here
	verify.Values(t, "RequestHeader", got, want)
}

func TestVariantRoundTrip(t *testing.T) {
	cases := []*Variant{
		MustVariant(int32(-7)),
		MustVariant(uint32(7)),
		MustVariant(3.5),
		MustVariant("hello"),
		MustVariant(true),
	}
	for _, want := range cases {
		var buf bytes.Buffer
		encodeVariant(&buf, want)
		r := &byteReader{b: buf.Bytes()}
		got, err := decodeVariant(r)
		if err != nil {
			t.Fatalf("decodeVariant() error: %v", err)
		}
		verify.Values(t, "Variant", got, want)
	}
}
