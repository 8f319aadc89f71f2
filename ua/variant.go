// Copyright 2018-2020 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

import (
	"bytes"
	"encoding/binary"
	"math"
)

// VariantType tags the handful of builtin types this core's reference
// codec round-trips. A production deployment plugs in a full Part 6
// Variant codec via Configuration.CustomTypeDescriptors; this one only
// needs to be good enough to exercise Read/Write end to end (spec §8
// scenario 2).
type VariantType byte

const (
	VariantNull VariantType = iota
	VariantBool
	VariantInt32
	VariantUint32
	VariantFloat64
	VariantString
)

// Variant is Part 6, 5.1.6: a tagged union carrying a single value.
type Variant struct {
	Type  VariantType
	Value interface{}
}

// MustVariant wraps a Go value in a Variant, panicking on an
// unsupported type. Mirrors the teacher's ua.MustVariant convenience
// used throughout uatest/.
func MustVariant(v interface{}) *Variant {
	vv, err := NewVariant(v)
	if err != nil {
		panic(err)
	}
	return vv
}

// NewVariant wraps a Go value in a Variant.
func NewVariant(v interface{}) (*Variant, error) {
	switch x := v.(type) {
	case nil:
		return &Variant{Type: VariantNull}, nil
	case bool:
		return &Variant{Type: VariantBool, Value: x}, nil
	case int32:
		return &Variant{Type: VariantInt32, Value: x}, nil
	case uint32:
		return &Variant{Type: VariantUint32, Value: x}, nil
	case float64:
		return &Variant{Type: VariantFloat64, Value: x}, nil
	case string:
		return &Variant{Type: VariantString, Value: x}, nil
	default:
		return nil, errWrongType("bool, int32, uint32, float64 or string", v)
	}
}

func encodeVariant(buf *bytes.Buffer, v *Variant) {
	if v == nil {
		buf.WriteByte(byte(VariantNull))
		return
	}
	buf.WriteByte(byte(v.Type))
	switch v.Type {
	case VariantBool:
		if v.Value.(bool) {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case VariantInt32:
		writeInt32(buf, v.Value.(int32))
	case VariantUint32:
		writeUint32(buf, v.Value.(uint32))
	case VariantFloat64:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v.Value.(float64)))
		buf.Write(tmp[:])
	case VariantString:
		writeString(buf, v.Value.(string))
	}
}

func decodeVariant(r *byteReader) (*Variant, error) {
	if r.pos >= len(r.b) {
		return nil, errShortBuffer("variant tag")
	}
	t := VariantType(r.b[r.pos])
	r.pos++
	switch t {
	case VariantNull:
		return &Variant{Type: VariantNull}, nil
	case VariantBool:
		if r.pos >= len(r.b) {
			return nil, errShortBuffer("variant bool")
		}
		b := r.b[r.pos] != 0
		r.pos++
		return &Variant{Type: VariantBool, Value: b}, nil
	case VariantInt32:
		v, err := r.int32()
		return &Variant{Type: VariantInt32, Value: v}, err
	case VariantUint32:
		v, err := r.uint32()
		return &Variant{Type: VariantUint32, Value: v}, err
	case VariantFloat64:
		if r.pos+8 > len(r.b) {
			return nil, errShortBuffer("variant float64")
		}
		bits := binary.LittleEndian.Uint64(r.b[r.pos:])
		r.pos += 8
		return &Variant{Type: VariantFloat64, Value: math.Float64frombits(bits)}, nil
	case VariantString:
		v, err := r.string()
		return &Variant{Type: VariantString, Value: v}, err
	default:
		return nil, errWrongType("known variant tag", t)
	}
}
