// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildWrapperObject builds a boxed-primitive instance: one declared field
// named fieldName of the given primitive type code, written via writeValue.
func buildWrapperObject(className, fieldName string, typeCode byte, writeValue func(*streamBuilder)) []byte {
	s := newStream()
	s.tag(tcObject)
	s.tag(tcClassDesc)
	s.utf(className)
	s.i64(1)
	s.u8(scSerializable)
	s.u16(1)
	s.u8(typeCode)
	s.utf(fieldName)
	s.tag(tcEndBlockData)
	s.tag(tcNull)
	writeValue(s)
	return s.bytes()
}

func TestWellKnownDoubleWrapper(t *testing.T) {
	data := buildWrapperObject("java.lang.Double", "value", typeDouble, func(s *streamBuilder) {
		s.f64(10.0)
	})
	v, err := ParseStream(bytes.NewReader(data), nil)
	require.NoError(t, err)
	require.Equal(t, KindDouble, v.Kind)
	require.Equal(t, 10.0, v.Float64)
}

func TestWellKnownIntegerWrapper(t *testing.T) {
	data := buildWrapperObject("java.lang.Integer", "value", typeInt, func(s *streamBuilder) {
		s.i32(42)
	})
	v, err := ParseStream(bytes.NewReader(data), nil)
	require.NoError(t, err)
	require.Equal(t, KindInt, v.Kind)
	require.Equal(t, int32(42), v.Int)
}

func TestWellKnownBooleanWrapper(t *testing.T) {
	data := buildWrapperObject("java.lang.Boolean", "value", typeBoolean, func(s *streamBuilder) {
		s.u8(1)
	})
	v, err := ParseStream(bytes.NewReader(data), nil)
	require.NoError(t, err)
	require.Equal(t, KindBool, v.Kind)
	require.True(t, v.Bool)
}

// buildHashMapStream builds a java.util.HashMap with two entries, keys
// boxed java.lang.Integer and string values (spec §8, scenario F).
func buildHashMapStream() []byte {
	s := newStream()
	s.tag(tcObject)
	s.simpleClassDesc("java.util.HashMap", scSerializable|scWriteMethod)
	s.tag(tcBlockData)
	s.u8(8) // loadFactor float + threshold int, contents irrelevant to the decoder
	s.raw(0, 0, 0, 0, 0, 0, 0, 0)
	s.tag(tcBlockData)
	s.u8(4)
	s.i32(2)

	writeBoxedInt := func(val int32, firstOccurrence bool) {
		s.tag(tcObject)
		if firstOccurrence {
			s.tag(tcClassDesc)
			s.utf("java.lang.Integer")
			s.i64(1)
			s.u8(scSerializable)
			s.u16(1)
			s.u8(typeInt)
			s.utf("value")
			s.tag(tcEndBlockData)
			s.tag(tcNull)
		} else {
			// Handle numbering: the class descriptor registers itself before
			// the object that carries it claims a handle (spec §4.5), so:
			// 0=HashMap classDesc, 1=HashMap object, 2=Integer classDesc,
			// 3=first Integer object, 4="one" string. The REFERENCE here
			// resolves the Integer class descriptor, handle 2.
			s.tag(tcReference)
			s.i32(handleBase + 2)
		}
		s.i32(val)
	}

	writeBoxedInt(1, true)
	s.rawString("one")
	writeBoxedInt(2, false)
	s.rawString("two")
	s.tag(tcEndBlockData)
	return s.bytes()
}

func TestWellKnownHashMap(t *testing.T) {
	v, err := ParseStream(bytes.NewReader(buildHashMapStream()), nil)
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind)
	require.Len(t, v.Entries, 2)

	require.Equal(t, KindInt, v.Entries[0].Key.Kind)
	require.Equal(t, int32(1), v.Entries[0].Key.Int)
	require.Equal(t, "one", v.Entries[0].Value.Str)

	require.Equal(t, int32(2), v.Entries[1].Key.Int)
	require.Equal(t, "two", v.Entries[1].Value.Str)
}

// buildBitSetStream builds a java.util.BitSet with bits {0,2,4,6,8} set,
// backed by a single declared field "bits" of type long[] (spec §8, scenario E).
func buildBitSetStream() []byte {
	var word int64
	for _, bit := range []uint{0, 2, 4, 6, 8} {
		word |= 1 << bit
	}

	s := newStream()
	s.tag(tcObject)
	s.tag(tcClassDesc)
	s.utf("java.util.BitSet")
	s.i64(1)
	s.u8(scSerializable)
	s.u16(1)
	s.u8(typeObject)
	s.utf("bits")
	s.rawString("[J")
	s.tag(tcEndBlockData)
	s.tag(tcNull)

	s.tag(tcArray)
	s.simpleClassDesc("[J", scSerializable)
	s.i32(1)
	s.i64(word)

	return s.bytes()
}

func TestWellKnownBitSet(t *testing.T) {
	v, err := ParseStream(bytes.NewReader(buildBitSetStream()), nil)
	require.NoError(t, err)
	require.Equal(t, KindSet, v.Kind)

	got := make(map[int32]bool)
	for _, e := range v.Elements {
		got[e.Int] = true
	}
	for _, bit := range []int32{0, 2, 4, 6, 8} {
		require.True(t, got[bit], "bit %d should be set", bit)
	}
	require.Len(t, v.Elements, 5)
}
