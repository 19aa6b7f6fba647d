// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildPersonStream builds a Person object ("Alice", age 30) whose
// "siblings" field is a java.util.ArrayList holding two more Person
// instances ("Bob", "Carol") that reuse the same class descriptor handle as
// the root object — exercising field ordering, nested wellknown collection
// decoding, and class-descriptor reference fidelity (spec §8, scenario D).
func buildPersonStream() []byte {
	s := newStream()

	writePerson := func(name string, age int32, siblingsNull bool, classDescAlreadySeen bool) {
		s.tag(tcObject)
		if classDescAlreadySeen {
			// REFERENCE to the first Person class descriptor, handle 0x7E0000:
			// the class descriptor registers itself before the object that
			// carries it claims a handle (spec §4.5 "classDesc newHandle").
			s.tag(tcReference)
			s.i32(handleBase)
		} else {
			s.tag(tcClassDesc)
			s.utf("Person")
			s.i64(1)
			s.u8(scSerializable)
			s.u16(3)
			s.u8(typeObject)
			s.utf("name")
			s.rawString("Ljava.lang.String;")
			s.u8(typeInt)
			s.utf("age")
			s.u8(typeObject)
			s.utf("siblings")
			s.rawString("Ljava.util.ArrayList;")
			s.tag(tcEndBlockData)
			s.tag(tcNull)
		}
		s.rawString(name)
		s.i32(age)
		if siblingsNull {
			s.tag(tcNull)
		}
	}

	// The class descriptor is read (and registers itself) before the object
	// that carries it claims a handle: Person's class descriptor gets
	// 0x7E0000, its two field class-name string literals 0x7E0001/0x7E0002,
	// and the root Person object itself 0x7E0003.
	s.tag(tcObject)
	s.tag(tcClassDesc)
	s.utf("Person")
	s.i64(1)
	s.u8(scSerializable)
	s.u16(3)
	s.u8(typeObject)
	s.utf("name")
	s.rawString("Ljava.lang.String;")
	s.u8(typeInt)
	s.utf("age")
	s.u8(typeObject)
	s.utf("siblings")
	s.rawString("Ljava.util.ArrayList;")
	s.tag(tcEndBlockData)
	s.tag(tcNull)
	s.rawString("Alice")
	s.i32(30)

	// siblings field: a java.util.ArrayList.
	s.tag(tcObject)
	s.simpleClassDesc("java.util.ArrayList", scSerializable|scWriteMethod)
	s.tag(tcBlockData)
	s.u8(4)
	s.i32(2) // reported size, filtered out by collectionItems
	writePerson("Bob", 5, true, true)
	writePerson("Carol", 3, true, true)
	s.tag(tcEndBlockData)

	return s.bytes()
}

func TestDecodeObjectWithNestedWellKnownCollectionAndSharedClassDesc(t *testing.T) {
	v, err := ParseStream(bytes.NewReader(buildPersonStream()), nil)
	require.NoError(t, err)
	require.Equal(t, KindObject, v.Kind)
	require.Len(t, v.Levels, 1)

	root := v.Levels[0]
	require.Equal(t, "Person", root.ClassName)
	require.Equal(t, "Alice", root.Fields["name"].Str)
	require.Equal(t, int32(30), root.Fields["age"].Int)

	siblings := root.Fields["siblings"]
	require.Equal(t, KindList, siblings.Kind)
	require.Len(t, siblings.Elements, 2)

	bob := siblings.Elements[0]
	carol := siblings.Elements[1]
	require.Equal(t, "Bob", bob.Levels[0].Fields["name"].Str)
	require.Equal(t, "Carol", carol.Levels[0].Fields["name"].Str)
	require.Equal(t, KindNull, bob.Levels[0].Fields["siblings"].Kind)

	// All three Person instances must share the exact same *ClassDesc,
	// proving the REFERENCE tokens resolved back to the first decoded one.
	require.Same(t, v.Class, bob.Class)
	require.Same(t, v.Class, carol.Class)
}

func TestDecodeObjectMissingClassDescriptorFails(t *testing.T) {
	s := newStream()
	s.tag(tcObject)
	s.tag(tcNull)

	_, err := ParseStream(bytes.NewReader(s.bytes()), nil)
	require.Error(t, err)
}

func TestDecodeObjectReferenceToUnknownHandleFails(t *testing.T) {
	s := newStream()
	s.tag(tcReference)
	s.i32(handleBase + 99)

	_, err := ParseStream(bytes.NewReader(s.bytes()), nil)
	require.Error(t, err)
}
