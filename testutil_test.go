// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

import (
	"bytes"
	"encoding/binary"
	"math"
)

// streamBuilder assembles literal byte streams for tests. There are no
// binary fixtures in this repo's origin, so every test constructs its wire
// bytes directly the way other_examples/victorgawk-java2json-go's own unit
// tests build sample streams by hand.
type streamBuilder struct {
	buf bytes.Buffer
}

// newStream starts a builder already holding the magic and version header.
func newStream() *streamBuilder {
	s := &streamBuilder{}
	s.u16(uint16(streamMagic))
	s.u16(uint16(streamVersion))
	return s
}

func (s *streamBuilder) tag(b byte) *streamBuilder {
	s.buf.WriteByte(b)
	return s
}

func (s *streamBuilder) u8(v uint8) *streamBuilder {
	s.buf.WriteByte(v)
	return s
}

func (s *streamBuilder) u16(v uint16) *streamBuilder {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	s.buf.Write(b[:])
	return s
}

func (s *streamBuilder) i32(v int32) *streamBuilder {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	s.buf.Write(b[:])
	return s
}

func (s *streamBuilder) u32(v uint32) *streamBuilder {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf.Write(b[:])
	return s
}

func (s *streamBuilder) i64(v int64) *streamBuilder {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	s.buf.Write(b[:])
	return s
}

func (s *streamBuilder) f64(v float64) *streamBuilder {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	s.buf.Write(b[:])
	return s
}

func (s *streamBuilder) f32(v float32) *streamBuilder {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
	s.buf.Write(b[:])
	return s
}

// utf appends a length-prefixed string. Test class/field names are plain
// ASCII, which is identical under modified UTF-8 and standard UTF-8.
func (s *streamBuilder) utf(str string) *streamBuilder {
	s.u16(uint16(len(str)))
	s.buf.WriteString(str)
	return s
}

// rawString appends a full TC_STRING content token for str.
func (s *streamBuilder) rawString(str string) *streamBuilder {
	s.tag(tcString)
	s.utf(str)
	return s
}

func (s *streamBuilder) raw(b ...byte) *streamBuilder {
	s.buf.Write(b)
	return s
}

func (s *streamBuilder) bytes() []byte { return s.buf.Bytes() }

// simpleClassDesc appends a TC_CLASSDESC with no declared fields: name,
// serialVersionUID, flags, zero field count, empty class annotation, and a
// null superclass.
func (s *streamBuilder) simpleClassDesc(name string, flags uint8) *streamBuilder {
	s.tag(tcClassDesc)
	s.utf(name)
	s.i64(1)
	s.u8(flags)
	s.u16(0)
	s.tag(tcEndBlockData)
	s.tag(tcNull)
	return s
}
