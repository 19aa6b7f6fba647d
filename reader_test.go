// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckMagic(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		wantErr error
	}{
		{"good header", []byte{0xAC, 0xED, 0x00, 0x05}, nil},
		{"bad magic", []byte{0x00, 0x00, 0x00, 0x05}, ErrBadMagicSentinel},
		{"bad version", []byte{0xAC, 0xED, 0x00, 0x01}, ErrUnsupportedVersionSentinel},
		{"truncated", []byte{0xAC}, ErrTruncatedStreamSentinel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd := newReader(bytes.NewReader(tt.in))
			err := rd.checkMagic()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestReadUTFRoundTrip(t *testing.T) {
	var s streamBuilder
	s.utf("hello world")
	rd := newReader(bytes.NewReader(s.bytes()))
	got, err := rd.readUTF()
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func TestDecodeModifiedUTF8NulEncoding(t *testing.T) {
	// The JVM variant encodes U+0000 as the two bytes C0 80, not as a literal
	// zero byte.
	got, err := decodeModifiedUTF8([]byte{0xC0, 0x80, 'x'}, 0)
	require.NoError(t, err)
	assert.Equal(t, "\x00x", got)
}

func TestDecodeModifiedUTF8SupplementaryPlane(t *testing.T) {
	// U+10000 encoded as a surrogate pair, each as its own 3-byte sequence,
	// rather than the standard UTF-8 4-byte form.
	high := []byte{0xED, 0xA0, 0x80} // D800
	low := []byte{0xED, 0xB0, 0x80}  // DC00
	b := append(append([]byte{}, high...), low...)
	got, err := decodeModifiedUTF8(b, 0)
	require.NoError(t, err)
	assert.Equal(t, string(rune(0x10000)), got)
}

func TestDecodeModifiedUTF8DanglingSurrogate(t *testing.T) {
	high := []byte{0xED, 0xA0, 0x80}
	_, err := decodeModifiedUTF8(high, 0)
	require.Error(t, err)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, ErrInvalidUtf8, de.Kind)
}

func TestReadExactTruncated(t *testing.T) {
	rd := newReader(bytes.NewReader([]byte{1, 2}))
	_, err := rd.readExact(5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncatedStreamSentinel))
}
