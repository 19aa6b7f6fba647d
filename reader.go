// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Magic and version bytes every stream must begin with.
const (
	streamMagic   uint16 = 0xACED
	streamVersion uint16 = 0x0005
)

// reader is the big-endian byte reader the decoder pulls from. It tracks
// stream position so errors can report an offset, and exposes exactly the
// primitive reads the wire format needs.
type reader struct {
	r   *bufio.Reader
	pos int64
}

// newReader wraps an io.Reader with the buffering the decoder needs.
func newReader(r io.Reader) *reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &reader{r: br}
	}
	return &reader{r: bufio.NewReaderSize(r, 4096)}
}

// readExact reads exactly n bytes or fails with ErrTruncatedStream.
func (rd *reader) readExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(rd.r, buf)
	rd.pos += int64(read)
	if err != nil {
		return nil, rd.fail(ErrTruncatedStream, errors.Wrapf(err, "read %d bytes", n))
	}
	return buf, nil
}

func (rd *reader) fail(kind ErrorKind, cause error) error {
	return &DecodeError{Kind: kind, Offset: rd.pos, err: cause}
}

// position returns the number of bytes consumed so far.
func (rd *reader) position() int64 { return rd.pos }

// peekByte returns the next byte without consuming it.
func (rd *reader) peekByte() (byte, error) {
	b, err := rd.r.Peek(1)
	if err != nil {
		return 0, rd.fail(ErrTruncatedStream, errors.Wrap(err, "peek"))
	}
	return b[0], nil
}

func (rd *reader) readUint8() (uint8, error) {
	b, err := rd.readExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (rd *reader) readInt8() (int8, error) {
	b, err := rd.readUint8()
	return int8(b), err
}

func (rd *reader) readBool() (bool, error) {
	b, err := rd.readUint8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (rd *reader) readUint16() (uint16, error) {
	b, err := rd.readExact(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (rd *reader) readInt16() (int16, error) {
	v, err := rd.readUint16()
	return int16(v), err
}

func (rd *reader) readUint32() (uint32, error) {
	b, err := rd.readExact(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (rd *reader) readInt32() (int32, error) {
	v, err := rd.readUint32()
	return int32(v), err
}

func (rd *reader) readUint64() (uint64, error) {
	b, err := rd.readExact(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (rd *reader) readInt64() (int64, error) {
	v, err := rd.readUint64()
	return int64(v), err
}

func (rd *reader) readFloat32() (float32, error) {
	v, err := rd.readUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (rd *reader) readFloat64() (float64, error) {
	v, err := rd.readUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// readUTF reads a string prefixed by an unsigned 16-bit length, in modified
// UTF-8 (spec §4.1, §9). A standard UTF-8 decoder must not be reused here:
// the JVM variant encodes U+0000 as the two bytes C0 80, and supplementary
// code points as a pair of three-byte surrogate sequences rather than the
// standard four-byte encoding.
func (rd *reader) readUTF() (string, error) {
	n, err := rd.readUint16()
	if err != nil {
		return "", err
	}
	b, err := rd.readExact(int(n))
	if err != nil {
		return "", err
	}
	return decodeModifiedUTF8(b, rd.pos-int64(n))
}

// readLongUTF reads a string prefixed by an unsigned 64-bit length.
func (rd *reader) readLongUTF() (string, error) {
	n, err := rd.readUint64()
	if err != nil {
		return "", err
	}
	b, err := rd.readExact(int(n))
	if err != nil {
		return "", err
	}
	return decodeModifiedUTF8(b, rd.pos-int64(n))
}

// decodeModifiedUTF8 decodes the JVM's modified UTF-8: a NUL byte is encoded
// as the two-byte sequence C0 80, and supplementary plane code points are
// encoded as two consecutive three-byte surrogate sequences rather than a
// single four-byte sequence (the form standard UTF-8 uses). Both differences
// mean the bytes are not valid standard UTF-8, so they cannot be run through
// a stock decoder.
func decodeModifiedUTF8(b []byte, startOffset int64) (string, error) {
	var out []rune
	var highSurrogate rune = -1
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c&0x80 == 0: // 0xxxxxxx
			if highSurrogate != -1 {
				return "", &DecodeError{Kind: ErrInvalidUtf8, Offset: startOffset + int64(i), err: errors.New("dangling high surrogate")}
			}
			out = append(out, rune(c))
			i++
		case c&0xE0 == 0xC0: // 110xxxxx 10xxxxxx
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", &DecodeError{Kind: ErrInvalidUtf8, Offset: startOffset + int64(i), err: errors.New("truncated 2-byte sequence")}
			}
			r := rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)
			if highSurrogate != -1 {
				return "", &DecodeError{Kind: ErrInvalidUtf8, Offset: startOffset + int64(i), err: errors.New("dangling high surrogate")}
			}
			out = append(out, r)
			i += 2
		case c&0xF0 == 0xE0: // 1110xxxx 10xxxxxx 10xxxxxx
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", &DecodeError{Kind: ErrInvalidUtf8, Offset: startOffset + int64(i), err: errors.New("truncated 3-byte sequence")}
			}
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			i += 3
			switch {
			case r >= 0xD800 && r <= 0xDBFF: // high surrogate
				if highSurrogate != -1 {
					return "", &DecodeError{Kind: ErrInvalidUtf8, Offset: startOffset + int64(i), err: errors.New("consecutive high surrogates")}
				}
				highSurrogate = r
			case r >= 0xDC00 && r <= 0xDFFF: // low surrogate
				if highSurrogate == -1 {
					return "", &DecodeError{Kind: ErrInvalidUtf8, Offset: startOffset + int64(i), err: errors.New("low surrogate without high surrogate")}
				}
				combined := 0x10000 + (highSurrogate-0xD800)<<10 + (r - 0xDC00)
				out = append(out, combined)
				highSurrogate = -1
			default:
				out = append(out, r)
			}
		default:
			return "", &DecodeError{Kind: ErrInvalidUtf8, Offset: startOffset + int64(i), err: errors.Errorf("unrecognized lead byte %#x", c)}
		}
	}
	if highSurrogate != -1 {
		return "", &DecodeError{Kind: ErrInvalidUtf8, Offset: startOffset + int64(i), err: errors.New("dangling high surrogate at end of string")}
	}
	return string(out), nil
}

// checkMagic validates the two-byte magic and two-byte version that must
// open every stream (spec §4.1, §6).
func (rd *reader) checkMagic() error {
	magic, err := rd.readUint16()
	if err != nil {
		return err
	}
	if magic != streamMagic {
		return rd.fail(ErrBadMagic, errors.Errorf("want %#04x got %#04x", streamMagic, magic))
	}
	version, err := rd.readUint16()
	if err != nil {
		return err
	}
	if version != streamVersion {
		return rd.fail(ErrUnsupportedVersion, errors.Errorf("want %#04x got %#04x", streamVersion, version))
	}
	return nil
}
