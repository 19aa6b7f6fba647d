// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind identifies one of the fixed failure modes spec §7 names. Every
// DecodeError carries one of these so callers can switch on Is(err, ...)
// against the package-level sentinels below without string matching.
type ErrorKind int

const (
	// ErrBadMagic is returned when the stream does not open with 0xAC 0xED.
	ErrBadMagic ErrorKind = iota
	// ErrUnsupportedVersion is returned when the version bytes aren't 0x00 0x05.
	ErrUnsupportedVersion
	// ErrTruncatedStream is returned on any short read.
	ErrTruncatedStream
	// ErrUnknownTag is returned for an unrecognized content tag.
	ErrUnknownTag
	// ErrBadHandle is returned for a reference to an unassigned handle.
	ErrBadHandle
	// ErrBadTypeCode is returned for a field or array type code outside B,C,D,F,I,J,S,Z,[,L.
	ErrBadTypeCode
	// ErrInvalidUtf8 is returned for malformed modified UTF-8.
	ErrInvalidUtf8
	// ErrDepthLimitExceeded is returned when the recursion guard trips.
	ErrDepthLimitExceeded
	// ErrUnsupportedExternalizable is returned for an externalizable class with no registered handler.
	ErrUnsupportedExternalizable
	// ErrInconsistentDescriptor is returned when descriptor bookkeeping disagrees with itself.
	ErrInconsistentDescriptor
	// ErrStreamException is returned when the stream itself carries a TC_EXCEPTION token.
	ErrStreamException
)

func (k ErrorKind) String() string {
	switch k {
	case ErrBadMagic:
		return "BadMagic"
	case ErrUnsupportedVersion:
		return "UnsupportedVersion"
	case ErrTruncatedStream:
		return "TruncatedStream"
	case ErrUnknownTag:
		return "UnknownTag"
	case ErrBadHandle:
		return "BadHandle"
	case ErrBadTypeCode:
		return "BadTypeCode"
	case ErrInvalidUtf8:
		return "InvalidUtf8"
	case ErrDepthLimitExceeded:
		return "DepthLimitExceeded"
	case ErrUnsupportedExternalizable:
		return "UnsupportedExternalizable"
	case ErrInconsistentDescriptor:
		return "InconsistentDescriptor"
	case ErrStreamException:
		return "StreamException"
	default:
		return "Unknown"
	}
}

// DecodeError is the error type the decoder returns for stream failures. It
// always carries the stream offset at which the failure was detected and,
// where meaningful, the class name or handle value involved (spec §7).
// Failures raised inside a well-known class handler (wellknown.go) and the
// open error from ParseFile are plain wrapped errors, not DecodeErrors.
type DecodeError struct {
	Kind      ErrorKind
	Offset    int64
	ClassName string
	Handle    int32
	err       error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("jso: %s at offset %d", e.Kind, e.Offset)
	if e.ClassName != "" {
		msg += fmt.Sprintf(" (class %s)", e.ClassName)
	}
	if e.Handle != 0 {
		msg += fmt.Sprintf(" (handle %#x)", e.Handle)
	}
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	return msg
}

// Unwrap lets errors.Is/As reach the underlying wrapped cause, and lets
// errors.Is(err, someKindSentinel) match on Kind via the Is method below.
func (e *DecodeError) Unwrap() error { return e.err }

// Is reports whether target is the ErrorKind sentinel matching e.Kind,
// so callers can write errors.Is(err, jso.ErrBadHandleSentinel) instead of a
// type assertion followed by a Kind comparison.
func (e *DecodeError) Is(target error) bool {
	k, ok := target.(kindSentinel)
	return ok && k.kind == e.Kind
}

type kindSentinel struct{ kind ErrorKind }

func (s kindSentinel) Error() string { return s.kind.String() }

// Sentinels usable with errors.Is against any DecodeError of that Kind.
var (
	ErrBadMagicSentinel                 error = kindSentinel{ErrBadMagic}
	ErrUnsupportedVersionSentinel       error = kindSentinel{ErrUnsupportedVersion}
	ErrTruncatedStreamSentinel          error = kindSentinel{ErrTruncatedStream}
	ErrUnknownTagSentinel               error = kindSentinel{ErrUnknownTag}
	ErrBadHandleSentinel                error = kindSentinel{ErrBadHandle}
	ErrBadTypeCodeSentinel              error = kindSentinel{ErrBadTypeCode}
	ErrInvalidUtf8Sentinel              error = kindSentinel{ErrInvalidUtf8}
	ErrDepthLimitExceededSentinel       error = kindSentinel{ErrDepthLimitExceeded}
	ErrUnsupportedExternalizableSentinel error = kindSentinel{ErrUnsupportedExternalizable}
	ErrInconsistentDescriptorSentinel   error = kindSentinel{ErrInconsistentDescriptor}
	ErrStreamExceptionSentinel          error = kindSentinel{ErrStreamException}
)

// newError builds a DecodeError not anchored to a reader (e.g. raised from
// code that only has a handle table or class name in scope).
func newError(kind ErrorKind, offset int64, msg string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, err: errors.Errorf(msg, args...)}
}
