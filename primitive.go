// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

import "github.com/pkg/errors"

// readPrimitiveElement reads one value of a primitive type code (spec §4.4),
// used both for object fields and for primitive array elements. Grounded on
// the teacher's helper.go read-primitive style (one small reader per
// fixed-width type) and other_examples/victorgawk-java2json-go's parseArray
// type switch.
func (d *decoder) readPrimitiveElement(code byte) (*Value, error) {
	switch code {
	case typeByte:
		v, err := d.rd.readInt8()
		return &Value{Kind: KindByte, Byte: v}, err
	case typeBoolean:
		v, err := d.rd.readBool()
		return &Value{Kind: KindBool, Bool: v}, err
	case typeChar:
		v, err := d.rd.readInt16()
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindChar, Char: string(rune(uint16(v)))}, nil
	case typeShort:
		v, err := d.rd.readInt16()
		return &Value{Kind: KindShort, Short: v}, err
	case typeInt:
		v, err := d.rd.readInt32()
		return &Value{Kind: KindInt, Int: v}, err
	case typeLong:
		v, err := d.rd.readInt64()
		return &Value{Kind: KindLong, Long: v}, err
	case typeFloat:
		v, err := d.rd.readFloat32()
		return &Value{Kind: KindFloat, Float32: v}, err
	case typeDouble:
		v, err := d.rd.readFloat64()
		return &Value{Kind: KindDouble, Float64: v}, err
	default:
		return nil, &DecodeError{Kind: ErrBadTypeCode, Offset: d.rd.position(), err: errors.Errorf("not a primitive type code: %q", code)}
	}
}

// elementAllowed is every content tag a non-primitive array element or
// object field may hold (spec §4.4's object/array field types): a fresh or
// referenced instance, string, array, class, enum, or an embedded exception.
var elementAllowed = map[byte]bool{
	tcNull: true, tcReference: true, tcObject: true, tcString: true,
	tcLongString: true, tcArray: true, tcClass: true, tcEnum: true,
	tcException: true,
}

// arrayElementTypeCode returns the element type code a JVM array class name
// describes: "[I" -> 'I', "[[I" -> '[' (nested array), "[Ljava.lang.String;"
// -> 'L' (object). Spec §4.4 ties array decoding to this declared name
// rather than to anything observed on the wire.
func arrayElementTypeCode(className string) (byte, error) {
	if len(className) < 2 || className[0] != '[' {
		return 0, errors.Errorf("not an array class name: %q", className)
	}
	code := className[1]
	if isPrimitiveType(code) || code == typeArray || code == typeObject {
		return code, nil
	}
	return 0, errors.Errorf("unrecognized array element code %q in %q", code, className)
}

// decodeNewArray implements tag ARRAY (0x75): classDesc newHandle (int)size
// values[] (spec §4.4). The handle is assigned once the array's own class
// descriptor has been read, matching the wire order classDesc, newHandle.
func (d *decoder) decodeNewArray() (*Value, error) {
	cls, err := d.readClassDesc()
	if err != nil {
		return nil, errors.Wrap(err, "array class descriptor")
	}
	if cls == nil {
		return nil, newError(ErrInconsistentDescriptor, d.rd.position(), "array with no class descriptor")
	}

	holder := &Value{Kind: KindArray}
	handle := d.handles.assign(holder)
	holder.Handle = handle
	holder.Class = cls

	elemCode, err := arrayElementTypeCode(cls.Name)
	if err != nil {
		return nil, &DecodeError{Kind: ErrBadTypeCode, Offset: d.rd.position(), ClassName: cls.Name,
			err: errors.Wrap(err, "array element type")}
	}
	holder.ElemType = elemCode

	size, err := d.rd.readInt32()
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, newError(ErrInconsistentDescriptor, d.rd.position(), "negative array size %d", size)
	}

	if err := d.enterDepth(); err != nil {
		return nil, err
	}
	defer d.leaveDepth()

	holder.Elements = make([]*Value, size)
	for i := int32(0); i < size; i++ {
		var v *Value
		var err error
		if isPrimitiveType(elemCode) {
			v, err = d.readPrimitiveElement(elemCode)
		} else {
			v, err = d.readContent(elementAllowed)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "array element %d of %s", i, cls.Name)
		}
		holder.Elements[i] = v
	}
	return holder, nil
}
