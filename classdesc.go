// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

import "github.com/pkg/errors"

// FieldDesc is one field in a class descriptor (spec §4.3). Primitive
// fields carry only a type code and a name; object/array fields also carry
// the declared element/field class name.
type FieldDesc struct {
	TypeCode  byte
	Name      string
	ClassName string // only set for object/array fields
}

// ClassDesc is a decoded class descriptor (spec §3, §4.3): class name,
// serial version, flags, an ordered field list, and a nullable super
// descriptor. Proxy descriptors carry InterfaceNames instead of Fields; their
// Name is the first interface name.
type ClassDesc struct {
	Handle        int32
	Name          string
	SerialVersion int64
	Flags         uint8
	Fields        []FieldDesc
	Annotations   []*Value
	Super         *ClassDesc
	IsProxy       bool
	InterfaceNames []string
}

func (c *ClassDesc) hasFlag(bit uint8) bool { return c.Flags&bit != 0 }

// writesAnnotationBlock reports whether this level's data is followed by an
// annotation block: SC_SERIALIZABLE|SC_WRITE_METHOD or any externalizable
// level (spec §4.3, §4.5).
func (c *ClassDesc) writesAnnotationBlock() bool {
	if c.hasFlag(scExternalizable) {
		return true
	}
	return c.hasFlag(scSerializable) && c.hasFlag(scWriteMethod)
}

// classDescAllowed restricts readContent to the four tags a class
// descriptor slot accepts (spec §4.3), mirroring the allowedClazzNames
// restriction in other_examples/victorgawk-java2json-go's classDesc().
var classDescAllowed = map[byte]bool{
	tcNull: true, tcReference: true, tcClassDesc: true, tcProxyClassDesc: true,
}

// readClassDesc reads a class-descriptor token: NULL yields nil, REFERENCE
// resolves a previously registered descriptor, CLASSDESC/PROXYCLASSDESC
// decode a fresh one (spec §4.3).
func (d *decoder) readClassDesc() (*ClassDesc, error) {
	v, err := d.readContent(classDescAllowed)
	if err != nil {
		return nil, err
	}
	if v == nil || v.Kind == KindNull {
		return nil, nil
	}
	if v.Kind != KindClass {
		return nil, newError(ErrInconsistentDescriptor, d.rd.position(), "expected class descriptor, got value kind %d", v.Kind)
	}
	return v.Class, nil
}

// decodeNewClassDesc implements tag CLASSDESC (0x72): the descriptor is
// registered immediately after the tag byte, before its class name is even
// read, so a self-referential super chain can resolve (spec §4.3).
func (d *decoder) decodeNewClassDesc() (*Value, error) {
	holder := &Value{Kind: KindClass}
	handle := d.handles.assign(holder)

	cls := &ClassDesc{Handle: handle}
	holder.Class = cls
	holder.Handle = handle

	name, err := d.rd.readUTF()
	if err != nil {
		return nil, err
	}
	cls.Name = name

	serial, err := d.rd.readInt64()
	if err != nil {
		return nil, err
	}
	cls.SerialVersion = serial

	flags, err := d.rd.readUint8()
	if err != nil {
		return nil, err
	}
	cls.Flags = flags

	fieldCount, err := d.rd.readUint16()
	if err != nil {
		return nil, err
	}

	for i := 0; i < int(fieldCount); i++ {
		f, err := d.readFieldDesc()
		if err != nil {
			return nil, errors.Wrapf(err, "field %d of class %s", i, cls.Name)
		}
		cls.Fields = append(cls.Fields, f)
	}

	anns, err := d.readAnnotationBlock()
	if err != nil {
		return nil, errors.Wrapf(err, "class annotation for %s", cls.Name)
	}
	cls.Annotations = anns

	super, err := d.readClassDesc()
	if err != nil {
		return nil, errors.Wrapf(err, "super class of %s", cls.Name)
	}
	cls.Super = super

	return holder, nil
}

// decodeProxyClassDesc implements tag PROXYCLASSDESC (0x7D).
func (d *decoder) decodeProxyClassDesc() (*Value, error) {
	holder := &Value{Kind: KindClass}
	handle := d.handles.assign(holder)

	cls := &ClassDesc{Handle: handle, IsProxy: true}
	holder.Class = cls
	holder.Handle = handle

	count, err := d.rd.readInt32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < count; i++ {
		name, err := d.rd.readUTF()
		if err != nil {
			return nil, errors.Wrapf(err, "proxy interface %d", i)
		}
		cls.InterfaceNames = append(cls.InterfaceNames, name)
	}
	if len(cls.InterfaceNames) > 0 {
		cls.Name = cls.InterfaceNames[0]
	}

	anns, err := d.readAnnotationBlock()
	if err != nil {
		return nil, errors.Wrap(err, "proxy class annotation")
	}
	cls.Annotations = anns

	super, err := d.readClassDesc()
	if err != nil {
		return nil, errors.Wrap(err, "proxy super class")
	}
	cls.Super = super

	return holder, nil
}

// readFieldDesc reads one field descriptor (spec §4.3): a type code, a
// name, and — for object/array types — a string token giving the declared
// class name.
func (d *decoder) readFieldDesc() (FieldDesc, error) {
	typeCode, err := d.rd.readUint8()
	if err != nil {
		return FieldDesc{}, err
	}
	name, err := d.rd.readUTF()
	if err != nil {
		return FieldDesc{}, err
	}

	f := FieldDesc{TypeCode: typeCode, Name: name}
	switch {
	case isPrimitiveType(typeCode):
		return f, nil
	case isObjectType(typeCode):
		className, err := d.readStringToken()
		if err != nil {
			return FieldDesc{}, errors.Wrap(err, "field class name")
		}
		f.ClassName = className
		return f, nil
	default:
		return FieldDesc{}, &DecodeError{Kind: ErrBadTypeCode, Offset: d.rd.position(), err: errors.Errorf("type code %q", typeCode)}
	}
}

// stringTokenAllowed restricts readContent to what a "string token" (spec
// §4.3's field class-name, §4.5's enum constant name) may be: a reference
// to an already-registered string, or a new short/long string.
var stringTokenAllowed = map[byte]bool{
	tcReference: true, tcString: true, tcLongString: true,
}

// readStringToken reads a string token and unwraps it to a plain string.
func (d *decoder) readStringToken() (string, error) {
	v, err := d.readContent(stringTokenAllowed)
	if err != nil {
		return "", err
	}
	if v == nil || v.Kind != KindString {
		return "", newError(ErrInconsistentDescriptor, d.rd.position(), "expected string token, got value kind %d", valueKindOf(v))
	}
	return v.Str, nil
}

func valueKindOf(v *Value) ValueKind {
	if v == nil {
		return KindNull
	}
	return v.Kind
}

// readAnnotationBlock reads zero or more content tokens until
// ENDBLOCKDATA, the "class-annotation block" spec §4.3 describes and the
// generic "annotation block" spec §4.5/§9 describes for write-method
// levels. Block-data tokens are kept as KindBytes entries in the result.
func (d *decoder) readAnnotationBlock() ([]*Value, error) {
	var items []*Value
	for {
		v, done, err := d.readAnnotationItem()
		if err != nil {
			return nil, err
		}
		if done {
			return items, nil
		}
		items = append(items, v)
	}
}

// annotationAllowed is every content tag valid inside an annotation block:
// any ordinary content token, plus ENDBLOCKDATA to terminate it.
var annotationAllowed map[byte]bool

func init() {
	annotationAllowed = map[byte]bool{
		tcNull: true, tcReference: true, tcClassDesc: true, tcObject: true,
		tcString: true, tcArray: true, tcClass: true, tcBlockData: true,
		tcBlockDataLong: true, tcEndBlockData: true, tcLongString: true,
		tcProxyClassDesc: true, tcEnum: true,
	}
}

func (d *decoder) readAnnotationItem() (v *Value, done bool, err error) {
	tag, err := d.rd.peekByte()
	if err != nil {
		return nil, false, err
	}
	if tag == tcEndBlockData {
		_, err := d.rd.readUint8()
		return nil, true, err
	}
	v, err = d.readContent(annotationAllowed)
	return v, false, err
}
