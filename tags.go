// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

// Content-token tags (spec §4.5). Every tagged element of the wire grammar
// begins with one of these bytes.
const (
	tcNull            byte = 0x70
	tcReference       byte = 0x71
	tcClassDesc       byte = 0x72
	tcObject          byte = 0x73
	tcString          byte = 0x74
	tcArray           byte = 0x75
	tcClass           byte = 0x76
	tcBlockData       byte = 0x77
	tcEndBlockData    byte = 0x78
	tcReset           byte = 0x79
	tcBlockDataLong   byte = 0x7A
	tcException       byte = 0x7B
	tcLongString      byte = 0x7C
	tcProxyClassDesc  byte = 0x7D
	tcEnum            byte = 0x7E
)

// classDescFlags bits recognized in a class descriptor's flags byte (spec §4.3).
const (
	scWriteMethod   uint8 = 0x01 // SC_WRITE_METHOD
	scSerializable  uint8 = 0x02 // SC_SERIALIZABLE
	scExternalizable uint8 = 0x04 // SC_EXTERNALIZABLE
	scBlockData     uint8 = 0x08 // SC_BLOCK_DATA
	scEnum          uint8 = 0x10 // SC_ENUM
)

// Primitive field type codes (spec §4.4).
const (
	typeByte    byte = 'B'
	typeChar    byte = 'C'
	typeDouble  byte = 'D'
	typeFloat   byte = 'F'
	typeInt     byte = 'I'
	typeLong    byte = 'J'
	typeShort   byte = 'S'
	typeBoolean byte = 'Z'
	typeArray   byte = '['
	typeObject  byte = 'L'
)

func isPrimitiveType(code byte) bool {
	switch code {
	case typeByte, typeChar, typeDouble, typeFloat, typeInt, typeLong, typeShort, typeBoolean:
		return true
	default:
		return false
	}
}

func isObjectType(code byte) bool {
	return code == typeArray || code == typeObject
}

// defaultDepthLimit is the recommended recursion guard (spec §5).
const defaultDepthLimit = 2048
