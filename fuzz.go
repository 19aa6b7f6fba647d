// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

import "bytes"

// Fuzz exercises ParseStream over arbitrary bytes, in the shape of the
// teacher module's go-fuzz entry point.
func Fuzz(data []byte) int {
	v, err := ParseStream(bytes.NewReader(data), nil)
	if err != nil {
		return 0
	}
	if v == nil {
		return 0
	}
	return 1
}
