// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

// handleBase is the first handle value assigned in any stream (spec §6).
const handleBase int32 = 0x7E0000

// handleTable is the append-only, indexed registry of every referenceable
// entity created during a decode: class descriptors, objects, arrays,
// strings, and enums (spec §3, §4.2). Handles are assigned strictly in the
// order entities are *begun*, not completed, so a class descriptor or
// object can appear inside its own subtree and still resolve.
//
// Grounded on the memo-table technique used by the python-original
// reference and by other_examples/victorgawk-java2json-go's jop.handles /
// newDeferredHandle, restructured behind the explicit assign/resolve/size
// interface spec §4.2 calls for.
type handleTable struct {
	entries []*Value
}

func newHandleTable() *handleTable {
	return &handleTable{}
}

// reset clears the table and restarts handle assignment at handleBase, for
// the RESET content token (spec §4.5, testable property 4).
func (h *handleTable) reset() {
	h.entries = h.entries[:0]
}

// assign registers a new entity and returns its handle. v is typically a
// partially-populated holder (its Handle field not yet set), so cyclic
// references can resolve to the same pointer before it is fully decoded;
// the caller keeps mutating it in place rather than calling set.
func (h *handleTable) assign(v *Value) int32 {
	idx := len(h.entries)
	h.entries = append(h.entries, v)
	return handleBase + int32(idx)
}

// set overwrites a previously assigned slot, used on the rare path where the
// final value isn't the same pointer that was reserved.
func (h *handleTable) set(handle int32, v *Value) {
	h.entries[handle-handleBase] = v
}

// resolve looks a handle up. ok is false if the handle was never assigned,
// which the caller turns into ErrBadHandle (spec §4.2, §7).
func (h *handleTable) resolve(handle int32) (*Value, bool) {
	idx := handle - handleBase
	if idx < 0 || int(idx) >= len(h.entries) {
		return nil, false
	}
	return h.entries[idx], true
}

// size reports how many entities have been assigned so far.
func (h *handleTable) size() int { return len(h.entries) }
