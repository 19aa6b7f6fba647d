// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

import "sort"

// ValueKind discriminates the variants a decoded Value can hold (spec §4.7).
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindByte    // B
	KindChar    // C, projected as a one-code-point string
	KindShort   // S
	KindInt     // I
	KindLong    // J
	KindFloat   // F
	KindDouble  // D
	KindString  // STRING content token, java.lang.String
	KindArray   // homogeneous typed array
	KindObject  // a serialized instance, one level per class in its hierarchy
	KindList    // ArrayList/LinkedList/PriorityQueue (ordered)
	KindSet     // HashSet/LinkedHashSet/BitSet
	KindMap     // HashMap/Hashtable
	KindClass   // a bare CLASS content token
	KindBytes   // raw, unrecognized block-data/annotation payload
)

// LevelFields holds one class level's worth of decoded fields, spec §3's
// "(class-descriptor → field-map) pair". Object.Levels is ordered
// super-class first, matching the read order in spec §4.5.
type LevelFields struct {
	ClassName string
	Fields    map[string]*Value

	// Annotation holds the raw content tokens written by a custom
	// writeObject/writeExternal for this level (spec §4.5's "objectAnnotation"),
	// in stream order. wellknown.go's handlers read this to recover
	// collection elements; the generic Flatten path surfaces it verbatim.
	Annotation []*Value
}

// MapEntry is one key/value pair of a decoded Map, kept in stream order
// since Go maps can't use arbitrary Value identity as a key and the spec's
// own HashMap scenario (§8.F) compares against an ordered literal.
type MapEntry struct {
	Key   *Value
	Value *Value
}

// Value is the single result type every decode produces: a node in the
// language-neutral value tree spec §4.7 describes. Exactly one group of
// fields is meaningful, selected by Kind.
type Value struct {
	Kind ValueKind

	// Handle is the entity's handle-table index, or 0 if it was never
	// separately registered (e.g. a primitive field value). Used to label
	// CycleRef markers during Flatten.
	Handle int32

	Bool    bool
	Byte    int8
	Char    string
	Short   int16
	Int     int32
	Long    int64
	Float32 float32
	Float64 float64
	Str     string // KindString and KindClass (class name)

	ElemType byte // KindArray: the array's element type code

	Elements []*Value // KindArray, KindList, KindSet
	Entries  []MapEntry // KindMap
	Levels   []LevelFields // KindObject, super-first

	Bytes []byte // KindBytes

	Class *ClassDesc // KindClass; also the descriptor of a decoded object or array
}

func nullValue() *Value { return &Value{Kind: KindNull} }

// Flatten collapses the decoded graph into plain Go values the way spec
// §4.5/§4.7 describes: objects become map[string]any with subclass fields
// overwriting same-named superclass fields, lists/arrays become []any, sets
// become *Set, maps become *OrderedMap. A back-reference to a node that is
// still being flattened (an ancestor on the current path) becomes a CycleRef
// marker carrying that node's handle; a node shared without a cycle is
// flattened again at each occurrence, so sharing is not preserved (spec §4.7
// leaves the indirection mechanism to the implementer).
func (v *Value) Flatten() interface{} {
	return v.flatten(map[*Value]bool{})
}

func (v *Value) flatten(inProgress map[*Value]bool) interface{} {
	if v == nil || v.Kind == KindNull {
		return nil
	}
	if inProgress[v] {
		return CycleRef{Handle: v.Handle}
	}
	inProgress[v] = true
	defer delete(inProgress, v)

	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindByte:
		return v.Byte
	case KindChar:
		return v.Char
	case KindShort:
		return v.Short
	case KindInt:
		return v.Int
	case KindLong:
		return v.Long
	case KindFloat:
		return v.Float32
	case KindDouble:
		return v.Float64
	case KindString:
		return v.Str
	case KindClass:
		return v.Str
	case KindBytes:
		return v.Bytes
	case KindArray, KindList:
		out := make([]interface{}, len(v.Elements))
		for i, e := range v.Elements {
			out[i] = e.flatten(inProgress)
		}
		return out
	case KindSet:
		s := NewSet()
		for _, e := range v.Elements {
			s.Add(e.flatten(inProgress))
		}
		return s
	case KindMap:
		m := NewOrderedMap()
		for _, entry := range v.Entries {
			m.Set(entry.Key.flatten(inProgress), entry.Value.flatten(inProgress))
		}
		return m
	case KindObject:
		out := make(map[string]interface{})
		for _, level := range v.Levels {
			for name, f := range level.Fields {
				out[name] = f.flatten(inProgress)
			}
			if len(level.Annotation) > 0 {
				items := make([]interface{}, len(level.Annotation))
				for i, a := range level.Annotation {
					items[i] = a.flatten(inProgress)
				}
				out["@annotation:"+level.ClassName] = items
			}
		}
		return out
	default:
		return nil
	}
}

// CycleRef marks the point in a flattened tree where a back-reference to an
// ancestor was found (spec §4.7's "opaque handle marker for cycles").
type CycleRef struct {
	Handle int32
}

// Set is the projection of HashSet/LinkedHashSet/BitSet (spec §4.6). Order
// is not semantically meaningful for a Java HashSet, so Slice returns
// elements sorted for stable comparisons in tests.
type Set struct {
	items []interface{}
	index map[interface{}]bool
}

func NewSet() *Set {
	return &Set{index: make(map[interface{}]bool)}
}

func (s *Set) Add(v interface{}) {
	if s.index[v] {
		return
	}
	s.index[v] = true
	s.items = append(s.items, v)
}

func (s *Set) Len() int { return len(s.items) }

func (s *Set) Contains(v interface{}) bool { return s.index[v] }

// Slice returns the set's members. Integers sort numerically, everything
// else falls back to stable insertion order.
func (s *Set) Slice() []interface{} {
	out := make([]interface{}, len(s.items))
	copy(out, s.items)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aok := asInt64(out[i])
		bi, bok := asInt64(out[j])
		if aok && bok {
			return ai < bi
		}
		return false
	})
	return out
}

func asInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	default:
		return 0, false
	}
}

// OrderedMap is the projection of HashMap/Hashtable (spec §4.6): keys may be
// any decoded value, not just strings, so a Go map[string]any can't hold
// them directly.
type OrderedMap struct {
	keys    []interface{}
	values  map[interface{}]interface{}
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[interface{}]interface{})}
}

func (m *OrderedMap) Set(key, value interface{}) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *OrderedMap) Get(key interface{}) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap) Len() int { return len(m.keys) }

func (m *OrderedMap) Keys() []interface{} {
	out := make([]interface{}, len(m.keys))
	copy(out, m.keys)
	return out
}

// Map returns a plain map[interface{}]interface{} snapshot, useful for
// assert.Equal-style comparisons in tests when key types are comparable.
func (m *OrderedMap) Map() map[interface{}]interface{} {
	out := make(map[interface{}]interface{}, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
