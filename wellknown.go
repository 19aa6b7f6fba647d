// Copyright 2024 The jso Authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jso

import "github.com/pkg/errors"

// wellKnownHandlers is the closed table of java.lang/java.util classes spec
// §4.6 calls out for special projection, keyed by fully qualified class
// name. Each handler runs after decodeNewObject has already decoded the
// class's generic field/annotation shape, and collapses that shape into the
// matching scalar/list/set/map projection. Grounded on the teacher's
// funcMaps/dataDirMap name-keyed dispatch idiom and on
// other_examples/victorgawk-java2json-go's knownPostProcs table.
var wellKnownHandlers = map[string]func(*decoder, *Value) error{
	"java.lang.Boolean":   scalarHandler("java.lang.Boolean", "value"),
	"java.lang.Byte":      scalarHandler("java.lang.Byte", "value"),
	"java.lang.Character": scalarHandler("java.lang.Character", "value"),
	"java.lang.Short":     scalarHandler("java.lang.Short", "value"),
	"java.lang.Integer":   scalarHandler("java.lang.Integer", "value"),
	"java.lang.Long":      scalarHandler("java.lang.Long", "value"),
	"java.lang.Float":     scalarHandler("java.lang.Float", "value"),
	"java.lang.Double":    scalarHandler("java.lang.Double", "value"),

	"java.util.ArrayList":     listHandler,
	"java.util.LinkedList":    listHandler,
	"java.util.PriorityQueue": listHandler,

	"java.util.HashMap":  mapHandler,
	"java.util.Hashtable": mapHandler,

	"java.util.HashSet":       setHandler,
	"java.util.LinkedHashSet": setHandler,

	"java.util.BitSet": bitSetHandler,
}

func findLevel(holder *Value, className string) *LevelFields {
	for i := range holder.Levels {
		if holder.Levels[i].ClassName == className {
			return &holder.Levels[i]
		}
	}
	return nil
}

func lastLevel(holder *Value) *LevelFields {
	if len(holder.Levels) == 0 {
		return nil
	}
	return &holder.Levels[len(holder.Levels)-1]
}

// adoptScalar rewrites holder in place to be src, preserving holder's own
// handle so any already-registered reference to it keeps resolving.
func adoptScalar(holder, src *Value) {
	handle := holder.Handle
	*holder = *src
	holder.Handle = handle
}

// scalarHandler builds a handler for a boxed-primitive wrapper class: it
// pulls the single declared field java.lang.* wrappers carry and collapses
// the object down to that primitive value (spec §4.6).
func scalarHandler(className, fieldName string) func(*decoder, *Value) error {
	return func(d *decoder, holder *Value) error {
		lvl := findLevel(holder, className)
		if lvl == nil {
			return errors.Errorf("missing %s level", className)
		}
		v, ok := lvl.Fields[fieldName]
		if !ok {
			return errors.Errorf("missing field %s.%s", className, fieldName)
		}
		adoptScalar(holder, v)
		return nil
	}
}

// collectionItems recovers the content tokens a collection's writeObject
// wrote into its final level's annotation block, dropping the raw
// block-data chunks that carried size/capacity bookkeeping (spec §4.6: the
// wire format doesn't expose those as declared fields, so element recovery
// has to walk the annotation stream instead).
func collectionItems(holder *Value) []*Value {
	lvl := lastLevel(holder)
	if lvl == nil {
		return nil
	}
	var items []*Value
	for _, a := range lvl.Annotation {
		if a.Kind == KindBytes {
			continue
		}
		items = append(items, a)
	}
	return items
}

func listHandler(d *decoder, holder *Value) error {
	holder.Kind = KindList
	holder.Elements = collectionItems(holder)
	return nil
}

func setHandler(d *decoder, holder *Value) error {
	holder.Kind = KindSet
	holder.Elements = collectionItems(holder)
	return nil
}

func mapHandler(d *decoder, holder *Value) error {
	items := collectionItems(holder)
	entries := make([]MapEntry, 0, len(items)/2)
	for i := 0; i+1 < len(items); i += 2 {
		entries = append(entries, MapEntry{Key: items[i], Value: items[i+1]})
	}
	holder.Kind = KindMap
	holder.Entries = entries
	return nil
}

// bitSetHandler projects java.util.BitSet's backing long[] field ("bits" on
// modern JDKs) into the set of indices whose bit is 1 (spec §4.6, scenario
// §8.E).
func bitSetHandler(d *decoder, holder *Value) error {
	lvl := lastLevel(holder)
	if lvl == nil {
		return errors.New("missing BitSet level")
	}
	words, ok := lvl.Fields["bits"]
	if !ok {
		words, ok = lvl.Fields["words"]
	}
	if !ok || words.Kind != KindArray {
		return errors.New("missing BitSet backing word array")
	}

	holder.Kind = KindSet
	holder.Elements = nil
	for wordIdx, word := range words.Elements {
		if word.Kind != KindLong {
			return errors.Errorf("BitSet word %d has unexpected kind %d", wordIdx, word.Kind)
		}
		for bit := 0; bit < 64; bit++ {
			if word.Long&(int64(1)<<uint(bit)) != 0 {
				holder.Elements = append(holder.Elements, &Value{Kind: KindInt, Int: int32(wordIdx*64 + bit)})
			}
		}
	}
	return nil
}
