package bencode

import (
	"bytes"
	"fmt"

	"golang.org/x/exp/slices"
)

type Kind int

const (
	IntegerKind Kind = iota + 1
	ByteStringKind
	ListKind
	DictionaryKind
)

func (k Kind) String() string {
	switch k {
	case IntegerKind:
		return "integer"
	case ByteStringKind:
		return "string"
	case ListKind:
		return "list"
	case DictionaryKind:
		return "dictionary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded bencode value. It is implemented only by Integer, ByteString, List and Dictionary, so a
// type switch over those four cases is exhaustive.
type Value interface {
	Kind() Kind
	isValue()
}

type Integer int64

// ByteString holds raw bytes. It is not guaranteed to be valid UTF-8.
type ByteString []byte

type List []Value

func (Integer) Kind() Kind    { return IntegerKind }
func (ByteString) Kind() Kind { return ByteStringKind }
func (List) Kind() Kind       { return ListKind }
func (Dictionary) Kind() Kind { return DictionaryKind }

func (Integer) isValue()    {}
func (ByteString) isValue() {}
func (List) isValue()       {}
func (Dictionary) isValue() {}

func (b ByteString) String() string {
	return string(b)
}

type DictEntry struct {
	Key   ByteString
	Value Value
}

// Dictionary is an immutable mapping from byte-string keys to values. It keeps its entries in the order they
// were given (wire order for decoded dictionaries) and an index of those entries in ascending key order.
type Dictionary struct {
	entries []DictEntry
	order   []int
}

// NewDictionary builds a dictionary from entries in any order. Keys must be unique.
func NewDictionary(entries ...DictEntry) (Dictionary, error) {
	d := makeDictionary(slices.Clone(entries))
	for i := 1; i < len(d.order); i++ {
		prev, cur := d.entries[d.order[i-1]].Key, d.entries[d.order[i]].Key
		if bytes.Equal(prev, cur) {
			return Dictionary{}, fmt.Errorf("%w: %q", ErrDuplicateKey, cur)
		}
	}
	return d, nil
}

// makeDictionary takes ownership of entries, which must already have unique keys.
func makeDictionary(entries []DictEntry) Dictionary {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		return bytes.Compare(entries[a].Key, entries[b].Key)
	})
	return Dictionary{entries: entries, order: order}
}

func (d Dictionary) Len() int {
	return len(d.entries)
}

// Entries returns the entries in the order the dictionary was built or decoded with.
func (d Dictionary) Entries() []DictEntry {
	return slices.Clone(d.entries)
}

// SortedEntries returns the entries in ascending raw-byte key order.
func (d Dictionary) SortedEntries() []DictEntry {
	out := make([]DictEntry, len(d.order))
	for i, idx := range d.order {
		out[i] = d.entries[idx]
	}
	return out
}

// Keys returns the keys in ascending raw-byte order.
func (d Dictionary) Keys() []ByteString {
	out := make([]ByteString, len(d.order))
	for i, idx := range d.order {
		out[i] = d.entries[idx].Key
	}
	return out
}

// Sorted reports whether the entries were already in canonical order.
func (d Dictionary) Sorted() bool {
	for i, idx := range d.order {
		if i != idx {
			return false
		}
	}
	return true
}

func (d Dictionary) Lookup(key []byte) (Value, bool) {
	i, ok := slices.BinarySearchFunc(d.order, key, func(idx int, k []byte) int {
		return bytes.Compare(d.entries[idx].Key, k)
	})
	if !ok {
		return nil, false
	}
	return d.entries[d.order[i]].Value, true
}

func (d Dictionary) Get(key string) (Value, bool) {
	return d.Lookup([]byte(key))
}

// Equal reports whether a and b hold the same data. Dictionaries are compared as mappings, so two
// dictionaries with the same entries in a different order are equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Integer:
		bv, ok := b.(Integer)
		return ok && av == bv
	case ByteString:
		bv, ok := b.(ByteString)
		return ok && bytes.Equal(av, bv)
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Dictionary:
		bv, ok := b.(Dictionary)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, e := range av.entries {
			other, ok := bv.Lookup(e.Key)
			if !ok || !Equal(e.Value, other) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		return false
	}
}
