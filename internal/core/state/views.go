package state

// Typed views over a ChangeSet. A Map is a prefix of the key space holding
// one record per sub-key; a List is a Map plus a stored count keyed by the
// list prefix itself.

import (
	"encoding/binary"
	"fmt"
)

// Map is a named bucket of records inside a ChangeSet.
type Map struct {
	cs     *ChangeSet
	prefix []byte
}

// NewMap opens the bucket with the given name. Names use '/'-separated path
// segments; sub-keys are appended after a separator byte.
func NewMap(cs *ChangeSet, name string) Map {
	return Map{cs: cs, prefix: append([]byte(name), '/')}
}

func (m Map) key(sub []byte) []byte {
	k := make([]byte, 0, len(m.prefix)+len(sub))
	k = append(k, m.prefix...)
	k = append(k, sub...)
	return k
}

func (m Map) Get(sub []byte) ([]byte, error) {
	return m.cs.Get(m.key(sub))
}

func (m Map) Has(sub []byte) (bool, error) {
	return m.cs.Has(m.key(sub))
}

func (m Map) Put(sub, value []byte) {
	m.cs.Put(m.key(sub), value)
}

func (m Map) Delete(sub []byte) {
	m.cs.Delete(m.key(sub))
}

// Keys returns every sub-key in the bucket in lexicographic order.
func (m Map) Keys() ([][]byte, error) {
	full, err := m.cs.ScanPrefix(m.prefix)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(full))
	for i, k := range full {
		out[i] = k[len(m.prefix):]
	}
	return out, nil
}

// Uint64Key encodes an integer sub-key so lexicographic order matches
// numeric order.
func Uint64Key(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

// List is an append-only ordered collection with stable indices.
type List struct {
	m Map
}

func NewList(cs *ChangeSet, name string) List {
	return List{m: NewMap(cs, name)}
}

var listCountKey = []byte{0x00}

func (l List) Count() (uint64, error) {
	raw, err := l.m.Get(listCountKey)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("corrupt list count (%d bytes)", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (l List) setCount(n uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	l.m.Put(listCountKey, b[:])
}

func itemKey(i uint64) []byte {
	k := make([]byte, 9)
	k[0] = 0x01
	binary.BigEndian.PutUint64(k[1:], i)
	return k
}

// Append adds value at the end of the list and returns its index.
func (l List) Append(value []byte) (uint64, error) {
	n, err := l.Count()
	if err != nil {
		return 0, err
	}
	l.m.Put(itemKey(n), value)
	l.setCount(n + 1)
	return n, nil
}

func (l List) Get(i uint64) ([]byte, error) {
	return l.m.Get(itemKey(i))
}

func (l List) Set(i uint64, value []byte) {
	l.m.Put(itemKey(i), value)
}

// RemoveAt replaces index i with the last element and shrinks the list.
// Callers that need order preserved must not use it.
func (l List) RemoveAt(i uint64) error {
	n, err := l.Count()
	if err != nil {
		return err
	}
	if i >= n {
		return fmt.Errorf("list index %d out of range (count %d)", i, n)
	}
	last := n - 1
	if i != last {
		v, err := l.Get(last)
		if err != nil {
			return err
		}
		l.m.Put(itemKey(i), v)
	}
	l.m.Delete(itemKey(last))
	l.setCount(last)
	return nil
}

// All returns every element in index order.
func (l List) All() ([][]byte, error) {
	n, err := l.Count()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := l.Get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
