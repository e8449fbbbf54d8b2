// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import "iter"

// Map is a string-keyed map that remembers insertion order. The zero
// value is not usable; construct with [NewMap].
//
// Setting an existing key replaces its value in place without moving
// it, matching how the service manager treats repeated keys.
type Map struct {
	keys    []string
	entries map[string]Value
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{entries: make(map[string]Value)}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Set stores v under key. A nil v is stored as [Null].
func (m *Map) Set(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	if _, exists := m.entries[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = v
}

// SetString stores a [String].
func (m *Map) SetString(key, s string) { m.Set(key, String(s)) }

// SetInt stores an [Int].
func (m *Map) SetInt(key string, n int64) { m.Set(key, Int(n)) }

// SetBool stores a [Bool].
func (m *Map) SetBool(key string, b bool) { m.Set(key, Bool(b)) }

// Delete removes key if present.
func (m *Map) Delete(key string) {
	if _, exists := m.entries[key]; !exists {
		return
	}
	delete(m.entries, key)
	for index, existing := range m.keys {
		if existing == key {
			m.keys = append(m.keys[:index], m.keys[index+1:]...)
			break
		}
	}
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.entries[key]
	return v, ok
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// All iterates over entries in insertion order. Breaking out of the
// loop stops the iteration.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, key := range m.keys {
			if !yield(key, m.entries[key]) {
				return
			}
		}
	}
}

// GetString returns the string stored under key. The second result is
// false if the key is missing or holds another kind.
func (m *Map) GetString(key string) (string, bool) {
	v, _ := m.Get(key)
	s, ok := v.(String)
	return string(s), ok
}

// GetInt returns the integer stored under key.
func (m *Map) GetInt(key string) (int64, bool) {
	v, _ := m.Get(key)
	n, ok := v.(Int)
	return int64(n), ok
}

// GetBool returns the boolean stored under key.
func (m *Map) GetBool(key string) (bool, bool) {
	v, _ := m.Get(key)
	b, ok := v.(Bool)
	return bool(b), ok
}

// GetBlob returns the binary data stored under key.
func (m *Map) GetBlob(key string) ([]byte, bool) {
	v, _ := m.Get(key)
	b, ok := v.(Blob)
	return []byte(b), ok
}

// GetMap returns the nested map stored under key.
func (m *Map) GetMap(key string) (*Map, bool) {
	v, _ := m.Get(key)
	nested, ok := v.(*Map)
	return nested, ok
}

// GetList returns the list stored under key.
func (m *Map) GetList(key string) (List, bool) {
	v, _ := m.Get(key)
	l, ok := v.(List)
	return l, ok
}
