package dict

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Dictionary is an ordered key/value store.
//
// The zero value is not usable; call New. A nil *Dictionary behaves as an
// empty, read-only dictionary for Get, Len and Keys.
type Dictionary struct {
	keys   []string
	values map[string]Value
}

// New creates an empty Dictionary with room for capacity keys.
func New(capacity int) *Dictionary {
	if capacity < 0 {
		capacity = 0
	}
	return &Dictionary{
		keys:   make([]string, 0, capacity),
		values: make(map[string]Value, capacity),
	}
}

// FromStrings builds a Dictionary of string values from alternating key/value pairs.
// A trailing key without a value is ignored.
func FromStrings(pairs ...string) *Dictionary {
	d := New(len(pairs) / 2)
	for i := 0; i+1 < len(pairs); i += 2 {
		d.Put(pairs[i], String(pairs[i+1]))
	}
	return d
}

// Get returns the value stored under key.
func (d *Dictionary) Get(key string) (Value, bool) {
	if d == nil {
		return Value{}, false
	}
	v, ok := d.values[key]
	return v, ok
}

// GetString returns the value under key if it is a string.
func (d *Dictionary) GetString(key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// GetInt returns the value under key if it is an integer.
func (d *Dictionary) GetInt(key string) (int64, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	return v.AsInt64()
}

// Put stores v under key. An existing key keeps its position.
func (d *Dictionary) Put(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Remove deletes key and reports whether it was present.
func (d *Dictionary) Remove(key string) bool {
	if d == nil {
		return false
	}
	if _, ok := d.values[key]; !ok {
		return false
	}
	delete(d.values, key)
	if i := slices.Index(d.keys, key); i >= 0 {
		d.keys = slices.Delete(d.keys, i, i+1)
	}
	return true
}

// Keys returns the keys in insertion order. The slice is a copy.
func (d *Dictionary) Keys() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.keys)
}

// Len returns the number of keys.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Range calls fn for every entry in insertion order until fn returns false.
func (d *Dictionary) Range(fn func(key string, v Value) bool) {
	if d == nil {
		return
	}
	for _, k := range d.keys {
		if !fn(k, d.values[k]) {
			return
		}
	}
}

// Clear removes every entry.
func (d *Dictionary) Clear() {
	if d == nil {
		return
	}
	d.keys = d.keys[:0]
	clear(d.values)
}

// Clone returns an independent copy. Byte values share their backing array.
func (d *Dictionary) Clone() *Dictionary {
	if d == nil {
		return nil
	}
	c := New(len(d.keys))
	for _, k := range d.keys {
		c.Put(k, d.values[k])
	}
	return c
}

// ToMap returns the entries as plain Go values.
func (d *Dictionary) ToMap() map[string]any {
	m := make(map[string]any, d.Len())
	d.Range(func(k string, v Value) bool {
		m[k] = v.Interface()
		return true
	})
	return m
}

// MarshalJSON encodes the dictionary as a JSON object in insertion order.
func (d *Dictionary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	i := 0
	d.Range(func(k string, v Value) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		var kb, vb []byte
		if kb, err = json.Marshal(k); err != nil {
			return false
		}
		if vb, err = v.MarshalJSON(); err != nil {
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
