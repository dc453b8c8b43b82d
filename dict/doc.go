// Package dict provides the ordered key/value store used for element
// attributes, result fields and response metadata.
//
// Values are small typed cells:
//
//   - String: dict.String("cats")
//   - Int: dict.Int(10)
//   - Float: dict.Float(47.6)
//   - Bool: dict.Bool(true)
//   - Bytes: dict.Bytes(raw)
//
// A Dictionary remembers insertion order. Replacing an existing key keeps its
// position, removing a key closes the gap:
//
//	d := dict.New(4)
//	d.Put("Title", dict.String("A"))
//	d.Put("Width", dict.Int(640))
//	title, _ := d.GetString("Title")
//	for _, k := range d.Keys() { ... }
//
// Dictionaries are not safe for concurrent mutation.
package dict
