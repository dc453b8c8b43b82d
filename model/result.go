package model

import (
	"fmt"
	"slices"
	"weak"

	"github.com/hupe1980/searchtree/dict"
)

type namedChild struct {
	name  string
	child *Result
}

// Result is one item inside a response. It is allocated from, and owned by,
// exactly one Response and is released when that response is freed.
type Result struct {
	id       uint32
	kind     ResultKind
	name     string
	isArray  bool
	common   bool
	fields   *dict.Dictionary
	children []namedChild
	items    []*Result
	owner    weak.Pointer[Response]
	released bool
}

// Kind returns the result kind.
func (r *Result) Kind() ResultKind { return r.kind }

// Name returns the element name the result was created from.
func (r *Result) Name() string { return r.name }

// IsArray reports whether the result holds a list of nested results.
func (r *Result) IsArray() bool { return r.isArray }

// IsCommon reports whether the result is a common result kind.
func (r *Result) IsCommon() bool { return r.common }

// Released reports whether the result's storage was returned.
func (r *Result) Released() bool { return r.released }

// Owner returns the owning response, or nil once it has been collected.
func (r *Result) Owner() *Response { return r.owner.Value() }

// usable returns the live owner. Callers use the returned pointer rather
// than loading the weak reference again.
func (r *Result) usable() (*Response, error) {
	if r.released {
		return nil, ErrReleased
	}
	owner := r.owner.Value()
	if owner == nil || owner.freed {
		return nil, ErrFreed
	}
	return owner, nil
}

// Allocate carves size bytes from the owning response's arena.
func (r *Result) Allocate(size int) ([]byte, error) {
	owner, err := r.usable()
	if err != nil {
		return nil, err
	}
	return owner.Allocate(size)
}

// AllocString copies s into the owning response's arena.
func (r *Result) AllocString(s string) (string, error) {
	owner, err := r.usable()
	if err != nil {
		return "", err
	}
	return owner.AllocString(s)
}

// SetField stores a field value.
func (r *Result) SetField(key string, v dict.Value) error {
	if _, err := r.usable(); err != nil {
		return err
	}
	r.fields.Put(key, v)
	return nil
}

// Field returns a field value.
func (r *Result) Field(key string) (dict.Value, bool) { return r.fields.Get(key) }

// FieldString returns a string field.
func (r *Result) FieldString(key string) (string, bool) { return r.fields.GetString(key) }

// Fields returns the field dictionary. It is empty after release.
func (r *Result) Fields() *dict.Dictionary { return r.fields }

// SetChild attaches a nested result under name, replacing and releasing any
// previous child with that name.
func (r *Result) SetChild(name string, child *Result) error {
	if err := r.attachable(child); err != nil {
		return err
	}
	for i := range r.children {
		if r.children[i].name == name {
			old := r.children[i].child
			r.children[i].child = child
			if old != child {
				r.owner.Value().release(old)
			}
			return nil
		}
	}
	r.children = append(r.children, namedChild{name: name, child: child})
	return nil
}

// Child returns the nested result stored under name.
func (r *Result) Child(name string) (*Result, bool) {
	for _, c := range r.children {
		if c.name == name {
			return c.child, true
		}
	}
	return nil, false
}

// ChildNames returns the nested result names in attach order.
func (r *Result) ChildNames() []string {
	names := make([]string, len(r.children))
	for i, c := range r.children {
		names[i] = c.name
	}
	return names
}

// Append adds item to an array-typed result.
func (r *Result) Append(item *Result) error {
	if !r.isArray {
		return fmt.Errorf("%w: %s", ErrNotArray, r.name)
	}
	if err := r.attachable(item); err != nil {
		return err
	}
	r.items = append(r.items, item)
	return nil
}

// Items returns the elements of an array-typed result.
func (r *Result) Items() []*Result { return slices.Clone(r.items) }

// Len returns the number of array elements.
func (r *Result) Len() int { return len(r.items) }

func (r *Result) attachable(child *Result) error {
	if _, err := r.usable(); err != nil {
		return err
	}
	switch {
	case child == nil || child.owner != r.owner:
		return ErrForeignResult
	case child == r:
		return fmt.Errorf("%w: result cannot contain itself", ErrForeignResult)
	case child.released:
		return ErrReleased
	}
	return nil
}

func (r *Result) nested() []*Result {
	out := make([]*Result, 0, len(r.children)+len(r.items))
	for _, c := range r.children {
		out = append(out, c.child)
	}
	return append(out, r.items...)
}

func (r *Result) releaseStorage() {
	r.released = true
	r.fields.Clear()
	r.children = nil
	r.items = nil
}
