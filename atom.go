package mov

import (
	"fmt"
	"io"

	"github.com/Velocidex/ordereddict"
)

// Atom is the basic unit of data in a movie: a length-prefixed, type-tagged
// record that may nest. A parsed atom either has a class (typed fields,
// possibly children) or is a passthrough bound to the byte range it was
// read from.
type Atom struct {
	kind   Kind
	class  *Class
	fields *ordereddict.Dict

	children []*Atom
	parent   *Atom

	// extended records that the atom was (or must be) written with the
	// 64-bit size field.
	extended bool

	// terminatingNull records that a 4-byte zero marker follows this
	// atom's last child.
	terminatingNull bool

	// Passthrough source binding, captured at parse time. The source is
	// borrowed, not owned: it must outlive the atom for as long as the
	// atom may be written.
	src     io.ReadSeeker
	offset  int64
	rawSize int64
}

// NewAtom creates a typed atom of the given class and type tag.
func NewAtom(class *Class, kind Kind) *Atom {
	return &Atom{
		kind:   kind,
		class:  class,
		fields: ordereddict.NewDict(),
	}
}

// newPassthrough creates an atom that re-emits size bytes at offset from
// src verbatim on write. Its payload is never decoded.
func newPassthrough(kind Kind, src io.ReadSeeker, offset, size int64) *Atom {
	return &Atom{
		kind:    kind,
		fields:  ordereddict.NewDict(),
		src:     src,
		offset:  offset,
		rawSize: size,
	}
}

func (a *Atom) String() string {
	if a.IsPassthrough() {
		return fmt.Sprintf("<passthrough %s %db>", a.kind, a.rawSize)
	}
	return fmt.Sprintf("<%s %s>", a.class.Name, a.kind)
}

// Kind returns the atom's type tag.
func (a *Atom) Kind() Kind { return a.kind }

// Class returns the atom's class, or nil for a passthrough atom.
func (a *Atom) Class() *Class { return a.class }

// Parent returns the enclosing atom, or nil for a root. The reference is
// non-owning and is used only for contextual lookups.
func (a *Atom) Parent() *Atom { return a.parent }

// IsPassthrough reports whether the atom defers to its original bytes.
func (a *Atom) IsPassthrough() bool { return a.class == nil }

// IsContainer reports whether the atom's payload is a sequence of children.
func (a *Atom) IsContainer() bool { return a.class != nil && a.class.Container }

// Extended reports whether the atom uses the 64-bit size field.
func (a *Atom) Extended() bool { return a.extended }

// SetExtended forces the header width used on the next write.
func (a *Atom) SetExtended(v bool) { a.extended = v }

// TerminatingNull reports whether a 4-byte zero marker follows the atom's
// last child when serialized.
func (a *Atom) TerminatingNull() bool { return a.terminatingNull }

// SetTerminatingNull controls whether the terminating null marker is
// written. Only meaningful for container atoms whose class allows one.
func (a *Atom) SetTerminatingNull(v bool) { a.terminatingNull = v }

// Children returns the atom's ordered child sequence. Non-container atoms
// have none.
func (a *Atom) Children() []*Atom { return a.children }

// Child returns the i'th child, or nil if out of range.
func (a *Atom) Child(i int) *Atom {
	if i < 0 || i >= len(a.children) {
		return nil
	}
	return a.children[i]
}

// Append adds a child atom and takes ownership of it.
func (a *Atom) Append(child *Atom) {
	child.parent = a
	a.children = append(a.children, child)
}

// Remove removes the first occurrence of child. It reports whether the
// child was found. Removing atoms can invalidate absolute file offsets
// recorded elsewhere (chunk offset tables); consider Free instead.
func (a *Atom) Remove(child *Atom) bool {
	for i, c := range a.children {
		if c == child {
			a.children = append(a.children[:i], a.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Get returns the named field value.
func (a *Atom) Get(name string) (any, bool) {
	return a.fields.Get(name)
}

// Set stores a named field value.
func (a *Atom) Set(name string, v any) {
	a.fields.Set(name, v)
}

// Keys returns the field names in insertion order.
func (a *Atom) Keys() []string {
	return a.fields.Keys()
}

// Size computes the serialized size of the atom including its header,
// schema fields, children and terminating null. A passthrough atom always
// reports the fixed length captured at parse time.
func (a *Atom) Size() int64 {
	if a.IsPassthrough() {
		return a.rawSize
	}
	size := int64(headerLen)
	if a.extended {
		size += extSizeLen
	}
	size += fieldsSize(a.class.Fields)
	if a.class.RestSize != nil {
		size += a.class.RestSize(a)
	}
	for _, c := range a.children {
		size += c.Size()
	}
	if a.terminatingNull {
		size += trailingNull
	}
	return size
}

// Find collects every descendant whose type tag is among kinds, in
// depth-first order. It descends into every child regardless of whether
// the child itself matched.
func (a *Atom) Find(kinds ...Kind) []*Atom {
	return findAtoms(a.children, kinds, true)
}

// FindShallow is Find restricted to immediate children.
func (a *Atom) FindShallow(kinds ...Kind) []*Atom {
	return findAtoms(a.children, kinds, false)
}

func findAtoms(atoms []*Atom, kinds []Kind, recursive bool) []*Atom {
	var matches []*Atom
	for _, a := range atoms {
		for _, k := range kinds {
			if a.kind == k {
				matches = append(matches, a)
				break
			}
		}
		if recursive {
			matches = append(matches, findAtoms(a.children, kinds, true)...)
		}
	}
	return matches
}

// Free renames the atom's type tag to "free" without altering its size or
// contents, neutralizing it while preserving the byte layout of the file.
// Note that a passthrough atom is written by copying its original bytes, so
// the rename only takes effect for typed atoms.
func (a *Atom) Free() {
	a.kind = KindFree
}
