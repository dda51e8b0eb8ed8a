package mov

import (
	"io"
	"slices"
)

// Class describes one atom implementation: which type tags it accepts, its
// fixed field schema, and its container behavior. The engine never assumes
// anything about field semantics beyond the declared binary formats.
//
// Atoms whose payload continues past the fixed schema (brand lists, offset
// tables, trailing names) supply the ParseRest/WriteRest/RestSize hooks;
// the three must agree on the extra bytes they consume, produce and count.
type Class struct {
	Name string

	// Kinds lists the type tags this class accepts. Matches, when set,
	// replaces the list entirely (for classes accepting arbitrary tags).
	Kinds   []Kind
	Matches func(Kind) bool

	// Container marks types whose payload after the fixed fields is a
	// sequence of child atoms.
	Container bool

	Fields []FieldDef

	// TrailingNull allows a 4-byte zero marker after the last child.
	TrailingNull bool

	// ForceChildClass, when set, parses every immediate child with this
	// class regardless of its type tag.
	ForceChildClass *Class

	// ParseRest parses payload bytes following the fixed fields, up to the
	// exclusive end offset.
	ParseRest func(a *Atom, src io.ReadSeeker, end int64) error

	// WriteRest serializes the bytes ParseRest consumed.
	WriteRest func(a *Atom, w io.Writer) error

	// RestSize returns the byte count WriteRest will produce.
	RestSize func(a *Atom) int64
}

// accepts reports whether the class handles the given type tag.
func (c *Class) accepts(kind Kind) bool {
	if c.Matches != nil {
		return c.Matches(kind)
	}
	return slices.Contains(c.Kinds, kind)
}

// Registry is an ordered list of atom classes. Resolution is a linear
// first-match scan, so callers needing precedence must register more
// specific classes first.
type Registry struct {
	classes []*Class
}

// NewRegistry creates a registry with the given classes, in order.
func NewRegistry(classes ...*Class) *Registry {
	return &Registry{classes: slices.Clone(classes)}
}

// Register appends a class to the registry.
func (r *Registry) Register(c *Class) {
	r.classes = append(r.classes, c)
}

// Resolve returns the first registered class accepting the type tag, or nil
// if none matches. A non-nil force bypasses the registry entirely.
func (r *Registry) Resolve(kind Kind, force *Class) *Class {
	if force != nil {
		return force
	}
	for _, c := range r.classes {
		if c.accepts(kind) {
			return c
		}
	}
	return nil
}
