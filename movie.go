package mov

import (
	"bytes"
	"io"
	"os"
)

// Movie is an ordered sequence of root atoms plus the registry used to
// parse them. A movie owns its root atoms; each atom owns its children.
type Movie struct {
	Atoms    []*Atom
	Registry *Registry
}

// NewMovie creates an empty movie with the given atom classes registered,
// in order.
func NewMovie(classes ...*Class) *Movie {
	return &Movie{Registry: NewRegistry(classes...)}
}

// ReadFile reads a movie from a file. The entire file is loaded into
// memory so that passthrough atoms stay valid after the file is closed;
// for large files, open the file yourself, call Read and keep the file
// open while the movie is in use.
func ReadFile(path string, classes ...*Class) (*Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := NewMovie(classes...)
	if err := m.Read(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return m, nil
}

// Read replaces the movie's atoms with those read from src, starting at the
// source's current position and continuing until it is exhausted. Parse
// errors are contained per atom sequence (see ReadAtoms); Read itself only
// fails when the source position cannot be determined.
func (m *Movie) Read(src io.ReadSeeker) error {
	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	m.Atoms = m.Atoms[:0]
	m.Atoms = append(m.Atoms, ReadAtoms(src, pos, 0, nil, m.Registry, nil)...)
	return nil
}

// Write serializes every root atom to w, in order. Sources borrowed by
// passthrough atoms must still be valid.
func (m *Movie) Write(w io.Writer) error {
	for _, a := range m.Atoms {
		if err := a.Write(w); err != nil {
			return err
		}
	}
	return nil
}

// Find collects every atom in the movie whose type tag is among kinds, in
// depth-first order, descending into every atom regardless of whether it
// matched itself.
func (m *Movie) Find(kinds ...Kind) []*Atom {
	return findAtoms(m.Atoms, kinds, true)
}

// Append adds a root atom.
func (m *Movie) Append(a *Atom) {
	a.parent = nil
	m.Atoms = append(m.Atoms, a)
}

// Remove removes the first occurrence of a root atom, reporting whether it
// was found. Prefer Free when file offsets elsewhere must stay valid.
func (m *Movie) Remove(a *Atom) bool {
	for i, root := range m.Atoms {
		if root == a {
			m.Atoms = append(m.Atoms[:i], m.Atoms[i+1:]...)
			return true
		}
	}
	return false
}
