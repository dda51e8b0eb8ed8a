package mov

import (
	"errors"
	"io"

	"go.uber.org/zap"
)

// ReadAtoms reads a sibling sequence of atoms from src.
//
// Reading starts at the start offset (seeking there if the source is
// positioned elsewhere). The end offset is an exclusive upper bound; as
// special cases, 0 means read until the source is exhausted and -1 means
// read exactly one atom. parent, when non-nil, is recorded on each atom and
// consulted for terminating-null detection. force, when non-nil, bypasses
// the registry and parses every atom with that class.
//
// Errors are contained: a clean end of source or a structural parse error
// stops the sequence and the atoms read so far are returned. Unrecognized
// type tags are never errors; they degrade to passthrough atoms bound to
// src, which must then outlive them.
func ReadAtoms(src io.ReadSeeker, start, end int64, parent *Atom, reg *Registry, force *Class) []*Atom {
	var atoms []*Atom

	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		logger.Warn("cannot position source", zap.Error(err))
		return nil
	}
	if pos != start {
		if pos, err = src.Seek(start, io.SeekStart); err != nil {
			logger.Warn("cannot seek to start", zap.Int64("start", start), zap.Error(err))
			return nil
		}
	}

	for end <= 0 || pos < end {
		offset := pos

		size, kind, extended, err := readHeader(src, offset)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug("end of source, stopped reading", zap.Int64("offset", offset))
			} else {
				logger.Warn("parse error, stopped reading", zap.Int64("offset", offset), zap.Error(err))
			}
			break
		}
		logger.Debug("found header",
			zap.Stringer("kind", kind), zap.Int64("size", size), zap.Int64("offset", offset))

		var atom *Atom
		if class := reg.Resolve(kind, force); class != nil {
			atom = NewAtom(class, kind)
			atom.extended = extended
			if err := parseData(atom, src, offset+size); err != nil {
				// The atom under construction is discarded; siblings read
				// before it are kept.
				logger.Warn("parse error, stopped reading",
					zap.Stringer("kind", kind), zap.Int64("offset", offset), zap.Error(err))
				break
			}
			if class.Container {
				cur, err := src.Seek(0, io.SeekCurrent)
				if err != nil {
					logger.Warn("cannot position source", zap.Stringer("kind", kind), zap.Error(err))
					break
				}
				for _, child := range ReadAtoms(src, cur, offset+size, atom, reg, class.ForceChildClass) {
					atom.Append(child)
				}
			}
			if size != atom.Size() {
				logger.Warn("size mismatch, will not serialize identically",
					zap.Stringer("kind", kind), zap.Int64("offset", offset),
					zap.Int64("declared", size), zap.Int64("computed", atom.Size()))
			}
		} else {
			atom = newPassthrough(kind, src, offset, size)
			atom.extended = extended
		}

		atom.parent = parent

		// A partially consumed atom must not desynchronize its siblings:
		// always leave the cursor exactly at the declared end. Passthrough
		// atoms consume nothing, so this seek is what skips their payload.
		if pos, err = src.Seek(0, io.SeekCurrent); err != nil {
			logger.Warn("cannot position source", zap.Stringer("kind", kind), zap.Error(err))
			break
		}
		if pos != offset+size {
			logger.Debug("partial read, seeking ahead",
				zap.Stringer("kind", kind), zap.Int64("from", pos), zap.Int64("to", offset+size))
			if pos, err = src.Seek(offset+size, io.SeekStart); err != nil {
				logger.Warn("cannot seek past atom", zap.Stringer("kind", kind), zap.Error(err))
				break
			}
		}

		// If this is the last atom of a container that allows a trailing
		// null and exactly 4 bytes remain, those bytes are the container's
		// terminating marker, not another atom header.
		if parent != nil && parent.class != nil && parent.class.TrailingNull && end-pos == trailingNull {
			var null [trailingNull]byte
			if _, err := io.ReadFull(src, null[:]); err == nil {
				logger.Debug("terminating null found", zap.Stringer("kind", kind), zap.Int64("offset", pos))
				parent.terminatingNull = true
				pos += trailingNull
			}
		}

		atoms = append(atoms, atom)

		if end == -1 {
			break
		}
	}

	return atoms
}

// parseData parses the fixed-field payload per the class schema, then hands
// the remainder to the class's ParseRest hook if it has one.
func parseData(a *Atom, src io.ReadSeeker, end int64) error {
	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return &ParseError{Offset: pos, Msg: err.Error()}
	}
	for _, def := range a.class.Fields {
		v, err := readField(src, def, pos)
		if err != nil {
			return err
		}
		a.fields.Set(def.Name, v)
		pos += def.Size()
	}
	if a.class.ParseRest != nil {
		return a.class.ParseRest(a, src, end)
	}
	return nil
}
